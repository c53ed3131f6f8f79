// Command truck drives one truck through its arrive/dock/depart/en-route
// cycle (spec section 4.4), docking when the single dock is free, waiting
// while the dispatcher loads it, and departing once full, force-departed,
// or (implicitly) whenever the dispatcher says so.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/dock"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/orchestrator"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/truckfsm"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logging.Init("truck", &logging.Config{Level: cfg.Logging.Level, ToConsole: cfg.Logging.ToConsole, ToFile: cfg.Logging.ToFile, Role: "truck"})

	facade, err := sysv.New(sysv.Config{ShmKey: constants.SharedMemKey, SemKey: constants.SemaphoreKey, MsgKey: constants.MsgQueueKey})
	if err != nil {
		return err
	}
	state, err := facade.AttachShared()
	if err != nil {
		return err
	}
	if err := facade.AttachSemaphores(); err != nil {
		return err
	}
	if err := facade.AttachQueue(); err != nil {
		return err
	}

	d := dock.New(state, facade, nil, nil)
	ctx, stop := orchestrator.WatchSignals(context.Background())
	defer stop()

	pid := int32(os.Getpid())
	truck := truckfsm.New(pid, time.Now().UnixNano())
	clock := truckfsm.RealClock{}

	for state.Running != 0 {
		if err := arrive(ctx, d, truck); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}

		waitWhileDocked(ctx, facade, state, truck)
		if ctx.Err() != nil {
			return nil
		}

		truck.Depart()
		if err := d.ClearDock(ctx); err != nil {
			logging.Default().Warn("clear dock failed", "error", err)
		}
		logging.Default().Info("truck departed", "truck_id", truck.ID)

		if err := truck.Advance(ctx, clock); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if err := truck.Advance(ctx, clock); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
	return nil
}

// arrive retries AttemptDock until the single dock is free.
func arrive(ctx context.Context, d *dock.Dock, truck *truckfsm.Truck) error {
	for {
		ok, err := d.AttemptDock(ctx, truck)
		if err != nil {
			return err
		}
		if ok {
			logging.Default().Info("truck docked", "truck_id", truck.ID)
			return nil
		}
		select {
		case <-time.After(constants.TruckArrivalPoll):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// waitWhileDocked blocks on the message queue for a DEPARTURE or END_WORK
// command addressed to this truck's own pid (spec section 4.4's
// "recv_blocking(self_pid) = DEPARTURE/END_WORK"), polling with a short
// timeout so it can also notice the shared DockTruck mirror going full or
// mismatched - the dispatcher updates capacities and the shared
// ForceTruckDeparture flag from its own process, so those fields are the
// fallback signal for a truck that missed its queue message.
func waitWhileDocked(ctx context.Context, facade sysv.Facade, state *uapi.SharedState, truck *truckfsm.Truck) {
	for {
		ts := state.DockTruck
		if ts.IsPresent == 0 || ts.ID != truck.ID {
			return
		}
		if state.ForceTruckDeparture != 0 || truckfsm.IsFullState(ts) {
			return
		}

		msg, err := facade.ReceiveCommand(int64(truck.ID), constants.TruckArrivalPoll)
		if err == nil {
			switch msg.CommandID {
			case constants.CmdDeparture, constants.CmdEndWork:
				return
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if err != sysv.ErrTimeout {
			logging.Default().Warn("receive command failed", "error", err)
			select {
			case <-time.After(constants.TruckArrivalPoll):
			case <-ctx.Done():
				return
			}
		}
	}
}
