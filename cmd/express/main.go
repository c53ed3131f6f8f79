// Command express is the persistent priority-bypass role process (spec
// section 4.7's "express" in the orchestrator's spawn table). It logs into
// the shared session table as "System-Express" so the terminal can address
// it by pid, then blocks on the message queue for EXPRESS_LOAD commands,
// delivering one randomized VIP package onto the docked truck per message
// (spec section 4.8).
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/ehrlich-b/dockyard/internal/belt"
	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/dock"
	"github.com/ehrlich-b/dockyard/internal/express"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/orchestrator"
	"github.com/ehrlich-b/dockyard/internal/role"
	"github.com/ehrlich-b/dockyard/internal/session"
	"github.com/ehrlich-b/dockyard/internal/sysv"
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
	logging.Init("express", &logging.Config{Level: cfg.Logging.Level, ToConsole: cfg.Logging.ToConsole, ToFile: cfg.Logging.ToFile, Role: "express"})

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

	ctx, stop := orchestrator.WatchSignals(context.Background())
	defer stop()

	pid := int32(os.Getpid())
	sessions := session.New(state, facade, nil)
	if err := sessions.Login(ctx, constants.SystemExpressUsername, pid, role.SysAdmin, 0, 1); err != nil {
		return fmt.Errorf("express: login failed: %w", err)
	}
	defer func() { _ = sessions.Logout(context.Background(), pid) }()

	d := dock.New(state, facade, nil, nil)
	b := belt.New(state, facade, nil)
	ex := express.New(d, b, nil)

	rng := rand.New(rand.NewSource(time.Now().UnixNano() ^ int64(pid)))

	for state.Running != 0 {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msg, err := facade.ReceiveCommand(int64(pid), constants.ExpressPollInterval)
		if err != nil {
			if err == sysv.ErrTimeout {
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			logging.Default().Warn("receive command failed", "error", err)
			continue
		}

		switch msg.CommandID {
		case constants.CmdExpressLoad:
			pkg := randomPackage(rng)
			if err := ex.DeliverVIPPackage(ctx, pid, role.SysAdmin, pkg); err != nil {
				logging.Default().Warn("vip delivery failed", "error", err)
			}
		case constants.CmdEndWork:
			return nil
		}
	}
	return nil
}

func randomPackage(rng *rand.Rand) uapi.Package {
	weight := constants.PackageMinWeight + rng.Float64()*(constants.PackageMaxWeight-constants.PackageMinWeight)
	volume := constants.PackageMinVolume + rng.Float64()*(constants.PackageMaxVolume-constants.PackageMinVolume)
	return uapi.Package{
		Kind:      uint8(rng.Intn(3)),
		Weight:    weight,
		Volume:    volume,
		CreatedAt: time.Now().Unix(),
	}
}
