// Package dock implements the single-dock admission control the
// dispatcher runs between popping a package off the belt and handing it to
// whichever truck currently occupies the dock (spec section 4.3/4.4).
package dock

import (
	"context"
	"time"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/interfaces"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/truckfsm"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// Backoff abstracts the sleep between failed admission retries so tests
// don't pay real wall-clock time.
type Backoff interface {
	Wait(ctx context.Context, attempt int) error
}

// FixedBackoff sleeps the same duration every retry, matching
// constants.DispatcherBackoff.
type FixedBackoff struct {
	Delay time.Duration
}

func (b FixedBackoff) Wait(ctx context.Context, attempt int) error {
	t := time.NewTimer(b.Delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dock serializes access to the truck currently at the loading dock.
type Dock struct {
	state    *uapi.SharedState
	facade   sysv.Facade
	observer interfaces.Observer
	backoff  Backoff
}

// New wires a Dock to shared state and a facade. backoff defaults to
// FixedBackoff{constants.DispatcherBackoff} when nil.
func New(state *uapi.SharedState, facade sysv.Facade, obs interfaces.Observer, backoff Backoff) *Dock {
	if obs == nil {
		obs = interfaces.NoOpObserver{}
	}
	if backoff == nil {
		backoff = FixedBackoff{Delay: constants.DispatcherBackoff}
	}
	return &Dock{state: state, facade: facade, observer: obs, backoff: backoff}
}

// ErrDeadLettered signals a package could not be admitted within
// MaxDispatchRetries and was moved to the dead-letter count (Open Question
// 1: packages that no present or future truck could ever fit are dropped
// rather than retried forever).
var ErrDeadLettered = errDeadLettered{}

type errDeadLettered struct{}

func (errDeadLettered) Error() string { return "dock: package dead-lettered after max retries" }

// RetryLoad attempts to load pkg onto whichever truck is mirrored into
// SharedState.DockTruck, retrying with backoff while the dock is empty or
// the current truck cannot fit it, up to MaxDispatchRetries attempts. The
// dispatcher process never owns a *truckfsm.Truck - it only ever sees the
// docked truck's state through shared memory, so admission here operates
// on the uapi.TruckState value directly via truckfsm's State helpers.
func (d *Dock) RetryLoad(ctx context.Context, pkg *uapi.Package, now func() int64) error {
	for attempt := 0; attempt < constants.MaxDispatchRetries; attempt++ {
		if err := d.facade.SemWait(ctx, constants.SemDockMutex); err != nil {
			return err
		}

		admitted, truckID := d.tryAdmit(pkg, now)

		_ = d.facade.SemSignal(constants.SemDockMutex)

		if admitted {
			d.observer.Notify(interfaces.EventPackageLoaded, map[string]any{
				"package_id": pkg.ID,
				"truck_id":   truckID,
			})
			return nil
		}

		if err := d.backoff.Wait(ctx, attempt); err != nil {
			return err
		}
	}

	pkg.AppendAudit(uapi.AuditDeadLettered, uapi.ActorDispatcher, 0, now())
	d.state.DeadLetterCount++
	d.observer.Notify(interfaces.EventPackageDeadLettered, map[string]any{"package_id": pkg.ID})
	return ErrDeadLettered
}

// tryAdmit runs under the dock mutex: it checks whether a truck is present
// and has room, loads the package if so, and forces departure when the
// truck becomes full or the dock nears its warn ratio. A truck that can't
// fit pkg is sent away immediately (spec section 4.3 step 5) so the
// dispatcher's retry can try again against the truck that arrives next.
func (d *Dock) tryAdmit(pkg *uapi.Package, now func() int64) (admitted bool, truckID int32) {
	ts := d.state.DockTruck
	if ts.IsPresent == 0 {
		return false, 0
	}
	if !truckfsm.CanAcceptState(ts, pkg.Weight, pkg.Volume) {
		d.sendDeparture(ts.ID)
		return false, 0
	}

	ts = truckfsm.LoadState(ts, pkg.Weight, pkg.Volume)
	pkg.Status |= uapi.StatusLoaded
	pkg.AppendAudit(uapi.AuditLoadedToTruck, uapi.ActorDispatcher, ts.ID, now())

	if truckfsm.IsFullState(ts) || d.nearCapacity(ts) {
		d.state.ForceTruckDeparture = 1
		d.sendDeparture(ts.ID)
	}
	d.state.DockTruck = ts
	return true, ts.ID
}

// sendDeparture enqueues a DEPARTURE command addressed to truckID's own
// pid (a truck's TruckState.ID is its process id - spec section 4.3's
// "send(T.id, DEPARTURE)"). It is best-effort: a saturated queue is
// logged and not retried (spec section 7, QueueFull), since
// ForceTruckDeparture remains as a shared-memory fallback the truck also
// polls.
func (d *Dock) sendDeparture(truckID int32) {
	err := d.facade.SendCommand(uapi.CommandMessage{RecipientTag: int64(truckID), CommandID: constants.CmdDeparture})
	d.observer.Notify(interfaces.EventDepartureSignaled, map[string]any{
		"truck_id": truckID,
		"error":    err,
	})
}

// nearCapacity reports whether ts has crossed DockCapacityWarnRatio of any
// dimension, used to force an early departure before a hard overflow.
func (d *Dock) nearCapacity(ts uapi.TruckState) bool {
	loadRatio := float64(ts.CurrentLoad) / float64(ts.MaxLoad)
	weightRatio := ts.CurrentWeight / ts.MaxWeight
	volumeRatio := ts.CurrentVolume / ts.MaxVolume
	return loadRatio >= constants.DockCapacityWarnRatio ||
		weightRatio >= constants.DockCapacityWarnRatio ||
		volumeRatio >= constants.DockCapacityWarnRatio
}

// AttemptDock tries to move an Arriving truck into the (currently empty)
// dock, returning true if it docked.
func (d *Dock) AttemptDock(ctx context.Context, truck *truckfsm.Truck) (bool, error) {
	if err := d.facade.SemWait(ctx, constants.SemDockMutex); err != nil {
		return false, err
	}
	defer func() { _ = d.facade.SemSignal(constants.SemDockMutex) }()

	if d.state.DockTruck.IsPresent != 0 {
		return false, nil
	}

	truck.Dock()
	d.state.DockTruck = truck.ToState()
	d.observer.Notify(interfaces.EventTruckDocked, map[string]any{"truck_id": truck.ID})
	return true, nil
}

// ForceDeparture sends a DEPARTURE command to the docked truck (spec
// section 4.8's "depart" command, Operator and above) and sets the
// shared-memory flag as a fallback for a truck that missed the message.
// A no-op, not an error, when no truck is present.
func (d *Dock) ForceDeparture(ctx context.Context) error {
	if err := d.facade.SemWait(ctx, constants.SemDockMutex); err != nil {
		return err
	}
	defer func() { _ = d.facade.SemSignal(constants.SemDockMutex) }()

	if d.state.DockTruck.IsPresent == 0 {
		return nil
	}
	d.state.ForceTruckDeparture = 1
	d.sendDeparture(d.state.DockTruck.ID)
	return nil
}

// ClearDock marks the dock empty once a departing truck has left, allowing
// the next Arriving truck to dock.
func (d *Dock) ClearDock(ctx context.Context) error {
	if err := d.facade.SemWait(ctx, constants.SemDockMutex); err != nil {
		return err
	}
	defer func() { _ = d.facade.SemSignal(constants.SemDockMutex) }()

	d.state.DockTruck = uapi.TruckState{}
	d.state.ForceTruckDeparture = 0
	d.state.TrucksCompleted++
	return nil
}
