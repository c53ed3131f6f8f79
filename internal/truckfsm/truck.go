// Package truckfsm implements each truck's arrival/dock/depart/en-route
// cycle (spec section 4.4) as an explicit state machine, with an injectable
// clock and randomizer so tests never depend on wall-clock delays.
package truckfsm

import (
	"context"
	"math/rand"
	"time"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// Phase re-exports the uapi phase enum under names local callers read more
// naturally.
type Phase = uint8

const (
	PhaseArriving  Phase = uapi.PhaseArriving
	PhaseDocked    Phase = uapi.PhaseDocked
	PhaseDeparting Phase = uapi.PhaseDeparting
	PhaseEnRoute   Phase = uapi.PhaseEnRoute
	PhaseDone      Phase = uapi.PhaseDone
)

// Clock abstracts time.Sleep so tests can run the FSM without waiting.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps for real, returning early if ctx is canceled.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Truck is one truck's local view of its own lifecycle; only the fields
// relevant while docked are mirrored into uapi.TruckState.
type Truck struct {
	ID    int32
	Phase Phase

	MaxLoad   int32
	MaxWeight float64
	MaxVolume float64

	CurrentLoad   int32
	CurrentWeight float64
	CurrentVolume float64

	rng *rand.Rand
}

// New creates a truck with randomized capacity within the spec's bounds
// (section 4.4 "Randomize max_load, max_weight, max_volume"), seeded by
// seed so tests are deterministic.
func New(id int32, seed int64) *Truck {
	r := rand.New(rand.NewSource(seed))
	return &Truck{
		ID:        id,
		Phase:     PhaseArriving,
		MaxLoad:   int32(constants.TruckMinLoad + r.Intn(constants.TruckMaxLoad-constants.TruckMinLoad+1)),
		MaxWeight: constants.TruckMinWeight + r.Float64()*(constants.TruckMaxWeight-constants.TruckMinWeight),
		MaxVolume: constants.TruckMinVolume + r.Float64()*(constants.TruckMaxVolume-constants.TruckMinVolume),
		rng:       r,
	}
}

// ToState snapshots the truck into the shared-memory representation.
func (t *Truck) ToState() uapi.TruckState {
	present := uint8(0)
	if t.Phase == PhaseDocked {
		present = 1
	}
	return uapi.TruckState{
		IsPresent:     present,
		ID:            t.ID,
		CurrentLoad:   t.CurrentLoad,
		MaxLoad:       t.MaxLoad,
		CurrentWeight: t.CurrentWeight,
		MaxWeight:     t.MaxWeight,
		CurrentVolume: t.CurrentVolume,
		MaxVolume:     t.MaxVolume,
		Phase:         t.Phase,
	}
}

// CanAccept reports whether pkg fits within remaining load/weight/volume.
func (t *Truck) CanAccept(weight, volume float64) bool {
	return CanAcceptState(t.ToState(), weight, volume)
}

// Load admits one package's worth of load/weight/volume onto the truck.
// Callers must have already checked CanAccept under the dock mutex.
func (t *Truck) Load(weight, volume float64) {
	t.CurrentLoad++
	t.CurrentWeight += weight
	t.CurrentVolume += volume
}

// IsFull reports whether the truck has reached its load count, weight, or
// volume limit (see IsFullState).
func (t *Truck) IsFull() bool {
	return IsFullState(t.ToState())
}

// CanAcceptState is CanAccept over the shared-memory TruckState snapshot
// directly, for the dispatcher process, which never owns a Truck value -
// it only sees whichever truck process has mirrored its state into
// SharedState.DockTruck.
func CanAcceptState(ts uapi.TruckState, weight, volume float64) bool {
	return ts.CurrentLoad < ts.MaxLoad &&
		ts.CurrentWeight+weight <= ts.MaxWeight &&
		ts.CurrentVolume+volume <= ts.MaxVolume
}

// LoadState admits a package's weight/volume into ts, returning the
// updated value (uapi.TruckState has no pointer receivers since it is a
// plain shared-memory struct).
func LoadState(ts uapi.TruckState, weight, volume float64) uapi.TruckState {
	ts.CurrentLoad++
	ts.CurrentWeight += weight
	ts.CurrentVolume += volume
	return ts
}

// IsFullState reports whether ts has reached its load count, weight, or
// volume limit. A truck with some room left below a limit is not full,
// even if that room is smaller than any package.
func IsFullState(ts uapi.TruckState) bool {
	return ts.CurrentLoad >= ts.MaxLoad ||
		ts.CurrentWeight >= ts.MaxWeight ||
		ts.CurrentVolume >= ts.MaxVolume
}

// Advance runs one phase transition, blocking on clock for timed phases.
// Arriving->Docked happens the moment the dock is free (signaled by the
// caller clearing IsPresent elsewhere), so Advance here only implements
// the timed legs: Docked is left to the dispatcher/dock package to end by
// calling Depart; Departing->EnRoute->Arriving are purely time-driven.
func (t *Truck) Advance(ctx context.Context, clock Clock) error {
	switch t.Phase {
	case PhaseDeparting:
		t.Phase = PhaseEnRoute
		return nil
	case PhaseEnRoute:
		lo, hi := constants.TruckEnRouteMin, constants.TruckEnRouteMax
		delay := lo + time.Duration(t.rng.Int63n(int64(hi-lo+1)))
		if err := clock.Sleep(ctx, delay); err != nil {
			return err
		}
		t.Phase = PhaseArriving
		t.CurrentLoad = 0
		t.CurrentWeight = 0
		t.CurrentVolume = 0
		return nil
	default:
		return nil
	}
}

// Depart transitions a docked truck to Departing, ending its stay at the
// single dock (spec section 4.4's departure trigger, whether full,
// force-departed, or timed out).
func (t *Truck) Depart() {
	t.Phase = PhaseDeparting
}

// Dock transitions an arriving truck into the dock.
func (t *Truck) Dock() {
	t.Phase = PhaseDocked
}
