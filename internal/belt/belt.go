// Package belt implements the bounded conveyor belt every worker pushes
// packages onto and the dispatcher pops packages off of (spec section 3).
// It is a thin, semaphore-aware wrapper over the slots living directly in
// shared memory - the belt never copies a Package off-segment except to
// hand a value back to a Go caller.
package belt

import (
	"context"
	"sync/atomic"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/interfaces"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// Belt coordinates producer (worker) and consumer (dispatcher) access to
// the circular buffer of uapi.Package slots in shared memory.
type Belt struct {
	state    *uapi.SharedState
	facade   sysv.Facade
	observer interfaces.Observer

	pushed atomic.Uint64
	popped atomic.Uint64
}

// New wires a Belt to an already-attached shared segment and facade. obs
// may be nil, in which case events are discarded.
func New(state *uapi.SharedState, facade sysv.Facade, obs interfaces.Observer) *Belt {
	if obs == nil {
		obs = interfaces.NoOpObserver{}
	}
	return &Belt{state: state, facade: facade, observer: obs}
}

// Push blocks until a slot is free, then writes pkg into it (spec's FIFO
// producer invariant). It holds the belt mutex only for the duration of
// the index update, so waiting for a slot never blocks other workers'
// unrelated progress longer than necessary. pkg.ID is assigned here, from
// the shared total_packages_created counter under belt.mutex (spec
// section 4.2 step 3) - callers must never assign their own id, since
// that is the only way the "strictly increasing across all producers"
// invariant (spec section 8) holds with W concurrent worker processes.
func (b *Belt) Push(ctx context.Context, pkg *uapi.Package) error {
	if err := b.facade.SemWait(ctx, constants.SemEmptySlots); err != nil {
		return err
	}
	if err := b.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		// Undo the empty-slot reservation; otherwise a shutdown here
		// would permanently shrink effective belt capacity.
		_ = b.facade.SemSignal(constants.SemEmptySlots)
		return err
	}

	b.state.TotalPackagesCreated++
	pkg.ID = b.state.TotalPackagesCreated

	idx := b.state.BeltTail
	b.state.Slots[idx] = *pkg
	b.state.BeltTail = (idx + 1) % b.state.BeltCapacity
	b.state.BeltCount++
	b.state.TotalWeight += pkg.Weight

	_ = b.facade.SemSignal(constants.SemBeltMutex)
	if err := b.facade.SemSignal(constants.SemFullSlots); err != nil {
		return err
	}

	b.pushed.Add(1)
	b.observer.Notify(interfaces.EventPackageCreated, map[string]any{
		"package_id": pkg.ID,
		"kind":       pkg.Kind,
	})
	return nil
}

// NextID reserves the next monotonic package id under belt.mutex without
// writing into any slot (spec section 4.5: the express path "allocates a
// Package (belt-mutex-gated id assignment, no belt insertion)") so a VIP
// package bypassing the belt still draws from the same strictly-increasing
// sequence as every belt-pushed package (spec section 8).
func (b *Belt) NextID(ctx context.Context) (uint64, error) {
	if err := b.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return 0, err
	}
	defer func() { _ = b.facade.SemSignal(constants.SemBeltMutex) }()

	b.state.TotalPackagesCreated++
	return b.state.TotalPackagesCreated, nil
}

// Pop blocks until a package is available, then removes and returns it
// (spec's FIFO consumer invariant).
func (b *Belt) Pop(ctx context.Context) (uapi.Package, error) {
	if err := b.facade.SemWait(ctx, constants.SemFullSlots); err != nil {
		return uapi.Package{}, err
	}
	if err := b.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		_ = b.facade.SemSignal(constants.SemFullSlots)
		return uapi.Package{}, err
	}

	idx := b.state.BeltHead
	pkg := b.state.Slots[idx]
	b.state.Slots[idx] = uapi.Package{}
	b.state.BeltHead = (idx + 1) % b.state.BeltCapacity
	b.state.BeltCount--
	b.state.TotalWeight -= pkg.Weight

	_ = b.facade.SemSignal(constants.SemBeltMutex)
	if err := b.facade.SemSignal(constants.SemEmptySlots); err != nil {
		return uapi.Package{}, err
	}

	b.popped.Add(1)
	return pkg, nil
}

// RegisterWorker increments the live worker count, bounded by MaxWorkers.
func (b *Belt) RegisterWorker(ctx context.Context, maxWorkers int32) bool {
	if err := b.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return false
	}
	defer func() { _ = b.facade.SemSignal(constants.SemBeltMutex) }()

	if b.state.WorkerCount >= maxWorkers {
		return false
	}
	b.state.WorkerCount++
	return true
}

// UnregisterWorker decrements the live worker count.
func (b *Belt) UnregisterWorker(ctx context.Context) {
	if err := b.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return
	}
	defer func() { _ = b.facade.SemSignal(constants.SemBeltMutex) }()
	if b.state.WorkerCount > 0 {
		b.state.WorkerCount--
	}
}

// Stats is a point-in-time, racily-read snapshot for observability only -
// callers must not treat it as authoritative for admission decisions (spec
// section 9, Open Question 3: total_weight is observational, not a gate).
type Stats struct {
	Count       int32
	Capacity    int32
	TotalWeight float64
	Workers     int32
	Pushed      uint64
	Popped      uint64
}

func (b *Belt) Stats() Stats {
	return Stats{
		Count:       b.state.BeltCount,
		Capacity:    b.state.BeltCapacity,
		TotalWeight: b.state.TotalWeight,
		Workers:     b.state.WorkerCount,
		Pushed:      b.pushed.Load(),
		Popped:      b.popped.Load(),
	}
}
