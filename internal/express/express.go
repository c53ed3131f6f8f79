// Package express implements the priority-bypass path: VIP single packages
// and randomized VIP batches go straight onto whichever truck is docked,
// skipping the belt entirely (spec section 4.5). Submission is throttled
// per-session with go-catrate so a single Operator can't starve the belt's
// own throughput by hammering the express path.
package express

import (
	"context"
	"math/rand"
	"time"

	"github.com/joeycumines/go-catrate"

	"github.com/ehrlich-b/dockyard/internal/belt"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/dock"
	"github.com/ehrlich-b/dockyard/internal/interfaces"
	"github.com/ehrlich-b/dockyard/internal/role"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// ErrRateLimited is returned when a session's express submissions exceed
// its allotted rate.
var ErrRateLimited = rateLimitedError{}

type rateLimitedError struct{}

func (rateLimitedError) Error() string { return "express: submission rate exceeded, try again later" }

// ErrForbidden is returned when a session's role lacks VIP privileges.
var ErrForbidden = forbiddenError{}

type forbiddenError struct{}

func (forbiddenError) Error() string { return "express: session role cannot submit VIP packages" }

// Express wraps a Dock with VIP submission and rate limiting.
type Express struct {
	dock     *dock.Dock
	belt     *belt.Belt
	observer interfaces.Observer
	limiter  *catrate.Limiter
	now      func() int64
}

// New builds an Express path over d, drawing package ids from b's
// belt-mutex-gated counter (spec section 4.5). Allowance bounds VIP
// submissions per session: default 5 per second, 30 per minute, matching
// an Operator issuing a burst of batches without being able to
// monopolize the dock.
func New(d *dock.Dock, b *belt.Belt, obs interfaces.Observer) *Express {
	if obs == nil {
		obs = interfaces.NoOpObserver{}
	}
	limiter := catrate.NewLimiter(map[time.Duration]int{
		time.Second: 5,
		time.Minute: 30,
	})
	return &Express{dock: d, belt: b, observer: obs, limiter: limiter, now: func() int64 { return time.Now().UnixNano() }}
}

// DeliverVIPPackage submits a single package directly to the dock,
// bypassing the belt (spec section 4.5's "deliver_vip_package"). The
// package is admitted against whichever truck is currently mirrored into
// shared memory, not a locally-held truck object - express runs in the
// session's own process, never the truck's.
func (e *Express) DeliverVIPPackage(ctx context.Context, sessionPID int32, roleMask role.Mask, pkg uapi.Package) error {
	if !roleMask.CanIssueVIP() {
		return ErrForbidden
	}
	if _, ok := e.limiter.Allow(sessionPID); !ok {
		return ErrRateLimited
	}

	id, err := e.belt.NextID(ctx)
	if err != nil {
		return err
	}
	pkg.ID = id
	pkg.Status |= uapi.StatusExpress
	pkg.AppendAudit(uapi.AuditExpressAllocated, uapi.ActorExpress, sessionPID, e.now())

	p := pkg
	err = e.dock.RetryLoad(ctx, &p, e.now)
	if err == nil {
		e.observer.Notify(interfaces.EventExpressDelivery, map[string]any{
			"package_id": p.ID,
			"batch":      false,
		})
	}
	return err
}

// DeliverExpressBatch submits a randomized batch of 3-5 packages (spec
// section 4.5), one rate-limit check covering the whole batch so a caller
// can't dodge the limiter by splitting a batch into singles.
func (e *Express) DeliverExpressBatch(ctx context.Context, sessionPID int32, roleMask role.Mask, makePackage func(i int) uapi.Package) ([]uapi.Package, error) {
	if !roleMask.CanIssueVIP() {
		return nil, ErrForbidden
	}
	if _, ok := e.limiter.Allow(sessionPID); !ok {
		return nil, ErrRateLimited
	}

	size := constants.ExpressBatchMin + rand.Intn(constants.ExpressBatchMax-constants.ExpressBatchMin+1)
	delivered := make([]uapi.Package, 0, size)

	for i := 0; i < size; i++ {
		pkg := makePackage(i)
		id, err := e.belt.NextID(ctx)
		if err != nil {
			return delivered, err
		}
		pkg.ID = id
		pkg.Status |= uapi.StatusExpress
		pkg.AppendAudit(uapi.AuditExpressAllocated, uapi.ActorExpress, sessionPID, e.now())

		if err := e.dock.RetryLoad(ctx, &pkg, e.now); err != nil {
			return delivered, err
		}
		delivered = append(delivered, pkg)
	}

	e.observer.Notify(interfaces.EventExpressDelivery, map[string]any{
		"count": len(delivered),
		"batch": true,
	})
	return delivered, nil
}
