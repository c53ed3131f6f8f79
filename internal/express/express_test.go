package express

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/dockyard/internal/belt"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/dock"
	"github.com/ehrlich-b/dockyard/internal/role"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/truckfsm"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

type noBackoff struct{}

func (noBackoff) Wait(ctx context.Context, attempt int) error { return nil }

func newTestDock(t *testing.T) (*dock.Dock, *belt.Belt, *uapi.SharedState) {
	t.Helper()
	facade := sysv.NewMockFacade(constants.SemTotal)
	facade.SeedSemaphore(constants.SemDockMutex, 1)
	facade.SeedSemaphore(constants.SemBeltMutex, 1)
	state := &uapi.SharedState{}
	return dock.New(state, facade, nil, noBackoff{}), belt.New(state, facade, nil), state
}

func dockTruck(state *uapi.SharedState) {
	tr := truckfsm.New(1, 1)
	tr.MaxLoad = 100
	tr.MaxWeight = 1000
	tr.MaxVolume = 1000
	tr.Dock()
	state.DockTruck = tr.ToState()
}

func TestDeliverVIPPackageRequiresOperator(t *testing.T) {
	d, b, state := newTestDock(t)
	dockTruck(state)
	e := New(d, b, nil)
	err := e.DeliverVIPPackage(context.Background(), 1, role.Viewer, uapi.Package{Weight: 1, Volume: 1})
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestDeliverVIPPackageSucceeds(t *testing.T) {
	d, b, state := newTestDock(t)
	dockTruck(state)
	e := New(d, b, nil)
	err := e.DeliverVIPPackage(context.Background(), 1, role.Operator, uapi.Package{Weight: 1, Volume: 1})
	require.NoError(t, err)
	assert.Equal(t, int32(1), state.DockTruck.CurrentLoad)
	assert.Equal(t, uint64(1), state.TotalPackagesCreated)
}

func TestDeliverExpressBatchSizeWithinBounds(t *testing.T) {
	d, b, state := newTestDock(t)
	dockTruck(state)
	e := New(d, b, nil)

	delivered, err := e.DeliverExpressBatch(context.Background(), 2, role.OrgAdmin, func(i int) uapi.Package {
		return uapi.Package{Weight: 1, Volume: 1}
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(delivered), constants.ExpressBatchMin)
	assert.LessOrEqual(t, len(delivered), constants.ExpressBatchMax)
}

func TestDeliverVIPPackageRateLimited(t *testing.T) {
	d, b, state := newTestDock(t)
	dockTruck(state)
	e := New(d, b, nil)

	var lastErr error
	for i := 0; i < 50; i++ {
		lastErr = e.DeliverVIPPackage(context.Background(), 9, role.SysAdmin, uapi.Package{Weight: 0.1, Volume: 0.1})
		if lastErr != nil {
			break
		}
	}
	assert.ErrorIs(t, lastErr, ErrRateLimited)
}
