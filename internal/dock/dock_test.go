package dock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/truckfsm"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

type noBackoff struct{}

func (noBackoff) Wait(ctx context.Context, attempt int) error { return nil }

func newTestDock(t *testing.T) (*Dock, *uapi.SharedState) {
	t.Helper()
	facade := sysv.NewMockFacade(constants.SemTotal)
	facade.SeedSemaphore(constants.SemDockMutex, 1)
	state := &uapi.SharedState{}
	return New(state, facade, nil, noBackoff{}), state
}

func fixedNow() int64 { return 1000 }

func TestAttemptDockAndLoad(t *testing.T) {
	d, state := newTestDock(t)
	truck := truckfsm.New(1, 1)
	truck.MaxLoad = 10
	truck.MaxWeight = 100
	truck.MaxVolume = 100

	ok, err := d.AttemptDock(context.Background(), truck)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint8(1), state.DockTruck.IsPresent)

	pkg := &uapi.Package{ID: 1, Weight: 5, Volume: 5}
	require.NoError(t, d.RetryLoad(context.Background(), pkg, fixedNow))
	assert.NotZero(t, pkg.Status&uapi.StatusLoaded)
	assert.Equal(t, int32(1), state.DockTruck.CurrentLoad)
}

func TestRetryLoadDeadLettersWhenNeverFits(t *testing.T) {
	d, state := newTestDock(t)
	// Never dock any truck, so admission always fails and retries exhaust.
	pkg := &uapi.Package{ID: 2, Weight: 5, Volume: 5}

	err := d.RetryLoad(context.Background(), pkg, fixedNow)
	assert.ErrorIs(t, err, ErrDeadLettered)
	assert.Equal(t, uint64(1), state.DeadLetterCount)
}

func TestClearDockResetsState(t *testing.T) {
	d, state := newTestDock(t)
	truck := truckfsm.New(1, 1)
	_, err := d.AttemptDock(context.Background(), truck)
	require.NoError(t, err)

	require.NoError(t, d.ClearDock(context.Background()))
	assert.Equal(t, uint8(0), state.DockTruck.IsPresent)
	assert.Equal(t, uint64(1), state.TrucksCompleted)
}

func TestMismatchedTruckIsSentDeparture(t *testing.T) {
	d, state := newTestDock(t)
	truck := truckfsm.New(7, 1)
	truck.MaxWeight = 0.1
	truck.MaxVolume = 100
	truck.MaxLoad = 10

	_, err := d.AttemptDock(context.Background(), truck)
	require.NoError(t, err)
	facade := d.facade.(*sysv.MockFacade)

	pkg := &uapi.Package{ID: 1, Weight: 5.0, Volume: 1}
	err = d.RetryLoad(context.Background(), pkg, fixedNow)
	assert.ErrorIs(t, err, ErrDeadLettered)

	msg, err := facade.ReceiveCommand(int64(state.DockTruck.ID), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(constants.CmdDeparture), msg.CommandID)
}

func TestForceDepartureWhenNearCapacity(t *testing.T) {
	d, state := newTestDock(t)
	truck := truckfsm.New(1, 1)
	truck.MaxLoad = 100
	truck.MaxWeight = 100
	truck.MaxVolume = 100
	truck.CurrentWeight = 99.5

	_, err := d.AttemptDock(context.Background(), truck)
	require.NoError(t, err)

	pkg := &uapi.Package{ID: 1, Weight: 0.1, Volume: 0.1}
	require.NoError(t, d.RetryLoad(context.Background(), pkg, fixedNow))
	assert.Equal(t, uint8(1), state.ForceTruckDeparture)
}

func TestForceDepartureSetsFlag(t *testing.T) {
	d, state := newTestDock(t)
	truck := truckfsm.New(1, 1)
	_, err := d.AttemptDock(context.Background(), truck)
	require.NoError(t, err)

	require.NoError(t, d.ForceDeparture(context.Background()))
	assert.Equal(t, uint8(1), state.ForceTruckDeparture)
}

func TestForceDepartureNoopWhenDockEmpty(t *testing.T) {
	d, state := newTestDock(t)
	require.NoError(t, d.ForceDeparture(context.Background()))
	assert.Equal(t, uint8(0), state.ForceTruckDeparture)
}

func TestForceDepartureSendsCommandToOccupant(t *testing.T) {
	d, state := newTestDock(t)
	truck := truckfsm.New(42, 1)
	_, err := d.AttemptDock(context.Background(), truck)
	require.NoError(t, err)
	facade := d.facade.(*sysv.MockFacade)

	require.NoError(t, d.ForceDeparture(context.Background()))

	msg, err := facade.ReceiveCommand(int64(state.DockTruck.ID), 0)
	require.NoError(t, err)
	assert.Equal(t, int32(constants.CmdDeparture), msg.CommandID)
}
