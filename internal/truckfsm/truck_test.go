package truckfsm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	slept []time.Duration
}

func (f *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	return nil
}

func TestNewRandomizesWithinBounds(t *testing.T) {
	truck := New(1, 42)
	assert.GreaterOrEqual(t, truck.MaxLoad, int32(20))
	assert.LessOrEqual(t, truck.MaxLoad, int32(150))
	assert.GreaterOrEqual(t, truck.MaxWeight, 200.0)
	assert.LessOrEqual(t, truck.MaxWeight, 2000.0)
}

func TestCanAcceptAndLoad(t *testing.T) {
	truck := New(1, 1)
	truck.MaxLoad = 2
	truck.MaxWeight = 10
	truck.MaxVolume = 10

	assert.True(t, truck.CanAccept(5, 5))
	truck.Load(5, 5)
	assert.True(t, truck.CanAccept(5, 5))
	truck.Load(5, 5)

	assert.True(t, truck.IsFull())
	assert.False(t, truck.CanAccept(0.1, 0.1))
}

func TestDepartAdvancesThroughEnRouteBackToArriving(t *testing.T) {
	truck := New(1, 7)
	truck.Dock()
	truck.Load(1, 1)
	truck.Depart()
	assert.Equal(t, PhaseDeparting, truck.Phase)

	clock := &fakeClock{}
	ctx := context.Background()

	require.NoError(t, truck.Advance(ctx, clock))
	assert.Equal(t, PhaseEnRoute, truck.Phase)

	require.NoError(t, truck.Advance(ctx, clock))
	assert.Equal(t, PhaseArriving, truck.Phase)
	assert.Zero(t, truck.CurrentLoad)
	require.Len(t, clock.slept, 1)
	assert.GreaterOrEqual(t, clock.slept[0], 3*time.Second)
	assert.LessOrEqual(t, clock.slept[0], 8*time.Second)
}

func TestToStateReflectsDockedPresence(t *testing.T) {
	truck := New(2, 3)
	assert.Equal(t, uint8(0), truck.ToState().IsPresent)
	truck.Dock()
	assert.Equal(t, uint8(1), truck.ToState().IsPresent)
}

func TestStateHelpersMatchTruckMethods(t *testing.T) {
	truck := New(3, 9)
	truck.MaxLoad = 2
	truck.MaxWeight = 10
	truck.MaxVolume = 10
	truck.Dock()

	ts := truck.ToState()
	assert.Equal(t, truck.CanAccept(5, 5), CanAcceptState(ts, 5, 5))

	ts = LoadState(ts, 5, 5)
	assert.Equal(t, int32(1), ts.CurrentLoad)

	ts = LoadState(ts, 5, 5)
	assert.True(t, IsFullState(ts))
}
