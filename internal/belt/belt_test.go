package belt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

func newTestBelt(t *testing.T, capacity int32) (*Belt, *sysv.MockFacade) {
	t.Helper()
	facade := sysv.NewMockFacade(constants.SemTotal)
	facade.SeedSemaphore(constants.SemBeltMutex, 1)
	facade.SeedSemaphore(constants.SemEmptySlots, int(capacity))
	facade.SeedSemaphore(constants.SemFullSlots, 0)

	state := &uapi.SharedState{BeltCapacity: capacity}
	return New(state, facade, nil), facade
}

func TestPushPopFIFO(t *testing.T) {
	b, _ := newTestBelt(t, 3)
	ctx := context.Background()

	p1 := uapi.Package{Weight: 1.5}
	p2 := uapi.Package{Weight: 2.5}
	require.NoError(t, b.Push(ctx, &p1))
	require.NoError(t, b.Push(ctx, &p2))

	first, err := b.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), first.ID)

	second, err := b.Pop(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), second.ID)
}

func TestPushAssignsStrictlyIncreasingIDs(t *testing.T) {
	b, _ := newTestBelt(t, 3)
	ctx := context.Background()

	p1, p2, p3 := uapi.Package{}, uapi.Package{}, uapi.Package{}
	require.NoError(t, b.Push(ctx, &p1))
	require.NoError(t, b.Push(ctx, &p2))
	require.NoError(t, b.Push(ctx, &p3))

	assert.Equal(t, uint64(1), p1.ID)
	assert.Equal(t, uint64(2), p2.ID)
	assert.Equal(t, uint64(3), p3.ID)
}

func TestPushBlocksWhenFull(t *testing.T) {
	b, _ := newTestBelt(t, 1)
	ctx := context.Background()

	require.NoError(t, b.Push(ctx, &uapi.Package{}))

	ctx2, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Push(ctx2, &uapi.Package{})
	assert.Error(t, err)
}

func TestWorkerRegistration(t *testing.T) {
	b, _ := newTestBelt(t, 2)
	ctx := context.Background()

	assert.True(t, b.RegisterWorker(ctx, 1))
	assert.False(t, b.RegisterWorker(ctx, 1))

	b.UnregisterWorker(ctx)
	assert.True(t, b.RegisterWorker(ctx, 1))
}

func TestStatsTracksPushPop(t *testing.T) {
	b, _ := newTestBelt(t, 5)
	ctx := context.Background()

	require.NoError(t, b.Push(ctx, &uapi.Package{Weight: 3}))
	_, err := b.Pop(ctx)
	require.NoError(t, err)

	stats := b.Stats()
	assert.Equal(t, uint64(1), stats.Pushed)
	assert.Equal(t, uint64(1), stats.Popped)
}
