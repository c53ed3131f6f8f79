package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/role"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

func newTestRegistry(t *testing.T, capacity int32) *Registry {
	t.Helper()
	facade := sysv.NewMockFacade(constants.SemTotal)
	facade.SeedSemaphore(constants.SemBeltMutex, 1)
	state := &uapi.SharedState{UserCapacity: capacity}
	return New(state, facade, nil)
}

func TestLoginLogoutRoundTrip(t *testing.T) {
	r := newTestRegistry(t, 2)
	ctx := context.Background()

	require.NoError(t, r.Login(ctx, "alice", 100, role.Operator, 1, 3))
	got, err := r.RoleOf(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, role.Operator, got)

	require.NoError(t, r.Logout(ctx, 100))
	_, err = r.RoleOf(ctx, 100)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLoginRejectsDuplicateName(t *testing.T) {
	r := newTestRegistry(t, 2)
	ctx := context.Background()
	require.NoError(t, r.Login(ctx, "bob", 1, role.Viewer, 1, 1))
	err := r.Login(ctx, "bob", 2, role.Viewer, 1, 1)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestLoginRejectsWhenFull(t *testing.T) {
	r := newTestRegistry(t, 1)
	ctx := context.Background()
	require.NoError(t, r.Login(ctx, "first", 1, role.Viewer, 1, 1))
	err := r.Login(ctx, "second", 2, role.Viewer, 1, 1)
	assert.ErrorIs(t, err, ErrSessionFull)
}

func TestProcessQuota(t *testing.T) {
	r := newTestRegistry(t, 1)
	ctx := context.Background()
	require.NoError(t, r.Login(ctx, "carl", 5, role.Operator, 1, 2))

	ok, err := r.TrySpawnProcess(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.TrySpawnProcess(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.TrySpawnProcess(ctx, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.ReportProcessFinished(ctx, 5))
	ok, err = r.TrySpawnProcess(ctx, 5)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPIDOfResolvesUsername(t *testing.T) {
	r := newTestRegistry(t, 2)
	ctx := context.Background()
	require.NoError(t, r.Login(ctx, "System-Express", 42, role.SysAdmin, 0, 1))

	pid, err := r.PIDOf(ctx, "System-Express")
	require.NoError(t, err)
	assert.Equal(t, int32(42), pid)

	_, err = r.PIDOf(ctx, "nobody")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestActivePIDsListsOnlyLoggedIn(t *testing.T) {
	r := newTestRegistry(t, 3)
	ctx := context.Background()
	require.NoError(t, r.Login(ctx, "a", 1, role.Viewer, 1, 1))
	require.NoError(t, r.Login(ctx, "b", 2, role.Viewer, 1, 1))

	pids, err := r.ActivePIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int32{1, 2}, pids)
}
