package terminal

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/dockyard/internal/role"
)

func TestVIPRequiresOperatorRole(t *testing.T) {
	var out bytes.Buffer
	called := false
	term := New(strings.NewReader("vip\nexit\n"), &out, role.Viewer, Handlers{
		VIP: func(args []string) (string, error) { called = true; return "ok", nil },
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, term.ReadLoop(ctx))

	assert.False(t, called)
	assert.Contains(t, out.String(), "cannot issue vip")
}

func TestVIPDispatchesWhenAuthorized(t *testing.T) {
	var out bytes.Buffer
	called := false
	term := New(strings.NewReader("vip\nexit\n"), &out, role.Operator, Handlers{
		VIP: func(args []string) (string, error) { called = true; return "vip delivered", nil },
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, term.ReadLoop(ctx))

	assert.True(t, called)
	assert.Contains(t, out.String(), "vip delivered")
}

func TestStopRequiresSysAdmin(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader("stop\nexit\n"), &out, role.OrgAdmin, Handlers{
		Stop: func() (string, error) { return "stopped", nil },
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, term.ReadLoop(ctx))

	assert.Contains(t, out.String(), "cannot end work")
}

func TestExitStopsReadLoop(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader("exit\n"), &out, role.Viewer, Handlers{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, term.ReadLoop(ctx))
}

func TestUnknownCommandReportsError(t *testing.T) {
	var out bytes.Buffer
	term := New(strings.NewReader("bogus\nexit\n"), &out, role.SysAdmin, Handlers{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, term.ReadLoop(ctx))
	assert.Contains(t, out.String(), "error:")
}
