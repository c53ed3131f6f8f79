package sysv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ehrlich-b/dockyard/internal/uapi"
)

func TestMockFacadeSemaphoreRoundTrip(t *testing.T) {
	f := NewMockFacade(4)
	f.SeedSemaphore(0, 1)

	require.NoError(t, f.SemWait(context.Background(), 0))
	assert.Equal(t, 1, f.SemWaitCalls)

	require.NoError(t, f.SemSignal(0))
	assert.Equal(t, 1, f.SemSignalCalls)
}

func TestMockFacadeSemWaitRespectsContextCancel(t *testing.T) {
	f := NewMockFacade(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := f.SemWait(ctx, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockFacadeQueueRoundTrip(t *testing.T) {
	f := NewMockFacade(1)
	msg := uapi.CommandMessage{RecipientTag: 99, CommandID: 1}
	require.NoError(t, f.SendCommand(msg))

	got, err := f.ReceiveCommand(99, 0)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestMockFacadeReceiveTimesOutWhenEmpty(t *testing.T) {
	f := NewMockFacade(1)
	_, err := f.ReceiveCommand(1, 0)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestMockFacadeInjectedFailures(t *testing.T) {
	f := NewMockFacade(1)
	f.FailNextSend = true
	assert.ErrorIs(t, f.SendCommand(uapi.CommandMessage{}), ErrShuttingDown)
}
