package dockyard

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessageFormatting(t *testing.T) {
	err := NewError("belt.Push", KindQueueFull, "belt is full at capacity %d", 10)
	assert.Contains(t, err.Error(), "belt.Push")
	assert.Contains(t, err.Error(), "queue_full")
	assert.Contains(t, err.Error(), "capacity 10")
}

func TestWrapErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	wrapped := WrapError("sysv.CreateShared", KindResourceInit, cause)
	assert.ErrorIs(t, wrapped, cause)
}

func TestIsKindMatchesOutermostDockyardError(t *testing.T) {
	base := NewError("session.Login", KindSessionFull, "table full")
	wrapped := fwrap(base)
	assert.True(t, IsKind(wrapped, KindInvariantViolation))
	assert.False(t, IsKind(wrapped, KindSessionFull))
}

func fwrap(err error) error {
	return &Error{Op: "outer", Kind: KindInvariantViolation, Inner: err}
}

func TestErrorIsComparesKindOnly(t *testing.T) {
	a := &Error{Op: "a", Kind: KindShuttingDown}
	b := &Error{Op: "b", Kind: KindShuttingDown}
	assert.True(t, errors.Is(a, b))
}
