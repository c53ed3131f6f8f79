package sysv

import "errors"

var (
	// ErrTimeout is returned by ReceiveCommand when no message arrives
	// addressed to the caller's tag before the deadline.
	ErrTimeout = errors.New("sysv: receive timed out")
	// ErrShuttingDown is returned from blocking calls once Close has been
	// called on the Facade.
	ErrShuttingDown = errors.New("sysv: facade is shutting down")
	// ErrUnsupportedPlatform is returned by every Facade method on the
	// non-Linux stub build.
	ErrUnsupportedPlatform = errors.New("sysv: System V IPC is only supported on linux")
)
