// Package sysv abstracts the three System V IPC primitives the simulation
// is built on - shared memory, semaphore sets, and a message queue - behind
// a single Facade interface, the same way the teacher's ring package hid
// its transport behind one interface with a real and a stub implementation
// selected by build tag.
package sysv

import (
	"time"

	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// Config carries the well-known IPC keys and sizing every role process
// needs to attach to the same resources (spec section 6).
type Config struct {
	ShmKey  int
	SemKey  int
	MsgKey  int
	ShmSize int
}

// SemOp is a single semaphore operation, mirroring struct sembuf.
type SemOp struct {
	Num int16
	Val int16
}

// Facade is the full surface a role process needs against System V IPC.
// One goroutine at a time should hold a Facade's semaphore operations in
// flight per semaphore; the facade itself is safe for concurrent use by
// independent goroutines operating on different semaphores.
type Facade interface {
	// CreateShared allocates and zero-initializes the shared memory segment,
	// returning a pointer to its first byte. Callers create exactly once,
	// at orchestrator startup.
	CreateShared(size int) (*uapi.SharedState, error)
	// AttachShared attaches an already-created segment without
	// initializing it.
	AttachShared() (*uapi.SharedState, error)
	DetachShared(s *uapi.SharedState) error
	DestroyShared() error

	CreateSemaphores(count int) error
	AttachSemaphores() error
	// SemWait/SemSignal block (restarting across EINTR) until the
	// operation can proceed or ctx/shutdown fires.
	SemWait(ctx Context, num int16) error
	SemSignal(num int16) error
	DestroySemaphores() error

	CreateQueue() error
	AttachQueue() error
	// SendCommand enqueues msg tagged for msg.RecipientTag (a process PID).
	// Broadcasts are the caller's job: it iterates the session table and
	// sends one message per PID - see cmd/terminal's stop handler and
	// orchestrator.Shutdown.
	SendCommand(msg uapi.CommandMessage) error
	// ReceiveCommand blocks for up to timeout for a message addressed to
	// tag. timeout <= 0 means block indefinitely (subject to shutdown).
	ReceiveCommand(tag int64, timeout time.Duration) (uapi.CommandMessage, error)
	DestroyQueue() error

	// Close releases any process-local resources (not the IPC objects
	// themselves) held by this Facade, such as a shutdown channel.
	Close() error
}

// Context is the minimal subset of context.Context SemWait needs; kept
// narrow so facade_stub.go doesn't have to depend on the full interface.
type Context interface {
	Done() <-chan struct{}
	Err() error
}

// New constructs the platform Facade for cfg. On non-Linux builds it
// returns a stub that reports ErrUnsupportedPlatform for every IPC call.
func New(cfg Config) (Facade, error) {
	return newFacade(cfg)
}
