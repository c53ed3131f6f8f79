//go:build !linux

package sysv

import (
	"time"

	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// stubFacade lets the module build and its non-IPC tests run on
// development machines that aren't Linux; every method reports
// ErrUnsupportedPlatform, mirroring the teacher's iouring_stub.go.
type stubFacade struct{}

func newFacade(cfg Config) (Facade, error) {
	return stubFacade{}, nil
}

func (stubFacade) CreateShared(size int) (*uapi.SharedState, error) { return nil, ErrUnsupportedPlatform }
func (stubFacade) AttachShared() (*uapi.SharedState, error)         { return nil, ErrUnsupportedPlatform }
func (stubFacade) DetachShared(*uapi.SharedState) error             { return ErrUnsupportedPlatform }
func (stubFacade) DestroyShared() error                             { return ErrUnsupportedPlatform }

func (stubFacade) CreateSemaphores(int) error { return ErrUnsupportedPlatform }
func (stubFacade) AttachSemaphores() error    { return ErrUnsupportedPlatform }
func (stubFacade) SemWait(Context, int16) error { return ErrUnsupportedPlatform }
func (stubFacade) SemSignal(int16) error        { return ErrUnsupportedPlatform }
func (stubFacade) DestroySemaphores() error     { return ErrUnsupportedPlatform }

func (stubFacade) CreateQueue() error { return ErrUnsupportedPlatform }
func (stubFacade) AttachQueue() error { return ErrUnsupportedPlatform }
func (stubFacade) SendCommand(uapi.CommandMessage) error { return ErrUnsupportedPlatform }
func (stubFacade) ReceiveCommand(int64, time.Duration) (uapi.CommandMessage, error) {
	return uapi.CommandMessage{}, ErrUnsupportedPlatform
}
func (stubFacade) DestroyQueue() error { return ErrUnsupportedPlatform }

func (stubFacade) Close() error { return nil }
