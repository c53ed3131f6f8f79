package sysv

import (
	"sync"
	"time"

	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// MockFacade is an in-process Facade for tests that never touches real IPC
// resources, the same role the teacher's MockBackend played for its
// Backend interface: every call is counted and return values are
// injectable for error-path coverage.
type MockFacade struct {
	mu sync.Mutex

	Shared *uapi.SharedState
	sems   []int
	queue  []uapi.CommandMessage

	CreateSharedCalls int
	SemWaitCalls      int
	SemSignalCalls    int
	SendCalls         int
	ReceiveCalls      int

	FailNextSemWait bool
	FailNextSend    bool
}

// NewMockFacade returns a ready-to-use MockFacade with size semaphores.
func NewMockFacade(size int) *MockFacade {
	return &MockFacade{Shared: &uapi.SharedState{}, sems: make([]int, size)}
}

func (m *MockFacade) CreateShared(size int) (*uapi.SharedState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateSharedCalls++
	if m.Shared == nil {
		m.Shared = &uapi.SharedState{}
	}
	return m.Shared, nil
}

func (m *MockFacade) AttachShared() (*uapi.SharedState, error) { return m.Shared, nil }
func (m *MockFacade) DetachShared(*uapi.SharedState) error     { return nil }
func (m *MockFacade) DestroyShared() error                    { return nil }

func (m *MockFacade) CreateSemaphores(count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sems = make([]int, count)
	return nil
}
func (m *MockFacade) AttachSemaphores() error { return nil }

func (m *MockFacade) SemWait(ctx Context, num int16) error {
	m.mu.Lock()
	m.SemWaitCalls++
	if m.FailNextSemWait {
		m.FailNextSemWait = false
		m.mu.Unlock()
		return ErrShuttingDown
	}
	for m.sems[num] <= 0 {
		m.mu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
		m.mu.Lock()
	}
	m.sems[num]--
	m.mu.Unlock()
	return nil
}

func (m *MockFacade) SemSignal(num int16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SemSignalCalls++
	m.sems[num]++
	return nil
}

func (m *MockFacade) DestroySemaphores() error { return nil }

func (m *MockFacade) CreateQueue() error { return nil }
func (m *MockFacade) AttachQueue() error { return nil }

func (m *MockFacade) SendCommand(msg uapi.CommandMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendCalls++
	if m.FailNextSend {
		m.FailNextSend = false
		return ErrShuttingDown
	}
	m.queue = append(m.queue, msg)
	return nil
}

// ReceiveCommand never blocks: unlike the Facade contract, it returns
// ErrTimeout at once when no message for tag is queued, whatever timeout is.
func (m *MockFacade) ReceiveCommand(tag int64, timeout time.Duration) (uapi.CommandMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReceiveCalls++
	for i, msg := range m.queue {
		if msg.RecipientTag == tag {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return msg, nil
		}
	}
	return uapi.CommandMessage{}, ErrTimeout
}

func (m *MockFacade) DestroyQueue() error { return nil }
func (m *MockFacade) Close() error        { return nil }

// SeedSemaphore sets a semaphore's initial value, for tests that need a
// belt's empty/full counts pre-populated.
func (m *MockFacade) SeedSemaphore(num int16, val int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sems[num] = val
}

var _ Facade = (*MockFacade)(nil)
