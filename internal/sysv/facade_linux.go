//go:build linux

package sysv

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// Raw amd64 syscall numbers for the three System V IPC families.
// golang.org/x/sys/unix does not expose trusted high-level wrappers for
// all three (shmget/semget/msgget have no Go stdlib equivalent the way
// socket or file calls do), so these are invoked directly via
// unix.Syscall/unix.Syscall6, the same raw-syscall idiom the teacher used
// for io_uring_setup/io_uring_enter before a wrapper existed.
const (
	sysShmget = 29
	sysShmat  = 30
	sysShmctl = 31
	sysSemget = 64
	sysSemop  = 65
	sysSemctl = 66
	sysShmdt  = 67
	sysMsgget = 68
	sysMsgsnd = 69
	sysMsgrcv = 70
	sysMsgctl = 71
)

const (
	ipcCreat  = 0o1000
	ipcExcl   = 0o2000
	ipcRmid   = 0
	permOwner = 0o600
)

// sembuf mirrors struct sembuf from <sys/sem.h>.
type sembuf struct {
	num int16
	op  int16
	flg int16
}

type linuxFacade struct {
	cfg Config

	mu      sync.Mutex
	shmID   int
	semID   int
	msgID   int
	attached unsafe.Pointer

	closed chan struct{}
	once   sync.Once
}

func newFacade(cfg Config) (Facade, error) {
	return &linuxFacade{cfg: cfg, closed: make(chan struct{})}, nil
}

func (f *linuxFacade) CreateShared(size int) (*uapi.SharedState, error) {
	id, _, errno := unix.Syscall(sysShmget, uintptr(f.cfg.ShmKey), uintptr(size), uintptr(ipcCreat|ipcExcl|permOwner))
	if errno == unix.EEXIST {
		id, _, errno = unix.Syscall(sysShmget, uintptr(f.cfg.ShmKey), uintptr(size), uintptr(permOwner))
	}
	if errno != 0 {
		return nil, fmt.Errorf("sysv: shmget: %w", errno)
	}
	f.mu.Lock()
	f.shmID = int(id)
	f.mu.Unlock()
	return f.attach()
}

func (f *linuxFacade) AttachShared() (*uapi.SharedState, error) {
	id, _, errno := unix.Syscall(sysShmget, uintptr(f.cfg.ShmKey), uintptr(f.cfg.ShmSize), uintptr(permOwner))
	if errno != 0 {
		return nil, fmt.Errorf("sysv: shmget (attach): %w", errno)
	}
	f.mu.Lock()
	f.shmID = int(id)
	f.mu.Unlock()
	return f.attach()
}

func (f *linuxFacade) attach() (*uapi.SharedState, error) {
	f.mu.Lock()
	id := f.shmID
	f.mu.Unlock()

	addr, _, errno := unix.Syscall(sysShmat, uintptr(id), 0, 0)
	if errno != 0 {
		return nil, fmt.Errorf("sysv: shmat: %w", errno)
	}
	ptr := unsafe.Pointer(addr)
	f.mu.Lock()
	f.attached = ptr
	f.mu.Unlock()
	return (*uapi.SharedState)(ptr), nil
}

func (f *linuxFacade) DetachShared(s *uapi.SharedState) error {
	_, _, errno := unix.Syscall(sysShmdt, uintptr(unsafe.Pointer(s)), 0, 0)
	if errno != 0 {
		return fmt.Errorf("sysv: shmdt: %w", errno)
	}
	return nil
}

func (f *linuxFacade) DestroyShared() error {
	f.mu.Lock()
	id := f.shmID
	f.mu.Unlock()
	_, _, errno := unix.Syscall(sysShmctl, uintptr(id), ipcRmid, 0)
	if errno != 0 {
		return fmt.Errorf("sysv: shmctl(IPC_RMID): %w", errno)
	}
	return nil
}

func (f *linuxFacade) CreateSemaphores(count int) error {
	id, _, errno := unix.Syscall(sysSemget, uintptr(f.cfg.SemKey), uintptr(count), uintptr(ipcCreat|ipcExcl|permOwner))
	if errno == unix.EEXIST {
		return f.AttachSemaphores()
	}
	if errno != 0 {
		return fmt.Errorf("sysv: semget: %w", errno)
	}
	f.mu.Lock()
	f.semID = int(id)
	f.mu.Unlock()
	return f.initSemaphores(count)
}

// initSemaphores sets the mutex semaphores to 1 (unlocked) and the counting
// semaphores (empty/full slots) to 0; the orchestrator posts the empty-slot
// count once the belt size is known.
func (f *linuxFacade) initSemaphores(count int) error {
	for i := 0; i < count; i++ {
		val := 0
		if i == constants.SemBeltMutex || i == constants.SemDockMutex {
			val = 1
		}
		if err := f.semctlSetVal(int16(i), val); err != nil {
			return err
		}
	}
	return nil
}

func (f *linuxFacade) semctlSetVal(num int16, val int) error {
	f.mu.Lock()
	id := f.semID
	f.mu.Unlock()
	const setval = 16
	_, _, errno := unix.Syscall6(sysSemctl, uintptr(id), uintptr(num), setval, uintptr(val), 0, 0)
	if errno != 0 {
		return fmt.Errorf("sysv: semctl(SETVAL): %w", errno)
	}
	return nil
}

func (f *linuxFacade) AttachSemaphores() error {
	id, _, errno := unix.Syscall(sysSemget, uintptr(f.cfg.SemKey), 0, uintptr(permOwner))
	if errno != 0 {
		return fmt.Errorf("sysv: semget (attach): %w", errno)
	}
	f.mu.Lock()
	f.semID = int(id)
	f.mu.Unlock()
	return nil
}

func (f *linuxFacade) SemWait(ctx Context, num int16) error {
	f.mu.Lock()
	id := f.semID
	f.mu.Unlock()

	op := sembuf{num: num, op: -1}
	for {
		_, _, errno := unix.Syscall(sysSemop, uintptr(id), uintptr(unsafe.Pointer(&op)), 1)
		if errno == 0 {
			return nil
		}
		if errno == unix.EINTR {
			select {
			case <-f.closed:
				return ErrShuttingDown
			default:
			}
			if ctx != nil {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
			}
			continue
		}
		return fmt.Errorf("sysv: semop(wait): %w", errno)
	}
}

func (f *linuxFacade) SemSignal(num int16) error {
	f.mu.Lock()
	id := f.semID
	f.mu.Unlock()

	op := sembuf{num: num, op: 1}
	_, _, errno := unix.Syscall(sysSemop, uintptr(id), uintptr(unsafe.Pointer(&op)), 1)
	if errno != 0 {
		return fmt.Errorf("sysv: semop(signal): %w", errno)
	}
	return nil
}

func (f *linuxFacade) DestroySemaphores() error {
	f.mu.Lock()
	id := f.semID
	f.mu.Unlock()
	_, _, errno := unix.Syscall(sysSemctl, uintptr(id), 0, ipcRmid)
	if errno != 0 {
		return fmt.Errorf("sysv: semctl(IPC_RMID): %w", errno)
	}
	return nil
}

// msgbuf mirrors the classic struct msgbuf { long mtype; char mtext[...]; }
// specialized to a fixed 16-byte uapi.CommandMessage payload.
type msgbuf struct {
	mtype int64
	body  uapi.CommandMessage
}

func (f *linuxFacade) CreateQueue() error {
	id, _, errno := unix.Syscall(sysMsgget, uintptr(f.cfg.MsgKey), uintptr(ipcCreat|ipcExcl|permOwner), 0)
	if errno == unix.EEXIST {
		return f.AttachQueue()
	}
	if errno != 0 {
		return fmt.Errorf("sysv: msgget: %w", errno)
	}
	f.mu.Lock()
	f.msgID = int(id)
	f.mu.Unlock()
	return nil
}

func (f *linuxFacade) AttachQueue() error {
	id, _, errno := unix.Syscall(sysMsgget, uintptr(f.cfg.MsgKey), uintptr(permOwner), 0)
	if errno != 0 {
		return fmt.Errorf("sysv: msgget (attach): %w", errno)
	}
	f.mu.Lock()
	f.msgID = int(id)
	f.mu.Unlock()
	return nil
}

func (f *linuxFacade) SendCommand(msg uapi.CommandMessage) error {
	f.mu.Lock()
	id := f.msgID
	f.mu.Unlock()

	buf := msgbuf{mtype: msg.RecipientTag, body: msg}
	size := unsafe.Sizeof(buf.body)
	_, _, errno := unix.Syscall6(sysMsgsnd, uintptr(id), uintptr(unsafe.Pointer(&buf)), size, 0, 0, 0)
	if errno != 0 {
		return fmt.Errorf("sysv: msgsnd: %w", errno)
	}
	return nil
}

func (f *linuxFacade) ReceiveCommand(tag int64, timeout time.Duration) (uapi.CommandMessage, error) {
	f.mu.Lock()
	id := f.msgID
	f.mu.Unlock()

	var buf msgbuf
	size := unsafe.Sizeof(buf.body)
	const ipcNowait = 0o4000

	deadline := time.Now().Add(timeout)
	for {
		_, _, errno := unix.Syscall6(sysMsgrcv, uintptr(id), uintptr(unsafe.Pointer(&buf)), size, uintptr(tag), ipcNowait, 0)
		if errno == 0 {
			return buf.body, nil
		}
		if errno == unix.ENOMSG {
			if timeout > 0 && time.Now().After(deadline) {
				return uapi.CommandMessage{}, ErrTimeout
			}
			select {
			case <-f.closed:
				return uapi.CommandMessage{}, ErrShuttingDown
			case <-time.After(20 * time.Millisecond):
			}
			continue
		}
		if errno == unix.EINTR {
			continue
		}
		return uapi.CommandMessage{}, fmt.Errorf("sysv: msgrcv: %w", errno)
	}
}

func (f *linuxFacade) DestroyQueue() error {
	f.mu.Lock()
	id := f.msgID
	f.mu.Unlock()
	_, _, errno := unix.Syscall(sysMsgctl, uintptr(id), ipcRmid, 0)
	if errno != 0 {
		return fmt.Errorf("sysv: msgctl(IPC_RMID): %w", errno)
	}
	return nil
}

func (f *linuxFacade) Close() error {
	f.once.Do(func() { close(f.closed) })
	return nil
}
