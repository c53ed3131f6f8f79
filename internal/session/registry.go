// Package session implements the fixed-size user session table (spec
// section 8): login/logout, per-user process quotas, and role lookup.
// Table access reuses the belt mutex semaphore rather than a dedicated one
// (Open Question 4 in spec.md's discussion section): the session table is
// touched far less often than the belt, so a shared lock adds negligible
// contention while saving a semaphore slot.
package session

import (
	"context"
	"errors"

	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/interfaces"
	"github.com/ehrlich-b/dockyard/internal/role"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

var (
	ErrSessionFull     = errors.New("session: user table is full")
	ErrDuplicateName   = errors.New("session: username already logged in")
	ErrQuotaExceeded   = errors.New("session: process quota exceeded")
	ErrSessionNotFound = errors.New("session: no active session for pid")
)

// Registry manages the UserSession rows embedded in shared memory.
type Registry struct {
	state    *uapi.SharedState
	facade   sysv.Facade
	observer interfaces.Observer
}

// New wires a Registry to shared state and a facade.
func New(state *uapi.SharedState, facade sysv.Facade, obs interfaces.Observer) *Registry {
	if obs == nil {
		obs = interfaces.NoOpObserver{}
	}
	return &Registry{state: state, facade: facade, observer: obs}
}

// Login reserves a row for username/pid, rejecting duplicates and
// capacity overflow (spec section 8).
func (r *Registry) Login(ctx context.Context, username string, pid int32, roleMask role.Mask, orgID, maxProcesses int32) error {
	if err := r.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return err
	}
	defer func() { _ = r.facade.SemSignal(constants.SemBeltMutex) }()

	freeIdx := -1
	for i := int32(0); i < r.state.UserCapacity; i++ {
		u := &r.state.Users[i]
		if u.Active == 0 {
			if freeIdx < 0 {
				freeIdx = int(i)
			}
			continue
		}
		if u.GetUsername() == username {
			return ErrDuplicateName
		}
	}
	if freeIdx < 0 {
		return ErrSessionFull
	}

	u := &r.state.Users[freeIdx]
	u.Active = 1
	u.SetUsername(username)
	u.SessionPID = pid
	u.Role = uint16(roleMask)
	u.OrgID = orgID
	u.MaxProcesses = maxProcesses
	u.CurrentProcesses = 0

	r.observer.Notify(interfaces.EventSessionLogin, map[string]any{"username": username, "pid": pid})
	return nil
}

// Logout clears the row belonging to pid.
func (r *Registry) Logout(ctx context.Context, pid int32) error {
	if err := r.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return err
	}
	defer func() { _ = r.facade.SemSignal(constants.SemBeltMutex) }()

	idx, err := r.findByPID(pid)
	if err != nil {
		return err
	}
	username := r.state.Users[idx].GetUsername()
	r.state.Users[idx] = uapi.UserSession{}

	r.observer.Notify(interfaces.EventSessionLogout, map[string]any{"username": username, "pid": pid})
	return nil
}

// TrySpawnProcess increments pid's process count if under quota, returning
// false (not an error) when the quota is already exhausted - callers
// distinguish "no session" (error) from "at quota" (false, no error) so a
// terminal can render a friendly message either way.
func (r *Registry) TrySpawnProcess(ctx context.Context, pid int32) (bool, error) {
	if err := r.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return false, err
	}
	defer func() { _ = r.facade.SemSignal(constants.SemBeltMutex) }()

	idx, err := r.findByPID(pid)
	if err != nil {
		return false, err
	}
	u := &r.state.Users[idx]
	if u.CurrentProcesses >= u.MaxProcesses {
		return false, nil
	}
	u.CurrentProcesses++
	return true, nil
}

// ReportProcessFinished decrements pid's process count, floored at zero.
func (r *Registry) ReportProcessFinished(ctx context.Context, pid int32) error {
	if err := r.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return err
	}
	defer func() { _ = r.facade.SemSignal(constants.SemBeltMutex) }()

	idx, err := r.findByPID(pid)
	if err != nil {
		return err
	}
	u := &r.state.Users[idx]
	if u.CurrentProcesses > 0 {
		u.CurrentProcesses--
	}
	return nil
}

// RoleOf returns the role mask for pid's active session.
func (r *Registry) RoleOf(ctx context.Context, pid int32) (role.Mask, error) {
	if err := r.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return 0, err
	}
	defer func() { _ = r.facade.SemSignal(constants.SemBeltMutex) }()

	idx, err := r.findByPID(pid)
	if err != nil {
		return 0, err
	}
	return role.Mask(r.state.Users[idx].Role), nil
}

// ActivePIDs returns every currently logged-in session's PID, the
// canonical iteration this registry uses for "broadcast" addressing (Open
// Question 2): there is no reserved broadcast tag on the message queue,
// so a broadcast sender sends one message per active session PID.
// orchestrator.Shutdown reads the same table directly instead of calling
// this method.
func (r *Registry) ActivePIDs(ctx context.Context) ([]int32, error) {
	if err := r.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return nil, err
	}
	defer func() { _ = r.facade.SemSignal(constants.SemBeltMutex) }()

	var pids []int32
	for i := int32(0); i < r.state.UserCapacity; i++ {
		if r.state.Users[i].Active != 0 {
			pids = append(pids, r.state.Users[i].SessionPID)
		}
	}
	return pids, nil
}

// PIDOf resolves a logged-in username to its session pid, the addressing
// scheme "vip" uses to reach the System-Express session over the message
// queue (spec section 4.8: recipient is "pid of session with username
// System-Express").
func (r *Registry) PIDOf(ctx context.Context, username string) (int32, error) {
	if err := r.facade.SemWait(ctx, constants.SemBeltMutex); err != nil {
		return 0, err
	}
	defer func() { _ = r.facade.SemSignal(constants.SemBeltMutex) }()

	for i := int32(0); i < r.state.UserCapacity; i++ {
		u := &r.state.Users[i]
		if u.Active != 0 && u.GetUsername() == username {
			return u.SessionPID, nil
		}
	}
	return 0, ErrSessionNotFound
}

// findByPID must be called with the registry mutex already held.
func (r *Registry) findByPID(pid int32) (int32, error) {
	for i := int32(0); i < r.state.UserCapacity; i++ {
		u := &r.state.Users[i]
		if u.Active != 0 && u.SessionPID == pid {
			return i, nil
		}
	}
	return -1, ErrSessionNotFound
}
