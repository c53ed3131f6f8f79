// Package orchestrator owns the simulation's lifecycle: creating (S,
// Sigma, Q), spawning one process per role, and tearing everything down on
// shutdown (spec section 4.7 / section 6).
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"
	"time"
	"unsafe"

	"github.com/google/uuid"

	"github.com/ehrlich-b/dockyard/internal/config"
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/logging"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// RoleSpec describes one role binary to spawn, and how many instances.
type RoleSpec struct {
	Name  string
	Path  string
	Args  []string
	Count int
}

// Orchestrator creates IPC resources, spawns role processes, and waits for
// a termination signal; it does not watch for role processes exiting.
type Orchestrator struct {
	cfg    *config.Config
	facade sysv.Facade
	runID  string

	// GracePeriod overrides constants.ShutdownGracePeriod; tests set this
	// to near-zero so Shutdown doesn't block on wall-clock time.
	GracePeriod time.Duration

	mu       sync.Mutex
	children []*exec.Cmd
}

// New constructs an Orchestrator with a fresh run-id (section 6's
// correlation id), logged on the orchestrator's resource, ready and
// shutdown lines and passed to each spawned process as DOCKYARD_RUN_ID.
func New(cfg *config.Config, facade sysv.Facade) *Orchestrator {
	return &Orchestrator{cfg: cfg, facade: facade, runID: uuid.NewString(), GracePeriod: constants.ShutdownGracePeriod}
}

// RunID returns this orchestrator's correlation id.
func (o *Orchestrator) RunID() string { return o.runID }

// CreateResources creates (S, Sigma, Q), initializes SharedState's header
// and sizing fields from cfg, and posts the empty-slot semaphore once per
// belt slot.
func (o *Orchestrator) CreateResources() (*uapi.SharedState, error) {
	size := int(unsafe.Sizeof(uapi.SharedState{}))
	state, err := o.facade.CreateShared(size)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: create shared memory: %w", err)
	}

	runUUID, err := uuid.Parse(o.runID)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: parse run id: %w", err)
	}

	*state = uapi.SharedState{
		Header:       uapi.SharedHeader{Magic: constants.SharedMagic, Version: constants.SharedVersion, RunID: [16]byte(runUUID)},
		Running:      1,
		BeltCapacity: int32(o.cfg.Simulation.BeltSlots),
		UserCapacity: int32(o.cfg.Simulation.UserRows),
	}

	if err := o.facade.CreateSemaphores(constants.SemTotal); err != nil {
		return nil, fmt.Errorf("orchestrator: create semaphores: %w", err)
	}
	for i := 0; i < o.cfg.Simulation.BeltSlots; i++ {
		if err := o.facade.SemSignal(constants.SemEmptySlots); err != nil {
			return nil, fmt.Errorf("orchestrator: seed empty-slot semaphore: %w", err)
		}
	}
	if err := o.facade.CreateQueue(); err != nil {
		return nil, fmt.Errorf("orchestrator: create message queue: %w", err)
	}

	logging.Default().Info("resources created",
		"run_id", o.runID, "belt_slots", o.cfg.Simulation.BeltSlots, "user_rows", o.cfg.Simulation.UserRows)
	return state, nil
}

// Spawn launches count copies of a role binary, staggering startup so
// early log lines interleave predictably.
func (o *Orchestrator) Spawn(ctx context.Context, spec RoleSpec) error {
	for i := 0; i < spec.Count; i++ {
		cmd := exec.CommandContext(ctx, spec.Path, spec.Args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		cmd.Env = append(os.Environ(), "DOCKYARD_RUN_ID="+o.runID)

		if err := cmd.Start(); err != nil {
			return fmt.Errorf("orchestrator: spawn %s: %w", spec.Name, err)
		}

		o.mu.Lock()
		o.children = append(o.children, cmd)
		o.mu.Unlock()

		logging.Default().Info("spawned role process", "role", spec.Name, "pid", cmd.Process.Pid)
		time.Sleep(constants.OrchestratorStartupStagger)
	}
	return nil
}

// Wait blocks until ctx is canceled (typically by a signal handler
// installed via WatchSignals). It does not watch the spawned children: a
// role process exiting neither wakes Wait nor is logged.
func (o *Orchestrator) Wait(ctx context.Context) {
	<-ctx.Done()
}

// WatchSignals returns a context canceled on SIGINT/SIGTERM, and a stop
// function the caller should defer-call to release the signal handler.
func WatchSignals(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigCh)
		cancel()
	}
}

// Shutdown marks Running false, sends END_WORK to every active session's
// pid, waits GracePeriod for role processes to notice and exit on their
// own, sends SIGTERM to every spawned child, then destroys every IPC
// resource regardless of whether children exited cleanly. The session
// table is read without taking the belt mutex, so a role process that died
// holding it cannot block shutdown.
func (o *Orchestrator) Shutdown(state *uapi.SharedState) error {
	state.Running = 0
	logging.Default().Info("shutdown signaled", "run_id", o.runID)

	for i := int32(0); i < state.UserCapacity; i++ {
		if u := &state.Users[i]; u.Active != 0 {
			_ = o.facade.SendCommand(uapi.CommandMessage{RecipientTag: int64(u.SessionPID), CommandID: constants.CmdEndWork})
		}
	}

	time.Sleep(o.GracePeriod)

	o.mu.Lock()
	children := append([]*exec.Cmd(nil), o.children...)
	o.mu.Unlock()

	for _, c := range children {
		if c.Process == nil {
			continue
		}
		_ = c.Process.Signal(syscall.SIGTERM)
	}

	var firstErr error
	if err := o.facade.DestroyQueue(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := o.facade.DestroySemaphores(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := o.facade.DetachShared(state); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := o.facade.DestroyShared(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
