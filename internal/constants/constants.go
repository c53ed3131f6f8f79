// Package constants collects the default tunables and fixed IPC keys for the
// warehouse simulation. Values mirror spec section 6 (external interfaces)
// and section 2/3 defaults.
package constants

import "time"

// IPC resource keys (spec section 6). These are the well-known keys every
// role process uses to discover (S, Sigma, Q).
const (
	SharedMemKey  = 1234
	SemaphoreKey  = 5678
	MsgQueueKey   = 9012
	SharedMagic   = 0xD0CCBA11
	SharedVersion = 1
)

// Semaphore indices within the set keyed by SemaphoreKey.
const (
	SemBeltMutex  = 0
	SemEmptySlots = 1
	SemFullSlots  = 2
	SemDockMutex  = 3
	SemTotal      = 4
)

// Command identifiers carried on the message queue.
const (
	CmdNone        = 0
	CmdDeparture   = 1
	CmdExpressLoad = 2
	CmdEndWork     = 3
)

// Default simulation sizing (spec sections 2, 3, 4.7).
const (
	DefaultBeltSlots    = 10 // K
	DefaultUserRows     = 5  // U
	DefaultAuditHistory = 6  // H
	DefaultTrucks       = 3  // T
	DefaultWorkers      = 3  // W
	DefaultMaxWorkers   = 16 // W_max

	MaxUsernameLen = 32
)

// Timing defaults for backoff, think-time, and truck dwell cycles.
const (
	// DispatcherBackoff is the sleep between failed dock admission retries.
	DispatcherBackoff = 150 * time.Millisecond

	// WorkerThinkTimeMin/Max bound the simulated production delay.
	WorkerThinkTimeMin = 50 * time.Millisecond
	WorkerThinkTimeMax = 400 * time.Millisecond

	// TruckArrivalPoll is the Arriving-state retry interval when the dock
	// is occupied.
	TruckArrivalPoll = 1 * time.Second

	// TruckEnRouteMin/Max bound the uniform 3-8s EnRoute delay.
	TruckEnRouteMin = 3 * time.Second
	TruckEnRouteMax = 8 * time.Second

	// TerminalPollInterval bounds how long Terminal's input poll blocks
	// before re-checking the shutdown flag.
	TerminalPollInterval = 100 * time.Millisecond

	// OrchestratorStartupStagger delays each spawned role process slightly
	// so that startup logs interleave predictably.
	OrchestratorStartupStagger = 20 * time.Millisecond

	// ShutdownGracePeriod is how long the orchestrator waits after
	// sending END_WORK to every active session before destroying (S, Sigma, Q).
	ShutdownGracePeriod = 2 * time.Second

	// ExpressPollInterval bounds how long the express daemon's receive
	// loop blocks waiting for an EXPRESS_LOAD/END_WORK command before
	// re-checking S.running.
	ExpressPollInterval = 200 * time.Millisecond

	// MaxDispatchRetries bounds the dead-letter decision for a package that
	// can never be admitted to any truck (Open Question 1; see SPEC_FULL.md).
	MaxDispatchRetries = 50
)

// Truck capacity randomization bounds (spec section 4.4 "Randomize
// max_load, max_weight, max_volume").
const (
	TruckMinLoad   = 20
	TruckMaxLoad   = 150
	TruckMinWeight = 200.0
	TruckMaxWeight = 2000.0
	TruckMinVolume = 20.0
	TruckMaxVolume = 150.0
)

// Package weight/volume randomization bounds used by workers and express.
const (
	PackageMinWeight = 0.5
	PackageMaxWeight = 80.0
	PackageMinVolume = 0.01
	PackageMaxVolume = 2.5
)

// ExpressBatchMin/Max bound the randomized VIP batch size (spec section 4.5).
const (
	ExpressBatchMin = 3
	ExpressBatchMax = 5
)

// DockCapacityWarnRatio is the 99% threshold at which the dispatcher forces
// a departure even without a hard count overflow (spec section 4.3 step 4).
const DockCapacityWarnRatio = 0.99

// SystemExpressUsername is the fixed session name "vip" addresses over the
// message queue (spec section 4.8): the express daemon logs in under this
// name so the terminal can resolve its pid without a side channel.
const SystemExpressUsername = "System-Express"
