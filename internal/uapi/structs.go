// Package uapi defines the C-compatible layout of the shared memory segment
// every dockyard role process attaches to. Struct layouts here are fixed:
// field order and padding are chosen so the size checks below never move,
// because every attaching process computes offsets from unsafe.Sizeof.
package uapi

import "unsafe"

// Sizing ceilings for the shared segment's fixed-size arrays. A simulation
// configured above these (see internal/config) is rejected at startup
// rather than silently truncated.
const (
	MaxBeltSlots  = 64
	MaxUserRows   = 32
	MaxAuditTrail = 6
)

// Package kinds (spec section 2 "three package types").
const (
	PackageKindA uint8 = iota
	PackageKindB
	PackageKindC
)

// Package status bits, OR'd into Package.Status.
const (
	StatusNormal  uint16 = 0
	StatusExpress uint16 = 1 << 0
	StatusLoaded  uint16 = 1 << 1
)

// Audit action codes recorded in AuditRecord.Action.
const (
	AuditCreated          uint16 = 1
	AuditLoadedToTruck    uint16 = 2
	AuditDeparted         uint16 = 3
	AuditExpressAllocated uint16 = 4
	AuditDeadLettered     uint16 = 5
)

// Audit actor bits, OR'd into AuditRecord.Action's high byte is avoided in
// favor of a dedicated field so Action stays a plain enum.
const (
	ActorWorker uint8 = iota
	ActorDispatcher
	ActorExpress
	ActorTruck
	ActorSystem
)

// AuditRecord is one entry in a package's audit trail (spec section 5).
// 16 bytes: Action(2) + Actor(1) + pad(1) + ActorPID(4) + Timestamp(8).
type AuditRecord struct {
	Action    uint16
	Actor     uint8
	_pad0     uint8
	ActorPID  int32
	Timestamp int64
}

var _ [16]byte = [unsafe.Sizeof(AuditRecord{})]byte{}

// Package is a unit of freight moving through the belt and onto a truck.
// 144 bytes total: 48-byte header + 6*16-byte fixed audit trail - no
// heap-allocated slice can live in shared memory.
type Package struct {
	ID         uint64
	Kind       uint8
	_pad0      [1]byte
	Status     uint16
	_pad1      [4]byte
	Weight     float64
	Volume     float64
	CreatedAt  int64
	AuditCount uint8
	_pad2      [7]byte
	Audit      [MaxAuditTrail]AuditRecord
}

var _ [48 + MaxAuditTrail*16]byte = [unsafe.Sizeof(Package{})]byte{}

// AppendAudit records an action if room remains in the fixed trail; once
// full, later events are dropped rather than overflowing the array (spec
// section 5's audit trail is a bounded history, not a full ledger).
func (p *Package) AppendAudit(action uint16, actor uint8, actorPID int32, ts int64) {
	if int(p.AuditCount) >= len(p.Audit) {
		return
	}
	p.Audit[p.AuditCount] = AuditRecord{Action: action, Actor: actor, ActorPID: actorPID, Timestamp: ts}
	p.AuditCount++
}

// TruckState describes whichever truck currently occupies the single dock
// (spec section 4.4). IsPresent is false when no truck is docked.
type TruckState struct {
	IsPresent     uint8
	_pad0         [3]byte
	ID            int32
	CurrentLoad   int32
	MaxLoad       int32
	CurrentWeight float64
	MaxWeight     float64
	CurrentVolume float64
	MaxVolume     float64
	Phase         uint8 // truckfsm.Phase
	_pad1         [7]byte
}

var _ [4 + 4 + 4 + 4 + 8 + 8 + 8 + 8 + 8]byte = [unsafe.Sizeof(TruckState{})]byte{}

// UserSession is one row of the fixed-size session table (spec section 8).
// Username is a fixed byte array so the struct stays flat in shared memory.
type UserSession struct {
	Active           uint8
	_pad0            [3]byte
	Username         [32]byte
	SessionPID       int32
	Role             uint16
	_pad1            [2]byte
	OrgID            int32
	MaxProcesses     int32
	CurrentProcesses int32
}

var _ [4 + 32 + 4 + 4 + 4 + 4 + 4]byte = [unsafe.Sizeof(UserSession{})]byte{}

// SetUsername copies name into the fixed-size field, truncating if needed.
func (u *UserSession) SetUsername(name string) {
	u.Username = [32]byte{}
	copy(u.Username[:], name)
}

// GetUsername returns the NUL-trimmed username.
func (u *UserSession) GetUsername() string {
	n := 0
	for n < len(u.Username) && u.Username[n] != 0 {
		n++
	}
	return string(u.Username[:n])
}

// SharedHeader prefixes SharedState so an attaching process can detect a
// stale or mismatched layout before reading anything else (not present in
// the distilled spec; an attach-safety enrichment). RunID is the
// orchestrator's per-run correlation id (raw UUID bytes): a process that
// attaches and finds a RunID different from the one in its own startup
// logs is attaching to a stale region left behind by a crashed prior run.
type SharedHeader struct {
	Magic   uint32
	Version uint32
	RunID   [16]byte
}

var _ [8 + 16]byte = [unsafe.Sizeof(SharedHeader{})]byte{}

// SharedState is the entire contents of the shared memory segment S (spec
// section 6). Belt slots and user rows are fixed-size arrays sized to
// MaxBeltSlots/MaxUserRows; BeltCapacity/UserCapacity record how many of
// each this run actually uses, so every process agrees without needing a
// second IPC channel to carry config.
type SharedState struct {
	Header SharedHeader

	Running             uint8
	ForceTruckDeparture uint8
	_pad0               [2]byte

	BeltCapacity int32
	BeltHead     int32
	BeltTail     int32
	BeltCount    int32
	TotalWeight  float64

	WorkerCount           int32
	TotalPackagesCreated  uint64
	TrucksCompleted       uint64
	DeadLetterCount       uint64

	UserCapacity int32
	_pad1        [4]byte

	DockTruck TruckState

	Slots [MaxBeltSlots]Package
	Users [MaxUserRows]UserSession
}

// CommandMessage is the fixed-layout payload carried on the System V
// message queue Q (spec section 6). RecipientTag is the message type used
// by msgrcv to address a specific process's PID; there is no broadcast tag.
type CommandMessage struct {
	RecipientTag int64
	CommandID    int32
	_pad0        [4]byte
}

var _ [16]byte = [unsafe.Sizeof(CommandMessage{})]byte{}
