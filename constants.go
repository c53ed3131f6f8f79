package dockyard

import "github.com/ehrlich-b/dockyard/internal/constants"

// Re-exported defaults, for callers embedding this module that would
// rather not import internal/constants directly.
const (
	DefaultBeltSlots    = constants.DefaultBeltSlots
	DefaultUserRows     = constants.DefaultUserRows
	DefaultAuditHistory = constants.DefaultAuditHistory
	DefaultTrucks       = constants.DefaultTrucks
	DefaultWorkers      = constants.DefaultWorkers
	DefaultMaxWorkers   = constants.DefaultMaxWorkers
)
