package uapi

// Role bitmask values carried in UserSession.Role (spec section 8).
const (
	RoleViewer   uint16 = 1 << 0
	RoleOperator uint16 = 1 << 1
	RoleOrgAdmin uint16 = 1 << 2
	RoleSysAdmin uint16 = 1 << 3
)

// truckfsm phases, defined here so TruckState.Phase has named values
// without internal/uapi importing internal/truckfsm; truckfsm re-exports
// them.
const (
	PhaseArriving uint8 = iota
	PhaseDocked
	PhaseDeparting
	PhaseEnRoute
	PhaseDone
)
