// Package role provides the session role bitmask (spec section 8) and the
// permission checks layered on top of it.
package role

import (
	"strings"

	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// Mask is a bitmask over one or more roles; a session can hold more than
// one (an OrgAdmin is also implicitly an Operator, for example).
type Mask uint16

const (
	Viewer   Mask = Mask(uapi.RoleViewer)
	Operator Mask = Mask(uapi.RoleOperator)
	OrgAdmin Mask = Mask(uapi.RoleOrgAdmin)
	SysAdmin Mask = Mask(uapi.RoleSysAdmin)
)

// Has reports whether m includes every bit in want.
func (m Mask) Has(want Mask) bool { return m&want == want }

// Any reports whether m includes at least one bit of want.
func (m Mask) Any(want Mask) bool { return m&want != 0 }

// CanIssueVIP reports whether a session may call deliver_vip_package (spec
// section 4.5): Operator and above.
func (m Mask) CanIssueVIP() bool { return m.Any(Operator | OrgAdmin | SysAdmin) }

// CanForceDeparture reports whether a session may force a truck departure:
// Operator and above.
func (m Mask) CanForceDeparture() bool { return m.Any(Operator | OrgAdmin | SysAdmin) }

// CanEndWork reports whether a session may terminate the simulation:
// SysAdmin only.
func (m Mask) CanEndWork() bool { return m.Has(SysAdmin) }

// String renders the mask as a "|"-joined list of role names, for logging.
func (m Mask) String() string {
	var names []string
	if m.Has(Viewer) {
		names = append(names, "viewer")
	}
	if m.Has(Operator) {
		names = append(names, "operator")
	}
	if m.Has(OrgAdmin) {
		names = append(names, "org_admin")
	}
	if m.Has(SysAdmin) {
		names = append(names, "sys_admin")
	}
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, "|")
}

// Parse converts a single role name into its Mask bit. Unrecognized names
// return 0.
func Parse(name string) Mask {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "viewer":
		return Viewer
	case "operator":
		return Operator
	case "org_admin", "orgadmin":
		return OrgAdmin
	case "sys_admin", "sysadmin":
		return SysAdmin
	default:
		return 0
	}
}
