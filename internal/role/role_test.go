package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionTiers(t *testing.T) {
	assert.False(t, Viewer.CanIssueVIP())
	assert.True(t, Operator.CanIssueVIP())
	assert.True(t, OrgAdmin.CanIssueVIP())
	assert.True(t, SysAdmin.CanIssueVIP())

	assert.False(t, Viewer.CanForceDeparture())
	assert.True(t, Operator.CanForceDeparture())
	assert.True(t, OrgAdmin.CanForceDeparture())
	assert.True(t, SysAdmin.CanForceDeparture())

	assert.False(t, OrgAdmin.CanEndWork())
	assert.True(t, SysAdmin.CanEndWork())
}

func TestCombinedMask(t *testing.T) {
	m := Viewer | Operator
	assert.True(t, m.Has(Viewer))
	assert.True(t, m.Has(Operator))
	assert.False(t, m.Has(OrgAdmin))
	assert.True(t, m.Any(Operator|SysAdmin))
}

func TestParse(t *testing.T) {
	assert.Equal(t, Operator, Parse("Operator"))
	assert.Equal(t, OrgAdmin, Parse("org_admin"))
	assert.Equal(t, SysAdmin, Parse("SYSADMIN"))
	assert.Equal(t, Mask(0), Parse("nonsense"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "none", Mask(0).String())
	assert.Equal(t, "viewer", Viewer.String())
	assert.Equal(t, "operator|sys_admin", (Operator | SysAdmin).String())
}
