package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveActorCapabilities(t *testing.T) {
	admin := ResolveActor(1, "Asha", RoleAdmin)
	assert.True(t, admin.Has(CapOverrideForwardOnly))
	assert.True(t, admin.Has(CapManageHold))
	assert.True(t, admin.Has(CapReplayOutbox))

	sales := ResolveActor(2, "Ravi", RoleSales)
	assert.False(t, sales.Has(CapOverrideForwardOnly))
	assert.False(t, sales.Has(CapManageHold))
	assert.False(t, sales.Has(CapReplayOutbox))

	unknown := ResolveActor(3, "Ghost", "visitor")
	assert.False(t, unknown.Has(CapOverrideForwardOnly))
	assert.False(t, unknown.Has(CapManageHold))
}

func TestKnownRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleSales, RoleDesigner, RoleProduction, RoleInstaller} {
		assert.True(t, KnownRole(role), role)
	}
	assert.False(t, KnownRole("visitor"))
	assert.False(t, KnownRole(""))
}
