package collaborator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
	"craftcrm/pkg/rbac"
)

func TestRolesForStage(t *testing.T) {
	a := NewAssigner(DefaultRules())

	assert.Equal(t, []string{rbac.RoleSales, rbac.RoleDesigner},
		a.RolesForStage(catalog.EntityTypeProject, catalog.StageOnboarding))
	assert.Equal(t, []string{rbac.RoleProduction},
		a.RolesForStage(catalog.EntityTypeProject, catalog.StageProduction))
	assert.Equal(t, []string{rbac.RoleSales},
		a.RolesForStage(catalog.EntityTypeLead, catalog.LeadStageNew))

	assert.Empty(t, a.RolesForStage(catalog.EntityTypeLead, catalog.LeadStageWon),
		"stages without rules require nobody")
}

func TestMissingRoles(t *testing.T) {
	a := NewAssigner(DefaultRules())

	t.Run("all missing on empty entity", func(t *testing.T) {
		missing := a.MissingRoles(catalog.EntityTypeProject, catalog.StageOnboarding, nil)
		assert.Equal(t, []string{rbac.RoleSales, rbac.RoleDesigner}, missing)
	})

	t.Run("present roles are skipped", func(t *testing.T) {
		current := []model.User{{ID: 1, Role: rbac.RoleSales}}
		missing := a.MissingRoles(catalog.EntityTypeProject, catalog.StageOnboarding, current)
		assert.Equal(t, []string{rbac.RoleDesigner}, missing)
	})

	t.Run("repeated stage entry is a no-op", func(t *testing.T) {
		current := []model.User{
			{ID: 1, Role: rbac.RoleSales},
			{ID: 2, Role: rbac.RoleDesigner},
		}
		missing := a.MissingRoles(catalog.EntityTypeProject, catalog.StageOnboarding, current)
		assert.Empty(t, missing)
	})
}
