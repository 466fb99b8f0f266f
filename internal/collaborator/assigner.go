// Package collaborator maps stages to the roles that must be present on
// an entity once the stage is reached. Resolution of a concrete user per
// role and persistence happen in the service layer.
package collaborator

import (
	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
	"craftcrm/pkg/rbac"
)

// Rules is the static per-entity-type mapping from stage name to the
// roles required as collaborators at that stage.
type Rules map[catalog.EntityType]map[string][]string

// DefaultRules covers the built-in catalogs.
func DefaultRules() Rules {
	return Rules{
		catalog.EntityTypeProject: {
			catalog.StageOnboarding:         {rbac.RoleSales, rbac.RoleDesigner},
			catalog.StageDesignFinalization: {rbac.RoleDesigner},
			catalog.StageProduction:         {rbac.RoleProduction},
			catalog.StageInstallation:       {rbac.RoleInstaller},
			catalog.StageHandover:           {rbac.RoleSales},
		},
		catalog.EntityTypeLead: {
			catalog.LeadStageNew: {rbac.RoleSales},
		},
	}
}

type Assigner struct {
	rules Rules
}

func NewAssigner(rules Rules) *Assigner {
	return &Assigner{rules: rules}
}

// RolesForStage returns the roles required once the stage is entered.
func (a *Assigner) RolesForStage(et catalog.EntityType, stage string) []string {
	return a.rules[et][stage]
}

// MissingRoles returns the required roles not yet represented among the
// current collaborators. Roles already present are skipped so repeated
// stage entries stay no-ops.
func (a *Assigner) MissingRoles(et catalog.EntityType, stage string, current []model.User) []string {
	present := make(map[string]bool, len(current))
	for _, u := range current {
		present[u.Role] = true
	}

	var missing []string
	for _, role := range a.RolesForStage(et, stage) {
		if !present[role] {
			missing = append(missing, role)
		}
	}
	return missing
}
