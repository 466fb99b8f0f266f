package activity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftcrm/internal/model"
	"craftcrm/pkg/rbac"
)

var actor = rbac.ResolveActor(4, "Priya", rbac.RoleDesigner)

func TestStageChange(t *testing.T) {
	e := StageChange(model.EntityProject, 12, "Onboarding", "Design Finalization", actor)
	assert.Equal(t, model.ActivityStageChange, e.Type)
	assert.Equal(t, model.EntityProject, e.EntityType)
	assert.Equal(t, 12, e.EntityID)
	assert.Contains(t, e.Message, `"Onboarding"`)
	assert.Contains(t, e.Message, `"Design Finalization"`)
	assert.Equal(t, 4, e.ActorID)
	assert.Equal(t, "Priya", e.ActorName)
	assert.NotEmpty(t, e.ID)

	created := StageChange(model.EntityLead, 3, "", "New", actor)
	assert.Contains(t, created.Message, "Entered stage")
}

func TestSubstageCompleteMetadata(t *testing.T) {
	e := SubstageComplete(12, "modular_production", "Modular Production", true, actor)
	assert.Contains(t, e.Message, "automatically")

	var meta map[string]any
	require.NoError(t, json.Unmarshal(e.Metadata, &meta))
	assert.Equal(t, "modular_production", meta["substage_id"])
	assert.Equal(t, true, meta["auto_completed"])

	manual := SubstageComplete(12, "quality_check", "Quality Check", false, actor)
	assert.NotContains(t, manual.Message, "automatically")
}

func TestPercentageUpdateType(t *testing.T) {
	e := PercentageUpdate(12, "modular_production", "Modular Production", 60, actor)
	assert.Equal(t, model.ActivityPercentageUpdate, e.Type)
	assert.NotEqual(t, model.ActivitySubstageComplete, e.Type)
	assert.Contains(t, e.Message, "60%")

	var meta map[string]any
	require.NoError(t, json.Unmarshal(e.Metadata, &meta))
	assert.Equal(t, "modular_production", meta["substage_id"])
	assert.Equal(t, float64(60), meta["percentage"])
}

func TestLeadConverted(t *testing.T) {
	e := LeadConverted(3, 12, actor)
	assert.Equal(t, model.EntityLead, e.EntityType)
	assert.Equal(t, 3, e.EntityID)
	assert.Contains(t, e.Message, "#12")
}

func TestCommentHasNoMetadata(t *testing.T) {
	e := Comment(model.EntityProject, 12, "client asked for darker veneer", actor)
	assert.Equal(t, model.ActivityComment, e.Type)
	assert.Equal(t, "client asked for darker veneer", e.Message)
	assert.Nil(t, e.Metadata)
}
