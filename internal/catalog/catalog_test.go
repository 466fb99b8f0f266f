package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogIsValid(t *testing.T) {
	assert.NotPanics(t, func() { Default() })
}

func TestStageOrdering(t *testing.T) {
	c := Default()

	stages, err := c.StagesFor(EntityTypeProject)
	require.NoError(t, err)
	assert.Equal(t, StageOnboarding, stages[0])
	assert.Equal(t, StageHandover, stages[len(stages)-1])

	first, err := c.FirstStage(EntityTypeLead)
	require.NoError(t, err)
	assert.Equal(t, LeadStageNew, first)

	next, ok, err := c.NextStage(EntityTypeProject, StageProduction)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, StageInstallation, next)

	_, ok, err = c.NextStage(EntityTypeProject, StageHandover)
	require.NoError(t, err)
	assert.False(t, ok, "last stage has no successor")

	_, err = c.StageIndex(EntityTypeProject, LeadStageWon)
	assert.Error(t, err, "lead stages are not project stages")
}

func TestPredecessorChain(t *testing.T) {
	c := Default()

	_, ok, err := c.Predecessor("site_measurement")
	require.NoError(t, err)
	assert.False(t, ok, "first in group has no predecessor")

	pred, ok, err := c.Predecessor("design_meeting_2")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "design_meeting_1", pred.ID)

	// Sequence gates never cross group boundaries.
	_, ok, err = c.Predecessor("quotation_shared")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGroupLookups(t *testing.T) {
	c := Default()

	g, err := c.GroupOf("modular_production")
	require.NoError(t, err)
	assert.Equal(t, "factory", g.ID)
	assert.True(t, g.AdvancesStage)

	groups, err := c.GroupsFor(StageProduction)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "procurement", groups[0].ID)

	groups, err = c.GroupsFor(LeadStageNew)
	require.NoError(t, err)
	assert.Empty(t, groups, "lead stages carry no milestone groups")

	_, err = c.Group("no_such_group")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
}

func TestTATDaysFallback(t *testing.T) {
	c := Default()
	assert.Equal(t, 21, c.TATDays("modular_production"))
	assert.Equal(t, DefaultTATDays, c.TATDays("no_such_substage"))
}

func TestNewRejectsBadDefinitions(t *testing.T) {
	base := func() Definition {
		return Definition{
			Stages: map[EntityType][]string{
				EntityTypeProject: {"A", "B"},
			},
			Groups: []MilestoneGroup{
				{ID: "g1", Stage: "A", SubStages: []SubStage{
					{ID: "s1", Label: "S1", Kind: KindBoolean},
				}},
			},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Definition)
	}{
		{"duplicate stage", func(d *Definition) {
			d.Stages[EntityTypeProject] = []string{"A", "A"}
		}},
		{"empty stage list", func(d *Definition) {
			d.Stages[EntityTypeProject] = nil
		}},
		{"group on unknown stage", func(d *Definition) {
			d.Groups[0].Stage = "Z"
		}},
		{"group without sub-stages", func(d *Definition) {
			d.Groups[0].SubStages = nil
		}},
		{"invalid sub-stage kind", func(d *Definition) {
			d.Groups[0].SubStages[0].Kind = "ternary"
		}},
		{"duplicate sub-stage id", func(d *Definition) {
			d.Groups[0].SubStages = append(d.Groups[0].SubStages,
				SubStage{ID: "s1", Label: "again", Kind: KindBoolean})
		}},
		{"duplicate group id", func(d *Definition) {
			d.Groups = append(d.Groups, MilestoneGroup{
				ID: "g1", Stage: "A", SubStages: []SubStage{
					{ID: "s2", Label: "S2", Kind: KindBoolean},
				},
			})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := base()
			tt.mutate(&def)
			_, err := New(def)
			assert.Error(t, err)
		})
	}
}
