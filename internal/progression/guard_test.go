package progression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
)

func newState(stage string, completed []string, percentages map[string]int) State {
	st := State{
		EntityType:  catalog.EntityTypeProject,
		Stage:       stage,
		Completed:   make(map[string]bool),
		Percentages: make(map[string]int),
	}
	for _, id := range completed {
		st.Completed[id] = true
	}
	for id, v := range percentages {
		st.Percentages[id] = v
	}
	return st
}

func TestGuardRejectsEverythingWhileBlocked(t *testing.T) {
	g := NewGuard(catalog.Default())
	st := newState(catalog.StageOnboarding, nil, nil)
	st.Blocked = true

	requests := []Request{
		ChangeStage{NewStage: catalog.StageDesignFinalization},
		CompleteSubstage{SubstageID: "booking_confirmation"},
		SetPercentage{SubstageID: "modular_production", Value: 50},
	}
	for _, req := range requests {
		_, err := g.Attempt(st, req)
		assert.True(t, IsKind(err, KindOnHold), "request %s should be rejected while blocked", Name(req))
	}
}

func TestGuardChangeStage(t *testing.T) {
	g := NewGuard(catalog.Default())

	t.Run("forward move succeeds", func(t *testing.T) {
		st := newState(catalog.StageOnboarding, nil, nil)
		eff, err := g.Attempt(st, ChangeStage{NewStage: catalog.StageProduction})
		require.NoError(t, err)
		assert.True(t, eff.StageChanged)
		assert.Equal(t, catalog.StageProduction, eff.NewStage)
	})

	t.Run("backward move is rejected", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, nil)
		_, err := g.Attempt(st, ChangeStage{NewStage: catalog.StageOnboarding})
		assert.True(t, IsKind(err, KindBackwardMove))
	})

	t.Run("same stage is a no-op", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, nil)
		eff, err := g.Attempt(st, ChangeStage{NewStage: catalog.StageProduction})
		require.NoError(t, err)
		assert.False(t, eff.StageChanged)
	})

	t.Run("unknown stage is not found", func(t *testing.T) {
		st := newState(catalog.StageOnboarding, nil, nil)
		_, err := g.Attempt(st, ChangeStage{NewStage: "Warehouse"})
		assert.True(t, IsKind(err, KindNotFound))
	})
}

func TestGuardCompleteSubstage(t *testing.T) {
	g := NewGuard(catalog.Default())

	t.Run("first in group completes", func(t *testing.T) {
		st := newState(catalog.StageOnboarding, nil, nil)
		eff, err := g.Attempt(st, CompleteSubstage{SubstageID: "booking_confirmation"})
		require.NoError(t, err)
		assert.Equal(t, "booking_confirmation", eff.CompletedSubstageID)
		assert.False(t, eff.GroupComplete)
		assert.False(t, eff.StageChanged)
	})

	t.Run("skipping the predecessor is rejected", func(t *testing.T) {
		st := newState(catalog.StageOnboarding, nil, nil)
		_, err := g.Attempt(st, CompleteSubstage{SubstageID: "welcome_call"})
		require.True(t, IsKind(err, KindSkippedSubstage))
		assert.Contains(t, err.Error(), "booking_confirmation")
	})

	t.Run("already completed is rejected", func(t *testing.T) {
		st := newState(catalog.StageOnboarding, []string{"booking_confirmation"}, nil)
		_, err := g.Attempt(st, CompleteSubstage{SubstageID: "booking_confirmation"})
		assert.True(t, IsKind(err, KindAlreadyCompleted))
	})

	t.Run("unknown id is rejected", func(t *testing.T) {
		st := newState(catalog.StageOnboarding, nil, nil)
		_, err := g.Attempt(st, CompleteSubstage{SubstageID: "nonexistent"})
		assert.True(t, IsKind(err, KindUnknownSubstage))
	})

	t.Run("percentage sub-stage cannot be completed directly", func(t *testing.T) {
		st := newState(catalog.StageProduction, []string{"material_order"}, nil)
		_, err := g.Attempt(st, CompleteSubstage{SubstageID: "modular_production"})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("last in advancing group moves the stage", func(t *testing.T) {
		st := newState(catalog.StageOnboarding, []string{"booking_confirmation", "welcome_call"}, nil)
		eff, err := g.Attempt(st, CompleteSubstage{SubstageID: "requirement_briefing"})
		require.NoError(t, err)
		assert.True(t, eff.GroupComplete)
		assert.True(t, eff.StageChanged)
		assert.Equal(t, catalog.StageDesignFinalization, eff.NewStage)
	})

	t.Run("non-advancing group completion keeps the stage", func(t *testing.T) {
		st := newState(catalog.StageDesignFinalization, []string{"quotation_shared"}, nil)
		eff, err := g.Attempt(st, CompleteSubstage{SubstageID: "contract_signed"})
		require.NoError(t, err)
		assert.True(t, eff.GroupComplete)
		assert.False(t, eff.StageChanged)
	})
}

func TestGuardSetPercentage(t *testing.T) {
	g := NewGuard(catalog.Default())

	t.Run("increase succeeds", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, map[string]int{"modular_production": 20})
		eff, err := g.Attempt(st, SetPercentage{SubstageID: "modular_production", Value: 60})
		require.NoError(t, err)
		assert.True(t, eff.PercentageSet)
		assert.Equal(t, 60, eff.Percentage)
		assert.False(t, eff.AutoCompleted)
	})

	t.Run("decrease without override is rejected", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, map[string]int{"modular_production": 60})
		_, err := g.Attempt(st, SetPercentage{SubstageID: "modular_production", Value: 40})
		require.True(t, IsKind(err, KindForwardOnly))
		assert.Contains(t, err.Error(), "stored value is 60")
	})

	t.Run("decrease with override succeeds", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, map[string]int{"modular_production": 60})
		eff, err := g.Attempt(st, SetPercentage{SubstageID: "modular_production", Value: 40, Override: true})
		require.NoError(t, err)
		assert.Equal(t, 40, eff.Percentage)
		assert.False(t, eff.Reopened)
	})

	t.Run("out of range is rejected", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, nil)
		for _, v := range []int{-1, 101} {
			_, err := g.Attempt(st, SetPercentage{SubstageID: "modular_production", Value: v})
			assert.True(t, IsKind(err, KindOutOfRange), "value %d", v)
		}
	})

	t.Run("boolean sub-stage is rejected", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, nil)
		_, err := g.Attempt(st, SetPercentage{SubstageID: "quality_check", Value: 50})
		assert.True(t, IsKind(err, KindValidation))
	})

	t.Run("first progress respects the sequence gate", func(t *testing.T) {
		// site_work follows modular_production in the factory group.
		st := newState(catalog.StageProduction, nil, nil)
		_, err := g.Attempt(st, SetPercentage{SubstageID: "site_work", Value: 10})
		assert.True(t, IsKind(err, KindSkippedSubstage))
	})

	t.Run("reaching 100 auto-completes", func(t *testing.T) {
		st := newState(catalog.StageProduction, nil, map[string]int{"modular_production": 80})
		eff, err := g.Attempt(st, SetPercentage{SubstageID: "modular_production", Value: 100})
		require.NoError(t, err)
		assert.True(t, eff.AutoCompleted)
		assert.Equal(t, "modular_production", eff.CompletedSubstageID)
	})

	t.Run("auto-completion can advance the stage", func(t *testing.T) {
		st := newState(catalog.StageProduction,
			[]string{"quality_check"},
			map[string]int{"modular_production": 100, "site_work": 90})
		eff, err := g.Attempt(st, SetPercentage{SubstageID: "site_work", Value: 100})
		require.NoError(t, err)
		assert.True(t, eff.AutoCompleted)
		assert.True(t, eff.GroupComplete)
		assert.True(t, eff.StageChanged)
		assert.Equal(t, catalog.StageInstallation, eff.NewStage)
	})

	t.Run("override below 100 reopens a completed sub-stage", func(t *testing.T) {
		st := newState(catalog.StageProduction, []string{"modular_production"}, map[string]int{"modular_production": 100})
		eff, err := g.Attempt(st, SetPercentage{SubstageID: "modular_production", Value: 70, Override: true})
		require.NoError(t, err)
		assert.True(t, eff.Reopened)
		assert.Empty(t, eff.CompletedSubstageID)
	})
}

func TestAutoCompletionUnblocksSuccessor(t *testing.T) {
	g := NewGuard(catalog.Default())
	p := &model.Project{
		CurrentStage:        catalog.StageProduction,
		PercentageSubstages: map[string]int{},
	}

	// site_work is gated until modular_production completes.
	_, err := g.Attempt(StateFromProject(p), SetPercentage{SubstageID: "site_work", Value: 10})
	require.True(t, IsKind(err, KindSkippedSubstage))

	eff, err := g.Attempt(StateFromProject(p), SetPercentage{SubstageID: "modular_production", Value: 100})
	require.NoError(t, err)
	require.True(t, eff.AutoCompleted)
	ApplyToProject(p, eff)
	assert.Contains(t, p.CompletedSubstageIDs, "modular_production")

	_, err = g.Attempt(StateFromProject(p), SetPercentage{SubstageID: "site_work", Value: 10})
	assert.NoError(t, err)
}

func TestHoldBlocksUntilReactivated(t *testing.T) {
	g := NewGuard(catalog.Default())
	p := &model.Project{
		CurrentStage:        catalog.StageOnboarding,
		PercentageSubstages: map[string]int{},
		Hold:                model.HoldState{Status: model.HoldStatusHold},
	}

	req := CompleteSubstage{SubstageID: "booking_confirmation"}
	_, err := g.Attempt(StateFromProject(p), req)
	require.True(t, IsKind(err, KindOnHold))

	p.Hold.Status = model.HoldStatusActive
	eff, err := g.Attempt(StateFromProject(p), req)
	require.NoError(t, err)
	assert.Equal(t, "booking_confirmation", eff.CompletedSubstageID)
}

func TestApplyToProject(t *testing.T) {
	t.Run("completion and stage change", func(t *testing.T) {
		p := &model.Project{
			CurrentStage:         catalog.StageOnboarding,
			CompletedSubstageIDs: []string{"booking_confirmation", "welcome_call"},
			PercentageSubstages:  map[string]int{},
		}
		ApplyToProject(p, Effect{
			SubstageID:          "requirement_briefing",
			CompletedSubstageID: "requirement_briefing",
			StageChanged:        true,
			NewStage:            catalog.StageDesignFinalization,
		})
		assert.Contains(t, p.CompletedSubstageIDs, "requirement_briefing")
		assert.Equal(t, catalog.StageDesignFinalization, p.CurrentStage)
	})

	t.Run("reopen removes from the completed set", func(t *testing.T) {
		p := &model.Project{
			CurrentStage:         catalog.StageProduction,
			CompletedSubstageIDs: []string{"modular_production"},
			PercentageSubstages:  map[string]int{"modular_production": 100},
		}
		ApplyToProject(p, Effect{
			SubstageID:    "modular_production",
			PercentageSet: true,
			Percentage:    70,
			Reopened:      true,
		})
		assert.NotContains(t, p.CompletedSubstageIDs, "modular_production")
		assert.Equal(t, 70, p.PercentageSubstages["modular_production"])
	})
}
