package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
)

var baseTime = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func entryByID(t *testing.T, entries []model.TimelineEntry, id string) model.TimelineEntry {
	t.Helper()
	for _, e := range entries {
		if e.SubstageID == id {
			return e
		}
	}
	t.Fatalf("entry %s not found", id)
	return model.TimelineEntry{}
}

func TestGenerateAtFirstStage(t *testing.T) {
	g := NewGenerator(catalog.Default()).WithClock(fixedClock(baseTime))

	entries, err := g.Generate(catalog.EntityTypeProject, catalog.StageOnboarding, baseTime)
	require.NoError(t, err)
	require.Len(t, entries, 19)

	// Expected dates accumulate TAT across the whole traversal.
	assert.Equal(t, baseTime.AddDate(0, 0, 1), entryByID(t, entries, "booking_confirmation").ExpectedDate)
	assert.Equal(t, baseTime.AddDate(0, 0, 3), entryByID(t, entries, "welcome_call").ExpectedDate)
	assert.Equal(t, baseTime.AddDate(0, 0, 10), entryByID(t, entries, "site_measurement").ExpectedDate)
	assert.Equal(t, baseTime.AddDate(0, 0, 58), entryByID(t, entries, "modular_production").ExpectedDate)
	assert.Equal(t, baseTime.AddDate(0, 0, 95), entryByID(t, entries, "project_handover").ExpectedDate)

	// First sub-stage of the current stage is completed, everything else
	// is still in the future.
	assert.Equal(t, model.TimelineCompleted, entryByID(t, entries, "booking_confirmation").Status)
	for _, e := range entries[1:] {
		assert.Equal(t, model.TimelinePending, e.Status, e.SubstageID)
		assert.Nil(t, e.CompletedDate, e.SubstageID)
	}
}

func TestGenerateAtLaterStage(t *testing.T) {
	g := NewGenerator(catalog.Default()).WithClock(fixedClock(baseTime))

	entries, err := g.Generate(catalog.EntityTypeProject, catalog.StageProduction, baseTime)
	require.NoError(t, err)

	// Passed stages are completed at their expected dates.
	sm := entryByID(t, entries, "site_measurement")
	assert.Equal(t, model.TimelineCompleted, sm.Status)
	require.NotNil(t, sm.CompletedDate)
	assert.Equal(t, sm.ExpectedDate, *sm.CompletedDate)

	assert.Equal(t, model.TimelineCompleted, entryByID(t, entries, "material_order").Status)
	assert.Equal(t, model.TimelinePending, entryByID(t, entries, "modular_production").Status)
	assert.Equal(t, model.TimelinePending, entryByID(t, entries, "material_dispatch").Status)
}

func TestGenerateMarksElapsedEntriesDelayed(t *testing.T) {
	// Clock twenty days past creation: everything expected before day 20
	// and not completed is delayed.
	g := NewGenerator(catalog.Default()).WithClock(fixedClock(baseTime.AddDate(0, 0, 20)))

	entries, err := g.Generate(catalog.EntityTypeProject, catalog.StageOnboarding, baseTime)
	require.NoError(t, err)

	assert.Equal(t, model.TimelineDelayed, entryByID(t, entries, "welcome_call").Status)
	assert.Equal(t, model.TimelineDelayed, entryByID(t, entries, "design_meeting_1").Status)
	assert.Equal(t, model.TimelinePending, entryByID(t, entries, "design_meeting_2").Status)
}

func TestRecomputeOnStageChange(t *testing.T) {
	now := baseTime.AddDate(0, 0, 5)
	g := NewGenerator(catalog.Default()).WithClock(fixedClock(now))

	entries, err := g.Generate(catalog.EntityTypeProject, catalog.StageOnboarding, baseTime)
	require.NoError(t, err)

	recomputed, err := g.RecomputeOnStageChange(entries, catalog.EntityTypeProject, catalog.StageDesignFinalization)
	require.NoError(t, err)

	// Onboarding entries become completed, stamped now.
	wc := entryByID(t, recomputed, "welcome_call")
	assert.Equal(t, model.TimelineCompleted, wc.Status)
	require.NotNil(t, wc.CompletedDate)
	assert.Equal(t, now, *wc.CompletedDate)

	// Current and later stages stay open.
	assert.Equal(t, model.TimelinePending, entryByID(t, recomputed, "site_measurement").Status)
	assert.Equal(t, model.TimelinePending, entryByID(t, recomputed, "modular_production").Status)
}

func TestRecomputeIsWriteOnceAndIdempotent(t *testing.T) {
	now := baseTime.AddDate(0, 0, 5)
	g := NewGenerator(catalog.Default()).WithClock(fixedClock(now))

	entries, err := g.Generate(catalog.EntityTypeProject, catalog.StageOnboarding, baseTime)
	require.NoError(t, err)

	first, err := g.RecomputeOnStageChange(entries, catalog.EntityTypeProject, catalog.StageDesignFinalization)
	require.NoError(t, err)

	// A later run with a later clock must not move recorded completion
	// dates.
	later := NewGenerator(catalog.Default()).WithClock(fixedClock(now.AddDate(0, 0, 30)))
	second, err := later.RecomputeOnStageChange(first, catalog.EntityTypeProject, catalog.StageDesignFinalization)
	require.NoError(t, err)

	wcFirst := entryByID(t, first, "welcome_call")
	wcSecond := entryByID(t, second, "welcome_call")
	require.NotNil(t, wcSecond.CompletedDate)
	assert.Equal(t, *wcFirst.CompletedDate, *wcSecond.CompletedDate)

	// Same clock, same input, same output.
	third, err := later.RecomputeOnStageChange(second, catalog.EntityTypeProject, catalog.StageDesignFinalization)
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestRecomputeClearsStaleCompletionBeyondStage(t *testing.T) {
	g := NewGenerator(catalog.Default()).WithClock(fixedClock(baseTime))

	entries, err := g.Generate(catalog.EntityTypeProject, catalog.StageProduction, baseTime)
	require.NoError(t, err)

	// Recomputing for the same stage keeps everything stable, while a
	// stale completion mark on a future stage entry is cleared.
	idx := -1
	for i, e := range entries {
		if e.SubstageID == "final_cleaning" {
			idx = i
		}
	}
	require.NotEqual(t, -1, idx)
	stale := baseTime
	entries[idx].Status = model.TimelineCompleted
	entries[idx].CompletedDate = &stale

	recomputed, err := g.RecomputeOnStageChange(entries, catalog.EntityTypeProject, catalog.StageProduction)
	require.NoError(t, err)

	fc := entryByID(t, recomputed, "final_cleaning")
	assert.Nil(t, fc.CompletedDate)
	assert.Equal(t, model.TimelinePending, fc.Status)
}
