// Package timeline projects the stage catalog onto the calendar.
// Expected dates accumulate TAT across the whole catalog traversal, so a
// delay in one stage pushes every downstream date; the plan is never
// re-baselined off actual completion dates.
package timeline

import (
	"time"

	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
)

type Generator struct {
	catalog *catalog.Catalog
	now     func() time.Time
}

func NewGenerator(c *catalog.Catalog) *Generator {
	return &Generator{catalog: c, now: time.Now}
}

// WithClock swaps the time source, used by tests.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// Generate builds the full ordered timeline for an entity at the given
// stage. Sub-stages of stages already passed are completed at their
// expected date; the first sub-stage of the current stage is completed
// (its completion produced the transition into the stage); everything
// else is pending, or delayed when its expected date has already
// elapsed.
func (g *Generator) Generate(et catalog.EntityType, currentStage string, createdAt time.Time) ([]model.TimelineEntry, error) {
	stages, err := g.catalog.StagesFor(et)
	if err != nil {
		return nil, err
	}
	curIdx, err := g.catalog.StageIndex(et, currentStage)
	if err != nil {
		return nil, err
	}

	now := g.now()
	cumulative := 0
	var entries []model.TimelineEntry

	for stageIdx, stage := range stages {
		groups, err := g.catalog.GroupsFor(stage)
		if err != nil {
			return nil, err
		}
		firstInStage := true
		for _, group := range groups {
			for _, ss := range group.SubStages {
				cumulative += g.catalog.TATDays(ss.ID)
				expected := createdAt.AddDate(0, 0, cumulative)

				entry := model.TimelineEntry{
					SubstageID:   ss.ID,
					Title:        ss.Label,
					StageRef:     stage,
					ExpectedDate: expected,
				}

				switch {
				case stageIdx < curIdx:
					entry.Status = model.TimelineCompleted
					completed := expected
					entry.CompletedDate = &completed
				case stageIdx == curIdx && firstInStage:
					entry.Status = model.TimelineCompleted
					completed := expected
					entry.CompletedDate = &completed
				default:
					if expected.Before(now) {
						entry.Status = model.TimelineDelayed
					} else {
						entry.Status = model.TimelinePending
					}
				}

				entries = append(entries, entry)
				firstInStage = false
			}
		}
	}

	return entries, nil
}

// RecomputeOnStageChange re-derives entry statuses after a stage change.
// Entries of passed stages become completed, taking the current time as
// completion date only when none was ever recorded; completed dates are
// write-once and never overwritten. Entries beyond the new stage lose
// any stale completion date. Idempotent: running it twice over the same
// input yields the same output.
func (g *Generator) RecomputeOnStageChange(entries []model.TimelineEntry, et catalog.EntityType, newStage string) ([]model.TimelineEntry, error) {
	newIdx, err := g.catalog.StageIndex(et, newStage)
	if err != nil {
		return nil, err
	}

	now := g.now()
	out := make([]model.TimelineEntry, len(entries))

	for i, entry := range entries {
		stageIdx, err := g.catalog.StageIndex(et, entry.StageRef)
		if err != nil {
			return nil, err
		}

		switch {
		case stageIdx < newIdx:
			entry.Status = model.TimelineCompleted
			if entry.CompletedDate == nil {
				completed := now
				entry.CompletedDate = &completed
			}
		case stageIdx == newIdx:
			if entry.Status != model.TimelineCompleted && entry.CompletedDate == nil {
				if entry.ExpectedDate.Before(now) {
					entry.Status = model.TimelineDelayed
				} else {
					entry.Status = model.TimelinePending
				}
			} else {
				entry.Status = model.TimelineCompleted
			}
		default:
			entry.CompletedDate = nil
			if entry.ExpectedDate.Before(now) {
				entry.Status = model.TimelineDelayed
			} else {
				entry.Status = model.TimelinePending
			}
		}

		out[i] = entry
	}

	return out, nil
}
