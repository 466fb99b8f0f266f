package progression

import (
	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
)

// State is the progression-relevant snapshot of one entity. The guard
// and tracker are pure functions over a State; callers build it from the
// locked row and apply the returned Effect back.
type State struct {
	EntityType  catalog.EntityType
	Stage       string
	Completed   map[string]bool
	Percentages map[string]int
	Blocked     bool
}

// StateFromProject snapshots a project for guard evaluation.
func StateFromProject(p *model.Project) State {
	completed := make(map[string]bool, len(p.CompletedSubstageIDs))
	for _, id := range p.CompletedSubstageIDs {
		completed[id] = true
	}
	percentages := make(map[string]int, len(p.PercentageSubstages))
	for id, v := range p.PercentageSubstages {
		percentages[id] = v
	}
	return State{
		EntityType:  catalog.EntityTypeProject,
		Stage:       p.CurrentStage,
		Completed:   completed,
		Percentages: percentages,
		Blocked:     p.Hold.Status != model.HoldStatusActive,
	}
}

// StateFromLead snapshots a lead. Leads carry no sub-stages; only stage
// changes and holds apply.
func StateFromLead(l *model.Lead) State {
	return State{
		EntityType: catalog.EntityTypeLead,
		Stage:      l.CurrentStage,
		Blocked:    l.Hold.Status != model.HoldStatusActive,
	}
}

// IsComplete reports whether a sub-stage counts as complete: present in
// the completed set, or a percentage sub-stage at 100.
func IsComplete(st State, id string) bool {
	if st.Completed[id] {
		return true
	}
	return st.Percentages[id] == 100
}

// Percentage returns the stored percentage for a sub-stage, zero when
// never set.
func Percentage(st State, id string) int {
	return st.Percentages[id]
}

// IsGroupComplete reports whether every sub-stage of the group is
// complete.
func IsGroupComplete(c *catalog.Catalog, st State, groupID string) (bool, error) {
	g, err := c.Group(groupID)
	if err != nil {
		return false, err
	}
	for _, ss := range g.SubStages {
		if !IsComplete(st, ss.ID) {
			return false, nil
		}
	}
	return true, nil
}

// NextEligible returns the first sub-stage in the group's sequence that
// is not yet complete, or false when the group is fully complete.
func NextEligible(c *catalog.Catalog, st State, groupID string) (catalog.SubStage, bool, error) {
	g, err := c.Group(groupID)
	if err != nil {
		return catalog.SubStage{}, false, err
	}
	for _, ss := range g.SubStages {
		if !IsComplete(st, ss.ID) {
			return ss, true, nil
		}
	}
	return catalog.SubStage{}, false, nil
}
