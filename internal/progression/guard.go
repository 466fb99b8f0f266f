package progression

import (
	"errors"

	"craftcrm/internal/catalog"
	"craftcrm/internal/model"
)

// Effect describes what a successful transition changes. The guard only
// computes it; applying it (and the follow-on timeline recompute,
// collaborator assignment and activity append) is the caller's job, so
// the guard stays side-effect free.
type Effect struct {
	// Stage movement, either requested directly or triggered by a
	// stage-advancing group completing.
	StageChanged bool
	NewStage     string

	// Sub-stage touched by this transition. Empty for plain stage
	// changes.
	SubstageID string

	// Sub-stage completed by this transition, including percentage
	// auto-completion. Empty when none.
	CompletedSubstageID string
	AutoCompleted       bool

	// Percentage update.
	PercentageSet bool
	Percentage    int
	// A completed percentage sub-stage lowered below 100 by an override
	// leaves the completed set again.
	Reopened bool

	// Owning group of the touched sub-stage and whether it became fully
	// complete.
	GroupID       string
	GroupComplete bool
}

// Guard validates transition requests against the catalog and the
// entity's current state. It is the sole gatekeeper for progression
// mutation.
type Guard struct {
	catalog *catalog.Catalog
}

func NewGuard(c *catalog.Catalog) *Guard {
	return &Guard{catalog: c}
}

// Attempt validates a request and returns the resulting effect. State is
// never mutated; on rejection the returned error carries an ErrorKind.
func (g *Guard) Attempt(st State, req Request) (Effect, error) {
	if st.Blocked {
		return Effect{}, newError(KindOnHold, "entity is on hold; reactivate it before making changes")
	}

	switch r := req.(type) {
	case ChangeStage:
		return g.changeStage(st, r)
	case CompleteSubstage:
		return g.completeSubstage(st, r)
	case SetPercentage:
		return g.setPercentage(st, r)
	default:
		return Effect{}, newError(KindValidation, "unsupported transition request")
	}
}

func (g *Guard) changeStage(st State, r ChangeStage) (Effect, error) {
	curIdx, err := g.catalog.StageIndex(st.EntityType, st.Stage)
	if err != nil {
		return Effect{}, asNotFound(err)
	}
	newIdx, err := g.catalog.StageIndex(st.EntityType, r.NewStage)
	if err != nil {
		return Effect{}, asNotFound(err)
	}

	if newIdx < curIdx {
		return Effect{}, newError(KindBackwardMove,
			"cannot move stage backward from %q to %q", st.Stage, r.NewStage)
	}
	if newIdx == curIdx {
		return Effect{}, nil
	}

	return Effect{StageChanged: true, NewStage: r.NewStage}, nil
}

func (g *Guard) completeSubstage(st State, r CompleteSubstage) (Effect, error) {
	ss, err := g.catalog.SubStage(r.SubstageID)
	if err != nil {
		return Effect{}, newError(KindUnknownSubstage, "unknown sub-stage: %s", r.SubstageID)
	}
	if ss.Kind == catalog.KindPercentage {
		return Effect{}, newError(KindValidation,
			"sub-stage %s is percentage-tracked and completes only by reaching 100", ss.ID)
	}
	if IsComplete(st, ss.ID) {
		return Effect{}, newError(KindAlreadyCompleted, "sub-stage %s is already completed", ss.ID)
	}
	if err := g.checkPredecessor(st, ss.ID); err != nil {
		return Effect{}, err
	}

	group, err := g.catalog.GroupOf(ss.ID)
	if err != nil {
		return Effect{}, asNotFound(err)
	}

	eff := Effect{
		SubstageID:          ss.ID,
		CompletedSubstageID: ss.ID,
		GroupID:             group.ID,
		GroupComplete:       g.groupCompleteWith(st, group, ss.ID),
	}
	g.maybeAdvanceStage(st, group, &eff)
	return eff, nil
}

func (g *Guard) setPercentage(st State, r SetPercentage) (Effect, error) {
	ss, err := g.catalog.SubStage(r.SubstageID)
	if err != nil {
		return Effect{}, newError(KindUnknownSubstage, "unknown sub-stage: %s", r.SubstageID)
	}
	if ss.Kind != catalog.KindPercentage {
		return Effect{}, newError(KindValidation, "sub-stage %s is not percentage-tracked", ss.ID)
	}
	if r.Value < 0 || r.Value > 100 {
		return Effect{}, newError(KindOutOfRange,
			"percentage for sub-stage %s must be between 0 and 100, got %d", ss.ID, r.Value)
	}

	stored := Percentage(st, ss.ID)
	if r.Value < stored && !r.Override {
		return Effect{}, newError(KindForwardOnly,
			"percentage for sub-stage %s cannot decrease: stored value is %d, got %d", ss.ID, stored, r.Value)
	}
	// The sequence gate applies when progress first moves off zero.
	if stored == 0 && r.Value > 0 {
		if err := g.checkPredecessor(st, ss.ID); err != nil {
			return Effect{}, err
		}
	}

	group, err := g.catalog.GroupOf(ss.ID)
	if err != nil {
		return Effect{}, asNotFound(err)
	}

	eff := Effect{
		SubstageID:    ss.ID,
		PercentageSet: true,
		Percentage:    r.Value,
		GroupID:       group.ID,
	}

	already := IsComplete(st, ss.ID)
	switch {
	case r.Value == 100 && !already:
		eff.AutoCompleted = true
		eff.CompletedSubstageID = ss.ID
		eff.GroupComplete = g.groupCompleteWith(st, group, ss.ID)
		g.maybeAdvanceStage(st, group, &eff)
	case r.Value < 100 && already:
		// Only reachable with the override capability.
		eff.Reopened = true
	default:
		complete, _ := IsGroupComplete(g.catalog, st, group.ID)
		eff.GroupComplete = complete
	}

	return eff, nil
}

// checkPredecessor enforces sequence order inside a milestone group.
func (g *Guard) checkPredecessor(st State, substageID string) error {
	pred, ok, err := g.catalog.Predecessor(substageID)
	if err != nil {
		return asNotFound(err)
	}
	if !ok {
		return nil
	}
	if !IsComplete(st, pred.ID) {
		return newError(KindSkippedSubstage,
			"cannot complete sub-stage %s before its predecessor %s", substageID, pred.ID)
	}
	return nil
}

// groupCompleteWith reports whether the group is fully complete once the
// given sub-stage is counted as done.
func (g *Guard) groupCompleteWith(st State, group catalog.MilestoneGroup, completedID string) bool {
	for _, ss := range group.SubStages {
		if ss.ID == completedID {
			continue
		}
		if !IsComplete(st, ss.ID) {
			return false
		}
	}
	return true
}

// maybeAdvanceStage moves the entity forward when a stage-advancing
// group has just completed. The stage index never decreases.
func (g *Guard) maybeAdvanceStage(st State, group catalog.MilestoneGroup, eff *Effect) {
	if !eff.GroupComplete || !group.AdvancesStage {
		return
	}
	next, ok, err := g.catalog.NextStage(st.EntityType, group.Stage)
	if err != nil || !ok {
		return
	}
	curIdx, err := g.catalog.StageIndex(st.EntityType, st.Stage)
	if err != nil {
		return
	}
	nextIdx, err := g.catalog.StageIndex(st.EntityType, next)
	if err != nil {
		return
	}
	if nextIdx > curIdx {
		eff.StageChanged = true
		eff.NewStage = next
	}
}

// ApplyToProject applies a guard effect to the project model. The caller
// holds the row lock and persists the result.
func ApplyToProject(p *model.Project, eff Effect) {
	if eff.PercentageSet {
		if p.PercentageSubstages == nil {
			p.PercentageSubstages = make(map[string]int)
		}
		p.PercentageSubstages[eff.SubstageID] = eff.Percentage
	}
	if eff.CompletedSubstageID != "" && !p.IsSubstageCompleted(eff.CompletedSubstageID) {
		p.CompletedSubstageIDs = append(p.CompletedSubstageIDs, eff.CompletedSubstageID)
	}
	if eff.Reopened {
		kept := p.CompletedSubstageIDs[:0]
		for _, id := range p.CompletedSubstageIDs {
			if id != eff.SubstageID {
				kept = append(kept, id)
			}
		}
		p.CompletedSubstageIDs = kept
	}
	if eff.StageChanged {
		p.CurrentStage = eff.NewStage
	}
}

func asNotFound(err error) error {
	var nf *catalog.NotFoundError
	if errors.As(err, &nf) {
		return newError(KindNotFound, "%s", nf.Error())
	}
	return err
}
