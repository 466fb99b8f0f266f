// Package catalog holds the fixed stage and milestone configuration for
// each entity type. A Catalog is built once at startup and read
// concurrently; it is never mutated afterwards.
package catalog

import "fmt"

type EntityType string

const (
	EntityTypeLead    EntityType = "lead"
	EntityTypeProject EntityType = "project"
)

type SubStageKind string

const (
	KindBoolean    SubStageKind = "boolean"
	KindPercentage SubStageKind = "percentage"
)

// DefaultTATDays is used when a sub-stage does not declare a TAT.
const DefaultTATDays = 3

// SubStage is the smallest unit of progress. IDs are unique across the
// whole catalog.
type SubStage struct {
	ID      string       `yaml:"id"`
	Label   string       `yaml:"label"`
	Kind    SubStageKind `yaml:"kind"`
	TATDays int          `yaml:"tat_days"`
}

// MilestoneGroup is an ordered cluster of sub-stages belonging to one
// stage. Sequence order is the dependency order: sub-stage i requires
// sub-stage i-1 complete. AdvancesStage marks groups whose completion
// moves the entity to the next stage.
type MilestoneGroup struct {
	ID            string     `yaml:"id"`
	Name          string     `yaml:"name"`
	Stage         string     `yaml:"stage"`
	AdvancesStage bool       `yaml:"advances_stage"`
	SubStages     []SubStage `yaml:"substages"`
}

// Definition is the raw, hand-authored catalog input.
type Definition struct {
	Stages map[EntityType][]string `yaml:"stages"`
	Groups []MilestoneGroup        `yaml:"groups"`
}

// NotFoundError reports an unknown stage, group or sub-stage lookup.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// Catalog is the validated, indexed form of a Definition.
type Catalog struct {
	stages        map[EntityType][]string
	stageIndex    map[EntityType]map[string]int
	groupsByStage map[string][]MilestoneGroup
	groups        map[string]MilestoneGroup
	substages     map[string]SubStage
	groupOf       map[string]string
	prev          map[string]string
}

// New validates a definition and builds the lookup indexes.
func New(def Definition) (*Catalog, error) {
	c := &Catalog{
		stages:        make(map[EntityType][]string),
		stageIndex:    make(map[EntityType]map[string]int),
		groupsByStage: make(map[string][]MilestoneGroup),
		groups:        make(map[string]MilestoneGroup),
		substages:     make(map[string]SubStage),
		groupOf:       make(map[string]string),
		prev:          make(map[string]string),
	}

	knownStages := make(map[string]bool)
	for et, stages := range def.Stages {
		if len(stages) == 0 {
			return nil, fmt.Errorf("entity type %q has no stages", et)
		}
		idx := make(map[string]int, len(stages))
		for i, s := range stages {
			if _, dup := idx[s]; dup {
				return nil, fmt.Errorf("duplicate stage %q for entity type %q", s, et)
			}
			if knownStages[s] {
				return nil, fmt.Errorf("stage %q defined for more than one entity type", s)
			}
			idx[s] = i
			knownStages[s] = true
		}
		c.stages[et] = append([]string(nil), stages...)
		c.stageIndex[et] = idx
	}

	for _, g := range def.Groups {
		if !knownStages[g.Stage] {
			return nil, fmt.Errorf("group %q references unknown stage %q", g.ID, g.Stage)
		}
		if _, dup := c.groups[g.ID]; dup {
			return nil, fmt.Errorf("duplicate group id %q", g.ID)
		}
		if len(g.SubStages) == 0 {
			return nil, fmt.Errorf("group %q has no sub-stages", g.ID)
		}
		for i, ss := range g.SubStages {
			if ss.Kind != KindBoolean && ss.Kind != KindPercentage {
				return nil, fmt.Errorf("sub-stage %q has invalid kind %q", ss.ID, ss.Kind)
			}
			if _, dup := c.substages[ss.ID]; dup {
				return nil, fmt.Errorf("duplicate sub-stage id %q", ss.ID)
			}
			c.substages[ss.ID] = ss
			c.groupOf[ss.ID] = g.ID
			if i == 0 {
				c.prev[ss.ID] = ""
			} else {
				c.prev[ss.ID] = g.SubStages[i-1].ID
			}
		}
		c.groups[g.ID] = g
		c.groupsByStage[g.Stage] = append(c.groupsByStage[g.Stage], g)
	}

	return c, nil
}

// StagesFor returns the ordered stage list for an entity type.
func (c *Catalog) StagesFor(et EntityType) ([]string, error) {
	stages, ok := c.stages[et]
	if !ok {
		return nil, &NotFoundError{Resource: "entity type", ID: string(et)}
	}
	return stages, nil
}

// StageIndex returns the position of a stage in the entity's total order.
func (c *Catalog) StageIndex(et EntityType, stage string) (int, error) {
	idx, ok := c.stageIndex[et]
	if !ok {
		return 0, &NotFoundError{Resource: "entity type", ID: string(et)}
	}
	i, ok := idx[stage]
	if !ok {
		return 0, &NotFoundError{Resource: "stage", ID: stage}
	}
	return i, nil
}

// FirstStage returns the entity type's initial stage.
func (c *Catalog) FirstStage(et EntityType) (string, error) {
	stages, err := c.StagesFor(et)
	if err != nil {
		return "", err
	}
	return stages[0], nil
}

// NextStage returns the stage following the given one, or false when the
// given stage is last.
func (c *Catalog) NextStage(et EntityType, stage string) (string, bool, error) {
	i, err := c.StageIndex(et, stage)
	if err != nil {
		return "", false, err
	}
	stages := c.stages[et]
	if i+1 >= len(stages) {
		return "", false, nil
	}
	return stages[i+1], true, nil
}

// GroupsFor returns the ordered milestone groups of a stage. A stage with
// no groups (every lead stage) yields an empty slice.
func (c *Catalog) GroupsFor(stage string) ([]MilestoneGroup, error) {
	known := false
	for _, idx := range c.stageIndex {
		if _, ok := idx[stage]; ok {
			known = true
			break
		}
	}
	if !known {
		return nil, &NotFoundError{Resource: "stage", ID: stage}
	}
	return c.groupsByStage[stage], nil
}

// Group returns a milestone group by id.
func (c *Catalog) Group(id string) (MilestoneGroup, error) {
	g, ok := c.groups[id]
	if !ok {
		return MilestoneGroup{}, &NotFoundError{Resource: "group", ID: id}
	}
	return g, nil
}

// SubStage returns a sub-stage definition by id.
func (c *Catalog) SubStage(id string) (SubStage, error) {
	ss, ok := c.substages[id]
	if !ok {
		return SubStage{}, &NotFoundError{Resource: "sub-stage", ID: id}
	}
	return ss, nil
}

// GroupOf returns the milestone group owning a sub-stage.
func (c *Catalog) GroupOf(substageID string) (MilestoneGroup, error) {
	gid, ok := c.groupOf[substageID]
	if !ok {
		return MilestoneGroup{}, &NotFoundError{Resource: "sub-stage", ID: substageID}
	}
	return c.groups[gid], nil
}

// Predecessor returns the sub-stage immediately before the given one in
// its group's sequence. ok is false for a group's first entry.
func (c *Catalog) Predecessor(substageID string) (SubStage, bool, error) {
	prevID, known := c.prev[substageID]
	if !known {
		return SubStage{}, false, &NotFoundError{Resource: "sub-stage", ID: substageID}
	}
	if prevID == "" {
		return SubStage{}, false, nil
	}
	return c.substages[prevID], true, nil
}

// TATDays returns the planned duration for a sub-stage, falling back to
// DefaultTATDays when none is configured.
func (c *Catalog) TATDays(substageID string) int {
	ss, ok := c.substages[substageID]
	if !ok || ss.TATDays <= 0 {
		return DefaultTATDays
	}
	return ss.TATDays
}
