package model

import (
	"encoding/json"
	"time"
)

// Activity entry types.
const (
	ActivityStageChange       = "stage_change"
	ActivitySubstageComplete  = "substage_complete"
	ActivityPercentageUpdate  = "percentage_update"
	ActivityHoldChange        = "hold_change"
	ActivityCollaboratorAdded = "collaborator_added"
	ActivityComment           = "comment"
	ActivityLeadConverted     = "lead_converted"
)

// Entity types an activity can attach to.
const (
	EntityProject = "project"
	EntityLead    = "lead"
)

// ActivityEntry is an append-only record of a state change or comment.
// Entries are created by the engine and never mutated or deleted.
type ActivityEntry struct {
	ID         string          `json:"id"`
	EntityType string          `json:"entity_type"`
	EntityID   int             `json:"entity_id"`
	Type       string          `json:"type"`
	Message    string          `json:"message"`
	ActorID    int             `json:"actor_id"`
	ActorName  string          `json:"actor_name"`
	ActorRole  string          `json:"actor_role"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}
