package mq

// Routing keys for activity events published through the outbox. A
// notification service may bind to these; the engine only records them.
const (
	RoutingStageChanged      = "activity.stage_changed"
	RoutingSubstageCompleted = "activity.substage_completed"
	RoutingHoldChanged       = "activity.hold_changed"
	RoutingCollaboratorAdded = "activity.collaborator_added"
	RoutingComment           = "activity.comment"
	RoutingLeadConverted     = "activity.lead_converted"
)

type StageChangedPayload struct {
	EntityType string `json:"entity_type"`
	EntityID   int    `json:"entity_id"`
	FromStage  string `json:"from_stage"`
	ToStage    string `json:"to_stage"`
	ActorID    int    `json:"actor_id"`
}

type SubstageCompletedPayload struct {
	ProjectID     int    `json:"project_id"`
	SubstageID    string `json:"substage_id"`
	AutoCompleted bool   `json:"auto_completed"`
	ActorID       int    `json:"actor_id"`
}

type HoldChangedPayload struct {
	EntityType string `json:"entity_type"`
	EntityID   int    `json:"entity_id"`
	Status     string `json:"status"`
	Reason     string `json:"reason"`
	ActorID    int    `json:"actor_id"`
}

type CollaboratorAddedPayload struct {
	EntityType string `json:"entity_type"`
	EntityID   int    `json:"entity_id"`
	UserID     int    `json:"user_id"`
	Role       string `json:"role"`
	ActorID    int    `json:"actor_id"`
}

type LeadConvertedPayload struct {
	LeadID    int `json:"lead_id"`
	ProjectID int `json:"project_id"`
	ActorID   int `json:"actor_id"`
}

type CommentPayload struct {
	EntityType string `json:"entity_type"`
	EntityID   int    `json:"entity_id"`
	Message    string `json:"message"`
	ActorID    int    `json:"actor_id"`
}
