// Package activity builds the append-only log entries the engine emits
// for every state change. Entries are created here, persisted by the
// activity repository inside the transition's transaction, and never
// mutated afterwards.
package activity

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"craftcrm/internal/model"
	"craftcrm/pkg/rbac"
)

func newEntry(entityType string, entityID int, typ, message string, actor rbac.Actor, metadata any) model.ActivityEntry {
	var raw json.RawMessage
	if metadata != nil {
		raw, _ = json.Marshal(metadata)
	}
	return model.ActivityEntry{
		ID:         uuid.NewString(),
		EntityType: entityType,
		EntityID:   entityID,
		Type:       typ,
		Message:    message,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Metadata:   raw,
		CreatedAt:  time.Now(),
	}
}

// StageChange records a stage transition.
func StageChange(entityType string, entityID int, from, to string, actor rbac.Actor) model.ActivityEntry {
	msg := fmt.Sprintf("Stage changed from %q to %q", from, to)
	if from == "" {
		msg = fmt.Sprintf("Entered stage %q", to)
	}
	return newEntry(entityType, entityID, model.ActivityStageChange, msg, actor, map[string]string{
		"from": from,
		"to":   to,
	})
}

// SubstageComplete records a sub-stage completion, manual or automatic.
func SubstageComplete(entityID int, substageID, label string, auto bool, actor rbac.Actor) model.ActivityEntry {
	msg := fmt.Sprintf("Sub-stage %q completed", label)
	if auto {
		msg = fmt.Sprintf("Sub-stage %q reached 100%% and completed automatically", label)
	}
	return newEntry(model.EntityProject, entityID, model.ActivitySubstageComplete, msg, actor, map[string]any{
		"substage_id":    substageID,
		"auto_completed": auto,
	})
}

// PercentageUpdate records a percentage change that did not complete the
// sub-stage.
func PercentageUpdate(entityID int, substageID, label string, value int, actor rbac.Actor) model.ActivityEntry {
	msg := fmt.Sprintf("Sub-stage %q progress set to %d%%", label, value)
	return newEntry(model.EntityProject, entityID, model.ActivityPercentageUpdate, msg, actor, map[string]any{
		"substage_id": substageID,
		"percentage":  value,
	})
}

// HoldChange records a hold status transition.
func HoldChange(entityType string, entityID int, status model.HoldStatus, reason string, actor rbac.Actor) model.ActivityEntry {
	msg := fmt.Sprintf("Hold status changed to %q: %s", status, reason)
	return newEntry(entityType, entityID, model.ActivityHoldChange, msg, actor, map[string]string{
		"status": string(status),
		"reason": reason,
	})
}

// CollaboratorAdded records a collaborator attachment.
func CollaboratorAdded(entityType string, entityID int, user model.User, actor rbac.Actor) model.ActivityEntry {
	msg := fmt.Sprintf("%s added as %s collaborator", user.Name, user.Role)
	return newEntry(entityType, entityID, model.ActivityCollaboratorAdded, msg, actor, map[string]any{
		"user_id": user.ID,
		"role":    user.Role,
	})
}

// LeadConverted records a lead's conversion into a project. The entry
// attaches to the lead; the project gets its own creation entry.
func LeadConverted(leadID, projectID int, actor rbac.Actor) model.ActivityEntry {
	msg := fmt.Sprintf("Lead converted to project #%d", projectID)
	return newEntry(model.EntityLead, leadID, model.ActivityLeadConverted, msg, actor, map[string]int{
		"project_id": projectID,
	})
}

// Comment records a user comment.
func Comment(entityType string, entityID int, message string, actor rbac.Actor) model.ActivityEntry {
	return newEntry(entityType, entityID, model.ActivityComment, message, actor, nil)
}
