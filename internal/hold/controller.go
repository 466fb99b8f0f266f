// Package hold tracks the hold/active/deactivated gate. While an entity
// is not active, every progression mutation is rejected; hold changes
// themselves never touch stages or sub-stages.
package hold

import (
	"time"

	"craftcrm/internal/model"
	"craftcrm/internal/progression"
)

type Action string

const (
	ActionHold       Action = "hold"
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
)

// Request is a hold status change. Reason is mandatory for every action.
type Request struct {
	Action Action
	Reason string
}

type Controller struct{}

func NewController() *Controller {
	return &Controller{}
}

// IsBlocked reports whether progression mutations are suppressed.
func (c *Controller) IsBlocked(status model.HoldStatus) bool {
	return status != model.HoldStatusActive
}

// Apply validates a hold change and returns the new hold state.
// Permission policy: anyone may place an entity on hold; activate and
// deactivate need the manage-hold capability. The reason check runs
// before any state or permission check.
func (c *Controller) Apply(current model.HoldState, req Request, actorID int, canManage bool) (model.HoldState, error) {
	if req.Reason == "" {
		return current, &progression.Error{
			Kind:    progression.KindValidation,
			Message: "a reason is required for hold status changes",
		}
	}

	switch req.Action {
	case ActionHold:
		if current.Status == model.HoldStatusHold {
			return current, &progression.Error{
				Kind:    progression.KindValidation,
				Message: "entity is already on hold",
			}
		}
		if current.Status == model.HoldStatusDeactivated {
			return current, &progression.Error{
				Kind:    progression.KindValidation,
				Message: "a deactivated entity cannot be put on hold",
			}
		}
		return c.newState(model.HoldStatusHold, req.Reason, actorID), nil

	case ActionActivate:
		if !canManage {
			return current, &progression.Error{
				Kind:    progression.KindForbidden,
				Message: "activating an entity requires the hold management capability",
			}
		}
		if current.Status == model.HoldStatusActive {
			return current, &progression.Error{
				Kind:    progression.KindValidation,
				Message: "entity is already active",
			}
		}
		return c.newState(model.HoldStatusActive, req.Reason, actorID), nil

	case ActionDeactivate:
		if !canManage {
			return current, &progression.Error{
				Kind:    progression.KindForbidden,
				Message: "deactivating an entity requires the hold management capability",
			}
		}
		if current.Status == model.HoldStatusDeactivated {
			return current, &progression.Error{
				Kind:    progression.KindValidation,
				Message: "entity is already deactivated",
			}
		}
		if current.Status == model.HoldStatusActive {
			return current, &progression.Error{
				Kind:    progression.KindValidation,
				Message: "an active entity must be put on hold before deactivation",
			}
		}
		return c.newState(model.HoldStatusDeactivated, req.Reason, actorID), nil

	default:
		return current, &progression.Error{
			Kind:    progression.KindValidation,
			Message: "unknown hold action: " + string(req.Action),
		}
	}
}

func (c *Controller) newState(status model.HoldStatus, reason string, actorID int) model.HoldState {
	now := time.Now()
	return model.HoldState{
		Status:    status,
		Reason:    reason,
		ChangedBy: &actorID,
		ChangedAt: &now,
	}
}
