package model

import "time"

// HoldStatus gates progression: anything other than Active blocks every
// stage/sub-stage mutation until the entity is reactivated.
type HoldStatus string

const (
	HoldStatusActive      HoldStatus = "active"
	HoldStatusHold        HoldStatus = "hold"
	HoldStatusDeactivated HoldStatus = "deactivated"
)

// HoldState is the hold status plus its audit trail.
type HoldState struct {
	Status    HoldStatus `json:"status"`
	Reason    string     `json:"reason,omitempty"`
	ChangedBy *int       `json:"changed_by,omitempty"`
	ChangedAt *time.Time `json:"changed_at,omitempty"`
}
