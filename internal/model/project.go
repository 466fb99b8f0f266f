package model

import "time"

type Project struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	ClientName string `json:"client_name"`
	LeadID     *int   `json:"lead_id,omitempty"`

	CurrentStage         string         `json:"current_stage"`
	CompletedSubstageIDs []string       `json:"completed_substage_ids"`
	PercentageSubstages  map[string]int `json:"percentage_substages"`

	Hold HoldState `json:"hold"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsSubstageCompleted reports whether the sub-stage id is in the
// completed set.
func (p *Project) IsSubstageCompleted(id string) bool {
	for _, c := range p.CompletedSubstageIDs {
		if c == id {
			return true
		}
	}
	return false
}
