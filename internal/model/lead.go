package model

import "time"

type Lead struct {
	ID         int    `json:"id"`
	ClientName string `json:"client_name"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Source     string `json:"source"`

	CurrentStage string    `json:"current_stage"`
	Hold         HoldState `json:"hold"`

	// Set once the lead is converted into a project.
	ProjectID *int `json:"project_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
