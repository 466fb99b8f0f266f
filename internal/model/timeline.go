package model

import "time"

// Timeline entry status.
const (
	TimelineCompleted = "completed"
	TimelinePending   = "pending"
	TimelineDelayed   = "delayed"
)

// TimelineEntry projects one sub-stage onto the calendar. ExpectedDate is
// derived from cumulative TAT and recomputed on stage change;
// CompletedDate is write-once history.
type TimelineEntry struct {
	ID            int        `json:"id"`
	ProjectID     int        `json:"project_id"`
	SubstageID    string     `json:"substage_id"`
	Title         string     `json:"title"`
	StageRef      string     `json:"stage_ref"`
	ExpectedDate  time.Time  `json:"expected_date"`
	CompletedDate *time.Time `json:"completed_date,omitempty"`
	Status        string     `json:"status"`
}
