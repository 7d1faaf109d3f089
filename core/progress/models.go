package progress

import "time"

// Progress statuses
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusSkipped    = "skipped"
)

// Tracking is a user's progress through one module; unique per
// (user_id, module_id).
type Tracking struct {
	ID               int        `json:"id"`
	UserID           int        `json:"user_id"`
	ModuleID         int        `json:"module_id"`
	Status           string     `json:"status"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	TimeSpentMinutes int        `json:"time_spent_minutes"`
	LastAccessedAt   *time.Time `json:"last_accessed_at,omitempty"`
}

// UserSummary aggregates a user's progress over all tracked modules.
type UserSummary struct {
	TotalModules     int `json:"total_modules"`
	CompletedModules int `json:"completed_modules"`
	InProgress       int `json:"in_progress"`
	TimeSpentMinutes int `json:"time_spent_minutes"`
}

// CourseCompletionCounts feeds the completion percentage derivation.
type CourseCompletionCounts struct {
	TotalModules     int
	CompletedModules int
}
