package enrollment

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// Enrollment statuses
const (
	StatusEnrolled   = "enrolled"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusDropped    = "dropped"
	StatusWaitlist   = "waitlist"
)

type Enrollment struct {
	ID                   int        `json:"id"`
	CohortID             int        `json:"cohort_id"`
	UserID               int        `json:"user_id"`
	Status               string     `json:"enrollment_status"`
	EnrollmentDate       time.Time  `json:"enrollment_date"` // UTC
	CompletionDate       *time.Time `json:"completion_date,omitempty"`
	CompletionPercentage int        `json:"completion_percentage"`
	Notes                string     `json:"notes,omitempty"`
}

// NewEnrollment contains information needed to enroll one user in a cohort.
type NewEnrollment struct {
	CohortID int    `json:"cohort_id" validate:"required,min=1"`
	UserID   int    `json:"user_id" validate:"required,min=1"`
	Status   string `json:"enrollment_status" validate:"omitempty,oneof=enrolled in_progress completed dropped waitlist"`
	Notes    string `json:"notes"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	if ne.Status == "" {
		ne.Status = StatusEnrolled
	}
	return validate.Struct(ne)
}

// UpdateEnrollment defines what may be modified on an existing Enrollment.
type UpdateEnrollment struct {
	Status               string     `json:"enrollment_status" validate:"omitempty,oneof=enrolled in_progress completed dropped waitlist"`
	CompletionDate       *time.Time `json:"completion_date"`
	CompletionPercentage *int       `json:"completion_percentage" validate:"omitempty,min=0,max=100"`
	Notes                string     `json:"notes"`
}

func (ue *UpdateEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ue)
}

// BulkEnrollment is the request to enroll a set of users in one cohort.
type BulkEnrollment struct {
	CohortID int   `json:"cohort_id" validate:"required,min=1"`
	UserIDs  []int `json:"user_ids" validate:"required,min=1,dive,min=1"`
}

func (be *BulkEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(be)
}

// BulkEnrollmentResult reports which enrollments were actually created.
// Enrolled < len(requested) signals already-enrolled users were skipped,
// not that anything failed.
type BulkEnrollmentResult struct {
	Enrolled    int          `json:"enrolled"`
	Enrollments []Enrollment `json:"enrollments"`
}
