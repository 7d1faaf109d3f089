package cohort

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/boardwave/academy/core"
)

// Cohort statuses
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

type Cohort struct {
	ID              int        `json:"id"`
	ProgrammeID     int        `json:"programme_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Status          string     `json:"status"`
	MaxParticipants int        `json:"max_participants,omitempty"`
	MentorID        int        `json:"mentor_id,omitempty"`
	CreatedAt       time.Time  `json:"created_at"` // UTC
	UpdatedAt       time.Time  `json:"updated_at"` // UTC
}

// CohortWithCounts carries a cohort plus its headline numbers for listings.
type CohortWithCounts struct {
	Cohort
	EnrolledCount int `json:"enrolled_count"`
	SessionCount  int `json:"session_count"`
}

type NewCohort struct {
	ProgrammeID     int        `json:"programme_id" validate:"required"`
	Name            string     `json:"name" validate:"required"`
	Description     string     `json:"description"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft active completed archived"`
	MaxParticipants int        `json:"max_participants" validate:"omitempty,min=0"`
	MentorID        int        `json:"mentor_id"`
}

func (nc *NewCohort) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	nc.Description = core.CleanString(nc.Description)
	if nc.Status == "" {
		nc.Status = StatusDraft
	}
	return validate.Struct(nc)
}

type UpdateCohort struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft active completed archived"`
	MaxParticipants *int       `json:"max_participants" validate:"omitempty,min=0"`
	MentorID        *int       `json:"mentor_id"`
}

func (uc *UpdateCohort) Validate(validate *validator.Validate) error {
	uc.Name = core.CleanString(uc.Name)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}
