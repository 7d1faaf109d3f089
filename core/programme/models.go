package programme

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/boardwave/academy/core"
)

// Programme statuses
const (
	StatusDraft     = "draft"
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusArchived  = "archived"
)

type Programme struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description,omitempty"`
	Type            string     `json:"programme_type,omitempty"`
	StartDate       *time.Time `json:"start_date,omitempty"`
	EndDate         *time.Time `json:"end_date,omitempty"`
	Status          string     `json:"status"`
	MaxParticipants int        `json:"max_participants,omitempty"`
	CreatedBy       int        `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"` // UTC
	UpdatedAt       time.Time  `json:"updated_at"` // UTC
}

type NewProgramme struct {
	Name            string     `json:"name" validate:"required"`
	Description     string     `json:"description"`
	Type            string     `json:"programme_type" validate:"omitempty,oneof=breakout mentoring_day other"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft active completed archived"`
	MaxParticipants int        `json:"max_participants" validate:"omitempty,min=0"`
}

func (np *NewProgramme) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Description = core.CleanString(np.Description)
	if np.Status == "" {
		np.Status = StatusDraft
	}
	return validate.Struct(np)
}

type UpdateProgramme struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Type            string     `json:"programme_type" validate:"omitempty,oneof=breakout mentoring_day other"`
	StartDate       *time.Time `json:"start_date"`
	EndDate         *time.Time `json:"end_date"`
	Status          string     `json:"status" validate:"omitempty,oneof=draft active completed archived"`
	MaxParticipants *int       `json:"max_participants" validate:"omitempty,min=0"`
}

func (up *UpdateProgramme) Validate(validate *validator.Validate) error {
	up.Name = core.CleanString(up.Name)
	up.Description = core.CleanString(up.Description)
	return validate.Struct(up)
}
