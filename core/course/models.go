package course

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/boardwave/academy/core"
)

type Course struct {
	ID              int       `json:"id"`
	ProgrammeID     int       `json:"programme_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	SequenceOrder   int       `json:"sequence_order"`
	IsPublished     bool      `json:"is_published"`
	CreatedBy       int       `json:"created_by,omitempty"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

type Module struct {
	ID              int       `json:"id"`
	CourseID        int       `json:"course_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	ContentType     string    `json:"content_type,omitempty"`
	SequenceOrder   int       `json:"sequence_order"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
	IsPublished     bool      `json:"is_published"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

type CourseWithModules struct {
	Course
	Modules []Module `json:"modules"`
}

// Prerequisite is a directed "requires" edge: CourseID requires
// PrerequisiteCourseID to be completed first.
type Prerequisite struct {
	ID                   int       `json:"id"`
	CourseID             int       `json:"course_id"`
	PrerequisiteCourseID int       `json:"prerequisite_course_id"`
	CreatedAt            time.Time `json:"created_at"` // UTC
}

// PrerequisiteStatus reports a user's standing on one prerequisite edge.
type PrerequisiteStatus struct {
	PrerequisiteCourseID int     `json:"prerequisite_course_id"`
	Title                string  `json:"prerequisite_title"`
	CompletionPercentage float64 `json:"completion_percentage"`
	IsCompleted          bool    `json:"is_completed"`
}

// AccessCheck is the gating decision for one user and one course.
type AccessCheck struct {
	HasAccess     bool                 `json:"hasAccess"`
	Prerequisites []PrerequisiteStatus `json:"prerequisites"`
	MissingCount  int                  `json:"missingCount"`
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	ProgrammeID     int    `json:"programme_id" validate:"required,min=1"`
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=0"`
	SequenceOrder   int    `json:"sequence_order" validate:"omitempty,min=0"`
	IsPublished     bool   `json:"is_published"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationMinutes *int   `json:"duration_minutes" validate:"omitempty,min=0"`
	SequenceOrder   *int   `json:"sequence_order" validate:"omitempty,min=0"`
	IsPublished     *bool  `json:"is_published"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

// NewModule contains information needed to create a new Module.
type NewModule struct {
	CourseID        int    `json:"course_id" validate:"required,min=1"`
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	ContentType     string `json:"content_type" validate:"omitempty,oneof=text video document quiz discussion assignment"`
	SequenceOrder   int    `json:"sequence_order" validate:"omitempty,min=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=0"`
	IsPublished     bool   `json:"is_published"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	return validate.Struct(nm)
}

// NewPrerequisite is the request to add a prerequisite edge to a course.
type NewPrerequisite struct {
	PrerequisiteCourseID int `json:"prerequisite_course_id" validate:"required,min=1"`
}

func (np *NewPrerequisite) Validate(validate *validator.Validate) error {
	return validate.Struct(np)
}
