package attendance

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/boardwave/academy/core"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

type Record struct {
	ID          int       `json:"id"`
	CohortID    int       `json:"cohort_id"`
	UserID      int       `json:"user_id"`
	SessionDate time.Time `json:"session_date"`
	SessionName string    `json:"session_name,omitempty"`
	Status      string    `json:"attendance_status"`
	Notes       string    `json:"notes,omitempty"`
	RecordedBy  int       `json:"recorded_by"`
	RecordedAt  time.Time `json:"recorded_at"` // UTC
}

// Session is a scheduled meeting of a cohort. Attendance records are
// correlated to a session by matching (cohort_id, session_date), not by
// a foreign key.
type Session struct {
	ID          int       `json:"id"`
	CohortID    int       `json:"cohort_id"`
	Name        string    `json:"session_name"`
	Date        time.Time `json:"session_date"`
	StartTime   string    `json:"start_time,omitempty"`
	EndTime     string    `json:"end_time,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	Type        string    `json:"session_type"`
	IsCompleted bool      `json:"is_completed"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// SessionWithStats augments a Session with attendance counts matched by date.
type SessionWithStats struct {
	Session
	RecordedCount int `json:"recorded_count"`
	PresentCount  int `json:"present_count"`
	AbsentCount   int `json:"absent_count"`
}

// CohortStats aggregates a cohort's attendance records. Duplicate rows for
// the same participant/session are counted as stored.
type CohortStats struct {
	TotalRecords       int `json:"totalRecords"`
	UniqueParticipants int `json:"uniqueParticipants"`
	TotalSessions      int `json:"totalSessions"`
	PresentCount       int `json:"presentCount"`
	AbsentCount        int `json:"absentCount"`
	LateCount          int `json:"lateCount"`
	ExcusedCount       int `json:"excusedCount"`
}

// NewRecord contains information needed to mark one participant's attendance.
type NewRecord struct {
	CohortID    int       `json:"cohort_id" validate:"required,min=1"`
	UserID      int       `json:"user_id" validate:"required,min=1"`
	SessionDate time.Time `json:"session_date" validate:"required"`
	SessionName string    `json:"session_name"`
	Status      string    `json:"attendance_status" validate:"required,oneof=present absent late excused"`
	Notes       string    `json:"notes"`
}

func (nr *NewRecord) Validate(validate *validator.Validate) error {
	nr.SessionName = core.CleanString(nr.SessionName)
	return validate.Struct(nr)
}

// BulkEntry is one participant's mark within a bulk recording.
type BulkEntry struct {
	UserID int    `json:"user_id" validate:"required,min=1"`
	Status string `json:"status" validate:"required,oneof=present absent late excused"`
}

// BulkRecording marks attendance for a set of participants of one
// cohort/session as a single atomic unit.
type BulkRecording struct {
	CohortID    int         `json:"cohort_id" validate:"required,min=1"`
	SessionDate time.Time   `json:"session_date" validate:"required"`
	SessionName string      `json:"session_name"`
	Entries     []BulkEntry `json:"entries" validate:"dive"`
}

func (br *BulkRecording) Validate(validate *validator.Validate) error {
	br.SessionName = core.CleanString(br.SessionName)
	return validate.Struct(br)
}

// NewSession contains information needed to schedule a cohort session.
type NewSession struct {
	CohortID    int       `json:"cohort_id" validate:"required,min=1"`
	Name        string    `json:"session_name" validate:"required"`
	Date        time.Time `json:"session_date" validate:"required"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	Type        string    `json:"session_type" validate:"omitempty,oneof=lecture workshop mentoring assessment other"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Location = core.CleanString(ns.Location)
	if ns.Type == "" {
		ns.Type = "lecture"
	}
	return validate.Struct(ns)
}

// UpdateSession defines what may be modified on an existing Session.
type UpdateSession struct {
	Name        string     `json:"session_name"`
	Date        *time.Time `json:"session_date"`
	StartTime   string     `json:"start_time"`
	EndTime     string     `json:"end_time"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Type        string     `json:"session_type" validate:"omitempty,oneof=lecture workshop mentoring assessment other"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.Location = core.CleanString(us.Location)
	return validate.Struct(us)
}
