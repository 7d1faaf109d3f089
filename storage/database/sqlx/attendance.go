package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/attendance"
)

type attendanceRow struct {
	ID          int         `db:"id"`
	CohortID    null.Int    `db:"cohort_id"`
	UserID      null.Int    `db:"user_id"`
	SessionDate time.Time   `db:"session_date"`
	SessionName null.String `db:"session_name"`
	Status      null.String `db:"attendance_status"`
	Notes       null.String `db:"notes"`
	RecordedBy  null.Int    `db:"recorded_by"`
	RecordedAt  time.Time   `db:"recorded_at"`
}

func (row attendanceRow) unpack() attendance.Record {
	return attendance.Record{
		ID:          row.ID,
		CohortID:    row.CohortID.Int,
		UserID:      row.UserID.Int,
		SessionDate: row.SessionDate,
		SessionName: row.SessionName.String,
		Status:      row.Status.String,
		Notes:       row.Notes.String,
		RecordedBy:  row.RecordedBy.Int,
		RecordedAt:  row.RecordedAt,
	}
}

type sessionRow struct {
	ID          int         `db:"id"`
	CohortID    int         `db:"cohort_id"`
	SessionName string      `db:"session_name"`
	SessionDate time.Time   `db:"session_date"`
	StartTime   null.String `db:"start_time"`
	EndTime     null.String `db:"end_time"`
	Location    null.String `db:"location"`
	Description null.String `db:"description"`
	SessionType null.String `db:"session_type"`
	IsCompleted null.Bool   `db:"is_completed"`
	Notes       null.String `db:"notes"`
	CreatedAt   time.Time   `db:"created_at"`
}

func (row sessionRow) unpack() attendance.Session {
	return attendance.Session{
		ID:          row.ID,
		CohortID:    row.CohortID,
		Name:        row.SessionName,
		Date:        row.SessionDate,
		StartTime:   row.StartTime.String,
		EndTime:     row.EndTime.String,
		Location:    row.Location.String,
		Description: row.Description.String,
		Type:        row.SessionType.String,
		IsCompleted: row.IsCompleted.Bool,
		Notes:       row.Notes.String,
		CreatedAt:   row.CreatedAt,
	}
}

type attendanceRepository struct {
	repository
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{repository{exec: exec}}
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record, exec ...core.DBExecutor) (attendance.Record, error) {
	var row attendanceRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO attendance_records (cohort_id, user_id, session_date, session_name, attendance_status, notes, recorded_by, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`,
		rec.CohortID, rec.UserID, rec.SessionDate,
		null.NewString(rec.SessionName, rec.SessionName != ""),
		rec.Status,
		null.NewString(rec.Notes, rec.Notes != ""),
		null.NewInt(rec.RecordedBy, rec.RecordedBy != 0),
		rec.RecordedAt,
	)
	if err != nil {
		if isFKeyViolation(errors.Cause(err)) {
			return attendance.Record{}, attendance.ErrNotFound
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return row.unpack(), nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, cohortID, userID int, exec ...core.DBExecutor) ([]attendance.Record, error) {
	var rows []attendanceRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT * FROM attendance_records
		WHERE ($1 = 0 OR cohort_id = $1) AND ($2 = 0 OR user_id = $2)
		ORDER BY session_date DESC, recorded_at DESC`, cohortID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.unpack())
	}
	return records, nil
}

func (repo attendanceRepository) GetCohortStats(ctx context.Context, cohortID int, exec ...core.DBExecutor) (attendance.CohortStats, error) {
	var row struct {
		TotalRecords       int `db:"total_records"`
		UniqueParticipants int `db:"unique_participants"`
		TotalSessions      int `db:"total_sessions"`
		PresentCount       int `db:"present_count"`
		AbsentCount        int `db:"absent_count"`
		LateCount          int `db:"late_count"`
		ExcusedCount       int `db:"excused_count"`
	}
	err := repo.getExec(exec).GetContext(ctx, &row, `
		SELECT COUNT(*) AS total_records,
		       COUNT(DISTINCT user_id) AS unique_participants,
		       COUNT(DISTINCT session_date) AS total_sessions,
		       COUNT(*) FILTER (WHERE attendance_status = 'present') AS present_count,
		       COUNT(*) FILTER (WHERE attendance_status = 'absent') AS absent_count,
		       COUNT(*) FILTER (WHERE attendance_status = 'late') AS late_count,
		       COUNT(*) FILTER (WHERE attendance_status = 'excused') AS excused_count
		FROM attendance_records
		WHERE cohort_id = $1`, cohortID)
	if err != nil {
		return attendance.CohortStats{}, errors.Wrap(err, "querying cohort attendance stats")
	}
	return attendance.CohortStats{
		TotalRecords:       row.TotalRecords,
		UniqueParticipants: row.UniqueParticipants,
		TotalSessions:      row.TotalSessions,
		PresentCount:       row.PresentCount,
		AbsentCount:        row.AbsentCount,
		LateCount:          row.LateCount,
		ExcusedCount:       row.ExcusedCount,
	}, nil
}

func (repo attendanceRepository) DeleteRecordsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM attendance_records WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting attendance records")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting attendance records")
	}
	return int(cnt), nil
}

func (repo attendanceRepository) CreateSession(ctx context.Context, sess attendance.Session, exec ...core.DBExecutor) (attendance.Session, error) {
	var row sessionRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO cohort_sessions (cohort_id, session_name, session_date, start_time, end_time, location, description, session_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`,
		sess.CohortID, sess.Name, sess.Date,
		null.NewString(sess.StartTime, sess.StartTime != ""),
		null.NewString(sess.EndTime, sess.EndTime != ""),
		null.NewString(sess.Location, sess.Location != ""),
		null.NewString(sess.Description, sess.Description != ""),
		sess.Type,
	)
	if err != nil {
		if isFKeyViolation(errors.Cause(err)) {
			return attendance.Session{}, attendance.ErrNotFound
		}
		return attendance.Session{}, errors.Wrap(err, "inserting session")
	}
	return row.unpack(), nil
}

func (repo attendanceRepository) QuerySessionsByCohort(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]attendance.Session, error) {
	var rows []sessionRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT * FROM cohort_sessions WHERE cohort_id = $1 ORDER BY session_date ASC, start_time ASC`, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}

	sessions := make([]attendance.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.unpack())
	}
	return sessions, nil
}

// QuerySessionsWithStats joins attendance counts on (cohort_id, session_date);
// there is no foreign key between the two tables.
func (repo attendanceRepository) QuerySessionsWithStats(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]attendance.SessionWithStats, error) {
	var rows []struct {
		sessionRow
		RecordedCount int `db:"recorded_count"`
		PresentCount  int `db:"present_count"`
		AbsentCount   int `db:"absent_count"`
	}
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT s.*,
		       COUNT(ar.id) AS recorded_count,
		       COUNT(ar.id) FILTER (WHERE ar.attendance_status = 'present') AS present_count,
		       COUNT(ar.id) FILTER (WHERE ar.attendance_status = 'absent') AS absent_count
		FROM cohort_sessions s
		LEFT JOIN attendance_records ar ON ar.cohort_id = s.cohort_id AND ar.session_date = s.session_date
		WHERE s.cohort_id = $1
		GROUP BY s.id
		ORDER BY s.session_date ASC, s.start_time ASC`, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions with stats")
	}

	sessions := make([]attendance.SessionWithStats, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, attendance.SessionWithStats{
			Session:       row.sessionRow.unpack(),
			RecordedCount: row.RecordedCount,
			PresentCount:  row.PresentCount,
			AbsentCount:   row.AbsentCount,
		})
	}
	return sessions, nil
}

func (repo attendanceRepository) GetSession(ctx context.Context, id int, exec ...core.DBExecutor) (attendance.Session, error) {
	var row sessionRow
	if err := repo.getExec(exec).GetContext(ctx, &row, `SELECT * FROM cohort_sessions WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, errors.Wrap(err, "finding session")
	}
	return row.unpack(), nil
}

func (repo attendanceRepository) UpdateSession(ctx context.Context, sess attendance.Session, exec ...core.DBExecutor) (attendance.Session, error) {
	var row sessionRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		UPDATE cohort_sessions
		SET session_name = $2, session_date = $3, start_time = $4, end_time = $5, location = $6,
		    description = $7, session_type = $8, is_completed = $9, notes = $10
		WHERE id = $1
		RETURNING *`,
		sess.ID, sess.Name, sess.Date,
		null.NewString(sess.StartTime, sess.StartTime != ""),
		null.NewString(sess.EndTime, sess.EndTime != ""),
		null.NewString(sess.Location, sess.Location != ""),
		null.NewString(sess.Description, sess.Description != ""),
		sess.Type, sess.IsCompleted,
		null.NewString(sess.Notes, sess.Notes != ""),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return attendance.Session{}, attendance.ErrSessionNotFound
		}
		return attendance.Session{}, errors.Wrap(err, "updating session")
	}
	return row.unpack(), nil
}

func (repo attendanceRepository) DeleteSessionsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM cohort_sessions WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting sessions")
	}
	return int(cnt), nil
}
