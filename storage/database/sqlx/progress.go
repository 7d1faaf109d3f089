package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/progress"
)

type trackingRow struct {
	ID               int         `db:"id"`
	UserID           null.Int    `db:"user_id"`
	ModuleID         null.Int    `db:"module_id"`
	Status           null.String `db:"status"`
	StartedAt        null.Time   `db:"started_at"`
	CompletedAt      null.Time   `db:"completed_at"`
	TimeSpentMinutes null.Int    `db:"time_spent_minutes"`
	LastAccessedAt   null.Time   `db:"last_accessed_at"`
}

func (row trackingRow) unpack() progress.Tracking {
	return progress.Tracking{
		ID:               row.ID,
		UserID:           row.UserID.Int,
		ModuleID:         row.ModuleID.Int,
		Status:           row.Status.String,
		StartedAt:        row.StartedAt.Ptr(),
		CompletedAt:      row.CompletedAt.Ptr(),
		TimeSpentMinutes: row.TimeSpentMinutes.Int,
		LastAccessedAt:   row.LastAccessedAt.Ptr(),
	}
}

type progressRepository struct {
	repository
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(exec core.DBExecutor) *progressRepository {
	return &progressRepository{repository{exec: exec}}
}

func (repo progressRepository) UpsertTracking(ctx context.Context, trk progress.Tracking, exec ...core.DBExecutor) (progress.Tracking, error) {
	var row trackingRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO progress_tracking (user_id, module_id, status, started_at, completed_at, time_spent_minutes, last_accessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, module_id) DO UPDATE
		SET status = EXCLUDED.status,
		    started_at = COALESCE(progress_tracking.started_at, EXCLUDED.started_at),
		    completed_at = EXCLUDED.completed_at,
		    time_spent_minutes = progress_tracking.time_spent_minutes + EXCLUDED.time_spent_minutes,
		    last_accessed_at = EXCLUDED.last_accessed_at
		RETURNING *`,
		trk.UserID, trk.ModuleID, trk.Status,
		null.TimeFromPtr(trk.StartedAt),
		null.TimeFromPtr(trk.CompletedAt),
		trk.TimeSpentMinutes,
		null.TimeFromPtr(trk.LastAccessedAt),
	)
	if err != nil {
		if isFKeyViolation(errors.Cause(err)) {
			return progress.Tracking{}, progress.ErrNotFound
		}
		return progress.Tracking{}, errors.Wrap(err, "upserting progress")
	}
	return row.unpack(), nil
}

func (repo progressRepository) QueryTrackingByUser(ctx context.Context, userID int, exec ...core.DBExecutor) ([]progress.Tracking, error) {
	var rows []trackingRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT * FROM progress_tracking WHERE user_id = $1 ORDER BY last_accessed_at DESC NULLS LAST`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying progress")
	}

	trackings := make([]progress.Tracking, 0, len(rows))
	for _, row := range rows {
		trackings = append(trackings, row.unpack())
	}
	return trackings, nil
}

func (repo progressRepository) GetUserSummary(ctx context.Context, userID int, exec ...core.DBExecutor) (progress.UserSummary, error) {
	var row struct {
		TotalModules     int `db:"total_modules"`
		CompletedModules int `db:"completed_modules"`
		InProgress       int `db:"in_progress"`
		TimeSpentMinutes int `db:"time_spent_minutes"`
	}
	err := repo.getExec(exec).GetContext(ctx, &row, `
		SELECT COUNT(*) AS total_modules,
		       COUNT(*) FILTER (WHERE status = 'completed') AS completed_modules,
		       COUNT(*) FILTER (WHERE status = 'in_progress') AS in_progress,
		       COALESCE(SUM(time_spent_minutes), 0) AS time_spent_minutes
		FROM progress_tracking
		WHERE user_id = $1`, userID)
	if err != nil {
		return progress.UserSummary{}, errors.Wrap(err, "querying progress summary")
	}
	return progress.UserSummary{
		TotalModules:     row.TotalModules,
		CompletedModules: row.CompletedModules,
		InProgress:       row.InProgress,
		TimeSpentMinutes: row.TimeSpentMinutes,
	}, nil
}

func (repo progressRepository) GetCourseCompletionCounts(ctx context.Context, userID, courseID int, exec ...core.DBExecutor) (progress.CourseCompletionCounts, error) {
	var row struct {
		TotalModules     int `db:"total_modules"`
		CompletedModules int `db:"completed_modules"`
	}
	err := repo.getExec(exec).GetContext(ctx, &row, `
		SELECT COUNT(m.id) AS total_modules,
		       COUNT(pt.id) FILTER (WHERE pt.status = 'completed') AS completed_modules
		FROM modules m
		LEFT JOIN progress_tracking pt ON pt.module_id = m.id AND pt.user_id = $1
		WHERE m.course_id = $2`, userID, courseID)
	if err != nil {
		return progress.CourseCompletionCounts{}, errors.Wrap(err, "querying course completion counts")
	}
	return progress.CourseCompletionCounts{
		TotalModules:     row.TotalModules,
		CompletedModules: row.CompletedModules,
	}, nil
}
