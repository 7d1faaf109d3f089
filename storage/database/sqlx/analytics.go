package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/analytics"
)

type analyticsRepository struct {
	repository
}

var _ analytics.Repository = (*analyticsRepository)(nil) // interface compliance check

func NewAnalyticsRepository(exec core.DBExecutor) *analyticsRepository {
	return &analyticsRepository{repository{exec: exec}}
}

func (repo analyticsRepository) GetOverview(ctx context.Context, exec ...core.DBExecutor) (analytics.Overview, error) {
	var row struct {
		TotalUsers        int     `db:"total_users"`
		ActiveUsers       int     `db:"active_users"`
		TotalProgrammes   int     `db:"total_programmes"`
		ActiveCohorts     int     `db:"active_cohorts"`
		TotalEnrollments  int     `db:"total_enrollments"`
		OverallAttendance float64 `db:"overall_attendance_rate"`
	}
	err := repo.getExec(exec).GetContext(ctx, &row, `
		SELECT (SELECT COUNT(*) FROM users) AS total_users,
		       (SELECT COUNT(*) FROM users WHERE is_active) AS active_users,
		       (SELECT COUNT(*) FROM programmes) AS total_programmes,
		       (SELECT COUNT(*) FROM cohorts WHERE status = 'active') AS active_cohorts,
		       (SELECT COUNT(*) FROM enrollments) AS total_enrollments,
		       COALESCE((SELECT ROUND(100.0 * COUNT(*) FILTER (WHERE attendance_status = 'present') / NULLIF(COUNT(*), 0), 2)
		                 FROM attendance_records), 0) AS overall_attendance_rate`)
	if err != nil {
		return analytics.Overview{}, errors.Wrap(err, "querying overview")
	}
	return analytics.Overview{
		TotalUsers:        row.TotalUsers,
		ActiveUsers:       row.ActiveUsers,
		TotalProgrammes:   row.TotalProgrammes,
		ActiveCohorts:     row.ActiveCohorts,
		TotalEnrollments:  row.TotalEnrollments,
		OverallAttendance: row.OverallAttendance,
	}, nil
}

func (repo analyticsRepository) GetProgrammeStats(ctx context.Context, programmeID int, exec ...core.DBExecutor) (analytics.ProgrammeStats, error) {
	var row struct {
		ProgrammeID       int     `db:"programme_id"`
		ProgrammeName     string  `db:"programme_name"`
		CohortCount       int     `db:"cohort_count"`
		EnrolledCount     int     `db:"enrolled_count"`
		CompletedCount    int     `db:"completed_count"`
		AvgCompletion     float64 `db:"avg_completion"`
		AttendanceRate    float64 `db:"attendance_rate"`
		TotalSessionCount int     `db:"total_session_count"`
	}
	err := repo.getExec(exec).GetContext(ctx, &row, `
		SELECT p.id AS programme_id,
		       p.name AS programme_name,
		       (SELECT COUNT(*) FROM cohorts c WHERE c.programme_id = p.id) AS cohort_count,
		       (SELECT COUNT(*) FROM enrollments e JOIN cohorts c ON c.id = e.cohort_id
		        WHERE c.programme_id = p.id) AS enrolled_count,
		       (SELECT COUNT(*) FROM enrollments e JOIN cohorts c ON c.id = e.cohort_id
		        WHERE c.programme_id = p.id AND e.enrollment_status = 'completed') AS completed_count,
		       COALESCE((SELECT AVG(e.completion_percentage) FROM enrollments e JOIN cohorts c ON c.id = e.cohort_id
		                 WHERE c.programme_id = p.id), 0) AS avg_completion,
		       COALESCE((SELECT ROUND(100.0 * COUNT(*) FILTER (WHERE ar.attendance_status = 'present') / NULLIF(COUNT(*), 0), 2)
		                 FROM attendance_records ar JOIN cohorts c ON c.id = ar.cohort_id
		                 WHERE c.programme_id = p.id), 0) AS attendance_rate,
		       (SELECT COUNT(*) FROM cohort_sessions s JOIN cohorts c ON c.id = s.cohort_id
		        WHERE c.programme_id = p.id) AS total_session_count
		FROM programmes p
		WHERE p.id = $1`, programmeID)
	if err != nil {
		if err == sql.ErrNoRows {
			return analytics.ProgrammeStats{}, analytics.ErrNotFound
		}
		return analytics.ProgrammeStats{}, errors.Wrap(err, "querying programme stats")
	}
	return analytics.ProgrammeStats{
		ProgrammeID:       row.ProgrammeID,
		ProgrammeName:     row.ProgrammeName,
		CohortCount:       row.CohortCount,
		EnrolledCount:     row.EnrolledCount,
		CompletedCount:    row.CompletedCount,
		AvgCompletion:     row.AvgCompletion,
		AttendanceRate:    row.AttendanceRate,
		TotalSessionCount: row.TotalSessionCount,
	}, nil
}

func (repo analyticsRepository) QueryUserEngagement(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]analytics.UserEngagement, error) {
	var rows []struct {
		UserID           int     `db:"user_id"`
		FullName         string  `db:"full_name"`
		EnrollmentCount  int     `db:"enrollment_count"`
		ModulesCompleted int     `db:"modules_completed"`
		ModulesInTotal   int     `db:"modules_in_total"`
		AttendanceRate   float64 `db:"attendance_rate"`
	}
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT u.id AS user_id,
		       TRIM(CONCAT(u.first_name, ' ', u.last_name)) AS full_name,
		       (SELECT COUNT(*) FROM enrollments e WHERE e.user_id = u.id) AS enrollment_count,
		       (SELECT COUNT(*) FROM progress_tracking pt WHERE pt.user_id = u.id AND pt.status = 'completed') AS modules_completed,
		       (SELECT COUNT(*) FROM progress_tracking pt WHERE pt.user_id = u.id) AS modules_in_total,
		       COALESCE((SELECT ROUND(100.0 * COUNT(*) FILTER (WHERE ar.attendance_status = 'present') / NULLIF(COUNT(*), 0), 2)
		                 FROM attendance_records ar
		                 WHERE ar.user_id = u.id AND ar.cohort_id = $1), 0) AS attendance_rate
		FROM users u
		JOIN enrollments en ON en.user_id = u.id AND en.cohort_id = $1
		ORDER BY full_name ASC`, cohortID)
	if err != nil {
		return nil, errors.Wrap(err, "querying user engagement")
	}

	engagements := make([]analytics.UserEngagement, 0, len(rows))
	for _, row := range rows {
		engagements = append(engagements, analytics.UserEngagement{
			UserID:           row.UserID,
			FullName:         row.FullName,
			EnrollmentCount:  row.EnrollmentCount,
			ModulesCompleted: row.ModulesCompleted,
			ModulesInTotal:   row.ModulesInTotal,
			AttendanceRate:   row.AttendanceRate,
		})
	}
	return engagements, nil
}
