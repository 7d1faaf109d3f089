package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/enrollment"
)

type enrollmentRow struct {
	ID                   int         `db:"id"`
	CohortID             null.Int    `db:"cohort_id"`
	UserID               null.Int    `db:"user_id"`
	Status               null.String `db:"enrollment_status"`
	EnrollmentDate       time.Time   `db:"enrollment_date"`
	CompletionDate       null.Time   `db:"completion_date"`
	CompletionPercentage null.Int    `db:"completion_percentage"`
	Notes                null.String `db:"notes"`
}

func (row enrollmentRow) unpack() enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:                   row.ID,
		CohortID:             row.CohortID.Int,
		UserID:               row.UserID.Int,
		Status:               row.Status.String,
		EnrollmentDate:       row.EnrollmentDate,
		CompletionDate:       row.CompletionDate.Ptr(),
		CompletionPercentage: row.CompletionPercentage.Int,
		Notes:                row.Notes.String,
	}
}

type enrollmentRepository struct {
	repository
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{repository{exec: exec}}
}

func (repo enrollmentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return enrollment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	var row enrollmentRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO enrollments (cohort_id, user_id, enrollment_status, enrollment_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *`,
		enr.CohortID, enr.UserID, enr.Status, enr.EnrollmentDate,
		null.NewString(enr.Notes, enr.Notes != ""),
	)
	if err != nil {
		cause := errors.Cause(err)
		if isUniqueViolation(cause) {
			return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
		}
		if isFKeyViolation(cause) {
			return enrollment.Enrollment{}, enrollment.ErrNotFound
		}
		return enrollment.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return row.unpack(), nil
}

func (repo enrollmentRepository) InsertEnrollmentSkipConflict(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, bool, error) {
	var row enrollmentRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO enrollments (cohort_id, user_id, enrollment_status, enrollment_date, notes)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (cohort_id, user_id) DO NOTHING
		RETURNING *`,
		enr.CohortID, enr.UserID, enr.Status, enr.EnrollmentDate,
		null.NewString(enr.Notes, enr.Notes != ""),
	)
	if err != nil {
		// DO NOTHING yields no row on conflict
		if err == sql.ErrNoRows {
			return enrollment.Enrollment{}, false, nil
		}
		if isFKeyViolation(errors.Cause(err)) {
			return enrollment.Enrollment{}, false, enrollment.ErrNotFound
		}
		return enrollment.Enrollment{}, false, errors.Wrap(err, "inserting enrollment")
	}
	return row.unpack(), true, nil
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, cohortID, userID int, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	var rows []enrollmentRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT * FROM enrollments
		WHERE ($1 = 0 OR cohort_id = $1) AND ($2 = 0 OR user_id = $2)
		ORDER BY enrollment_date DESC`, cohortID, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}

	enrollments := make([]enrollment.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.unpack())
	}
	return enrollments, nil
}

func (repo enrollmentRepository) GetEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	var row enrollmentRow
	if err := repo.getExec(exec).GetContext(ctx, &row, `SELECT * FROM enrollments WHERE id = $1`, id); err != nil {
		return enrollment.Enrollment{}, repo.trapNoRowsErr(err, "finding enrollment")
	}
	return row.unpack(), nil
}

func (repo enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	var row enrollmentRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		UPDATE enrollments
		SET enrollment_status = $2, completion_date = $3, completion_percentage = $4, notes = $5
		WHERE id = $1
		RETURNING *`,
		enr.ID, enr.Status,
		null.TimeFromPtr(enr.CompletionDate),
		enr.CompletionPercentage,
		null.NewString(enr.Notes, enr.Notes != ""),
	)
	if err != nil {
		return enrollment.Enrollment{}, repo.trapNoRowsErr(err, "updating enrollment")
	}
	return row.unpack(), nil
}

func (repo enrollmentRepository) DeleteEnrollmentsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM enrollments WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	return int(cnt), nil
}
