package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/cohort"
)

type cohortRow struct {
	ID              int         `db:"id"`
	ProgrammeID     null.Int    `db:"programme_id"`
	Name            string      `db:"name"`
	Description     null.String `db:"description"`
	StartDate       null.Time   `db:"start_date"`
	EndDate         null.Time   `db:"end_date"`
	Status          null.String `db:"status"`
	MaxParticipants null.Int    `db:"max_participants"`
	MentorID        null.Int    `db:"mentor_id"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (row cohortRow) unpack() cohort.Cohort {
	return cohort.Cohort{
		ID:              row.ID,
		ProgrammeID:     row.ProgrammeID.Int,
		Name:            row.Name,
		Description:     row.Description.String,
		StartDate:       row.StartDate.Ptr(),
		EndDate:         row.EndDate.Ptr(),
		Status:          row.Status.String,
		MaxParticipants: row.MaxParticipants.Int,
		MentorID:        row.MentorID.Int,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

type cohortRepository struct {
	repository
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(exec core.DBExecutor) *cohortRepository {
	return &cohortRepository{repository{exec: exec}}
}

func (repo cohortRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return cohort.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo cohortRepository) CreateCohort(ctx context.Context, coh cohort.Cohort, exec ...core.DBExecutor) (cohort.Cohort, error) {
	var row cohortRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO cohorts (programme_id, name, description, start_date, end_date, status, max_participants, mentor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`,
		coh.ProgrammeID, coh.Name,
		null.NewString(coh.Description, coh.Description != ""),
		null.TimeFromPtr(coh.StartDate),
		null.TimeFromPtr(coh.EndDate),
		coh.Status,
		null.NewInt(coh.MaxParticipants, coh.MaxParticipants != 0),
		null.NewInt(coh.MentorID, coh.MentorID != 0),
	)
	if err != nil {
		if isFKeyViolation(errors.Cause(err)) {
			return cohort.Cohort{}, cohort.ErrNotFound
		}
		return cohort.Cohort{}, errors.Wrap(err, "inserting cohort")
	}
	return row.unpack(), nil
}

func (repo cohortRepository) QueryCohorts(ctx context.Context, programmeID int, status string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]cohort.CohortWithCounts, error) {
	var rows []struct {
		cohortRow
		EnrolledCount int `db:"enrolled_count"`
		SessionCount  int `db:"session_count"`
	}
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT c.*,
		       (SELECT COUNT(*) FROM enrollments e WHERE e.cohort_id = c.id) AS enrolled_count,
		       (SELECT COUNT(*) FROM cohort_sessions s WHERE s.cohort_id = c.id) AS session_count
		FROM cohorts c
		WHERE ($1 = 0 OR c.programme_id = $1) AND ($2 = '' OR c.status = $2)`+orderBy(ordering),
		programmeID, status)
	if err != nil {
		return nil, errors.Wrap(err, "querying cohorts")
	}

	cohorts := make([]cohort.CohortWithCounts, 0, len(rows))
	for _, row := range rows {
		cohorts = append(cohorts, cohort.CohortWithCounts{
			Cohort:        row.cohortRow.unpack(),
			EnrolledCount: row.EnrolledCount,
			SessionCount:  row.SessionCount,
		})
	}
	return cohorts, nil
}

func (repo cohortRepository) GetCohort(ctx context.Context, id int, exec ...core.DBExecutor) (cohort.Cohort, error) {
	var row cohortRow
	if err := repo.getExec(exec).GetContext(ctx, &row, `SELECT * FROM cohorts WHERE id = $1`, id); err != nil {
		return cohort.Cohort{}, repo.trapNoRowsErr(err, "finding cohort")
	}
	return row.unpack(), nil
}

func (repo cohortRepository) UpdateCohort(ctx context.Context, coh cohort.Cohort, exec ...core.DBExecutor) (cohort.Cohort, error) {
	var row cohortRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		UPDATE cohorts
		SET name = $2, description = $3, start_date = $4, end_date = $5, status = $6,
		    max_participants = $7, mentor_id = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING *`,
		coh.ID, coh.Name,
		null.NewString(coh.Description, coh.Description != ""),
		null.TimeFromPtr(coh.StartDate),
		null.TimeFromPtr(coh.EndDate),
		coh.Status,
		null.NewInt(coh.MaxParticipants, coh.MaxParticipants != 0),
		null.NewInt(coh.MentorID, coh.MentorID != 0),
	)
	if err != nil {
		return cohort.Cohort{}, repo.trapNoRowsErr(err, "updating cohort")
	}
	return row.unpack(), nil
}

func (repo cohortRepository) DeleteCohortsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM cohorts WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting cohorts")
	}
	return nil
}
