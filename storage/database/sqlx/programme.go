package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/programme"
)

type programmeRow struct {
	ID              int         `db:"id"`
	Name            string      `db:"name"`
	Description     null.String `db:"description"`
	ProgrammeType   null.String `db:"programme_type"`
	StartDate       null.Time   `db:"start_date"`
	EndDate         null.Time   `db:"end_date"`
	Status          null.String `db:"status"`
	MaxParticipants null.Int    `db:"max_participants"`
	CreatedBy       null.Int    `db:"created_by"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (row programmeRow) unpack() programme.Programme {
	return programme.Programme{
		ID:              row.ID,
		Name:            row.Name,
		Description:     row.Description.String,
		Type:            row.ProgrammeType.String,
		StartDate:       row.StartDate.Ptr(),
		EndDate:         row.EndDate.Ptr(),
		Status:          row.Status.String,
		MaxParticipants: row.MaxParticipants.Int,
		CreatedBy:       row.CreatedBy.Int,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

type programmeRepository struct {
	repository
}

var _ programme.Repository = (*programmeRepository)(nil) // interface compliance check

func NewProgrammeRepository(exec core.DBExecutor) *programmeRepository {
	return &programmeRepository{repository{exec: exec}}
}

func (repo programmeRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return programme.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo programmeRepository) CreateProgramme(ctx context.Context, prog programme.Programme, exec ...core.DBExecutor) (programme.Programme, error) {
	var row programmeRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO programmes (name, description, programme_type, start_date, end_date, status, max_participants, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *`,
		prog.Name,
		null.NewString(prog.Description, prog.Description != ""),
		null.NewString(prog.Type, prog.Type != ""),
		null.TimeFromPtr(prog.StartDate),
		null.TimeFromPtr(prog.EndDate),
		prog.Status,
		null.NewInt(prog.MaxParticipants, prog.MaxParticipants != 0),
		null.NewInt(prog.CreatedBy, prog.CreatedBy != 0),
	)
	if err != nil {
		return programme.Programme{}, errors.Wrap(err, "inserting programme")
	}
	return row.unpack(), nil
}

func (repo programmeRepository) QueryProgrammes(ctx context.Context, status string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]programme.Programme, error) {
	var rows []programmeRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT * FROM programmes WHERE $1 = '' OR status = $1`+orderBy(ordering), status)
	if err != nil {
		return nil, errors.Wrap(err, "querying programmes")
	}

	progs := make([]programme.Programme, 0, len(rows))
	for _, row := range rows {
		progs = append(progs, row.unpack())
	}
	return progs, nil
}

func (repo programmeRepository) GetProgramme(ctx context.Context, id int, exec ...core.DBExecutor) (programme.Programme, error) {
	var row programmeRow
	if err := repo.getExec(exec).GetContext(ctx, &row, `SELECT * FROM programmes WHERE id = $1`, id); err != nil {
		return programme.Programme{}, repo.trapNoRowsErr(err, "finding programme")
	}
	return row.unpack(), nil
}

func (repo programmeRepository) UpdateProgramme(ctx context.Context, prog programme.Programme, exec ...core.DBExecutor) (programme.Programme, error) {
	var row programmeRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		UPDATE programmes
		SET name = $2, description = $3, programme_type = $4, start_date = $5, end_date = $6,
		    status = $7, max_participants = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING *`,
		prog.ID, prog.Name,
		null.NewString(prog.Description, prog.Description != ""),
		null.NewString(prog.Type, prog.Type != ""),
		null.TimeFromPtr(prog.StartDate),
		null.TimeFromPtr(prog.EndDate),
		prog.Status,
		null.NewInt(prog.MaxParticipants, prog.MaxParticipants != 0),
	)
	if err != nil {
		return programme.Programme{}, repo.trapNoRowsErr(err, "updating programme")
	}
	return row.unpack(), nil
}

func (repo programmeRepository) DeleteProgrammesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if _, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM programmes WHERE id = ANY($1)`, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting programmes")
	}
	return nil
}
