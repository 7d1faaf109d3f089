package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/course"
)

type courseRow struct {
	ID              int         `db:"id"`
	ProgrammeID     null.Int    `db:"programme_id"`
	Title           string      `db:"title"`
	Description     null.String `db:"description"`
	DurationMinutes null.Int    `db:"duration_minutes"`
	SequenceOrder   null.Int    `db:"sequence_order"`
	IsPublished     null.Bool   `db:"is_published"`
	CreatedBy       null.Int    `db:"created_by"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (row courseRow) unpack() course.Course {
	return course.Course{
		ID:              row.ID,
		ProgrammeID:     row.ProgrammeID.Int,
		Title:           row.Title,
		Description:     row.Description.String,
		DurationMinutes: row.DurationMinutes.Int,
		SequenceOrder:   row.SequenceOrder.Int,
		IsPublished:     row.IsPublished.Bool,
		CreatedBy:       row.CreatedBy.Int,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func unpackCourses(rows []courseRow) []course.Course {
	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.unpack())
	}
	return courses
}

type moduleRow struct {
	ID              int         `db:"id"`
	CourseID        null.Int    `db:"course_id"`
	Title           string      `db:"title"`
	Description     null.String `db:"description"`
	ContentType     null.String `db:"content_type"`
	SequenceOrder   null.Int    `db:"sequence_order"`
	DurationMinutes null.Int    `db:"duration_minutes"`
	IsPublished     null.Bool   `db:"is_published"`
	CreatedAt       time.Time   `db:"created_at"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (row moduleRow) unpack() course.Module {
	return course.Module{
		ID:              row.ID,
		CourseID:        row.CourseID.Int,
		Title:           row.Title,
		Description:     row.Description.String,
		ContentType:     row.ContentType.String,
		SequenceOrder:   row.SequenceOrder.Int,
		DurationMinutes: row.DurationMinutes.Int,
		IsPublished:     row.IsPublished.Bool,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

type courseRepository struct {
	repository
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(exec core.DBExecutor) *courseRepository {
	return &courseRepository{repository{exec: exec}}
}

func (repo courseRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	var row courseRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO courses (programme_id, title, description, duration_minutes, sequence_order, is_published, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`,
		crs.ProgrammeID, crs.Title,
		null.NewString(crs.Description, crs.Description != ""),
		null.NewInt(crs.DurationMinutes, crs.DurationMinutes != 0),
		crs.SequenceOrder, crs.IsPublished,
		null.NewInt(crs.CreatedBy, crs.CreatedBy != 0),
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) QueryCourses(ctx context.Context, programmeID int, exec ...core.DBExecutor) ([]course.Course, error) {
	var rows []courseRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT * FROM courses
		WHERE $1 = 0 OR programme_id = $1
		ORDER BY sequence_order ASC, created_at ASC`, programmeID)
	if err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	return unpackCourses(rows), nil
}

func (repo courseRepository) GetCourse(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	var row courseRow
	if err := repo.getExec(exec).GetContext(ctx, &row, `SELECT * FROM courses WHERE id = $1`, id); err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "finding course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) GetCourseWithModules(ctx context.Context, id int, exec ...core.DBExecutor) (course.CourseWithModules, error) {
	crs, err := repo.GetCourse(ctx, id, exec...)
	if err != nil {
		return course.CourseWithModules{}, err
	}
	modules, err := repo.QueryModulesByCourse(ctx, id, exec...)
	if err != nil {
		return course.CourseWithModules{}, err
	}
	return course.CourseWithModules{Course: crs, Modules: modules}, nil
}

func (repo courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	var row courseRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		UPDATE courses
		SET title = $2, description = $3, duration_minutes = $4, sequence_order = $5,
		    is_published = $6, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
		RETURNING *`,
		crs.ID, crs.Title,
		null.NewString(crs.Description, crs.Description != ""),
		null.NewInt(crs.DurationMinutes, crs.DurationMinutes != 0),
		crs.SequenceOrder, crs.IsPublished,
	)
	if err != nil {
		return course.Course{}, repo.trapNoRowsErr(err, "updating course")
	}
	return row.unpack(), nil
}

func (repo courseRepository) DeleteCoursesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM courses WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting courses")
	}
	return int(cnt), nil
}

func (repo courseRepository) CreateModule(ctx context.Context, mod course.Module, exec ...core.DBExecutor) (course.Module, error) {
	var row moduleRow
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO modules (course_id, title, description, content_type, sequence_order, duration_minutes, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING *`,
		mod.CourseID, mod.Title,
		null.NewString(mod.Description, mod.Description != ""),
		null.NewString(mod.ContentType, mod.ContentType != ""),
		mod.SequenceOrder,
		null.NewInt(mod.DurationMinutes, mod.DurationMinutes != 0),
		mod.IsPublished,
	)
	if err != nil {
		if isFKeyViolation(errors.Cause(err)) {
			return course.Module{}, course.ErrNotFound
		}
		return course.Module{}, errors.Wrap(err, "inserting module")
	}
	return row.unpack(), nil
}

func (repo courseRepository) QueryModulesByCourse(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]course.Module, error) {
	var rows []moduleRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT * FROM modules WHERE course_id = $1 ORDER BY sequence_order ASC, created_at ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	modules := make([]course.Module, 0, len(rows))
	for _, row := range rows {
		modules = append(modules, row.unpack())
	}
	return modules, nil
}

func (repo courseRepository) DeleteModulesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM modules WHERE id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting modules")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting modules")
	}
	return int(cnt), nil
}

func (repo courseRepository) CreatePrerequisite(ctx context.Context, edge course.Prerequisite, exec ...core.DBExecutor) (course.Prerequisite, error) {
	var row struct {
		ID                   int       `db:"id"`
		CourseID             int       `db:"course_id"`
		PrerequisiteCourseID int       `db:"prerequisite_course_id"`
		CreatedAt            time.Time `db:"created_at"`
	}
	err := repo.getExec(exec).GetContext(ctx, &row, `
		INSERT INTO course_prerequisites (course_id, prerequisite_course_id)
		VALUES ($1, $2)
		RETURNING *`,
		edge.CourseID, edge.PrerequisiteCourseID,
	)
	if err != nil {
		cause := errors.Cause(err)
		if isUniqueViolation(cause) {
			return course.Prerequisite{}, course.ErrPrerequisiteExists
		}
		if isFKeyViolation(cause) {
			return course.Prerequisite{}, course.ErrNotFound
		}
		return course.Prerequisite{}, errors.Wrap(err, "inserting prerequisite")
	}
	return course.Prerequisite{
		ID:                   row.ID,
		CourseID:             row.CourseID,
		PrerequisiteCourseID: row.PrerequisiteCourseID,
		CreatedAt:            row.CreatedAt,
	}, nil
}

func (repo courseRepository) DeletePrerequisite(ctx context.Context, courseID, prereqCourseID int, exec ...core.DBExecutor) (bool, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `
		DELETE FROM course_prerequisites WHERE course_id = $1 AND prerequisite_course_id = $2`,
		courseID, prereqCourseID,
	)
	if err != nil {
		return false, errors.Wrap(err, "deleting prerequisite")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "deleting prerequisite")
	}
	return cnt > 0, nil
}

func (repo courseRepository) QueryPrerequisites(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]course.Course, error) {
	var rows []courseRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT c.* FROM courses c
		JOIN course_prerequisites cp ON cp.prerequisite_course_id = c.id
		WHERE cp.course_id = $1
		ORDER BY c.title ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying prerequisites")
	}
	return unpackCourses(rows), nil
}

func (repo courseRepository) QueryDependents(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]course.Course, error) {
	var rows []courseRow
	err := repo.getExec(exec).SelectContext(ctx, &rows, `
		SELECT c.* FROM courses c
		JOIN course_prerequisites cp ON cp.course_id = c.id
		WHERE cp.prerequisite_course_id = $1
		ORDER BY c.title ASC`, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying dependent courses")
	}
	return unpackCourses(rows), nil
}
