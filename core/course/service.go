package course

import (
	"context"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
)

var (
	// errors
	ErrNotFound             = errors.New("course not found")
	ErrModuleNotFound       = errors.New("module not found")
	ErrSelfPrerequisite     = errors.New("a course cannot be a prerequisite of itself")
	ErrPrerequisiteExists   = errors.New("this prerequisite already exists")
	ErrPrerequisiteNotFound = errors.New("prerequisite relationship not found")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		QueryCourses(ctx context.Context, programmeID int, exec ...core.DBExecutor) ([]Course, error)
		GetCourse(ctx context.Context, id int, exec ...core.DBExecutor) (Course, error)
		GetCourseWithModules(ctx context.Context, id int, exec ...core.DBExecutor) (CourseWithModules, error)
		UpdateCourse(ctx context.Context, crs Course, exec ...core.DBExecutor) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error)

		CreateModule(ctx context.Context, mod Module, exec ...core.DBExecutor) (Module, error)
		QueryModulesByCourse(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]Module, error)
		DeleteModulesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error)

		// CreatePrerequisite translates a unique violation to ErrPrerequisiteExists
		// and a foreign-key violation to ErrNotFound.
		CreatePrerequisite(ctx context.Context, edge Prerequisite, exec ...core.DBExecutor) (Prerequisite, error)
		DeletePrerequisite(ctx context.Context, courseID, prereqCourseID int, exec ...core.DBExecutor) (bool, error)
		QueryPrerequisites(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]Course, error)
		QueryDependents(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]Course, error)
	}

	// CompletionService computes a user's completion percentage of a course.
	CompletionService interface {
		CourseCompletion(ctx context.Context, userID, courseID int) (float64, error)
	}

	Service struct {
		db            core.DB
		repo          Repository
		completionSvc CompletionService
	}
)

func NewService(db core.DB, repo Repository, completionSvc CompletionService) *Service {
	return &Service{
		db:            db,
		repo:          repo,
		completionSvc: completionSvc,
	}
}

func (svc *Service) Create(ctx context.Context, nc NewCourse) (Course, error) {
	return svc.repo.CreateCourse(ctx, Course{
		ProgrammeID:     nc.ProgrammeID,
		Title:           nc.Title,
		Description:     nc.Description,
		DurationMinutes: nc.DurationMinutes,
		SequenceOrder:   nc.SequenceOrder,
		IsPublished:     nc.IsPublished,
	})
}

func (svc *Service) Query(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, 0)
}

func (svc *Service) QueryByProgramme(ctx context.Context, programmeID int) ([]Course, error) {
	return svc.repo.QueryCourses(ctx, programmeID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Course, error) {
	return svc.repo.GetCourse(ctx, id)
}

func (svc *Service) GetWithModules(ctx context.Context, id int) (CourseWithModules, error) {
	return svc.repo.GetCourseWithModules(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}

	if uc.Title != "" {
		crs.Title = uc.Title
	}
	if uc.Description != "" {
		crs.Description = uc.Description
	}
	if uc.DurationMinutes != nil {
		crs.DurationMinutes = *uc.DurationMinutes
	}
	if uc.SequenceOrder != nil {
		crs.SequenceOrder = *uc.SequenceOrder
	}
	if uc.IsPublished != nil {
		crs.IsPublished = *uc.IsPublished
	}
	return svc.repo.UpdateCourse(ctx, crs)
}

// Delete removes courses; their modules and any prerequisite edges
// referencing them (in either direction) go with them via FK cascade.
func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	_, err := svc.repo.DeleteCoursesByID(ctx, ids)
	return err
}

func (svc *Service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	return svc.repo.CreateModule(ctx, Module{
		CourseID:        nm.CourseID,
		Title:           nm.Title,
		Description:     nm.Description,
		ContentType:     nm.ContentType,
		SequenceOrder:   nm.SequenceOrder,
		DurationMinutes: nm.DurationMinutes,
		IsPublished:     nm.IsPublished,
	})
}

func (svc *Service) QueryModules(ctx context.Context, courseID int) ([]Module, error) {
	return svc.repo.QueryModulesByCourse(ctx, courseID)
}

func (svc *Service) DeleteModules(ctx context.Context, ids ...int) error {
	_, err := svc.repo.DeleteModulesByID(ctx, ids)
	return err
}

// AddPrerequisite records that courseID requires prereqCourseID.
// Self-references are rejected; duplicate edges surface as
// ErrPrerequisiteExists. Cycles of length > 1 are not checked.
func (svc *Service) AddPrerequisite(ctx context.Context, courseID, prereqCourseID int) (Prerequisite, error) {
	if courseID == prereqCourseID {
		return Prerequisite{}, core.NewValidationError(
			ErrSelfPrerequisite,
			core.FieldError{Field: "prerequisite_course_id", Error: ErrSelfPrerequisite.Error()},
		)
	}
	edge, err := svc.repo.CreatePrerequisite(ctx, Prerequisite{
		CourseID:             courseID,
		PrerequisiteCourseID: prereqCourseID,
	})
	if err != nil {
		if errors.Cause(err) == ErrPrerequisiteExists {
			return Prerequisite{}, core.NewValidationError(
				ErrPrerequisiteExists,
				core.FieldError{Field: "prerequisite_course_id", Error: ErrPrerequisiteExists.Error()},
			)
		}
		return Prerequisite{}, err
	}
	return edge, nil
}

// RemovePrerequisite deletes the edge; a missing edge is reported as
// ErrPrerequisiteNotFound so callers can tell "removed" from "nothing
// to remove".
func (svc *Service) RemovePrerequisite(ctx context.Context, courseID, prereqCourseID int) error {
	deleted, err := svc.repo.DeletePrerequisite(ctx, courseID, prereqCourseID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrPrerequisiteNotFound
	}
	return nil
}

// QueryPrerequisites returns the courses that courseID directly requires, ordered by title.
func (svc *Service) QueryPrerequisites(ctx context.Context, courseID int) ([]Course, error) {
	return svc.repo.QueryPrerequisites(ctx, courseID)
}

// QueryDependents returns the courses that directly require courseID, ordered by title.
func (svc *Service) QueryDependents(ctx context.Context, courseID int) ([]Course, error) {
	return svc.repo.QueryDependents(ctx, courseID)
}

// CheckAccess gates a user's access to a course on its direct prerequisites.
// Each prerequisite counts as completed iff the user's completion percentage
// in it reaches 100. The check is intentionally shallow: a prerequisite's own
// prerequisites are not verified, keeping the decision O(edges).
// Completion is recomputed on every call; nothing is cached.
func (svc *Service) CheckAccess(ctx context.Context, userID, courseID int) (AccessCheck, error) {
	prereqs, err := svc.repo.QueryPrerequisites(ctx, courseID)
	if err != nil {
		return AccessCheck{}, err
	}

	check := AccessCheck{
		HasAccess:     true,
		Prerequisites: make([]PrerequisiteStatus, 0, len(prereqs)),
	}
	for _, crs := range prereqs {
		pct, err := svc.completionSvc.CourseCompletion(ctx, userID, crs.ID)
		if err != nil {
			return AccessCheck{}, errors.Wrapf(err, "computing completion of course %d", crs.ID)
		}
		status := PrerequisiteStatus{
			PrerequisiteCourseID: crs.ID,
			Title:                crs.Title,
			CompletionPercentage: pct,
			IsCompleted:          pct >= 100,
		}
		if !status.IsCompleted {
			check.HasAccess = false
			check.MissingCount++
		}
		check.Prerequisites = append(check.Prerequisites, status)
	}
	return check, nil
}
