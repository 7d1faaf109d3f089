package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	crs.ID = repo.db.nextPK()
	now := time.Now().UTC()
	crs.CreatedAt = now
	crs.UpdatedAt = now
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) QueryCourses(ctx context.Context, programmeID int, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		if programmeID != 0 && crs.ProgrammeID != programmeID {
			continue
		}
		courses = append(courses, *crs)
	}
	sortCourses(courses)
	return courses, nil
}

func sortCourses(courses []course.Course) {
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].SequenceOrder != courses[j].SequenceOrder {
			return courses[i].SequenceOrder < courses[j].SequenceOrder
		}
		return courses[i].ID < courses[j].ID
	})
}

func (repo *courseRepository) GetCourse(ctx context.Context, id int, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) GetCourseWithModules(ctx context.Context, id int, exec ...core.DBExecutor) (course.CourseWithModules, error) {
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

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course, exec ...core.DBExecutor) (course.Course, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[crs.ID]; !ok {
		return course.Course{}, course.ErrNotFound
	}
	crs.UpdatedAt = time.Now().UTC()
	repo.db.courses[crs.ID] = &crs
	return crs, nil
}

// DeleteCoursesByID cascades to modules, their progress rows and both
// directions of prerequisite edges, like the schema's ON DELETE CASCADE.
func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.courses[id]; !ok {
			continue
		}
		delete(repo.db.courses, id)
		cnt++

		for modID, mod := range repo.db.modules {
			if mod.CourseID == id {
				delete(repo.db.modules, modID)
				for trkID, trk := range repo.db.progress {
					if trk.ModuleID == modID {
						delete(repo.db.progress, trkID)
					}
				}
			}
		}
		for edgeID, edge := range repo.db.prerequisites {
			if edge.CourseID == id || edge.PrerequisiteCourseID == id {
				delete(repo.db.prerequisites, edgeID)
			}
		}
	}
	return cnt, nil
}

func (repo *courseRepository) CreateModule(ctx context.Context, mod course.Module, exec ...core.DBExecutor) (course.Module, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[mod.CourseID]; !ok {
		return course.Module{}, course.ErrNotFound
	}
	mod.ID = repo.db.nextPK()
	now := time.Now().UTC()
	mod.CreatedAt = now
	mod.UpdatedAt = now
	repo.db.modules[mod.ID] = &mod
	return mod, nil
}

func (repo *courseRepository) QueryModulesByCourse(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	modules := make([]course.Module, 0)
	for _, mod := range repo.db.modules {
		if mod.CourseID == courseID {
			modules = append(modules, *mod)
		}
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].SequenceOrder != modules[j].SequenceOrder {
			return modules[i].SequenceOrder < modules[j].SequenceOrder
		}
		return modules[i].ID < modules[j].ID
	})
	return modules, nil
}

func (repo *courseRepository) DeleteModulesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.modules[id]; ok {
			delete(repo.db.modules, id)
			cnt++
			for trkID, trk := range repo.db.progress {
				if trk.ModuleID == id {
					delete(repo.db.progress, trkID)
				}
			}
		}
	}
	return cnt, nil
}

func (repo *courseRepository) CreatePrerequisite(ctx context.Context, edge course.Prerequisite, exec ...core.DBExecutor) (course.Prerequisite, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.courses[edge.CourseID]; !ok {
		return course.Prerequisite{}, course.ErrNotFound
	}
	if _, ok := repo.db.courses[edge.PrerequisiteCourseID]; !ok {
		return course.Prerequisite{}, course.ErrNotFound
	}
	for _, existing := range repo.db.prerequisites {
		if existing.CourseID == edge.CourseID && existing.PrerequisiteCourseID == edge.PrerequisiteCourseID {
			return course.Prerequisite{}, course.ErrPrerequisiteExists
		}
	}

	edge.ID = repo.db.nextPK()
	edge.CreatedAt = time.Now().UTC()
	repo.db.prerequisites[edge.ID] = &edge
	return edge, nil
}

func (repo *courseRepository) DeletePrerequisite(ctx context.Context, courseID, prereqCourseID int, exec ...core.DBExecutor) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for id, edge := range repo.db.prerequisites {
		if edge.CourseID == courseID && edge.PrerequisiteCourseID == prereqCourseID {
			delete(repo.db.prerequisites, id)
			return true, nil
		}
	}
	return false, nil
}

func (repo *courseRepository) QueryPrerequisites(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, edge := range repo.db.prerequisites {
		if edge.CourseID == courseID {
			if crs, ok := repo.db.courses[edge.PrerequisiteCourseID]; ok {
				courses = append(courses, *crs)
			}
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}

func (repo *courseRepository) QueryDependents(ctx context.Context, courseID int, exec ...core.DBExecutor) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0)
	for _, edge := range repo.db.prerequisites {
		if edge.PrerequisiteCourseID == courseID {
			if crs, ok := repo.db.courses[edge.CourseID]; ok {
				courses = append(courses, *crs)
			}
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}
