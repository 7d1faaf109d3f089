package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

// insert must be called with the write lock held.
func (repo *enrollmentRepository) insert(enr enrollment.Enrollment, exec []core.DBExecutor) enrollment.Enrollment {
	enr.ID = repo.db.nextPK()
	if enr.EnrollmentDate.IsZero() {
		enr.EnrollmentDate = time.Now().UTC()
	}
	repo.db.enrollments[enr.ID] = &enr

	if tx := undoableTx(exec); tx != nil {
		id := enr.ID
		tx.onRollback(func() { delete(repo.db.enrollments, id) })
	}
	return enr
}

// checkFKs must be called with at least the read lock held.
func (repo *enrollmentRepository) checkFKs(enr enrollment.Enrollment) error {
	if _, ok := repo.db.cohorts[enr.CohortID]; !ok {
		return enrollment.ErrNotFound
	}
	if _, ok := repo.db.users[enr.UserID]; !ok {
		return enrollment.ErrNotFound
	}
	return nil
}

// existing must be called with at least the read lock held.
func (repo *enrollmentRepository) existing(cohortID, userID int) *enrollment.Enrollment {
	for _, enr := range repo.db.enrollments {
		if enr.CohortID == cohortID && enr.UserID == userID {
			return enr
		}
	}
	return nil
}

func (repo *enrollmentRepository) CreateEnrollment(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkFKs(enr); err != nil {
		return enrollment.Enrollment{}, err
	}
	if repo.existing(enr.CohortID, enr.UserID) != nil {
		return enrollment.Enrollment{}, enrollment.ErrAlreadyEnrolled
	}
	return repo.insert(enr, exec), nil
}

func (repo *enrollmentRepository) InsertEnrollmentSkipConflict(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkFKs(enr); err != nil {
		return enrollment.Enrollment{}, false, err
	}
	if repo.existing(enr.CohortID, enr.UserID) != nil {
		return enrollment.Enrollment{}, false, nil
	}
	return repo.insert(enr, exec), true, nil
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, cohortID, userID int, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	enrollments := make([]enrollment.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if cohortID != 0 && enr.CohortID != cohortID {
			continue
		}
		if userID != 0 && enr.UserID != userID {
			continue
		}
		enrollments = append(enrollments, *enr)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })
	return enrollments, nil
}

func (repo *enrollmentRepository) GetEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.enrollments[id]; ok {
		return *enr, nil
	}
	return enrollment.Enrollment{}, enrollment.ErrNotFound
}

func (repo *enrollmentRepository) UpdateEnrollment(ctx context.Context, enr enrollment.Enrollment, exec ...core.DBExecutor) (enrollment.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.enrollments[enr.ID]; !ok {
		return enrollment.Enrollment{}, enrollment.ErrNotFound
	}
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *enrollmentRepository) DeleteEnrollmentsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.enrollments[id]; ok {
			delete(repo.db.enrollments, id)
			cnt++
		}
	}
	return cnt, nil
}
