package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/cohort"
)

type cohortRepository struct {
	db *DB
}

var _ cohort.Repository = (*cohortRepository)(nil) // interface compliance check

func NewCohortRepository(db *DB) *cohortRepository {
	return &cohortRepository{db: db}
}

func (repo *cohortRepository) CreateCohort(ctx context.Context, coh cohort.Cohort, exec ...core.DBExecutor) (cohort.Cohort, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.programmes[coh.ProgrammeID]; !ok {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	coh.ID = repo.db.nextPK()
	now := time.Now().UTC()
	coh.CreatedAt = now
	coh.UpdatedAt = now
	repo.db.cohorts[coh.ID] = &coh
	return coh, nil
}

func (repo *cohortRepository) QueryCohorts(ctx context.Context, programmeID int, status string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]cohort.CohortWithCounts, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	cohorts := make([]cohort.CohortWithCounts, 0)
	for id, coh := range repo.db.cohorts {
		if programmeID != 0 && coh.ProgrammeID != programmeID {
			continue
		}
		if status != "" && coh.Status != status {
			continue
		}

		withCounts := cohort.CohortWithCounts{Cohort: *coh}
		for _, enr := range repo.db.enrollments {
			if enr.CohortID == id {
				withCounts.EnrolledCount++
			}
		}
		for _, sess := range repo.db.sessions {
			if sess.CohortID == id {
				withCounts.SessionCount++
			}
		}
		cohorts = append(cohorts, withCounts)
	}
	sort.Slice(cohorts, func(i, j int) bool { return cohorts[i].ID < cohorts[j].ID })
	return cohorts, nil
}

func (repo *cohortRepository) GetCohort(ctx context.Context, id int, exec ...core.DBExecutor) (cohort.Cohort, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if coh, ok := repo.db.cohorts[id]; ok {
		return *coh, nil
	}
	return cohort.Cohort{}, cohort.ErrNotFound
}

func (repo *cohortRepository) UpdateCohort(ctx context.Context, coh cohort.Cohort, exec ...core.DBExecutor) (cohort.Cohort, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.cohorts[coh.ID]; !ok {
		return cohort.Cohort{}, cohort.ErrNotFound
	}
	coh.UpdatedAt = time.Now().UTC()
	repo.db.cohorts[coh.ID] = &coh
	return coh, nil
}

// DeleteCohortsByID cascades to enrollments, attendance records and sessions.
func (repo *cohortRepository) DeleteCohortsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.cohorts, id)
		for enrID, enr := range repo.db.enrollments {
			if enr.CohortID == id {
				delete(repo.db.enrollments, enrID)
			}
		}
		for recID, rec := range repo.db.attendance {
			if rec.CohortID == id {
				delete(repo.db.attendance, recID)
			}
		}
		for sessID, sess := range repo.db.sessions {
			if sess.CohortID == id {
				delete(repo.db.sessions, sessID)
			}
		}
	}
	return nil
}
