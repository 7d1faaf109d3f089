package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/programme"
)

type programmeRepository struct {
	db *DB
}

var _ programme.Repository = (*programmeRepository)(nil) // interface compliance check

func NewProgrammeRepository(db *DB) *programmeRepository {
	return &programmeRepository{db: db}
}

func (repo *programmeRepository) CreateProgramme(ctx context.Context, prog programme.Programme, exec ...core.DBExecutor) (programme.Programme, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	prog.ID = repo.db.nextPK()
	now := time.Now().UTC()
	prog.CreatedAt = now
	prog.UpdatedAt = now
	repo.db.programmes[prog.ID] = &prog
	return prog, nil
}

func (repo *programmeRepository) QueryProgrammes(ctx context.Context, status string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]programme.Programme, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	progs := make([]programme.Programme, 0, len(repo.db.programmes))
	for _, prog := range repo.db.programmes {
		if status != "" && prog.Status != status {
			continue
		}
		progs = append(progs, *prog)
	}
	sort.Slice(progs, func(i, j int) bool { return progs[i].ID < progs[j].ID })
	return progs, nil
}

func (repo *programmeRepository) GetProgramme(ctx context.Context, id int, exec ...core.DBExecutor) (programme.Programme, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prog, ok := repo.db.programmes[id]; ok {
		return *prog, nil
	}
	return programme.Programme{}, programme.ErrNotFound
}

func (repo *programmeRepository) UpdateProgramme(ctx context.Context, prog programme.Programme, exec ...core.DBExecutor) (programme.Programme, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.programmes[prog.ID]; !ok {
		return programme.Programme{}, programme.ErrNotFound
	}
	prog.UpdatedAt = time.Now().UTC()
	repo.db.programmes[prog.ID] = &prog
	return prog, nil
}

// DeleteProgrammesByID cascades to the programme's cohorts and courses.
func (repo *programmeRepository) DeleteProgrammesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.programmes, id)
		for cohID, coh := range repo.db.cohorts {
			if coh.ProgrammeID == id {
				delete(repo.db.cohorts, cohID)
			}
		}
		for crsID, crs := range repo.db.courses {
			if crs.ProgrammeID == id {
				delete(repo.db.courses, crsID)
			}
		}
	}
	return nil
}
