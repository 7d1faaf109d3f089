package dummydb

import (
	"context"
	"sort"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/progress"
)

type progressRepository struct {
	db *DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo *progressRepository) UpsertTracking(ctx context.Context, trk progress.Tracking, exec ...core.DBExecutor) (progress.Tracking, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[trk.UserID]; !ok {
		return progress.Tracking{}, progress.ErrNotFound
	}
	if _, ok := repo.db.modules[trk.ModuleID]; !ok {
		return progress.Tracking{}, progress.ErrNotFound
	}

	for _, existing := range repo.db.progress {
		if existing.UserID == trk.UserID && existing.ModuleID == trk.ModuleID {
			trk.ID = existing.ID
			if existing.StartedAt != nil {
				trk.StartedAt = existing.StartedAt
			}
			trk.TimeSpentMinutes += existing.TimeSpentMinutes
			repo.db.progress[trk.ID] = &trk
			return trk, nil
		}
	}

	trk.ID = repo.db.nextPK()
	repo.db.progress[trk.ID] = &trk
	return trk, nil
}

func (repo *progressRepository) QueryTrackingByUser(ctx context.Context, userID int, exec ...core.DBExecutor) ([]progress.Tracking, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	trackings := make([]progress.Tracking, 0)
	for _, trk := range repo.db.progress {
		if trk.UserID == userID {
			trackings = append(trackings, *trk)
		}
	}
	sort.Slice(trackings, func(i, j int) bool { return trackings[i].ID < trackings[j].ID })
	return trackings, nil
}

func (repo *progressRepository) GetUserSummary(ctx context.Context, userID int, exec ...core.DBExecutor) (progress.UserSummary, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var summary progress.UserSummary
	for _, trk := range repo.db.progress {
		if trk.UserID != userID {
			continue
		}
		summary.TotalModules++
		summary.TimeSpentMinutes += trk.TimeSpentMinutes
		switch trk.Status {
		case progress.StatusCompleted:
			summary.CompletedModules++
		case progress.StatusInProgress:
			summary.InProgress++
		}
	}
	return summary, nil
}

func (repo *progressRepository) GetCourseCompletionCounts(ctx context.Context, userID, courseID int, exec ...core.DBExecutor) (progress.CourseCompletionCounts, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var counts progress.CourseCompletionCounts
	for modID, mod := range repo.db.modules {
		if mod.CourseID != courseID {
			continue
		}
		counts.TotalModules++
		for _, trk := range repo.db.progress {
			if trk.UserID == userID && trk.ModuleID == modID && trk.Status == progress.StatusCompleted {
				counts.CompletedModules++
				break
			}
		}
	}
	return counts, nil
}
