package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
)

var (
	// errors
	ErrNotFound = errors.New("progress record not found")
)

type (
	Repository interface {
		// UpsertTracking inserts or updates on the (user_id, module_id) unique pair.
		UpsertTracking(ctx context.Context, trk Tracking, exec ...core.DBExecutor) (Tracking, error)
		QueryTrackingByUser(ctx context.Context, userID int, exec ...core.DBExecutor) ([]Tracking, error)
		GetUserSummary(ctx context.Context, userID int, exec ...core.DBExecutor) (UserSummary, error)
		// GetCourseCompletionCounts counts the course's modules and, of those,
		// the ones the user has completed.
		GetCourseCompletionCounts(ctx context.Context, userID, courseID int, exec ...core.DBExecutor) (CourseCompletionCounts, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// StartModule marks a module in progress for the user, creating the
// tracking row on first access.
func (svc *Service) StartModule(ctx context.Context, userID, moduleID int) (Tracking, error) {
	now := time.Now().UTC()
	return svc.repo.UpsertTracking(ctx, Tracking{
		UserID:         userID,
		ModuleID:       moduleID,
		Status:         StatusInProgress,
		StartedAt:      &now,
		LastAccessedAt: &now,
	})
}

// CompleteModule marks a module completed for the user.
func (svc *Service) CompleteModule(ctx context.Context, userID, moduleID int, timeSpentMinutes int) (Tracking, error) {
	now := time.Now().UTC()
	return svc.repo.UpsertTracking(ctx, Tracking{
		UserID:           userID,
		ModuleID:         moduleID,
		Status:           StatusCompleted,
		CompletedAt:      &now,
		TimeSpentMinutes: timeSpentMinutes,
		LastAccessedAt:   &now,
	})
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Tracking, error) {
	return svc.repo.QueryTrackingByUser(ctx, userID)
}

func (svc *Service) UserSummary(ctx context.Context, userID int) (UserSummary, error) {
	return svc.repo.GetUserSummary(ctx, userID)
}

// CourseCompletion derives the user's completion percentage of a course
// from module-level progress: completed modules over total modules, scaled
// to 0-100. A course with zero modules is 0% complete for everyone; a
// course with no content cannot be "complete". Stateless read, recomputed
// on every call.
func (svc *Service) CourseCompletion(ctx context.Context, userID, courseID int) (float64, error) {
	counts, err := svc.repo.GetCourseCompletionCounts(ctx, userID, courseID)
	if err != nil {
		return 0, err
	}
	if counts.TotalModules == 0 {
		return 0, nil
	}
	return float64(counts.CompletedModules) / float64(counts.TotalModules) * 100, nil
}
