package analytics

import (
	"context"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
)

var ErrNotFound = errors.New("programme not found")

type Repository interface {
	GetOverview(ctx context.Context, exec ...core.DBExecutor) (Overview, error)
	GetProgrammeStats(ctx context.Context, programmeID int, exec ...core.DBExecutor) (ProgrammeStats, error)
	QueryUserEngagement(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]UserEngagement, error)
}

type ServiceInterface interface {
	Overview(ctx context.Context) (Overview, error)
	ProgrammeStats(ctx context.Context, programmeID int) (ProgrammeStats, error)
	UserEngagement(ctx context.Context, cohortID int) ([]UserEngagement, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Overview(ctx context.Context) (Overview, error) {
	return svc.repo.GetOverview(ctx)
}

func (svc *Service) ProgrammeStats(ctx context.Context, programmeID int) (ProgrammeStats, error) {
	return svc.repo.GetProgrammeStats(ctx, programmeID)
}

func (svc *Service) UserEngagement(ctx context.Context, cohortID int) ([]UserEngagement, error) {
	return svc.repo.QueryUserEngagement(ctx, cohortID)
}
