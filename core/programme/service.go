package programme

import (
	"context"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
)

var ErrNotFound = errors.New("programme not found")

type Repository interface {
	CreateProgramme(ctx context.Context, prog Programme, exec ...core.DBExecutor) (Programme, error)
	QueryProgrammes(ctx context.Context, status string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Programme, error)
	GetProgramme(ctx context.Context, id int, exec ...core.DBExecutor) (Programme, error)
	UpdateProgramme(ctx context.Context, prog Programme, exec ...core.DBExecutor) (Programme, error)
	DeleteProgrammesByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error
}

type ServiceInterface interface {
	Create(ctx context.Context, np NewProgramme, createdBy int) (Programme, error)
	Query(ctx context.Context, status string) ([]Programme, error)
	GetByID(ctx context.Context, id int) (Programme, error)
	Update(ctx context.Context, id int, up UpdateProgramme) (Programme, error)
	Delete(ctx context.Context, ids ...int) error
}

type Service struct {
	db   core.DB
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewProgramme, createdBy int) (Programme, error) {
	prog := Programme{
		Name:            np.Name,
		Description:     np.Description,
		Type:            np.Type,
		StartDate:       np.StartDate,
		EndDate:         np.EndDate,
		Status:          np.Status,
		MaxParticipants: np.MaxParticipants,
		CreatedBy:       createdBy,
	}
	return svc.repo.CreateProgramme(ctx, prog)
}

func (svc *Service) Query(ctx context.Context, status string) ([]Programme, error) {
	ordering := []core.DBOrdering{{Field: "created_at", Ascending: false}}
	return svc.repo.QueryProgrammes(ctx, status, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Programme, error) {
	return svc.repo.GetProgramme(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, up UpdateProgramme) (Programme, error) {
	prog, err := svc.repo.GetProgramme(ctx, id)
	if err != nil {
		return Programme{}, err
	}
	if up.Name != "" {
		prog.Name = up.Name
	}
	if up.Description != "" {
		prog.Description = up.Description
	}
	if up.Type != "" {
		prog.Type = up.Type
	}
	if up.StartDate != nil {
		prog.StartDate = up.StartDate
	}
	if up.EndDate != nil {
		prog.EndDate = up.EndDate
	}
	if up.Status != "" {
		prog.Status = up.Status
	}
	if up.MaxParticipants != nil {
		prog.MaxParticipants = *up.MaxParticipants
	}
	return svc.repo.UpdateProgramme(ctx, prog)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteProgrammesByID(ctx, ids)
}
