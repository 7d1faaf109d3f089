package cohort

import (
	"context"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
)

var ErrNotFound = errors.New("cohort not found")

type Repository interface {
	CreateCohort(ctx context.Context, coh Cohort, exec ...core.DBExecutor) (Cohort, error)
	QueryCohorts(ctx context.Context, programmeID int, status string, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]CohortWithCounts, error)
	GetCohort(ctx context.Context, id int, exec ...core.DBExecutor) (Cohort, error)
	UpdateCohort(ctx context.Context, coh Cohort, exec ...core.DBExecutor) (Cohort, error)
	DeleteCohortsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) error
}

type ServiceInterface interface {
	Create(ctx context.Context, nc NewCohort) (Cohort, error)
	Query(ctx context.Context, programmeID int, status string) ([]CohortWithCounts, error)
	GetByID(ctx context.Context, id int) (Cohort, error)
	Update(ctx context.Context, id int, uc UpdateCohort) (Cohort, error)
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

func (svc *Service) Create(ctx context.Context, nc NewCohort) (Cohort, error) {
	coh := Cohort{
		ProgrammeID:     nc.ProgrammeID,
		Name:            nc.Name,
		Description:     nc.Description,
		StartDate:       nc.StartDate,
		EndDate:         nc.EndDate,
		Status:          nc.Status,
		MaxParticipants: nc.MaxParticipants,
		MentorID:        nc.MentorID,
	}
	return svc.repo.CreateCohort(ctx, coh)
}

// Query lists cohorts with enrollment and session counts, newest first.
// programmeID and status filter when non-zero.
func (svc *Service) Query(ctx context.Context, programmeID int, status string) ([]CohortWithCounts, error) {
	ordering := []core.DBOrdering{{Field: "created_at", Ascending: false}}
	return svc.repo.QueryCohorts(ctx, programmeID, status, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Cohort, error) {
	return svc.repo.GetCohort(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCohort) (Cohort, error) {
	coh, err := svc.repo.GetCohort(ctx, id)
	if err != nil {
		return Cohort{}, err
	}
	if uc.Name != "" {
		coh.Name = uc.Name
	}
	if uc.Description != "" {
		coh.Description = uc.Description
	}
	if uc.StartDate != nil {
		coh.StartDate = uc.StartDate
	}
	if uc.EndDate != nil {
		coh.EndDate = uc.EndDate
	}
	if uc.Status != "" {
		coh.Status = uc.Status
	}
	if uc.MaxParticipants != nil {
		coh.MaxParticipants = *uc.MaxParticipants
	}
	if uc.MentorID != nil {
		coh.MentorID = *uc.MentorID
	}
	return svc.repo.UpdateCohort(ctx, coh)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteCohortsByID(ctx, ids)
}
