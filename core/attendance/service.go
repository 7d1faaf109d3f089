package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
)

var (
	// errors
	ErrNotFound          = errors.New("attendance record not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTransactionFailed = errors.New("attendance transaction failed")
)

type (
	Repository interface {
		CreateRecord(ctx context.Context, rec Record, exec ...core.DBExecutor) (Record, error)
		QueryRecords(ctx context.Context, cohortID, userID int, exec ...core.DBExecutor) ([]Record, error)
		GetCohortStats(ctx context.Context, cohortID int, exec ...core.DBExecutor) (CohortStats, error)
		DeleteRecordsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error)

		CreateSession(ctx context.Context, sess Session, exec ...core.DBExecutor) (Session, error)
		QuerySessionsByCohort(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]Session, error)
		QuerySessionsWithStats(ctx context.Context, cohortID int, exec ...core.DBExecutor) ([]SessionWithStats, error)
		GetSession(ctx context.Context, id int, exec ...core.DBExecutor) (Session, error)
		UpdateSession(ctx context.Context, sess Session, exec ...core.DBExecutor) (Session, error)
		DeleteSessionsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Record marks one participant's attendance. Re-marking the same
// participant/session creates a fresh row; attendance is an event log,
// not an upsert (unlike enrollment).
func (svc *Service) Record(ctx context.Context, nr NewRecord, recordedBy int) (Record, error) {
	return svc.repo.CreateRecord(ctx, Record{
		CohortID:    nr.CohortID,
		UserID:      nr.UserID,
		SessionDate: nr.SessionDate,
		SessionName: nr.SessionName,
		Status:      nr.Status,
		Notes:       nr.Notes,
		RecordedBy:  recordedBy,
		RecordedAt:  time.Now().UTC(),
	})
}

// BulkRecord inserts one attendance row per entry inside a single
// transaction, in input order. Any failure rolls the whole batch back and
// surfaces ErrTransactionFailed; the caller gets either every created row
// or none. An empty batch commits trivially.
func (svc *Service) BulkRecord(ctx context.Context, br BulkRecording, recordedBy int) ([]Record, error) {
	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(ErrTransactionFailed, err.Error())
	}

	now := time.Now().UTC()
	records := make([]Record, 0, len(br.Entries))
	for _, entry := range br.Entries {
		rec, err := svc.repo.CreateRecord(ctx, Record{
			CohortID:    br.CohortID,
			UserID:      entry.UserID,
			SessionDate: br.SessionDate,
			SessionName: br.SessionName,
			Status:      entry.Status,
			RecordedBy:  recordedBy,
			RecordedAt:  now,
		}, tx)
		if err != nil {
			_ = tx.Rollback()
			return nil, errors.Wrap(ErrTransactionFailed, err.Error())
		}
		records = append(records, rec)
	}

	if err = tx.Commit(); err != nil {
		return nil, errors.Wrap(ErrTransactionFailed, err.Error())
	}
	return records, nil
}

func (svc *Service) QueryByCohort(ctx context.Context, cohortID int) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, cohortID, 0)
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, 0, userID)
}

func (svc *Service) CohortStats(ctx context.Context, cohortID int) (CohortStats, error) {
	return svc.repo.GetCohortStats(ctx, cohortID)
}

func (svc *Service) DeleteRecords(ctx context.Context, ids ...int) error {
	_, err := svc.repo.DeleteRecordsByID(ctx, ids)
	return err
}

// Sessions

func (svc *Service) CreateSession(ctx context.Context, ns NewSession) (Session, error) {
	return svc.repo.CreateSession(ctx, Session{
		CohortID:    ns.CohortID,
		Name:        ns.Name,
		Date:        ns.Date,
		StartTime:   ns.StartTime,
		EndTime:     ns.EndTime,
		Location:    ns.Location,
		Description: ns.Description,
		Type:        ns.Type,
		CreatedAt:   time.Now().UTC(),
	})
}

func (svc *Service) QuerySessions(ctx context.Context, cohortID int) ([]Session, error) {
	return svc.repo.QuerySessionsByCohort(ctx, cohortID)
}

func (svc *Service) QuerySessionsWithStats(ctx context.Context, cohortID int) ([]SessionWithStats, error) {
	return svc.repo.QuerySessionsWithStats(ctx, cohortID)
}

func (svc *Service) GetSession(ctx context.Context, id int) (Session, error) {
	return svc.repo.GetSession(ctx, id)
}

func (svc *Service) UpdateSession(ctx context.Context, id int, us UpdateSession) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}

	if us.Name != "" {
		sess.Name = us.Name
	}
	if us.Date != nil {
		sess.Date = *us.Date
	}
	if us.StartTime != "" {
		sess.StartTime = us.StartTime
	}
	if us.EndTime != "" {
		sess.EndTime = us.EndTime
	}
	if us.Location != "" {
		sess.Location = us.Location
	}
	if us.Description != "" {
		sess.Description = us.Description
	}
	if us.Type != "" {
		sess.Type = us.Type
	}
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *Service) CompleteSession(ctx context.Context, id int, notes string) (Session, error) {
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return Session{}, err
	}
	sess.IsCompleted = true
	if notes != "" {
		sess.Notes = notes
	}
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *Service) DeleteSessions(ctx context.Context, ids ...int) error {
	_, err := svc.repo.DeleteSessionsByID(ctx, ids)
	return err
}
