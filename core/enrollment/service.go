package enrollment

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/user"
)

var (
	// errors
	ErrNotFound          = errors.New("enrollment not found")
	ErrAlreadyEnrolled   = errors.New("user already enrolled in this cohort")
	ErrTransactionFailed = errors.New("enrollment transaction failed")
)

type (
	Repository interface {
		// CreateEnrollment translates a (cohort_id, user_id) unique violation
		// to ErrAlreadyEnrolled.
		CreateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		// InsertEnrollmentSkipConflict inserts with ON CONFLICT (cohort_id, user_id)
		// DO NOTHING; inserted is false when the row already existed.
		InsertEnrollmentSkipConflict(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (created Enrollment, inserted bool, err error)
		QueryEnrollments(ctx context.Context, cohortID, userID int, exec ...core.DBExecutor) ([]Enrollment, error)
		GetEnrollment(ctx context.Context, id int, exec ...core.DBExecutor) (Enrollment, error)
		UpdateEnrollment(ctx context.Context, enr Enrollment, exec ...core.DBExecutor) (Enrollment, error)
		DeleteEnrollmentsByID(ctx context.Context, ids []int, exec ...core.DBExecutor) (int, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		usrSvc  user.ServiceInterface
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(db core.DB, repo Repository, usrSvc user.ServiceInterface, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		db:      db,
		repo:    repo,
		usrSvc:  usrSvc,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *Service) Enroll(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	enr, err := svc.repo.CreateEnrollment(ctx, Enrollment{
		CohortID:       ne.CohortID,
		UserID:         ne.UserID,
		Status:         ne.Status,
		EnrollmentDate: time.Now().UTC(),
		Notes:          ne.Notes,
	})
	if err != nil {
		if errors.Cause(err) == ErrAlreadyEnrolled {
			return Enrollment{}, core.NewValidationError(
				ErrAlreadyEnrolled,
				core.FieldError{Field: "user_id", Error: ErrAlreadyEnrolled.Error()},
			)
		}
		return Enrollment{}, err
	}

	svc.notifyEnrolled(ctx, enr)
	return enr, nil
}

// BulkEnroll enrolls users in a cohort in a single transaction.
// Already-enrolled users are silently skipped (ON CONFLICT DO NOTHING), so
// the whole batch is idempotent per row; only actually-created rows are
// returned. Any other database error rolls the whole batch back.
//
// This deliberately differs from attendance.Service.BulkRecord, which treats
// every entry as a fresh event and fails the batch on any error.
func (svc *Service) BulkEnroll(ctx context.Context, be BulkEnrollment) (BulkEnrollmentResult, error) {
	tx, err := svc.db.BeginTxx(ctx, nil)
	if err != nil {
		return BulkEnrollmentResult{}, errors.Wrap(ErrTransactionFailed, err.Error())
	}

	created := make([]Enrollment, 0, len(be.UserIDs))
	now := time.Now().UTC()
	for _, uid := range be.UserIDs {
		enr, inserted, err := svc.repo.InsertEnrollmentSkipConflict(ctx, Enrollment{
			CohortID:       be.CohortID,
			UserID:         uid,
			Status:         StatusEnrolled,
			EnrollmentDate: now,
		}, tx)
		if err != nil {
			_ = tx.Rollback()
			return BulkEnrollmentResult{}, errors.Wrap(ErrTransactionFailed, err.Error())
		}
		if inserted {
			created = append(created, enr)
		}
	}

	if err = tx.Commit(); err != nil {
		return BulkEnrollmentResult{}, errors.Wrap(ErrTransactionFailed, err.Error())
	}

	for _, enr := range created {
		svc.notifyEnrolled(ctx, enr)
	}
	return BulkEnrollmentResult{Enrolled: len(created), Enrollments: created}, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, 0, 0)
}

func (svc *Service) QueryByCohort(ctx context.Context, cohortID int) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, cohortID, 0)
}

func (svc *Service) QueryByUser(ctx context.Context, userID int) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, 0, userID)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Enrollment, error) {
	return svc.repo.GetEnrollment(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ue UpdateEnrollment) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, id)
	if err != nil {
		return Enrollment{}, err
	}

	if ue.Status != "" {
		enr.Status = ue.Status
	}
	if ue.CompletionDate != nil {
		enr.CompletionDate = ue.CompletionDate
	}
	if ue.CompletionPercentage != nil {
		enr.CompletionPercentage = *ue.CompletionPercentage
	}
	if ue.Notes != "" {
		enr.Notes = ue.Notes
	}
	return svc.repo.UpdateEnrollment(ctx, enr)
}

func (svc *Service) Withdraw(ctx context.Context, ids ...int) error {
	_, err := svc.repo.DeleteEnrollmentsByID(ctx, ids)
	return err
}

func (svc *Service) notifyEnrolled(ctx context.Context, enr Enrollment) {
	usr, err := svc.usrSvc.GetByID(ctx, enr.UserID)
	if err != nil {
		return // enrollment stands; the notification is best-effort
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject:      "You have been enrolled",
		TemplateName: "enrolled",
		TemplateData: struct {
			Username string
			CohortID int
		}{usr.Username, enr.CohortID},
	})
}
