package enrollment_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/cohort"
	"github.com/boardwave/academy/core/enrollment"
	"github.com/boardwave/academy/core/programme"
	"github.com/boardwave/academy/core/user"
	emailsvc "github.com/boardwave/academy/services/email"
	dummyrepos "github.com/boardwave/academy/storage/database/dummy"
)

type enrollTestEnv struct {
	svc        *enrollment.Service
	usrRepo    user.Repository
	cohortRepo cohort.Repository
	progRepo   programme.Repository
}

func newEnrollTestEnv(t *testing.T) enrollTestEnv {
	t.Helper()
	db, err := dummyrepos.Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	usrRepo := dummyrepos.NewUserRepository(db)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	usrSvc := user.NewService(db, usrRepo, mailSvc, conf)
	return enrollTestEnv{
		svc:        enrollment.NewService(db, dummyrepos.NewEnrollmentRepository(db), usrSvc, mailSvc, conf),
		usrRepo:    usrRepo,
		cohortRepo: dummyrepos.NewCohortRepository(db),
		progRepo:   dummyrepos.NewProgrammeRepository(db),
	}
}

func (env enrollTestEnv) createUser(t *testing.T, uname string) user.User {
	t.Helper()
	active := true
	usr, err := env.usrRepo.CreateUser(context.Background(), user.User{
		Username:  uname,
		Email:     uname + "@test.cd",
		Role:      user.RoleParticipant,
		IsActive:  &active,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateUser(): %v", err)
	}
	return usr
}

func (env enrollTestEnv) createCohort(t *testing.T, name string) cohort.Cohort {
	t.Helper()
	prog, err := env.progRepo.CreateProgramme(context.Background(), programme.Programme{
		Name:      name + " programme",
		Status:    programme.StatusActive,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateProgramme(): %v", err)
	}
	coh, err := env.cohortRepo.CreateCohort(context.Background(), cohort.Cohort{
		ProgrammeID: prog.ID,
		Name:        name,
		Status:      cohort.StatusActive,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCohort(): %v", err)
	}
	return coh
}

func TestService_Enroll(t *testing.T) {
	env := newEnrollTestEnv(t)
	ctx := context.Background()

	usr := env.createUser(t, "enrollee")
	coh := env.createCohort(t, "Cohort 1")

	enr, err := env.svc.Enroll(ctx, enrollment.NewEnrollment{
		CohortID: coh.ID, UserID: usr.ID, Status: enrollment.StatusEnrolled,
	})
	if err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}
	if enr.ID == 0 || enr.EnrollmentDate.IsZero() {
		t.Errorf("Enroll() = %+v", enr)
	}

	// enrolling the same user twice is a validation error, not a crash
	_, err = env.svc.Enroll(ctx, enrollment.NewEnrollment{
		CohortID: coh.ID, UserID: usr.ID, Status: enrollment.StatusEnrolled,
	})
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Enroll() error type = %T, want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "user_id" {
		t.Errorf("Enroll() fields = %v, want user_id", vErr.Fields)
	}

	// unknown references bubble up as not-found
	_, err = env.svc.Enroll(ctx, enrollment.NewEnrollment{
		CohortID: 99999, UserID: usr.ID, Status: enrollment.StatusEnrolled,
	})
	if errors.Cause(err) != enrollment.ErrNotFound {
		t.Errorf("Enroll() error = %v, wantErr %v", err, enrollment.ErrNotFound)
	}
}

func TestService_BulkEnroll(t *testing.T) {
	env := newEnrollTestEnv(t)
	ctx := context.Background()

	u1 := env.createUser(t, "bulk1")
	u2 := env.createUser(t, "bulk2")
	u3 := env.createUser(t, "bulk3")
	coh := env.createCohort(t, "Cohort 1")

	if _, err := env.svc.Enroll(ctx, enrollment.NewEnrollment{
		CohortID: coh.ID, UserID: u1.ID, Status: enrollment.StatusEnrolled,
	}); err != nil {
		t.Fatalf("Enroll() error = %v", err)
	}

	t.Run("already enrolled users are skipped", func(t *testing.T) {
		res, err := env.svc.BulkEnroll(ctx, enrollment.BulkEnrollment{
			CohortID: coh.ID, UserIDs: []int{u1.ID, u2.ID, u3.ID},
		})
		if err != nil {
			t.Fatalf("BulkEnroll() error = %v", err)
		}
		if res.Enrolled != 2 || len(res.Enrollments) != 2 {
			t.Errorf("BulkEnroll() = %+v, want 2 created", res)
		}
	})

	t.Run("repeating the batch is a no-op", func(t *testing.T) {
		res, err := env.svc.BulkEnroll(ctx, enrollment.BulkEnrollment{
			CohortID: coh.ID, UserIDs: []int{u1.ID, u2.ID, u3.ID},
		})
		if err != nil {
			t.Fatalf("BulkEnroll() error = %v", err)
		}
		if res.Enrolled != 0 || len(res.Enrollments) != 0 {
			t.Errorf("BulkEnroll() = %+v, want 0 created", res)
		}
	})

	t.Run("an unknown user fails and rolls the batch back", func(t *testing.T) {
		fresh := env.createCohort(t, "Cohort 2")

		_, err := env.svc.BulkEnroll(ctx, enrollment.BulkEnrollment{
			CohortID: fresh.ID, UserIDs: []int{u1.ID, 99999},
		})
		if errors.Cause(err) != enrollment.ErrTransactionFailed {
			t.Fatalf("BulkEnroll() error = %v, wantErr %v", err, enrollment.ErrTransactionFailed)
		}

		enrollments, err := env.svc.QueryByCohort(ctx, fresh.ID)
		if err != nil {
			t.Fatalf("QueryByCohort() error = %v", err)
		}
		if len(enrollments) != 0 {
			t.Errorf("rollback left %d enrollments behind", len(enrollments))
		}
	})
}
