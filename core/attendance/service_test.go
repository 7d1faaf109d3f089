package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core/attendance"
	"github.com/boardwave/academy/core/cohort"
	"github.com/boardwave/academy/core/programme"
	"github.com/boardwave/academy/core/user"
	dummyrepos "github.com/boardwave/academy/storage/database/dummy"
)

type attendanceTestEnv struct {
	svc        *attendance.Service
	usrRepo    user.Repository
	cohortRepo cohort.Repository
	progRepo   programme.Repository
}

func newAttendanceTestEnv(t *testing.T) attendanceTestEnv {
	t.Helper()
	db, err := dummyrepos.Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	return attendanceTestEnv{
		svc:        attendance.NewService(db, dummyrepos.NewAttendanceRepository(db)),
		usrRepo:    dummyrepos.NewUserRepository(db),
		cohortRepo: dummyrepos.NewCohortRepository(db),
		progRepo:   dummyrepos.NewProgrammeRepository(db),
	}
}

func (env attendanceTestEnv) createUser(t *testing.T, uname string) user.User {
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

func (env attendanceTestEnv) createCohort(t *testing.T, name string) cohort.Cohort {
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

func TestService_Record(t *testing.T) {
	env := newAttendanceTestEnv(t)
	ctx := context.Background()

	usr := env.createUser(t, "attendee")
	mentor := env.createUser(t, "marker")
	coh := env.createCohort(t, "Cohort 1")
	date := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)

	nr := attendance.NewRecord{
		CohortID: coh.ID, UserID: usr.ID, SessionDate: date, Status: attendance.StatusPresent,
	}
	rec, err := env.svc.Record(ctx, nr, mentor.ID)
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.ID == 0 || rec.RecordedBy != mentor.ID || rec.RecordedAt.IsZero() {
		t.Errorf("Record() = %+v", rec)
	}

	// attendance is an event log; re-marking creates another row
	if _, err = env.svc.Record(ctx, nr, mentor.ID); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	records, err := env.svc.QueryByCohort(ctx, coh.ID)
	if err != nil {
		t.Fatalf("QueryByCohort() error = %v", err)
	}
	if len(records) != 2 {
		t.Errorf("records = %d, want 2", len(records))
	}

	_, err = env.svc.Record(ctx, attendance.NewRecord{
		CohortID: coh.ID, UserID: 99999, SessionDate: date, Status: attendance.StatusPresent,
	}, mentor.ID)
	if errors.Cause(err) != attendance.ErrNotFound {
		t.Errorf("Record() error = %v, wantErr %v", err, attendance.ErrNotFound)
	}
}

func TestService_BulkRecord(t *testing.T) {
	env := newAttendanceTestEnv(t)
	ctx := context.Background()

	u1 := env.createUser(t, "bulk1")
	u2 := env.createUser(t, "bulk2")
	mentor := env.createUser(t, "marker")
	coh := env.createCohort(t, "Cohort 1")
	date := time.Date(2021, 3, 8, 0, 0, 0, 0, time.UTC)

	t.Run("all entries land or none do", func(t *testing.T) {
		_, err := env.svc.BulkRecord(ctx, attendance.BulkRecording{
			CohortID:    coh.ID,
			SessionDate: date,
			Entries: []attendance.BulkEntry{
				{UserID: u1.ID, Status: attendance.StatusPresent},
				{UserID: 99999, Status: attendance.StatusAbsent},
			},
		}, mentor.ID)
		if errors.Cause(err) != attendance.ErrTransactionFailed {
			t.Fatalf("BulkRecord() error = %v, wantErr %v", err, attendance.ErrTransactionFailed)
		}

		records, err := env.svc.QueryByCohort(ctx, coh.ID)
		if err != nil {
			t.Fatalf("QueryByCohort() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("rollback left %d records behind", len(records))
		}
	})

	t.Run("clean batch", func(t *testing.T) {
		records, err := env.svc.BulkRecord(ctx, attendance.BulkRecording{
			CohortID:    coh.ID,
			SessionDate: date,
			Entries: []attendance.BulkEntry{
				{UserID: u1.ID, Status: attendance.StatusPresent},
				{UserID: u2.ID, Status: attendance.StatusLate},
			},
		}, mentor.ID)
		if err != nil {
			t.Fatalf("BulkRecord() error = %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("records = %d, want 2", len(records))
		}
		// the whole batch carries one timestamp
		if records[0].RecordedAt.IsZero() || !records[0].RecordedAt.Equal(records[1].RecordedAt) {
			t.Errorf("RecordedAt = %v, %v, want one shared stamp", records[0].RecordedAt, records[1].RecordedAt)
		}
	})

	t.Run("empty batch commits trivially", func(t *testing.T) {
		records, err := env.svc.BulkRecord(ctx, attendance.BulkRecording{
			CohortID:    coh.ID,
			SessionDate: date,
		}, mentor.ID)
		if err != nil {
			t.Fatalf("BulkRecord() error = %v", err)
		}
		if len(records) != 0 {
			t.Errorf("records = %d, want 0", len(records))
		}
	})

	t.Run("cohort stats", func(t *testing.T) {
		stats, err := env.svc.CohortStats(ctx, coh.ID)
		if err != nil {
			t.Fatalf("CohortStats() error = %v", err)
		}
		want := attendance.CohortStats{
			TotalRecords:       2,
			UniqueParticipants: 2,
			TotalSessions:      1,
			PresentCount:       1,
			LateCount:          1,
		}
		if stats != want {
			t.Errorf("CohortStats() = %+v, want %+v", stats, want)
		}
	})
}

func TestService_sessions(t *testing.T) {
	env := newAttendanceTestEnv(t)
	ctx := context.Background()

	mentor := env.createUser(t, "marker")
	usr := env.createUser(t, "attendee")
	coh := env.createCohort(t, "Cohort 1")
	date := time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC)

	sess, err := env.svc.CreateSession(ctx, attendance.NewSession{
		CohortID: coh.ID, Name: "Kickoff", Date: date, Type: "lecture",
	})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if _, err = env.svc.Record(ctx, attendance.NewRecord{
		CohortID: coh.ID, UserID: usr.ID, SessionDate: date, Status: attendance.StatusPresent,
	}, mentor.ID); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	withStats, err := env.svc.QuerySessionsWithStats(ctx, coh.ID)
	if err != nil {
		t.Fatalf("QuerySessionsWithStats() error = %v", err)
	}
	if len(withStats) != 1 {
		t.Fatalf("sessions = %d, want 1", len(withStats))
	}
	if withStats[0].RecordedCount != 1 || withStats[0].PresentCount != 1 {
		t.Errorf("session stats = %+v", withStats[0])
	}

	completed, err := env.svc.CompleteSession(ctx, sess.ID, "done")
	if err != nil {
		t.Fatalf("CompleteSession() error = %v", err)
	}
	if !completed.IsCompleted || completed.Notes != "done" {
		t.Errorf("CompleteSession() = %+v", completed)
	}

	if _, err = env.svc.CompleteSession(ctx, 99999, ""); err != attendance.ErrSessionNotFound {
		t.Errorf("CompleteSession() error = %v, wantErr %v", err, attendance.ErrSessionNotFound)
	}
}
