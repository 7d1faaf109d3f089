package progress_test

import (
	"context"
	"testing"
	"time"

	"github.com/boardwave/academy/core/course"
	"github.com/boardwave/academy/core/progress"
	"github.com/boardwave/academy/core/user"
	dummyrepos "github.com/boardwave/academy/storage/database/dummy"
)

type progressTestEnv struct {
	svc        *progress.Service
	usrRepo    user.Repository
	courseRepo course.Repository
}

func newProgressTestEnv(t *testing.T) progressTestEnv {
	t.Helper()
	db, err := dummyrepos.Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	return progressTestEnv{
		svc:        progress.NewService(dummyrepos.NewProgressRepository(db)),
		usrRepo:    dummyrepos.NewUserRepository(db),
		courseRepo: dummyrepos.NewCourseRepository(db),
	}
}

func (env progressTestEnv) createUser(t *testing.T, uname string) user.User {
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

func (env progressTestEnv) createCourseWithModules(t *testing.T, title string, moduleCount int) (course.Course, []course.Module) {
	t.Helper()
	ctx := context.Background()
	crs, err := env.courseRepo.CreateCourse(ctx, course.Course{
		ProgrammeID: 1,
		Title:       title,
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	modules := make([]course.Module, 0, moduleCount)
	for i := 0; i < moduleCount; i++ {
		mod, err := env.courseRepo.CreateModule(ctx, course.Module{
			CourseID:      crs.ID,
			Title:         "Module",
			ContentType:   "text",
			SequenceOrder: i + 1,
			IsPublished:   true,
		})
		if err != nil {
			t.Fatalf("CreateModule(): %v", err)
		}
		modules = append(modules, mod)
	}
	return crs, modules
}

func TestService_moduleLifecycle(t *testing.T) {
	env := newProgressTestEnv(t)
	ctx := context.Background()

	usr := env.createUser(t, "tracker")
	_, modules := env.createCourseWithModules(t, "Foundations", 1)
	mod := modules[0]

	trk, err := env.svc.StartModule(ctx, usr.ID, mod.ID)
	if err != nil {
		t.Fatalf("StartModule() error = %v", err)
	}
	if trk.Status != progress.StatusInProgress || trk.StartedAt == nil {
		t.Errorf("StartModule() = %+v", trk)
	}
	startedAt := *trk.StartedAt

	trk, err = env.svc.CompleteModule(ctx, usr.ID, mod.ID, 25)
	if err != nil {
		t.Fatalf("CompleteModule() error = %v", err)
	}
	if trk.Status != progress.StatusCompleted || trk.CompletedAt == nil {
		t.Errorf("CompleteModule() = %+v", trk)
	}
	if trk.TimeSpentMinutes != 25 {
		t.Errorf("TimeSpentMinutes = %d, want 25", trk.TimeSpentMinutes)
	}
	// the upsert keeps the original start time
	if trk.StartedAt == nil || !trk.StartedAt.Equal(startedAt) {
		t.Errorf("StartedAt = %v, want %v", trk.StartedAt, startedAt)
	}

	// completing again accumulates time on the same row
	again, err := env.svc.CompleteModule(ctx, usr.ID, mod.ID, 5)
	if err != nil {
		t.Fatalf("CompleteModule() error = %v", err)
	}
	if again.ID != trk.ID {
		t.Errorf("ID = %d, want %d", again.ID, trk.ID)
	}
	if again.TimeSpentMinutes != 30 {
		t.Errorf("TimeSpentMinutes = %d, want 30", again.TimeSpentMinutes)
	}

	// unknown module
	if _, err = env.svc.StartModule(ctx, usr.ID, 99999); err != progress.ErrNotFound {
		t.Errorf("StartModule() error = %v, wantErr %v", err, progress.ErrNotFound)
	}
}

func TestService_CourseCompletion(t *testing.T) {
	env := newProgressTestEnv(t)
	ctx := context.Background()

	usr := env.createUser(t, "learner")
	crs, modules := env.createCourseWithModules(t, "Foundations", 4)
	empty, _ := env.createCourseWithModules(t, "Orientation", 0)

	tests := []struct {
		name     string
		complete int
		courseID int
		want     float64
	}{
		{name: "nothing done", courseID: crs.ID, want: 0},
		{name: "one of four", complete: 1, courseID: crs.ID, want: 25},
		{name: "three of four", complete: 3, courseID: crs.ID, want: 75},
		{name: "all done", complete: 4, courseID: crs.ID, want: 100},
		{name: "course without modules", courseID: empty.ID, want: 0},
	}
	var done int
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for ; done < tt.complete; done++ {
				if _, err := env.svc.CompleteModule(ctx, usr.ID, modules[done].ID, 10); err != nil {
					t.Fatalf("CompleteModule() error = %v", err)
				}
			}
			pct, err := env.svc.CourseCompletion(ctx, usr.ID, tt.courseID)
			if err != nil {
				t.Fatalf("CourseCompletion() error = %v", err)
			}
			if pct != tt.want {
				t.Errorf("CourseCompletion() = %v, want %v", pct, tt.want)
			}
		})
	}
}

func TestService_UserSummary(t *testing.T) {
	env := newProgressTestEnv(t)
	ctx := context.Background()

	usr := env.createUser(t, "summary")
	_, modules := env.createCourseWithModules(t, "Foundations", 3)

	if _, err := env.svc.CompleteModule(ctx, usr.ID, modules[0].ID, 20); err != nil {
		t.Fatalf("CompleteModule() error = %v", err)
	}
	if _, err := env.svc.StartModule(ctx, usr.ID, modules[1].ID); err != nil {
		t.Fatalf("StartModule() error = %v", err)
	}

	summary, err := env.svc.UserSummary(ctx, usr.ID)
	if err != nil {
		t.Fatalf("UserSummary() error = %v", err)
	}
	want := progress.UserSummary{
		TotalModules:     2,
		CompletedModules: 1,
		InProgress:       1,
		TimeSpentMinutes: 20,
	}
	if summary != want {
		t.Errorf("UserSummary() = %+v, want %+v", summary, want)
	}
}
