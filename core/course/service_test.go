package course_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/boardwave/academy/core"
	"github.com/boardwave/academy/core/course"
	"github.com/boardwave/academy/core/progress"
	"github.com/boardwave/academy/core/user"
	dummyrepos "github.com/boardwave/academy/storage/database/dummy"
)

type courseTestEnv struct {
	db          *dummyrepos.DB
	svc         *course.Service
	progressSvc *progress.Service
	usrRepo     user.Repository
	repo        course.Repository
}

func newCourseTestEnv(t *testing.T) courseTestEnv {
	t.Helper()
	db, err := dummyrepos.Open()
	if err != nil {
		t.Fatalf("Open(): %v", err)
	}
	repo := dummyrepos.NewCourseRepository(db)
	progressSvc := progress.NewService(dummyrepos.NewProgressRepository(db))
	return courseTestEnv{
		db:          db,
		svc:         course.NewService(db, repo, progressSvc),
		progressSvc: progressSvc,
		usrRepo:     dummyrepos.NewUserRepository(db),
		repo:        repo,
	}
}

func (env courseTestEnv) createUser(t *testing.T, uname string) user.User {
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

func (env courseTestEnv) createCourse(t *testing.T, title string) course.Course {
	t.Helper()
	crs, err := env.repo.CreateCourse(context.Background(), course.Course{
		ProgrammeID: 1,
		Title:       title,
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("CreateCourse(): %v", err)
	}
	return crs
}

func (env courseTestEnv) createModule(t *testing.T, courseID int, title string) course.Module {
	t.Helper()
	mod, err := env.repo.CreateModule(context.Background(), course.Module{
		CourseID:    courseID,
		Title:       title,
		ContentType: "text",
		IsPublished: true,
	})
	if err != nil {
		t.Fatalf("CreateModule(): %v", err)
	}
	return mod
}

func TestService_AddPrerequisite(t *testing.T) {
	env := newCourseTestEnv(t)
	ctx := context.Background()

	crsA := env.createCourse(t, "Foundations")
	crsB := env.createCourse(t, "Advanced")

	if _, err := env.svc.AddPrerequisite(ctx, crsB.ID, crsA.ID); err != nil {
		t.Fatalf("AddPrerequisite() error = %v", err)
	}

	tests := []struct {
		name           string
		courseID       int
		prereqCourseID int
		wantErr        error
		wantField      string
	}{
		{name: "self reference", courseID: crsA.ID, prereqCourseID: crsA.ID,
			wantErr: course.ErrSelfPrerequisite, wantField: "prerequisite_course_id"},
		{name: "duplicate edge", courseID: crsB.ID, prereqCourseID: crsA.ID,
			wantErr: course.ErrPrerequisiteExists, wantField: "prerequisite_course_id"},
		{name: "unknown course", courseID: 99999, prereqCourseID: crsA.ID,
			wantErr: course.ErrNotFound},
		{name: "unknown prerequisite", courseID: crsA.ID, prereqCourseID: 99999,
			wantErr: course.ErrNotFound},
		{name: "reverse edge is distinct", courseID: crsA.ID, prereqCourseID: crsB.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.AddPrerequisite(ctx, tt.courseID, tt.prereqCourseID)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("AddPrerequisite() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("AddPrerequisite() error = nil, wantErr %v", tt.wantErr)
			}
			if errors.Cause(err) != tt.wantErr && err.Error() != tt.wantErr.Error() {
				t.Errorf("AddPrerequisite() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantField != "" {
				vErr, ok := err.(*core.ValidationError)
				if !ok {
					t.Fatalf("AddPrerequisite() error type = %T, want *core.ValidationError", err)
				}
				if len(vErr.Fields) != 1 || vErr.Fields[0].Field != tt.wantField {
					t.Errorf("AddPrerequisite() fields = %v, want field %q", vErr.Fields, tt.wantField)
				}
			}
		})
	}
}

func TestService_RemovePrerequisite(t *testing.T) {
	env := newCourseTestEnv(t)
	ctx := context.Background()

	crsA := env.createCourse(t, "Foundations")
	crsB := env.createCourse(t, "Advanced")
	if _, err := env.svc.AddPrerequisite(ctx, crsB.ID, crsA.ID); err != nil {
		t.Fatalf("AddPrerequisite() error = %v", err)
	}

	if err := env.svc.RemovePrerequisite(ctx, crsB.ID, crsA.ID); err != nil {
		t.Errorf("RemovePrerequisite() error = %v", err)
	}
	// removing again reports the edge as gone
	if err := env.svc.RemovePrerequisite(ctx, crsB.ID, crsA.ID); err != course.ErrPrerequisiteNotFound {
		t.Errorf("RemovePrerequisite() error = %v, wantErr %v", err, course.ErrPrerequisiteNotFound)
	}

	prereqs, err := env.svc.QueryPrerequisites(ctx, crsB.ID)
	if err != nil {
		t.Fatalf("QueryPrerequisites() error = %v", err)
	}
	if len(prereqs) != 0 {
		t.Errorf("QueryPrerequisites() = %v, want empty", prereqs)
	}
}

func TestService_DeleteCascadesPrerequisiteEdges(t *testing.T) {
	env := newCourseTestEnv(t)
	ctx := context.Background()

	crsA := env.createCourse(t, "Foundations")
	crsB := env.createCourse(t, "Advanced")
	if _, err := env.svc.AddPrerequisite(ctx, crsB.ID, crsA.ID); err != nil {
		t.Fatalf("AddPrerequisite() error = %v", err)
	}

	if err := env.svc.Delete(ctx, crsA.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := env.svc.GetByID(ctx, crsA.ID); errors.Cause(err) != course.ErrNotFound {
		t.Errorf("GetByID(deleted) error = %v, wantErr %v", err, course.ErrNotFound)
	}
	// the dependent course survives, only the edge goes
	if _, err := env.svc.GetByID(ctx, crsB.ID); err != nil {
		t.Errorf("GetByID() error = %v", err)
	}
	prereqs, err := env.svc.QueryPrerequisites(ctx, crsB.ID)
	if err != nil {
		t.Fatalf("QueryPrerequisites() error = %v", err)
	}
	if len(prereqs) != 0 {
		t.Errorf("QueryPrerequisites() = %v, want empty", prereqs)
	}
}

func TestService_CheckAccess(t *testing.T) {
	env := newCourseTestEnv(t)
	ctx := context.Background()

	usr := env.createUser(t, "learner")

	crsA := env.createCourse(t, "Foundations")
	modA1 := env.createModule(t, crsA.ID, "Intro")
	modA2 := env.createModule(t, crsA.ID, "Basics")

	empty := env.createCourse(t, "Orientation") // no modules
	crsB := env.createCourse(t, "Advanced")

	for _, prereqID := range []int{crsA.ID, empty.ID} {
		if _, err := env.svc.AddPrerequisite(ctx, crsB.ID, prereqID); err != nil {
			t.Fatalf("AddPrerequisite() error = %v", err)
		}
	}

	t.Run("no prerequisites grants access", func(t *testing.T) {
		check, err := env.svc.CheckAccess(ctx, usr.ID, crsA.ID)
		if err != nil {
			t.Fatalf("CheckAccess() error = %v", err)
		}
		if !check.HasAccess || check.MissingCount != 0 || len(check.Prerequisites) != 0 {
			t.Errorf("CheckAccess() = %+v", check)
		}
	})

	t.Run("incomplete prerequisites block access", func(t *testing.T) {
		if _, err := env.progressSvc.CompleteModule(ctx, usr.ID, modA1.ID, 10); err != nil {
			t.Fatalf("CompleteModule() error = %v", err)
		}

		check, err := env.svc.CheckAccess(ctx, usr.ID, crsB.ID)
		if err != nil {
			t.Fatalf("CheckAccess() error = %v", err)
		}
		if check.HasAccess {
			t.Error("CheckAccess() granted access with incomplete prerequisites")
		}
		// both the half-done course and the empty one are missing
		if check.MissingCount != 2 {
			t.Errorf("MissingCount = %d, want 2", check.MissingCount)
		}
		for _, status := range check.Prerequisites {
			if status.PrerequisiteCourseID == crsA.ID && status.CompletionPercentage != 50 {
				t.Errorf("completion of %q = %v, want 50", status.Title, status.CompletionPercentage)
			}
			if status.PrerequisiteCourseID == empty.ID && status.CompletionPercentage != 0 {
				t.Errorf("completion of %q = %v, want 0", status.Title, status.CompletionPercentage)
			}
		}
	})

	t.Run("empty course never completes", func(t *testing.T) {
		if _, err := env.progressSvc.CompleteModule(ctx, usr.ID, modA2.ID, 10); err != nil {
			t.Fatalf("CompleteModule() error = %v", err)
		}

		check, err := env.svc.CheckAccess(ctx, usr.ID, crsB.ID)
		if err != nil {
			t.Fatalf("CheckAccess() error = %v", err)
		}
		if check.HasAccess {
			t.Error("CheckAccess() granted access")
		}
		if check.MissingCount != 1 {
			t.Errorf("MissingCount = %d, want 1", check.MissingCount)
		}
	})

	t.Run("shallow check ignores transitive prerequisites", func(t *testing.T) {
		// Orientation itself requires an unfinished course; CheckAccess on
		// Advanced must not look past its direct edges.
		deep := env.createCourse(t, "Deep")
		env.createModule(t, deep.ID, "Only")
		if _, err := env.svc.AddPrerequisite(ctx, empty.ID, deep.ID); err != nil {
			t.Fatalf("AddPrerequisite() error = %v", err)
		}

		if err := env.svc.RemovePrerequisite(ctx, crsB.ID, empty.ID); err != nil {
			t.Fatalf("RemovePrerequisite() error = %v", err)
		}
		check, err := env.svc.CheckAccess(ctx, usr.ID, crsB.ID)
		if err != nil {
			t.Fatalf("CheckAccess() error = %v", err)
		}
		if !check.HasAccess || check.MissingCount != 0 {
			t.Errorf("CheckAccess() = %+v, want access", check)
		}
	})
}
