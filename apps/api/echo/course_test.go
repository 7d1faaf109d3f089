package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/boardwave/academy/core/course"
	"github.com/boardwave/academy/core/user"
)

func Test_courseApi_prerequisites(t *testing.T) {
	admin := createTestUser(t, "crs-admin", user.RoleAdmin, true)
	participant := createTestUser(t, "crs-part", user.RoleParticipant, true)
	adminToken := getToken(t, admin)
	partToken := getToken(t, participant)

	prog := createTestProgramme(t, "Leadership Track")
	crsA := createTestCourse(t, prog.ID, "Foundations")
	crsB := createTestCourse(t, prog.ID, "Advanced Topics")
	modA := createTestModule(t, crsA.ID, "Foundations 101")

	prereqBody := marshallObj(t, course.NewPrerequisite{PrerequisiteCourseID: crsA.ID})
	selfBody := marshallObj(t, course.NewPrerequisite{PrerequisiteCourseID: crsB.ID})

	tests := []httpTest{
		{
			name: "Auth required", method: http.MethodGet, path: "/v1/courses",
			wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken),
		},
		{
			name: "Add prerequisite requires admin", method: http.MethodPost,
			path: fmt.Sprintf("/v1/courses/%d/prerequisites", crsB.ID), body: prereqBody, token: partToken,
			wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden),
		},
		{
			name: "Add prerequisite", method: http.MethodPost,
			path: fmt.Sprintf("/v1/courses/%d/prerequisites", crsB.ID), body: prereqBody, token: adminToken,
			wantCode: http.StatusCreated,
		},
		{
			name: "Duplicate edge rejected", method: http.MethodPost,
			path: fmt.Sprintf("/v1/courses/%d/prerequisites", crsB.ID), body: prereqBody, token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"prerequisite_course_id": course.ErrPrerequisiteExists.Error()}),
		},
		{
			name: "Self reference rejected", method: http.MethodPost,
			path: fmt.Sprintf("/v1/courses/%d/prerequisites", crsB.ID), body: selfBody, token: adminToken,
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"prerequisite_course_id": course.ErrSelfPrerequisite.Error()}),
		},
		{
			name: "Unknown course is a 404", method: http.MethodPost,
			path: "/v1/courses/99999/prerequisites", body: prereqBody, token: adminToken,
			wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{Error: "not found"}),
		},
		{
			name: "List prerequisites", method: http.MethodGet,
			path: fmt.Sprintf("/v1/courses/%d/prerequisites", crsB.ID), token: partToken,
			wantCode: http.StatusOK, wantData: marshallList(t, crsA),
		},
		{
			name: "List dependents", method: http.MethodGet,
			path: fmt.Sprintf("/v1/courses/%d/dependents", crsA.ID), token: partToken,
			wantCode: http.StatusOK, wantData: marshallList(t, crsB),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	t.Run("Gating blocks until the prerequisite is completed", func(t *testing.T) {
		checkPath := fmt.Sprintf("/v1/courses/%d/check-prerequisites", crsB.ID)

		req, rec := newAuthRequest(http.MethodGet, checkPath, partToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("check-prerequisites code = %v", rec.Code)
		}
		var check course.AccessCheck
		if err := json.Unmarshal(rec.Body.Bytes(), &check); err != nil {
			t.Fatalf("unmarshalling AccessCheck: %v", err)
		}
		if check.HasAccess || check.MissingCount != 1 {
			t.Errorf("expected gated access, got %+v", check)
		}

		// complete the prerequisite's only module
		req, rec = newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/progress/module/%d/start", modA.ID), partToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("start module code = %v body = %s", rec.Code, rec.Body.String())
		}
		req, rec = newAuthRequest(http.MethodPost, fmt.Sprintf("/v1/progress/module/%d/complete", modA.ID), partToken,
			marshallObj(t, map[string]int{"time_spent_minutes": 30}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("complete module code = %v body = %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, checkPath, partToken)
		app.ServeHTTP(rec, req)
		if err := json.Unmarshal(rec.Body.Bytes(), &check); err != nil {
			t.Fatalf("unmarshalling AccessCheck: %v", err)
		}
		if !check.HasAccess || check.MissingCount != 0 {
			t.Errorf("expected access granted, got %+v", check)
		}
		if len(check.Prerequisites) != 1 || !check.Prerequisites[0].IsCompleted {
			t.Errorf("expected completed prerequisite status, got %+v", check.Prerequisites)
		}
	})

	t.Run("Remove prerequisite", func(t *testing.T) {
		path := fmt.Sprintf("/v1/courses/%d/prerequisites/%d", crsB.ID, crsA.ID)

		req, rec := newAuthRequest(http.MethodDelete, path, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("delete code = %v", rec.Code)
		}

		// a second delete finds nothing
		req, rec = newAuthRequest(http.MethodDelete, path, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("second delete code = %v", rec.Code)
		}
	})
}

func Test_courseApi_retrieveWithModules(t *testing.T) {
	admin := createTestUser(t, "crs-admin2", user.RoleAdmin, true)
	adminToken := getToken(t, admin)

	prog := createTestProgramme(t, "Delivery Track")
	crs := createTestCourse(t, prog.ID, "Operational Excellence")
	mod1 := createTestModule(t, crs.ID, "Module One")
	mod2 := createTestModule(t, crs.ID, "Module Two")

	req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/courses/%d", crs.ID), adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v", rec.Code)
	}

	var got course.CourseWithModules
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshalling CourseWithModules: %v", err)
	}
	if got.ID != crs.ID {
		t.Errorf("course ID = %d; want %d", got.ID, crs.ID)
	}
	if len(got.Modules) != 2 {
		t.Fatalf("modules = %d; want 2", len(got.Modules))
	}
	if got.Modules[0].ID != mod1.ID || got.Modules[1].ID != mod2.ID {
		t.Errorf("unexpected module ordering: %+v", got.Modules)
	}

	t.Run("unknown course", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/courses/99999", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v", rec.Code)
		}
	})
}
