package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/boardwave/academy/core/enrollment"
	"github.com/boardwave/academy/core/user"
)

func Test_enrollmentApi_bulk(t *testing.T) {
	admin := createTestUser(t, "enr-admin", user.RoleAdmin, true)
	mentor := createTestUser(t, "enr-mentor", user.RoleMentor, true)
	participant := createTestUser(t, "enr-part", user.RoleParticipant, true)
	u1 := createTestUser(t, "enr-u1", user.RoleParticipant, true)
	u2 := createTestUser(t, "enr-u2", user.RoleParticipant, true)
	adminToken := getToken(t, admin)
	mentorToken := getToken(t, mentor)
	partToken := getToken(t, participant)

	prog := createTestProgramme(t, "Enrollment Track")
	coh := createTestCohort(t, prog.ID, "Cohort 1")

	cohortPath := fmt.Sprintf("/v1/enrollments/cohort/%d", coh.ID)

	// single enrollment
	singleBody := marshallObj(t, enrollment.NewEnrollment{CohortID: coh.ID, UserID: u1.ID})
	req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", adminToken, singleBody)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("enroll code = %v body = %s", rec.Code, rec.Body.String())
	}

	t.Run("re-enrolling the same user is a field error", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", adminToken, singleBody)
		app.ServeHTTP(rec, req)
		tt := httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"user_id": enrollment.ErrAlreadyEnrolled.Error()}),
		}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("bulk skips already-enrolled users", func(t *testing.T) {
		bulkBody := marshallObj(t, enrollment.BulkEnrollment{CohortID: coh.ID, UserIDs: []int{u1.ID, u2.ID, participant.ID}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments/bulk", adminToken, bulkBody)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("bulk code = %v body = %s", rec.Code, rec.Body.String())
		}

		var res enrollment.BulkEnrollmentResult
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling BulkEnrollmentResult: %v", err)
		}
		if res.Enrolled != 2 {
			t.Errorf("Enrolled = %d; want 2 (u1 already enrolled)", res.Enrolled)
		}

		// the whole batch is idempotent
		req, rec = newAuthRequest(http.MethodPost, "/v1/enrollments/bulk", adminToken, bulkBody)
		app.ServeHTTP(rec, req)
		if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
			t.Fatalf("unmarshalling BulkEnrollmentResult: %v", err)
		}
		if res.Enrolled != 0 || len(res.Enrollments) != 0 {
			t.Errorf("repeat bulk created rows: %+v", res)
		}
	})

	t.Run("cohort roster", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, cohortPath, mentorToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("roster code = %v", rec.Code)
		}
		var roster []enrollment.Enrollment
		if err := json.Unmarshal(rec.Body.Bytes(), &roster); err != nil {
			t.Fatalf("unmarshalling roster: %v", err)
		}
		if len(roster) != 3 {
			t.Errorf("roster size = %d; want 3", len(roster))
		}
	})

	t.Run("roster requires mentor", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, cohortPath, partToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("bulk requires admin", func(t *testing.T) {
		bulkBody := marshallObj(t, enrollment.BulkEnrollment{CohortID: coh.ID, UserIDs: []int{u2.ID}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments/bulk", mentorToken, bulkBody)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("unknown cohort is a 404", func(t *testing.T) {
		body := marshallObj(t, enrollment.NewEnrollment{CohortID: 99999, UserID: u2.ID})
		req, rec := newAuthRequest(http.MethodPost, "/v1/enrollments", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("code = %v", rec.Code)
		}
	})
}
