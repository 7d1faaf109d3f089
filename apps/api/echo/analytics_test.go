package echoapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/boardwave/academy/core/analytics"
	"github.com/boardwave/academy/core/enrollment"
	"github.com/boardwave/academy/core/user"
)

func Test_analyticsApi(t *testing.T) {
	viewer := createTestUser(t, "statsviewer", user.RoleViewer, true)
	participant := createTestUser(t, "statspart", user.RoleParticipant, true)
	u1 := createTestUser(t, "statsu1", user.RoleParticipant, true)
	u2 := createTestUser(t, "statsu2", user.RoleParticipant, true)
	viewerToken := getToken(t, viewer)
	partToken := getToken(t, participant)

	prog := createTestProgramme(t, "Analytics Track")
	coh := createTestCohort(t, prog.ID, "Cohort A")

	now := time.Now().UTC()
	for _, enr := range []enrollment.Enrollment{
		{CohortID: coh.ID, UserID: u1.ID, Status: enrollment.StatusCompleted, CompletionPercentage: 100, EnrollmentDate: now},
		{CohortID: coh.ID, UserID: u2.ID, Status: enrollment.StatusEnrolled, CompletionPercentage: 50, EnrollmentDate: now},
	} {
		if _, err := enrollRepo.CreateEnrollment(context.Background(), enr); err != nil {
			t.Fatalf("CreateEnrollment(): %v", err)
		}
	}

	t.Run("dashboard requires at least viewer", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/dashboard", partToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marshallObj(t, errForbidden)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("dashboard", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/dashboard", viewerToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("dashboard code = %v", rec.Code)
		}
		var overview analytics.Overview
		if err := json.Unmarshal(rec.Body.Bytes(), &overview); err != nil {
			t.Fatalf("unmarshalling overview: %v", err)
		}
		// the dummy store is shared across tests, so only sanity-check
		if overview.TotalUsers < 4 || overview.TotalProgrammes < 1 || overview.TotalEnrollments < 2 {
			t.Errorf("unexpected overview: %+v", overview)
		}
	})

	t.Run("programme stats", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, fmt.Sprintf("/v1/analytics/programme/%d", prog.ID), viewerToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("programme stats code = %v", rec.Code)
		}
		var stats analytics.ProgrammeStats
		if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
			t.Fatalf("unmarshalling stats: %v", err)
		}
		want := analytics.ProgrammeStats{
			ProgrammeID:    prog.ID,
			ProgrammeName:  prog.Name,
			CohortCount:    1,
			EnrolledCount:  2,
			CompletedCount: 1,
			AvgCompletion:  75,
		}
		if stats != want {
			t.Errorf("stats = %+v, want %+v", stats, want)
		}
	})

	t.Run("unknown programme", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/programme/99999", viewerToken)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marshallObj(t, httpErr{"not found"})}
		checkCodeAndData(t, tt, rec)
	})
}
