package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/boardwave/academy/core/user"
)

func Test_userApi_login(t *testing.T) {
	usr := createTestUser(t, "loginuser", user.RoleParticipant, true)
	deactivated := createTestUser(t, "loginlocked", user.RoleParticipant, false)
	_ = deactivated

	path := "/v1/users/login"
	tests := []httpTest{
		{
			name:     "unknown username",
			body:     marshallObj(t, LoginRequest{Username: "nosuchuser", Password: "Str0ngPwd!"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{"authentication failed"}),
		},
		{
			name:     "wrong password",
			body:     marshallObj(t, LoginRequest{Username: usr.Username, Password: "wrong"}),
			wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, httpErr{"authentication failed"}),
		},
		{
			name:     "deactivated account",
			body:     marshallObj(t, LoginRequest{Username: "loginlocked", Password: "Str0ngPwd!"}),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{"account deactivated"}),
		},
		{
			name:     "login by username",
			body:     marshallObj(t, LoginRequest{Username: usr.Username, Password: "Str0ngPwd!"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "login by email",
			body:     marshallObj(t, LoginRequest{Username: usr.Email, Password: "Str0ngPwd!"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode != http.StatusOK {
				return
			}
			var resp LoginResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshalling login response: %v", err)
			}
			if resp.Token == "" {
				t.Error("empty token")
			}

			// the token must be accepted by an authed endpoint
			req, rec = newAuthRequest(http.MethodPost, "/v1/users/token-refresh", resp.Token)
			app.ServeHTTP(rec, req)
			if rec.Code != http.StatusOK {
				t.Errorf("token refresh code = %v body = %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func Test_userApi_management(t *testing.T) {
	admin := createTestUser(t, "mgmtadmin", user.RoleAdmin, true)
	participant := createTestUser(t, "mgmtpart", user.RoleParticipant, true)
	other := createTestUser(t, "mgmtother", user.RoleParticipant, true)
	adminToken := getToken(t, admin)
	partToken := getToken(t, participant)

	selfPath := fmt.Sprintf("/v1/users/%d", participant.ID)
	otherPath := fmt.Sprintf("/v1/users/%d", other.ID)

	isActive := false
	tests := []httpTest{
		{
			name:     "query requires auth",
			method:   http.MethodGet,
			path:     "/v1/users",
			wantCode: http.StatusUnauthorized,
			wantData: marshallObj(t, errMissingToken),
		},
		{
			name:     "query is admin-only",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    partToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "query as admin",
			method:   http.MethodGet,
			path:     "/v1/users",
			token:    adminToken,
			wantCode: http.StatusOK,
		},
		{
			name:     "register is admin-only",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			token:    partToken,
			body: marshallObj(t, user.NewUser{
				Username: "registered1", Email: "registered1@test.cd", Role: user.RoleParticipant,
				Password: "W4k!shaBantu99", PasswordConfirm: "W4k!shaBantu99",
			}),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "register as admin",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			token:    adminToken,
			body: marshallObj(t, user.NewUser{
				Username: "registered1", Email: "registered1@test.cd", Role: user.RoleParticipant,
				Password: "W4k!shaBantu99", PasswordConfirm: "W4k!shaBantu99",
			}),
			wantCode: http.StatusCreated,
		},
		{
			name:     "duplicate username rejected",
			method:   http.MethodPost,
			path:     "/v1/users/register",
			token:    adminToken,
			body: marshallObj(t, user.NewUser{
				Username: "registered1", Email: "registered2@test.cd", Role: user.RoleParticipant,
				Password: "W4k!shaBantu99", PasswordConfirm: "W4k!shaBantu99",
			}),
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "retrieve self",
			method:   http.MethodGet,
			path:     selfPath,
			token:    partToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, participant),
		},
		{
			name:     "retrieving another user requires admin",
			method:   http.MethodGet,
			path:     otherPath,
			token:    partToken,
			wantCode: http.StatusNotFound,
			wantData: marshallObj(t, httpErr{"not found"}),
		},
		{
			name:     "retrieve any as admin",
			method:   http.MethodGet,
			path:     otherPath,
			token:    adminToken,
			wantCode: http.StatusOK,
			wantData: marshallObj(t, other),
		},
		{
			name:     "non-admin cannot change own role",
			method:   http.MethodPut,
			path:     selfPath,
			token:    partToken,
			body:     marshallObj(t, user.UpdateUser{Role: user.RoleMentor}),
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "non-admin can update own profile",
			method:   http.MethodPut,
			path:     selfPath,
			token:    partToken,
			body:     marshallObj(t, user.UpdateUser{FirstName: "Patrice", LastName: "Lumumba"}),
			wantCode: http.StatusOK,
		},
		{
			name:     "admin can deactivate",
			method:   http.MethodPut,
			path:     otherPath,
			token:    adminToken,
			body:     marshallObj(t, user.UpdateUser{IsActive: &isActive}),
			wantCode: http.StatusOK,
		},
		{
			name:     "self-delete forbidden",
			method:   http.MethodDelete,
			path:     fmt.Sprintf("/v1/users/%d", admin.ID),
			token:    adminToken,
			wantCode: http.StatusForbidden,
			wantData: marshallObj(t, errForbidden),
		},
		{
			name:     "delete as admin",
			method:   http.MethodDelete,
			path:     otherPath,
			token:    adminToken,
			wantCode: http.StatusNoContent,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
