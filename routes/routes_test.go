package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Sumit07M/bg-verification-project/app"
	"github.com/Sumit07M/bg-verification-project/auth"
	"github.com/Sumit07M/bg-verification-project/config"
	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/repositories/postgres"
	"github.com/Sumit07M/bg-verification-project/utils"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var submissionRowColumns = []string{
	"id", "employee_id", "first_name", "last_name", "date_of_birth", "address", "phone",
	"emergency_contact", "education", "experience", "status", "submitted_at", "reviewed_by", "reviewed_at", "review_note",
}

func newTestServer(t *testing.T) (*httptest.Server, *app.Dependencies, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		Environment: "test",
		Auth:        config.AuthConfig{Secret: testSecret, TokenTTL: time.Hour},
		CORS:        config.CORSConfig{AllowedOrigins: []string{"http://localhost:*"}},
	}

	logger := zaptest.NewLogger(t)
	deps, err := app.NewDependenciesWithDB(cfg, postgres.Wrap(sqlDB, logger), logger)
	require.NoError(t, err)

	ts := httptest.NewServer(SetupRoutes(deps))
	t.Cleanup(ts.Close)
	return ts, deps, mock
}

func issue(t *testing.T, deps *app.Dependencies, role models.Role) (string, models.Principal) {
	t.Helper()
	p := models.Principal{UserID: uuid.NewString(), Role: role}
	token, _, err := deps.TokenCodec.Issue(p, time.Hour)
	require.NoError(t, err)
	return token, p
}

func do(t *testing.T, method, url, token, body string) (*http.Response, utils.ErrorResponse) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var errBody utils.ErrorResponse
	if resp.StatusCode >= http.StatusBadRequest {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&errBody))
	}
	return resp, errBody
}

func TestPublicRoutes(t *testing.T) {
	ts, _, _ := newTestServer(t)

	for _, path := range []string{"/healthz", "/api/status"} {
		resp, _ := do(t, http.MethodGet, ts.URL+path, "", "")
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	}

	resp, body := do(t, http.MethodGet, ts.URL+"/api/nonexistent", "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "not_found", body.Error)
}

func TestAuthGateOnProtectedRoutes(t *testing.T) {
	ts, deps, _ := newTestServer(t)

	key, err := auth.NewSigningKey(testSecret)
	require.NoError(t, err)
	pastCodec, err := auth.NewCodec(key, auth.WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }))
	require.NoError(t, err)
	expired, _, err := pastCodec.Issue(models.Principal{UserID: uuid.NewString(), Role: models.RoleManager}, time.Hour)
	require.NoError(t, err)

	otherKey, err := auth.NewSigningKey(strings.Repeat("k", 32))
	require.NoError(t, err)
	otherCodec, err := auth.NewCodec(otherKey)
	require.NoError(t, err)
	foreign, _, err := otherCodec.Issue(models.Principal{UserID: uuid.NewString(), Role: models.RoleManager}, time.Hour)
	require.NoError(t, err)

	valid, _ := issue(t, deps, models.RoleManager)

	tests := []struct {
		name    string
		token   string
		message string
	}{
		{name: "no token", token: "", message: "No authentication token, access denied"},
		{name: "garbage", token: "not-a-token", message: "Token is not valid"},
		{name: "expired", token: expired, message: "Token is not valid"},
		{name: "signed with another key", token: foreign, message: "Token is not valid"},
		{name: "tampered", token: valid[:len(valid)-2] + "xx", message: "Token is not valid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, route := range []struct{ method, path string }{
				{http.MethodGet, "/api/users/me"},
				{http.MethodGet, "/api/submissions"},
				{http.MethodPost, "/api/submissions"},
				{http.MethodPost, "/api/submissions/" + uuid.NewString() + "/review"},
			} {
				resp, body := do(t, route.method, ts.URL+route.path, tt.token, "")
				assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, route.path)
				assert.Equal(t, "unauthorized", body.Error)
				assert.Equal(t, tt.message, body.Message)
			}
		})
	}
}

func TestRoleGateOnProtectedRoutes(t *testing.T) {
	ts, deps, mock := newTestServer(t)
	employeeToken, employee := issue(t, deps, models.RoleEmployee)
	managerToken, _ := issue(t, deps, models.RoleManager)

	t.Run("employee cannot reach manager routes", func(t *testing.T) {
		resp, body := do(t, http.MethodGet, ts.URL+"/api/submissions", employeeToken, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "forbidden", body.Error)
		assert.Equal(t, "Access denied", body.Message)

		resp, _ = do(t, http.MethodPost, ts.URL+"/api/submissions/"+uuid.NewString()+"/review", employeeToken, `{"decision":"verified"}`)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("manager cannot file submissions", func(t *testing.T) {
		resp, body := do(t, http.MethodPost, ts.URL+"/api/submissions", managerToken, `{}`)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assert.Equal(t, "Access denied", body.Message)

		resp, _ = do(t, http.MethodGet, ts.URL+"/api/submissions/mine", managerToken, "")
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("both roles reach the shared route", func(t *testing.T) {
		for _, token := range []string{employeeToken, managerToken} {
			resp, _ := do(t, http.MethodGet, ts.URL+"/api/users/me", token, "")
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}
	})

	t.Run("manager lists submissions", func(t *testing.T) {
		mock.ExpectQuery("FROM submissions").WillReturnRows(sqlmock.NewRows(submissionRowColumns))

		resp, _ := do(t, http.MethodGet, ts.URL+"/api/submissions", managerToken, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("employee lists own submissions", func(t *testing.T) {
		mock.ExpectQuery("FROM submissions WHERE employee_id").
			WithArgs(employee.UserID).
			WillReturnRows(sqlmock.NewRows(submissionRowColumns))

		resp, _ := do(t, http.MethodGet, ts.URL+"/api/submissions/mine", employeeToken, "")
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCORSMiddleware(t *testing.T) {
	ts, _, _ := newTestServer(t)

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/auth/login", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "Authorization, Content-Type")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
