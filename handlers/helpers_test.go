package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/app"
	"github.com/Sumit07M/bg-verification-project/config"
	"github.com/Sumit07M/bg-verification-project/middleware"
	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/repositories/postgres"
)

var submissionRowColumns = []string{
	"id", "employee_id", "first_name", "last_name", "date_of_birth", "address", "phone",
	"emergency_contact", "education", "experience", "status", "submitted_at", "reviewed_by", "reviewed_at", "review_note",
}

// newTestDeps wires the real services over a sqlmock-backed pool
func newTestDeps(t *testing.T) (*app.Dependencies, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	cfg := &config.Config{
		Environment: "test",
		Auth: config.AuthConfig{
			Secret:   "0123456789abcdef0123456789abcdef",
			TokenTTL: time.Hour,
		},
	}

	logger := zap.NewNop()
	deps, err := app.NewDependenciesWithDB(cfg, postgres.Wrap(sqlDB, logger), logger)
	require.NoError(t, err)
	return deps, mock
}

// serve routes a single request through a chi router so URL params resolve
func serve(method, pattern, target, body string, h http.HandlerFunc, principal *models.Principal) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Method(method, pattern, h)

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if principal != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), *principal))
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data    json.RawMessage        `json:"data"`
	Error   string                 `json:"error"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	return env
}
