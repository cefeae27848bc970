package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/app"
	"github.com/Sumit07M/bg-verification-project/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// StatusResponse describes the running build
type StatusResponse struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

// HealthCheck handles GET /healthz.
// Liveness only: it returns 200 whenever the process can serve.
func HealthCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// ReadinessCheck handles GET /readyz
func ReadinessCheck(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		checks := make(map[string]string)
		healthy := true

		switch {
		case deps.DB == nil:
			checks["database"] = "not_initialized"
			healthy = false
		default:
			if err := deps.DB.HealthCheck(ctx); err != nil {
				deps.Logger.Warn("database health check failed", zap.Error(err))
				checks["database"] = "unhealthy"
				healthy = false
			} else {
				checks["database"] = "healthy"
			}
		}

		response := HealthResponse{
			Status:    "healthy",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		}

		if !healthy {
			response.Status = "unhealthy"
			details := make(map[string]interface{}, len(checks))
			for k, v := range checks {
				details[k] = v
			}
			if err := utils.WriteServiceUnavailable(w, "Service is not ready", details); err != nil {
				deps.Logger.Error("failed to write readiness response", zap.Error(err))
			}
			return
		}

		if err := utils.WriteOK(w, response); err != nil {
			deps.Logger.Error("failed to write readiness response", zap.Error(err))
		}
	}
}

// StatusHandler handles GET /api/status
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteOK(w, StatusResponse{
			Version:     app.Version,
			Environment: deps.Config.Environment,
		})
	}
}
