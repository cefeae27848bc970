package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Sumit07M/bg-verification-project/app"
	"github.com/Sumit07M/bg-verification-project/auth"
	"github.com/Sumit07M/bg-verification-project/handlers"
	"github.com/Sumit07M/bg-verification-project/internal/observability"
	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/utils"
)

// Allowed roles per route group. Declared once at startup; a typo in a role
// name panics here instead of silently denying everyone.
var (
	employeeOnly      = auth.Allow(models.RoleEmployee)
	managerOnly       = auth.Allow(models.RoleManager)
	employeeOrManager = auth.Allow(models.RoleEmployee, models.RoleManager)
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check endpoints
	r.Get("/healthz", handlers.HealthCheck(deps))
	r.Get("/readyz", handlers.ReadinessCheck(deps))

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Get("/status", handlers.StatusHandler(deps))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", handlers.RegisterHandler(deps))
			r.Post("/login", handlers.LoginHandler(deps))
		})

		// Everything below requires a valid bearer token
		r.Group(func(r chi.Router) {
			r.Use(deps.AuthMiddleware.RequireAuth)

			r.With(deps.AuthMiddleware.RequireRole(employeeOrManager)).
				Get("/users/me", handlers.CurrentUserHandler(deps))

			r.Route("/submissions", func(r chi.Router) {
				r.With(deps.AuthMiddleware.RequireRole(employeeOnly)).
					Post("/", handlers.CreateSubmissionHandler(deps))
				r.With(deps.AuthMiddleware.RequireRole(employeeOnly)).
					Get("/mine", handlers.ListMySubmissionsHandler(deps))
				r.With(deps.AuthMiddleware.RequireRole(managerOnly)).
					Get("/", handlers.ListSubmissionsHandler(deps))
				r.With(deps.AuthMiddleware.RequireRole(employeeOrManager)).
					Get("/{id}", handlers.GetSubmissionHandler(deps))
				r.With(deps.AuthMiddleware.RequireRole(managerOnly)).
					Post("/{id}/review", handlers.ReviewSubmissionHandler(deps))
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
