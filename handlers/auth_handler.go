package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/app"
	"github.com/Sumit07M/bg-verification-project/middleware"
	"github.com/Sumit07M/bg-verification-project/services"
	"github.com/Sumit07M/bg-verification-project/utils"
)

// RegisterHandler handles POST /api/auth/register
func RegisterHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.RegisterInput
		if err := utils.DecodeJSON(r, &in); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		user, err := deps.AuthService.Register(r.Context(), in)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := utils.WriteCreated(w, user); err != nil {
			deps.Logger.Error("failed to write register response", zap.Error(err))
		}
	}
}

// LoginHandler handles POST /api/auth/login
func LoginHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.LoginInput
		if err := utils.DecodeJSON(r, &in); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		session, err := deps.AuthService.Login(r.Context(), in)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := utils.WriteOK(w, session); err != nil {
			deps.Logger.Error("failed to write login response", zap.Error(err))
		}
	}
}

// CurrentUserHandler handles GET /api/users/me.
// It echoes the principal re-derived from the verified token.
func CurrentUserHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.GetPrincipalFromContext(r.Context())
		if !ok {
			_ = utils.WriteUnauthorized(w, "")
			return
		}

		if err := utils.WriteOK(w, principal); err != nil {
			deps.Logger.Error("failed to write current user response", zap.Error(err))
		}
	}
}
