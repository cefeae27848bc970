package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/app"
	"github.com/Sumit07M/bg-verification-project/middleware"
	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/services"
	"github.com/Sumit07M/bg-verification-project/utils"
)

// CreateSubmissionHandler handles POST /api/submissions
func CreateSubmissionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.GetPrincipalFromContext(r.Context())
		if !ok {
			_ = utils.WriteUnauthorized(w, "")
			return
		}

		var in services.SubmissionInput
		if err := utils.DecodeJSON(r, &in); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		submission, err := deps.SubmissionService.Submit(r.Context(), principal, in)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := utils.WriteCreated(w, submission); err != nil {
			deps.Logger.Error("failed to write submission response", zap.Error(err))
		}
	}
}

// ListMySubmissionsHandler handles GET /api/submissions/mine
func ListMySubmissionsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.GetPrincipalFromContext(r.Context())
		if !ok {
			_ = utils.WriteUnauthorized(w, "")
			return
		}

		list, err := deps.SubmissionService.Mine(r.Context(), principal)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := utils.WriteOK(w, list); err != nil {
			deps.Logger.Error("failed to write submissions response", zap.Error(err))
		}
	}
}

// ListSubmissionsHandler handles GET /api/submissions?status=&limit=&offset=
func ListSubmissionsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := parseListOptions(r)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		list, err := deps.SubmissionService.List(r.Context(), opts)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := utils.WriteOK(w, list); err != nil {
			deps.Logger.Error("failed to write submissions response", zap.Error(err))
		}
	}
}

// GetSubmissionHandler handles GET /api/submissions/{id}
func GetSubmissionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.GetPrincipalFromContext(r.Context())
		if !ok {
			_ = utils.WriteUnauthorized(w, "")
			return
		}

		id, err := submissionID(r)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		submission, err := deps.SubmissionService.Get(r.Context(), principal, id)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := utils.WriteOK(w, submission); err != nil {
			deps.Logger.Error("failed to write submission response", zap.Error(err))
		}
	}
}

// ReviewSubmissionHandler handles POST /api/submissions/{id}/review
func ReviewSubmissionHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal, ok := middleware.GetPrincipalFromContext(r.Context())
		if !ok {
			_ = utils.WriteUnauthorized(w, "")
			return
		}

		id, err := submissionID(r)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		var in services.ReviewInput
		if err := utils.DecodeJSON(r, &in); err != nil {
			HandleValidationError(w, err, deps.Logger)
			return
		}

		submission, err := deps.SubmissionService.Review(r.Context(), principal, id, in)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		if err := utils.WriteOK(w, submission); err != nil {
			deps.Logger.Error("failed to write review response", zap.Error(err))
		}
	}
}

func submissionID(r *http.Request) (uuid.UUID, error) {
	id, err := utils.ParseUUID(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, services.ErrInvalidInput.Wrap(err).WithDetail("id", "id must be a valid UUID")
	}
	return id, nil
}

func parseListOptions(r *http.Request) (services.ListOptions, error) {
	q := r.URL.Query()
	opts := services.ListOptions{Status: models.SubmissionStatus(q.Get("status"))}

	var err error
	if opts.Limit, err = queryInt(q.Get("limit")); err != nil {
		return opts, services.ErrInvalidInput.Wrap(err).WithDetail("limit", "limit must be an integer")
	}
	if opts.Offset, err = queryInt(q.Get("offset")); err != nil {
		return opts, services.ErrInvalidInput.Wrap(err).WithDetail("offset", "offset must be an integer")
	}
	return opts, nil
}

func queryInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
