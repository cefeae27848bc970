package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/Sumit07M/bg-verification-project/auth"
	"github.com/Sumit07M/bg-verification-project/models"
	"github.com/Sumit07M/bg-verification-project/utils"
)

// Caller-visible messages. They never say which verification step failed.
const (
	msgMissingToken     = "No authentication token, access denied"
	msgInvalidToken     = "Token is not valid"
	msgAuthRequired     = "Authentication required"
	msgAccessDenied     = "Access denied"
	bearerScheme        = "bearer"
	authorizationHeader = "Authorization"
)

// TokenVerifier verifies a bearer token and returns the principal it encodes
type TokenVerifier interface {
	Verify(token string) (models.Principal, error)
}

// AuthMiddleware provides authentication and role enforcement middleware
type AuthMiddleware struct {
	verifier TokenVerifier
	logger   *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(verifier TokenVerifier, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
	}
}

// RequireAuth rejects requests without a valid bearer token and attaches the
// verified principal to the request context otherwise
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("authentication rejected",
				zap.String("request_id", requestID),
				zap.String("reason", auth.FailureReason(auth.ErrMissingToken)))
			_ = utils.WriteUnauthorized(w, msgMissingToken)
			return
		}

		principal, err := m.verifier.Verify(token)
		if err != nil {
			m.logger.Warn("authentication rejected",
				zap.String("request_id", requestID),
				zap.String("reason", auth.FailureReason(err)),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, msgInvalidToken)
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", principal.UserID),
			zap.String("role", principal.Role.String()))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// RequireRole allows the request through only when the principal attached by
// RequireAuth holds one of the allowed roles. It must be mounted after RequireAuth.
func (m *AuthMiddleware) RequireRole(allowed auth.RoleSet) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			var principal *models.Principal
			if p, ok := GetPrincipalFromContext(ctx); ok {
				principal = &p
			}

			switch err := auth.Authorize(principal, allowed); {
			case err == nil:
				m.logger.Debug("role check passed",
					zap.String("request_id", requestID),
					zap.String("role", principal.Role.String()))
				next.ServeHTTP(w, r)

			case auth.IsAuthenticationError(err):
				// RequireRole mounted without RequireAuth in front of it
				m.logger.Error("principal not found in context",
					zap.String("request_id", requestID),
					zap.Strings("allowed_roles", allowed.Strings()))
				_ = utils.WriteUnauthorized(w, msgAuthRequired)

			default:
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.String("user_id", principal.UserID),
					zap.String("role", principal.Role.String()),
					zap.Strings("allowed_roles", allowed.Strings()))
				_ = utils.WriteForbidden(w, msgAccessDenied)
			}
		})
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header.
// Any other scheme, or an empty credential, counts as no token.
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get(authorizationHeader)
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != bearerScheme {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
