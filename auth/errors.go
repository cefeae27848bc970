package auth

import "errors"

var (
	// ErrMissingToken is returned when a request carries no bearer token
	ErrMissingToken = errors.New("missing token")

	// ErrMalformedToken is returned when a token cannot be parsed into header, payload and signature
	ErrMalformedToken = errors.New("malformed token")

	// ErrSignatureMismatch is returned when the signature does not match the payload under the configured key
	ErrSignatureMismatch = errors.New("token signature mismatch")

	// ErrExpiredToken is returned when the current time is at or past the embedded expiry
	ErrExpiredToken = errors.New("token expired")

	// ErrUnauthenticated is returned when a role check runs without an authenticated principal
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the principal is known but its role is not allowed
	ErrForbidden = errors.New("forbidden")

	// ErrMissingSigningKey is returned when no signing key is configured
	ErrMissingSigningKey = errors.New("signing key is required")

	// ErrWeakSigningKey is returned when the signing key is shorter than MinSigningKeyLength
	ErrWeakSigningKey = errors.New("signing key is too short")
)

// IsAuthenticationError reports whether err means the caller is not authenticated.
// All of these collapse to a single 401 outcome at the service boundary.
func IsAuthenticationError(err error) bool {
	return errors.Is(err, ErrMissingToken) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrSignatureMismatch) ||
		errors.Is(err, ErrExpiredToken) ||
		errors.Is(err, ErrUnauthenticated)
}

// FailureReason returns a short label for logs. It must never be sent to the caller.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingToken):
		return "missing"
	case errors.Is(err, ErrExpiredToken):
		return "expired"
	case errors.Is(err, ErrSignatureMismatch):
		return "signature_mismatch"
	case errors.Is(err, ErrMalformedToken):
		return "malformed"
	case errors.Is(err, ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	default:
		return "unknown"
	}
}
