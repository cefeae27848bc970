// Package auth holds the session trust primitives for the onboarding portal.
//
// This package implements:
//   - TokenCodec: HS256 bearer tokens that carry exactly one Principal and an expiry
//   - the authentication failure taxonomy (missing, malformed, signature mismatch, expired)
//   - the role gate decision used by the HTTP middleware and mirrored by the client guard
//
// The signing key is an immutable value built once at startup and handed to NewCodec.
// There is no package-level key and no default.
package auth
