package auth

import "fmt"

// MinSigningKeyLength is the smallest accepted HMAC secret, matching the SHA-256 block output
const MinSigningKeyLength = 32

// SigningKey is the process-wide HMAC secret. The zero value is unusable.
// The material is copied on construction and never exposed, so a SigningKey
// can be shared by any number of goroutines without synchronization.
type SigningKey struct {
	material []byte
}

// NewSigningKey validates and wraps a secret loaded from configuration
func NewSigningKey(secret string) (SigningKey, error) {
	if secret == "" {
		return SigningKey{}, ErrMissingSigningKey
	}
	if len(secret) < MinSigningKeyLength {
		return SigningKey{}, fmt.Errorf("%w: got %d bytes, need at least %d", ErrWeakSigningKey, len(secret), MinSigningKeyLength)
	}
	return SigningKey{material: []byte(secret)}, nil
}

// IsZero reports whether the key was never initialised
func (k SigningKey) IsZero() bool {
	return len(k.material) == 0
}

// String keeps the secret out of logs and %v formatting
func (k SigningKey) String() string {
	if k.IsZero() {
		return "SigningKey(unset)"
	}
	return "SigningKey(redacted)"
}

// GoString keeps the secret out of %#v formatting
func (k SigningKey) GoString() string {
	return k.String()
}
