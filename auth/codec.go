package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Sumit07M/bg-verification-project/models"
)

// Claims is the JWT payload. Subject carries the principal's user ID.
type Claims struct {
	jwt.RegisteredClaims
	Role models.Role `json:"role"`
}

// CodecOption configures a Codec
type CodecOption func(*Codec)

// WithClock overrides the time source used for issuing and verifying tokens
func WithClock(now func() time.Time) CodecOption {
	return func(c *Codec) {
		if now != nil {
			c.now = now
		}
	}
}

// WithLeeway sets the clock skew tolerance applied to the expiry comparison
func WithLeeway(d time.Duration) CodecOption {
	return func(c *Codec) {
		if d > 0 {
			c.leeway = d
		}
	}
}

// Codec issues and verifies signed, time-bounded bearer tokens.
// Verification is a pure function of the token, the clock and the key.
type Codec struct {
	key    SigningKey
	now    func() time.Time
	leeway time.Duration
	parser *jwt.Parser
}

// NewCodec creates a Codec bound to key. It refuses to start without a key.
func NewCodec(key SigningKey, opts ...CodecOption) (*Codec, error) {
	if key.IsZero() {
		return nil, ErrMissingSigningKey
	}

	c := &Codec{
		key: key,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(c.leeway),
		jwt.WithTimeFunc(c.now),
		jwt.WithStrictDecoding(),
	)

	return c, nil
}

// Leeway returns the configured clock skew tolerance
func (c *Codec) Leeway() time.Duration {
	return c.leeway
}

// Issue produces a token embedding p that expires ttl from now, and returns the
// expiry it embedded. Token timestamps have whole-second precision, so the expiry is
// rounded up to the next second; a token never lives shorter than ttl.
func (c *Codec) Issue(p models.Principal, ttl time.Duration) (string, time.Time, error) {
	if err := p.Validate(); err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	if ttl <= 0 {
		return "", time.Time{}, fmt.Errorf("issue token: ttl must be positive, got %s", ttl)
	}

	now := c.now()
	expiresAt := ceilSecond(now.Add(ttl))
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Role: p.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(c.key.material)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("issue token: %w", err)
	}
	return signed, expiresAt, nil
}

// ceilSecond rounds t up to jwt.TimePrecision
func ceilSecond(t time.Time) time.Time {
	truncated := t.Truncate(jwt.TimePrecision)
	if truncated.Equal(t) {
		return truncated
	}
	return truncated.Add(jwt.TimePrecision)
}

// Verify checks the signature and expiry of token and returns the embedded principal.
// Errors wrap exactly one of ErrMalformedToken, ErrSignatureMismatch or ErrExpiredToken.
func (c *Codec) Verify(token string) (models.Principal, error) {
	if token == "" {
		return models.Principal{}, fmt.Errorf("%w: empty token", ErrMalformedToken)
	}

	claims := &Claims{}
	parsed, err := c.parser.ParseWithClaims(token, claims, c.keyFunc)
	if err != nil {
		return models.Principal{}, classify(err)
	}
	if !parsed.Valid {
		return models.Principal{}, ErrMalformedToken
	}

	p, err := models.NewPrincipal(claims.Subject, claims.Role)
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return p, nil
}

func (c *Codec) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return c.key.material, nil
}

// classify maps jwt parser errors onto the auth taxonomy.
// The parser checks the signature before claims, so a tampered token never reports expiry.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", ErrExpiredToken, err)
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", ErrSignatureMismatch, err)
	default:
		return fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
}
