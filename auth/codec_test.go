package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumit07M/bg-verification-project/models"
)

const (
	testSecret  = "test-signing-secret-with-at-least-32-bytes"
	otherSecret = "another-signing-secret-that-is-long-enough"
)

// testClock is a settable time source for deterministic expiry checks
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestCodec(t *testing.T, secret string, opts ...CodecOption) *Codec {
	t.Helper()
	key, err := NewSigningKey(secret)
	require.NoError(t, err)
	codec, err := NewCodec(key, opts...)
	require.NoError(t, err)
	return codec
}

// signRaw signs arbitrary claims with the given method, bypassing Codec.Issue
func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key interface{}) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func TestNewCodec(t *testing.T) {
	t.Run("rejects zero key", func(t *testing.T) {
		codec, err := NewCodec(SigningKey{})
		assert.ErrorIs(t, err, ErrMissingSigningKey)
		assert.Nil(t, codec)
	})

	t.Run("applies leeway", func(t *testing.T) {
		codec := newTestCodec(t, testSecret, WithLeeway(30*time.Second))
		assert.Equal(t, 30*time.Second, codec.Leeway())
	})
}

func TestCodec_RoundTrip(t *testing.T) {
	clock := &testClock{now: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	codec := newTestCodec(t, testSecret, WithClock(clock.Now))

	principals := []models.Principal{
		{UserID: "5b0c8f7e-0d5c-4d5e-9b7a-2f1c1a8e9d10", Role: models.RoleEmployee},
		{UserID: "mgr-42", Role: models.RoleManager},
		{UserID: "x", Role: models.RoleEmployee},
	}
	ttls := []time.Duration{time.Second, time.Minute, time.Hour, 24 * time.Hour, 30 * 24 * time.Hour}

	for _, p := range principals {
		for _, ttl := range ttls {
			token, _, err := codec.Issue(p, ttl)
			require.NoError(t, err)

			got, err := codec.Verify(token)
			require.NoError(t, err, "ttl %s", ttl)
			assert.Equal(t, p, got)
		}
	}
}

func TestCodec_SubSecondIssueTime(t *testing.T) {
	p := models.Principal{UserID: "user-1", Role: models.RoleEmployee}

	tests := []struct {
		name     string
		issuedAt time.Time
		ttl      time.Duration
		wantExp  time.Time
	}{
		{
			name:     "one second late in the second",
			issuedAt: time.Date(2024, 3, 15, 12, 0, 0, 900_000_000, time.UTC),
			ttl:      time.Second,
			wantExp:  time.Date(2024, 3, 15, 12, 0, 2, 0, time.UTC),
		},
		{
			name:     "half second ttl",
			issuedAt: time.Date(2024, 3, 15, 12, 0, 0, 200_000_000, time.UTC),
			ttl:      500 * time.Millisecond,
			wantExp:  time.Date(2024, 3, 15, 12, 0, 1, 0, time.UTC),
		},
		{
			name:     "whole second stays put",
			issuedAt: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC),
			ttl:      time.Hour,
			wantExp:  time.Date(2024, 3, 15, 13, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &testClock{now: tt.issuedAt}
			codec := newTestCodec(t, testSecret, WithClock(clock.Now))

			token, exp, err := codec.Issue(p, tt.ttl)
			require.NoError(t, err)
			assert.True(t, tt.wantExp.Equal(exp), "expiry %s", exp)
			assert.False(t, exp.Before(tt.issuedAt.Add(tt.ttl)), "token must live at least ttl")

			got, err := codec.Verify(token)
			require.NoError(t, err, "verify at the issue instant")
			assert.Equal(t, p, got)

			clock.now = tt.issuedAt.Add(tt.ttl - time.Nanosecond)
			_, err = codec.Verify(token)
			require.NoError(t, err, "verify just before ttl elapses")

			clock.now = exp
			_, err = codec.Verify(token)
			assert.ErrorIs(t, err, ErrExpiredToken)
		})
	}
}

func TestCodec_IssueReportsEmbeddedExpiry(t *testing.T) {
	issuedAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	codec := newTestCodec(t, testSecret, WithClock(func() time.Time { return issuedAt }))

	token, exp, err := codec.Issue(models.Principal{UserID: "u", Role: models.RoleManager}, 90*time.Minute)
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(token, claims)
	require.NoError(t, err)
	require.NotNil(t, claims.ExpiresAt)
	assert.True(t, claims.ExpiresAt.Time.Equal(exp))
}

func TestCodec_IssueValidation(t *testing.T) {
	codec := newTestCodec(t, testSecret)

	t.Run("rejects principal without user id", func(t *testing.T) {
		_, _, err := codec.Issue(models.Principal{Role: models.RoleEmployee}, time.Hour)
		assert.ErrorIs(t, err, models.ErrInvalidPrincipal)
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, _, err := codec.Issue(models.Principal{UserID: "u", Role: "admin"}, time.Hour)
		assert.ErrorIs(t, err, models.ErrInvalidPrincipal)
	})

	t.Run("rejects non-positive ttl", func(t *testing.T) {
		p := models.Principal{UserID: "u", Role: models.RoleEmployee}
		_, _, err := codec.Issue(p, 0)
		assert.Error(t, err)
		_, _, err = codec.Issue(p, -time.Minute)
		assert.Error(t, err)
	})
}

func TestCodec_Expiry(t *testing.T) {
	issuedAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := &testClock{now: issuedAt}
	codec := newTestCodec(t, testSecret, WithClock(clock.Now))

	p := models.Principal{UserID: "user-1", Role: models.RoleEmployee}
	token, _, err := codec.Issue(p, time.Hour)
	require.NoError(t, err)

	expiry := issuedAt.Add(time.Hour)

	t.Run("valid just before expiry", func(t *testing.T) {
		clock.now = expiry.Add(-time.Second)
		got, err := codec.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	})

	t.Run("expired at the expiry instant", func(t *testing.T) {
		clock.now = expiry
		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.NotErrorIs(t, err, ErrSignatureMismatch)
		assert.NotErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("expired after the expiry instant", func(t *testing.T) {
		for _, after := range []time.Duration{time.Second, time.Minute, 48 * time.Hour} {
			clock.now = expiry.Add(after)
			_, err := codec.Verify(token)
			assert.ErrorIs(t, err, ErrExpiredToken)
			assert.Equal(t, "expired", FailureReason(err))
		}
	})
}

func TestCodec_Leeway(t *testing.T) {
	issuedAt := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	clock := &testClock{now: issuedAt}
	codec := newTestCodec(t, testSecret, WithClock(clock.Now), WithLeeway(30*time.Second))

	token, _, err := codec.Issue(models.Principal{UserID: "u", Role: models.RoleManager}, time.Minute)
	require.NoError(t, err)

	clock.now = issuedAt.Add(time.Minute + 10*time.Second)
	_, err = codec.Verify(token)
	assert.NoError(t, err, "inside the grace window")

	clock.now = issuedAt.Add(time.Minute + 30*time.Second)
	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestCodec_SingleBitMutationIsRejected(t *testing.T) {
	codec := newTestCodec(t, testSecret)
	token, _, err := codec.Issue(models.Principal{UserID: "user-1", Role: models.RoleEmployee}, time.Hour)
	require.NoError(t, err)

	raw := []byte(token)
	for i := range raw {
		for bit := 0; bit < 8; bit++ {
			mutated := make([]byte, len(raw))
			copy(mutated, raw)
			mutated[i] ^= 1 << bit

			_, err := codec.Verify(string(mutated))
			if !assert.Error(t, err, "byte %d bit %d accepted", i, bit) {
				return
			}
			assert.True(t, IsAuthenticationError(err))
			assert.NotErrorIs(t, err, ErrExpiredToken)
		}
	}
}

func TestCodec_SignatureMismatch(t *testing.T) {
	issuer := newTestCodec(t, otherSecret)
	verifier := newTestCodec(t, testSecret)

	p := models.Principal{UserID: "user-1", Role: models.RoleManager}

	t.Run("different key", func(t *testing.T) {
		token, _, err := issuer.Issue(p, time.Hour)
		require.NoError(t, err)

		_, err = verifier.Verify(token)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
		assert.Equal(t, "signature_mismatch", FailureReason(err))
	})

	t.Run("swapped payload", func(t *testing.T) {
		employeeToken, _, err := verifier.Issue(models.Principal{UserID: "user-1", Role: models.RoleEmployee}, time.Hour)
		require.NoError(t, err)
		managerToken, _, err := verifier.Issue(p, time.Hour)
		require.NoError(t, err)

		e := strings.Split(employeeToken, ".")
		m := strings.Split(managerToken, ".")
		forged := strings.Join([]string{e[0], m[1], e[2]}, ".")

		_, err = verifier.Verify(forged)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("tampered and expired reports signature", func(t *testing.T) {
		clock := &testClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
		foreign := newTestCodec(t, otherSecret, WithClock(clock.Now))
		codec := newTestCodec(t, testSecret, WithClock(clock.Now))
		token, _, err := foreign.Issue(p, time.Minute)
		require.NoError(t, err)

		clock.now = clock.now.Add(time.Hour)
		_, err = codec.Verify(token)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
		assert.NotErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("other algorithm with the same key", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: models.RoleManager,
		}
		token := signRaw(t, jwt.SigningMethodHS512, claims, []byte(testSecret))

		_, err := verifier.Verify(token)
		assert.ErrorIs(t, err, ErrSignatureMismatch)
	})

	t.Run("alg none", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: models.RoleManager,
		}
		token := signRaw(t, jwt.SigningMethodNone, claims, jwt.UnsafeAllowNoneSignatureType)

		_, err := verifier.Verify(token)
		assert.Error(t, err)
		assert.True(t, IsAuthenticationError(err))
	})
}

func TestCodec_Malformed(t *testing.T) {
	codec := newTestCodec(t, testSecret)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "single segment", token: "not-a-token"},
		{name: "two segments", token: "abc.def"},
		{name: "undecodable segments", token: "!!!.???.***"},
		{name: "four segments", token: "a.b.c.d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := codec.Verify(tt.token)
			assert.ErrorIs(t, err, ErrMalformedToken)
			assert.Equal(t, "malformed", FailureReason(err))
		})
	}

	t.Run("signed token with unknown role", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: models.Role("admin"),
		}
		token := signRaw(t, jwt.SigningMethodHS256, claims, []byte(testSecret))

		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("signed token without subject", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Role: models.RoleEmployee,
		}
		token := signRaw(t, jwt.SigningMethodHS256, claims, []byte(testSecret))

		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})

	t.Run("signed token without expiry", func(t *testing.T) {
		claims := &Claims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"},
			Role:             models.RoleEmployee,
		}
		token := signRaw(t, jwt.SigningMethodHS256, claims, []byte(testSecret))

		_, err := codec.Verify(token)
		assert.ErrorIs(t, err, ErrMalformedToken)
	})
}
