package auth

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSigningKey(t *testing.T) {
	t.Run("missing", func(t *testing.T) {
		key, err := NewSigningKey("")
		assert.ErrorIs(t, err, ErrMissingSigningKey)
		assert.True(t, key.IsZero())
	})

	t.Run("too short", func(t *testing.T) {
		key, err := NewSigningKey(strings.Repeat("k", MinSigningKeyLength-1))
		assert.ErrorIs(t, err, ErrWeakSigningKey)
		assert.True(t, key.IsZero())
	})

	t.Run("accepted", func(t *testing.T) {
		key, err := NewSigningKey(strings.Repeat("k", MinSigningKeyLength))
		require.NoError(t, err)
		assert.False(t, key.IsZero())
	})
}

func TestSigningKey_NeverFormatsSecret(t *testing.T) {
	key, err := NewSigningKey(testSecret)
	require.NoError(t, err)

	for _, verb := range []string{"%v", "%+v", "%s", "%#v"} {
		assert.NotContains(t, fmt.Sprintf(verb, key), testSecret, verb)
	}
	assert.Equal(t, "SigningKey(unset)", SigningKey{}.String())
}
