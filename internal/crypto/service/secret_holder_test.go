package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

func TestSecretHolder(t *testing.T) {
	t.Run("uninitialized", func(t *testing.T) {
		var h SecretHolder
		assert.False(t, h.Initialized())

		_, err := h.Secret()
		assert.ErrorIs(t, err, cryptoDomain.ErrUninitializedService)
	})

	t.Run("rejects short secret", func(t *testing.T) {
		var h SecretHolder
		assert.ErrorIs(t, h.Initialize("short"), cryptoDomain.ErrKeyTooShort)
		assert.False(t, h.Initialized())
	})

	t.Run("rotation replaces secret", func(t *testing.T) {
		var h SecretHolder
		require.NoError(t, h.Initialize(strings.Repeat("a", 32)))
		require.NoError(t, h.Initialize(strings.Repeat("b", 32)))

		secret, err := h.Secret()
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("b", 32), secret)
	})

	t.Run("failed rotation keeps previous secret", func(t *testing.T) {
		var h SecretHolder
		require.NoError(t, h.Initialize(strings.Repeat("a", 32)))
		assert.Error(t, h.Initialize("short"))

		secret, err := h.Secret()
		require.NoError(t, err)
		assert.Equal(t, strings.Repeat("a", 32), secret)
	})
}
