package service

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

func TestNewAESGCM(t *testing.T) {
	t.Run("accepts 32 byte key", func(t *testing.T) {
		c, err := NewAESGCM(make([]byte, 32))
		require.NoError(t, err)
		assert.NotNil(t, c)
	})

	for _, size := range []int{0, 16, 24, 31, 33} {
		c, err := NewAESGCM(make([]byte, size))
		assert.ErrorIs(t, err, cryptoDomain.ErrInvalidKeySize, "size %d", size)
		assert.Nil(t, c)
	}
}

func TestAESGCMCipher_EncryptDecrypt(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	c, err := NewAESGCM(key)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		plaintext := []byte("AB123456C")

		ciphertext, nonce, err := c.Encrypt(plaintext, nil)
		require.NoError(t, err)
		assert.Len(t, nonce, cryptoDomain.NonceSize)
		assert.Len(t, ciphertext, len(plaintext)+cryptoDomain.TagSize)

		decrypted, err := c.Decrypt(ciphertext, nonce, nil)
		require.NoError(t, err)
		assert.Equal(t, plaintext, decrypted)
	})

	t.Run("fresh nonce per call", func(t *testing.T) {
		_, n1, err := c.Encrypt([]byte("x"), nil)
		require.NoError(t, err)
		_, n2, err := c.Encrypt([]byte("x"), nil)
		require.NoError(t, err)
		assert.NotEqual(t, n1, n2)
	})

	t.Run("tampered ciphertext", func(t *testing.T) {
		ciphertext, nonce, err := c.Encrypt([]byte("payroll"), nil)
		require.NoError(t, err)
		ciphertext[0] ^= 0x01

		decrypted, err := c.Decrypt(ciphertext, nonce, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
		assert.Nil(t, decrypted)
	})

	t.Run("wrong key", func(t *testing.T) {
		ciphertext, nonce, err := c.Encrypt([]byte("payroll"), nil)
		require.NoError(t, err)

		other, err := NewAESGCM(bytes.Repeat([]byte{0x43}, 32))
		require.NoError(t, err)

		_, err = other.Decrypt(ciphertext, nonce, nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})

	t.Run("wrong nonce length", func(t *testing.T) {
		ciphertext, _, err := c.Encrypt([]byte("payroll"), nil)
		require.NoError(t, err)

		_, err = c.Decrypt(ciphertext, make([]byte, 8), nil)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
	})
}
