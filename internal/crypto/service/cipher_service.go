package service

import (
	"crypto/rand"
	"fmt"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

type cipherService struct{}

// NewCipherService creates the stateless envelope cipher.
func NewCipherService() CipherService {
	return &cipherService{}
}

// Encrypt seals plaintext into a version 2 envelope under a key derived from secret and a
// fresh random salt. Two calls with identical input yield different envelopes.
func (c *cipherService) Encrypt(plaintext, secret string) (string, error) {
	if err := cryptoDomain.ValidateSecret(secret); err != nil {
		return "", err
	}

	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	key, err := DeriveKey(secret, salt)
	if err != nil {
		return "", err
	}
	defer cryptoDomain.Zero(key)

	aead, err := NewAESGCM(key)
	if err != nil {
		return "", err
	}

	ciphertext, nonce, err := aead.Encrypt([]byte(plaintext), nil)
	if err != nil {
		return "", err
	}

	return cryptoDomain.EncodeEnvelope(cryptoDomain.EnvelopeV2{
		Salt:       salt,
		IV:         nonce,
		Ciphertext: ciphertext,
	})
}

// Decrypt opens a version 1 or version 2 envelope.
func (c *cipherService) Decrypt(envelope, secret string) (string, error) {
	if err := cryptoDomain.ValidateSecret(secret); err != nil {
		return "", err
	}

	env, err := cryptoDomain.DecodeEnvelope(envelope)
	if err != nil {
		return "", err
	}

	var key []byte
	switch e := env.(type) {
	case cryptoDomain.EnvelopeV2:
		key, err = DeriveKey(secret, e.Salt)
		if err != nil {
			return "", err
		}
	case cryptoDomain.EnvelopeV1:
		key = DeriveKeyLegacy(secret)
	default:
		return "", fmt.Errorf("%w: %d", cryptoDomain.ErrUnknownEnvelopeVersion, env.Version())
	}
	defer cryptoDomain.Zero(key)

	aead, err := NewAESGCM(key)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.Decrypt(env.Sealed(), env.Nonce(), nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}
