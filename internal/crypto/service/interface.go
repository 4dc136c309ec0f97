// Package service provides the cryptographic primitives behind field encryption:
// PBKDF2 key derivation, AES-256-GCM, the versioned envelope cipher and KMS keepers.
package service

import (
	"context"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// AEAD defines the interface for Authenticated Encryption with Associated Data.
type AEAD interface {
	// Encrypt encrypts plaintext with optional AAD and returns ciphertext and nonce.
	Encrypt(plaintext, aad []byte) (ciphertext, nonce []byte, err error)

	// Decrypt decrypts ciphertext using the provided nonce and AAD.
	Decrypt(ciphertext, nonce, aad []byte) ([]byte, error)
}

// CipherService turns a plaintext string into a self-describing envelope and back.
//
// Implementations never keep key material between calls: the secret is passed on every
// operation and the derived AES key is zeroed before returning.
type CipherService interface {
	// Encrypt always produces a version 2 envelope.
	Encrypt(plaintext, secret string) (string, error)

	// Decrypt accepts version 1 and version 2 envelopes.
	Decrypt(envelope, secret string) (string, error)
}

// KMSService opens keepers for external key management systems.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (cryptoDomain.KMSKeeper, error)
}
