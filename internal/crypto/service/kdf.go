package service

import (
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// DeriveKey stretches a configured secret into a 32-byte AES-256 key with
// PBKDF2-HMAC-SHA256 and 100,000 iterations.
//
// The result is deterministic for identical password and salt. It is only ever handed to
// NewAESGCM and should be zeroed with cryptoDomain.Zero once the operation is done.
// Returns ErrInvalidSaltSize unless salt is exactly 16 bytes.
func DeriveKey(password string, salt []byte) ([]byte, error) {
	if len(salt) != cryptoDomain.SaltSize {
		return nil, cryptoDomain.ErrInvalidSaltSize
	}
	return pbkdf2.Key(
		[]byte(password),
		salt,
		cryptoDomain.PBKDF2Iterations,
		cryptoDomain.KeySize,
		sha256.New,
	), nil
}

// DeriveKeyLegacy derives the key for version 1 envelopes using the fixed LegacySalt.
// Never use it to encrypt.
func DeriveKeyLegacy(password string) []byte {
	return pbkdf2.Key(
		[]byte(password),
		[]byte(cryptoDomain.LegacySalt),
		cryptoDomain.PBKDF2Iterations,
		cryptoDomain.KeySize,
		sha256.New,
	)
}
