// Package service encrypts OAuth token pairs for storage and manages their record version.
package service

import (
	"context"

	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
)

// TokenEncryptor encrypts and decrypts token records.
type TokenEncryptor interface {
	Initialize(key string) error
	Initialized() bool

	// EncryptTokens encrypts both tokens and stamps issue and expiry times.
	EncryptTokens(ctx context.Context, tokens tokenDomain.Tokens) (*tokenDomain.TokenRecord, error)

	// DecryptTokens returns the plaintext tokens. Records that were never encrypted are
	// returned as stored with a warning.
	DecryptTokens(ctx context.Context, record *tokenDomain.TokenRecord) (*tokenDomain.DecryptedTokens, error)

	// NeedsReEncryption reports whether record should be rewritten in the current scheme.
	NeedsReEncryption(record *tokenDomain.TokenRecord) bool

	// ValidateEncryption attempts a full decrypt and reports the outcome without failing.
	ValidateEncryption(ctx context.Context, record *tokenDomain.TokenRecord) tokenDomain.ValidationReport
}
