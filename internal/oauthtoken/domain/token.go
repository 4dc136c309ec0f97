// Package domain defines OAuth token records as they are persisted at rest.
package domain

import (
	"time"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/errors"
)

// CurrentEncryptionVersion tags records written by this service. It is independent of the
// envelope version byte and changes only when the record-level scheme changes.
const CurrentEncryptionVersion = "v1"

// MaxExpiresInSeconds caps a token lifetime at ten years.
const MaxExpiresInSeconds int64 = 10 * 365 * 24 * 60 * 60

// Tokens is a token response from an OAuth authorization server.
type Tokens struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresInSeconds int64  `json:"expiresIn"`
}

// TokenRecord is the at-rest form of a token pair. When IsEncrypted is false the token
// fields hold plaintext written before encryption was introduced.
type TokenRecord struct {
	AccessToken       string    `json:"accessToken"`
	RefreshToken      string    `json:"refreshToken"`
	ExpiresAt         time.Time `json:"expiresAt"`
	IssuedAt          time.Time `json:"issuedAt"`
	IsEncrypted       bool      `json:"isEncrypted"`
	EncryptionVersion string    `json:"encryptionVersion,omitempty"`
}

// HasLegacyEnvelope reports whether an encrypted token is still sealed in a version 1
// envelope. Such records carry the current version tag but use the fixed-salt key.
func (r *TokenRecord) HasLegacyEnvelope() bool {
	if !r.IsEncrypted {
		return false
	}
	for _, value := range []string{r.AccessToken, r.RefreshToken} {
		env, err := cryptoDomain.DecodeEnvelope(value)
		if err == nil && env.Version() == cryptoDomain.VersionLegacy {
			return true
		}
	}
	return false
}

// Expired reports whether the access token has expired at now.
func (r *TokenRecord) Expired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}

// DecryptedTokens is the plaintext view returned to callers.
type DecryptedTokens struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// ValidationReport is the result of a trial decryption. It never carries plaintext.
type ValidationReport struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ErrInvalidTokens indicates a token response without an access token or with a lifetime
// outside [0, MaxExpiresInSeconds].
var ErrInvalidTokens = errors.Wrap(errors.ErrInvalidInput, "invalid token response")

// Validate checks the fields EncryptTokens relies on.
func (t Tokens) Validate() error {
	if t.AccessToken == "" || t.ExpiresInSeconds < 0 || t.ExpiresInSeconds > MaxExpiresInSeconds {
		return ErrInvalidTokens
	}
	return nil
}
