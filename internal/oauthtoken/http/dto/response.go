package dto

import (
	"time"

	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
)

// TokenRecordResponse is the at-rest form of an encrypted token pair.
type TokenRecordResponse struct {
	AccessToken       string    `json:"accessToken"`
	RefreshToken      string    `json:"refreshToken"`
	ExpiresAt         time.Time `json:"expiresAt"`
	IssuedAt          time.Time `json:"issuedAt"`
	IsEncrypted       bool      `json:"isEncrypted"`
	EncryptionVersion string    `json:"encryptionVersion,omitempty"`
}

// MapTokenRecordToResponse converts a domain record to an API response.
func MapTokenRecordToResponse(record *tokenDomain.TokenRecord) TokenRecordResponse {
	return TokenRecordResponse{
		AccessToken:       record.AccessToken,
		RefreshToken:      record.RefreshToken,
		ExpiresAt:         record.ExpiresAt,
		IssuedAt:          record.IssuedAt,
		IsEncrypted:       record.IsEncrypted,
		EncryptionVersion: record.EncryptionVersion,
	}
}

// DecryptedTokensResponse is the plaintext view of a record.
type DecryptedTokensResponse struct {
	AccessToken       string    `json:"accessToken"`
	RefreshToken      string    `json:"refreshToken"`
	ExpiresAt         time.Time `json:"expiresAt"`
	Expired           bool      `json:"expired"`
	NeedsReEncryption bool      `json:"needsReEncryption"`
}

// MapDecryptedTokensToResponse converts decrypted tokens to an API response.
func MapDecryptedTokensToResponse(
	tokens *tokenDomain.DecryptedTokens,
	now time.Time,
	needsReEncryption bool,
) DecryptedTokensResponse {
	return DecryptedTokensResponse{
		AccessToken:       tokens.AccessToken,
		RefreshToken:      tokens.RefreshToken,
		ExpiresAt:         tokens.ExpiresAt,
		Expired:           !now.Before(tokens.ExpiresAt),
		NeedsReEncryption: needsReEncryption,
	}
}

// ValidationResponse reports a trial decryption without revealing plaintext.
type ValidationResponse struct {
	Valid             bool   `json:"valid"`
	Error             string `json:"error,omitempty"`
	NeedsReEncryption bool   `json:"needsReEncryption"`
}

// MapValidationReportToResponse converts a validation report to an API response.
func MapValidationReportToResponse(report tokenDomain.ValidationReport, needsReEncryption bool) ValidationResponse {
	return ValidationResponse{
		Valid:             report.Valid,
		Error:             report.Error,
		NeedsReEncryption: needsReEncryption,
	}
}
