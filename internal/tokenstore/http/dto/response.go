package dto

import (
	"time"

	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

// StoredTokenResponse describes a stored token without its ciphertext.
type StoredTokenResponse struct {
	ID                string    `json:"id"`
	Subject           string    `json:"subject"`
	ExpiresAt         time.Time `json:"expiresAt"`
	IssuedAt          time.Time `json:"issuedAt"`
	EncryptionVersion string    `json:"encryptionVersion"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// MapStoredTokenToResponse converts a stored token to an API response.
func MapStoredTokenToResponse(stored *storeDomain.StoredToken) StoredTokenResponse {
	return StoredTokenResponse{
		ID:                stored.ID.String(),
		Subject:           stored.Subject,
		ExpiresAt:         stored.Record.ExpiresAt,
		IssuedAt:          stored.Record.IssuedAt,
		EncryptionVersion: stored.Record.EncryptionVersion,
		CreatedAt:         stored.CreatedAt,
		UpdatedAt:         stored.UpdatedAt,
	}
}

// TokensResponse is a subject's decrypted token pair.
type TokensResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// MapTokensToResponse converts decrypted tokens to an API response.
func MapTokensToResponse(tokens *tokenDomain.DecryptedTokens) TokensResponse {
	return TokensResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		ExpiresAt:    tokens.ExpiresAt,
	}
}
