// Package dto provides data transfer objects for the token encryption endpoints.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// EncryptTokensRequest is a token response from an OAuth authorization server.
type EncryptTokensRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Validate checks if the encrypt request is valid.
func (r *EncryptTokensRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AccessToken, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ExpiresIn, validation.Min(int64(0)), validation.Max(tokenDomain.MaxExpiresInSeconds)),
	)
}

// ToDomain converts the request to domain tokens.
func (r *EncryptTokensRequest) ToDomain() tokenDomain.Tokens {
	return tokenDomain.Tokens{
		AccessToken:      r.AccessToken,
		RefreshToken:     r.RefreshToken,
		ExpiresInSeconds: r.ExpiresIn,
	}
}

// TokenRecordRequest carries a stored token record for decryption or validation.
type TokenRecordRequest struct {
	AccessToken       string    `json:"accessToken"`
	RefreshToken      string    `json:"refreshToken"`
	ExpiresAt         time.Time `json:"expiresAt"`
	IssuedAt          time.Time `json:"issuedAt"`
	IsEncrypted       bool      `json:"isEncrypted"`
	EncryptionVersion string    `json:"encryptionVersion"`
}

// Validate checks if the record request is valid.
func (r *TokenRecordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AccessToken,
			validation.Required,
			validation.When(r.IsEncrypted, customValidation.Base64),
		),
		validation.Field(&r.RefreshToken, validation.When(r.IsEncrypted, customValidation.Base64)),
	)
}

// ToDomain converts the request to a domain record.
func (r *TokenRecordRequest) ToDomain() *tokenDomain.TokenRecord {
	return &tokenDomain.TokenRecord{
		AccessToken:       r.AccessToken,
		RefreshToken:      r.RefreshToken,
		ExpiresAt:         r.ExpiresAt,
		IssuedAt:          r.IssuedAt,
		IsEncrypted:       r.IsEncrypted,
		EncryptionVersion: r.EncryptionVersion,
	}
}
