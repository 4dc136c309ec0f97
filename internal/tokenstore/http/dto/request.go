// Package dto provides data transfer objects for the token store endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// StoreTokensRequest is a token response to store for a subject.
type StoreTokensRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}

// Validate checks if the store request is valid.
func (r *StoreTokensRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.AccessToken, validation.Required, customValidation.NotBlank),
		validation.Field(&r.ExpiresIn, validation.Min(int64(0)), validation.Max(tokenDomain.MaxExpiresInSeconds)),
	)
}

// ToDomain converts the request to domain tokens.
func (r *StoreTokensRequest) ToDomain() tokenDomain.Tokens {
	return tokenDomain.Tokens{
		AccessToken:      r.AccessToken,
		RefreshToken:     r.RefreshToken,
		ExpiresInSeconds: r.ExpiresIn,
	}
}
