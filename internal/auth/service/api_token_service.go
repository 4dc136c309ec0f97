// Package service issues and verifies the bearer token that guards the HTTP API.
// Only an Argon2id hash of the token is configured on the server.
package service

import (
	"crypto/rand"
	"encoding/base64"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

// APITokenService generates API tokens and checks presented tokens against a stored hash.
type APITokenService interface {
	// Generate returns a new random token and its Argon2id hash in PHC format.
	Generate() (plainToken string, tokenHash string, err error)
	// Hash hashes a token chosen by the operator.
	Hash(plainToken string) (string, error)
	// Verify reports whether plainToken matches tokenHash. Malformed hashes never match.
	Verify(plainToken, tokenHash string) bool
}

type apiTokenService struct {
	hasher *pwdhash.PasswordHasher
}

// NewAPITokenService creates an APITokenService using the Moderate Argon2id policy.
func NewAPITokenService() APITokenService {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		panic(err)
	}
	return &apiTokenService{hasher: hasher}
}

// Generate creates a 32-byte random token, URL-safe base64 encoded.
func (s *apiTokenService) Generate() (string, string, error) {
	randomBytes := make([]byte, 32)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", "", apperrors.Wrap(err, "failed to generate api token")
	}
	plainToken := base64.URLEncoding.EncodeToString(randomBytes)

	tokenHash, err := s.Hash(plainToken)
	if err != nil {
		return "", "", err
	}
	return plainToken, tokenHash, nil
}

func (s *apiTokenService) Hash(plainToken string) (string, error) {
	tokenHash, err := s.hasher.Hash([]byte(plainToken))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash api token")
	}
	return tokenHash, nil
}

func (s *apiTokenService) Verify(plainToken, tokenHash string) bool {
	ok, err := s.hasher.Verify([]byte(plainToken), tokenHash)
	if err != nil {
		return false
	}
	return ok
}
