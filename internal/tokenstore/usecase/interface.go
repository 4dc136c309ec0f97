// Package usecase stores OAuth tokens per subject, encrypted with the token storage key.
package usecase

import (
	"context"

	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

// TokenRepository persists StoredToken documents keyed by subject.
type TokenRepository interface {
	// Upsert creates or replaces the token for token.Subject, keeping the original id and
	// creation time.
	Upsert(ctx context.Context, token *storeDomain.StoredToken) error

	// Get returns ErrTokenNotFound when no token is stored.
	Get(ctx context.Context, subject string) (*storeDomain.StoredToken, error)

	// Delete returns ErrTokenNotFound when no token is stored.
	Delete(ctx context.Context, subject string) error

	// ListStale returns plaintext tokens and tokens tagged with another version.
	ListStale(ctx context.Context, currentVersion string) ([]*storeDomain.StoredToken, error)
}

// UseCase is the token storage API.
type UseCase interface {
	Initialize(key string) error
	Initialized() bool
	Save(ctx context.Context, subject string, tokens tokenDomain.Tokens) (*storeDomain.StoredToken, error)
	Load(ctx context.Context, subject string) (*tokenDomain.DecryptedTokens, error)
	Refresh(ctx context.Context, subject string, tokens tokenDomain.Tokens) (*storeDomain.StoredToken, error)
	Delete(ctx context.Context, subject string) error
	ReEncryptAll(ctx context.Context) (*storeDomain.ReEncryptReport, error)
}
