package repository

import (
	"context"
	"sort"
	"sync"

	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

// MemoryTokenRepository keeps tokens in process memory. Used for development and tests.
type MemoryTokenRepository struct {
	mu     sync.RWMutex
	tokens map[string]storeDomain.StoredToken
}

// NewMemoryTokenRepository creates an empty in-memory repository.
func NewMemoryTokenRepository() *MemoryTokenRepository {
	return &MemoryTokenRepository{tokens: make(map[string]storeDomain.StoredToken)}
}

// Upsert stores token for its subject, keeping the id and creation time of an existing entry.
func (r *MemoryTokenRepository) Upsert(_ context.Context, token *storeDomain.StoredToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *token
	if existing, ok := r.tokens[token.Subject]; ok {
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	}
	r.tokens[token.Subject] = stored
	return nil
}

// Get returns a copy of the token stored for subject or ErrTokenNotFound.
func (r *MemoryTokenRepository) Get(_ context.Context, subject string) (*storeDomain.StoredToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	token, ok := r.tokens[subject]
	if !ok {
		return nil, storeDomain.ErrTokenNotFound
	}
	return &token, nil
}

// Delete removes the token stored for subject. Returns ErrTokenNotFound if none was stored.
func (r *MemoryTokenRepository) Delete(_ context.Context, subject string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tokens[subject]; !ok {
		return storeDomain.ErrTokenNotFound
	}
	delete(r.tokens, subject)
	return nil
}

// ListStale returns the tokens not encrypted under currentVersion, ordered by subject.
func (r *MemoryTokenRepository) ListStale(
	_ context.Context,
	currentVersion string,
) ([]*storeDomain.StoredToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var stale []*storeDomain.StoredToken
	for _, token := range r.tokens {
		if token.IsStale(currentVersion) {
			stale = append(stale, &token)
		}
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].Subject < stale[j].Subject })
	return stale, nil
}
