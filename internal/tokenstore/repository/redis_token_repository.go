package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sort"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

// DefaultRedisKeyPrefix namespaces token documents.
const DefaultRedisKeyPrefix = "fieldvault:oauth_token:"

// RedisTokenRepository stores each subject's token as a JSON document under prefix+subject.
// Documents never expire: the refresh token outlives the access token.
type RedisTokenRepository struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisTokenRepository creates a Redis-backed repository. An empty prefix uses
// DefaultRedisKeyPrefix.
func NewRedisTokenRepository(rdb redis.UniversalClient, prefix string) *RedisTokenRepository {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisTokenRepository{rdb: rdb, prefix: prefix}
}

func (r *RedisTokenRepository) key(subject string) string {
	return r.prefix + subject
}

// Upsert writes the document, keeping the id and creation time of an existing one.
func (r *RedisTokenRepository) Upsert(ctx context.Context, token *storeDomain.StoredToken) error {
	stored := *token
	existing, err := r.Get(ctx, token.Subject)
	switch {
	case err == nil:
		stored.ID = existing.ID
		stored.CreatedAt = existing.CreatedAt
	case !errors.Is(err, storeDomain.ErrTokenNotFound):
		return err
	}

	raw, err := json.Marshal(stored)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token")
	}
	if err := r.rdb.Set(ctx, r.key(token.Subject), raw, 0).Err(); err != nil {
		return apperrors.Wrap(err, "failed to upsert token")
	}
	return nil
}

// Get returns the token stored for subject or ErrTokenNotFound.
func (r *RedisTokenRepository) Get(ctx context.Context, subject string) (*storeDomain.StoredToken, error) {
	raw, err := r.rdb.Get(ctx, r.key(subject)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storeDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}

	var token storeDomain.StoredToken
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal token")
	}
	return &token, nil
}

// Delete removes the token stored for subject. Returns ErrTokenNotFound if none was stored.
func (r *RedisTokenRepository) Delete(ctx context.Context, subject string) error {
	n, err := r.rdb.Del(ctx, r.key(subject)).Result()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete token")
	}
	if n == 0 {
		return storeDomain.ErrTokenNotFound
	}
	return nil
}

// ListStale scans every document under the prefix and returns the stale ones.
func (r *RedisTokenRepository) ListStale(
	ctx context.Context,
	currentVersion string,
) ([]*storeDomain.StoredToken, error) {
	var stale []*storeDomain.StoredToken

	iter := r.rdb.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		subject := iter.Val()[len(r.prefix):]
		token, err := r.Get(ctx, subject)
		if errors.Is(err, storeDomain.ErrTokenNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if token.IsStale(currentVersion) {
			stale = append(stale, token)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to scan tokens")
	}

	sort.Slice(stale, func(i, j int) bool { return stale[i].Subject < stale[j].Subject })
	return stale, nil
}
