package usecase

import (
	"context"
	"time"

	"github.com/allisson/fieldvault/internal/metrics"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

// tokenStorageWithMetrics decorates UseCase with metrics instrumentation.
type tokenStorageWithMetrics struct {
	next    UseCase
	metrics metrics.BusinessMetrics
}

// NewTokenStorageWithMetrics wraps a UseCase with metrics recording.
func NewTokenStorageWithMetrics(next UseCase, m metrics.BusinessMetrics) UseCase {
	return &tokenStorageWithMetrics{next: next, metrics: m}
}

func (t *tokenStorageWithMetrics) observe(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.Status(err)
	t.metrics.RecordOperation(ctx, "tokenstore", operation, status)
	t.metrics.RecordDuration(ctx, "tokenstore", operation, time.Since(start), status)
}

func (t *tokenStorageWithMetrics) Initialize(key string) error {
	return t.next.Initialize(key)
}

func (t *tokenStorageWithMetrics) Initialized() bool {
	return t.next.Initialized()
}

func (t *tokenStorageWithMetrics) Save(
	ctx context.Context,
	subject string,
	tokens tokenDomain.Tokens,
) (*storeDomain.StoredToken, error) {
	start := time.Now()
	stored, err := t.next.Save(ctx, subject, tokens)
	t.observe(ctx, "token_save", start, err)
	return stored, err
}

func (t *tokenStorageWithMetrics) Load(ctx context.Context, subject string) (*tokenDomain.DecryptedTokens, error) {
	start := time.Now()
	tokens, err := t.next.Load(ctx, subject)
	t.observe(ctx, "token_load", start, err)
	return tokens, err
}

func (t *tokenStorageWithMetrics) Refresh(
	ctx context.Context,
	subject string,
	tokens tokenDomain.Tokens,
) (*storeDomain.StoredToken, error) {
	start := time.Now()
	stored, err := t.next.Refresh(ctx, subject, tokens)
	t.observe(ctx, "token_refresh", start, err)
	return stored, err
}

func (t *tokenStorageWithMetrics) Delete(ctx context.Context, subject string) error {
	start := time.Now()
	err := t.next.Delete(ctx, subject)
	t.observe(ctx, "token_delete", start, err)
	return err
}

func (t *tokenStorageWithMetrics) ReEncryptAll(ctx context.Context) (*storeDomain.ReEncryptReport, error) {
	start := time.Now()
	report, err := t.next.ReEncryptAll(ctx)
	t.observe(ctx, "tokens_reencrypt", start, err)
	return report, err
}
