package service

import (
	"context"
	"time"

	"github.com/allisson/fieldvault/internal/metrics"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
)

// tokenEncryptorWithMetrics decorates TokenEncryptor with metrics instrumentation.
type tokenEncryptorWithMetrics struct {
	next    TokenEncryptor
	metrics metrics.BusinessMetrics
}

// NewTokenEncryptorWithMetrics wraps a TokenEncryptor with metrics recording.
func NewTokenEncryptorWithMetrics(next TokenEncryptor, m metrics.BusinessMetrics) TokenEncryptor {
	return &tokenEncryptorWithMetrics{next: next, metrics: m}
}

func (t *tokenEncryptorWithMetrics) observe(ctx context.Context, operation string, start time.Time, status string) {
	t.metrics.RecordOperation(ctx, "oauthtoken", operation, status)
	t.metrics.RecordDuration(ctx, "oauthtoken", operation, time.Since(start), status)
}

func (t *tokenEncryptorWithMetrics) Initialize(key string) error {
	start := time.Now()
	err := t.next.Initialize(key)
	t.observe(context.Background(), "initialize", start, metrics.Status(err))
	return err
}

func (t *tokenEncryptorWithMetrics) Initialized() bool {
	return t.next.Initialized()
}

func (t *tokenEncryptorWithMetrics) EncryptTokens(
	ctx context.Context,
	tokens tokenDomain.Tokens,
) (*tokenDomain.TokenRecord, error) {
	start := time.Now()
	record, err := t.next.EncryptTokens(ctx, tokens)
	t.observe(ctx, "tokens_encrypt", start, metrics.Status(err))
	return record, err
}

func (t *tokenEncryptorWithMetrics) DecryptTokens(
	ctx context.Context,
	record *tokenDomain.TokenRecord,
) (*tokenDomain.DecryptedTokens, error) {
	start := time.Now()
	tokens, err := t.next.DecryptTokens(ctx, record)
	t.observe(ctx, "tokens_decrypt", start, metrics.Status(err))
	return tokens, err
}

func (t *tokenEncryptorWithMetrics) NeedsReEncryption(record *tokenDomain.TokenRecord) bool {
	return t.next.NeedsReEncryption(record)
}

// ValidateEncryption records "invalid" rather than "error" since the call itself never fails.
func (t *tokenEncryptorWithMetrics) ValidateEncryption(
	ctx context.Context,
	record *tokenDomain.TokenRecord,
) tokenDomain.ValidationReport {
	start := time.Now()
	report := t.next.ValidateEncryption(ctx, record)
	status := metrics.StatusSuccess
	if !report.Valid {
		status = "invalid"
	}
	t.observe(ctx, "tokens_validate", start, status)
	return report
}
