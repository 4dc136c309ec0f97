package service

import (
	"context"
	"time"

	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
	"github.com/allisson/fieldvault/internal/metrics"
)

// fieldEncryptorWithMetrics decorates FieldEncryptor with metrics instrumentation.
type fieldEncryptorWithMetrics struct {
	next    FieldEncryptor
	metrics metrics.BusinessMetrics
}

// NewFieldEncryptorWithMetrics wraps a FieldEncryptor with metrics recording.
func NewFieldEncryptorWithMetrics(next FieldEncryptor, m metrics.BusinessMetrics) FieldEncryptor {
	return &fieldEncryptorWithMetrics{
		next:    next,
		metrics: m,
	}
}

func (f *fieldEncryptorWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.Status(err)
	f.metrics.RecordOperation(ctx, "fieldcrypt", operation, status)
	f.metrics.RecordDuration(ctx, "fieldcrypt", operation, time.Since(start), status)
}

// Initialize records key (re)initialization.
func (f *fieldEncryptorWithMetrics) Initialize(key string) error {
	start := time.Now()
	err := f.next.Initialize(key)
	f.record(context.Background(), "initialize", start, err)
	return err
}

// Initialized is not instrumented.
func (f *fieldEncryptorWithMetrics) Initialized() bool {
	return f.next.Initialized()
}

// EncryptField records metrics for single value encryption.
func (f *fieldEncryptorWithMetrics) EncryptField(ctx context.Context, value string) (string, error) {
	start := time.Now()
	out, err := f.next.EncryptField(ctx, value)
	f.record(ctx, "field_encrypt", start, err)
	return out, err
}

// DecryptField records metrics for single value decryption.
func (f *fieldEncryptorWithMetrics) DecryptField(ctx context.Context, value string) (string, error) {
	start := time.Now()
	out, err := f.next.DecryptField(ctx, value)
	f.record(ctx, "field_decrypt", start, err)
	return out, err
}

// EncryptSensitiveFields records metrics for record encryption.
func (f *fieldEncryptorWithMetrics) EncryptSensitiveFields(
	ctx context.Context,
	record fieldDomain.Record,
	fields []string,
) (fieldDomain.Record, error) {
	start := time.Now()
	out, err := f.next.EncryptSensitiveFields(ctx, record, fields)
	f.record(ctx, "record_encrypt", start, err)
	return out, err
}

// DecryptSensitiveFields records metrics for record decryption. A lenient call that left
// fields undecrypted is recorded with status "partial".
func (f *fieldEncryptorWithMetrics) DecryptSensitiveFields(
	ctx context.Context,
	record fieldDomain.Record,
	fields []string,
	mode fieldDomain.DecryptMode,
) (fieldDomain.Record, fieldDomain.FieldResults, error) {
	start := time.Now()
	out, results, err := f.next.DecryptSensitiveFields(ctx, record, fields, mode)

	status := metrics.Status(err)
	if err == nil && len(results.Failed()) > 0 {
		status = "partial"
	}
	f.metrics.RecordOperation(ctx, "fieldcrypt", "record_decrypt", status)
	f.metrics.RecordDuration(ctx, "fieldcrypt", "record_decrypt", time.Since(start), status)

	return out, results, err
}
