// Package service encrypts individual values and named fields of records into envelopes.
package service

import (
	"context"

	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
)

// FieldEncryptor is the field-level encryption API consumed by HTTP handlers, the CLI and
// token storage.
type FieldEncryptor interface {
	// Initialize stores the key. Calling it again rotates to the new key.
	Initialize(key string) error

	// Initialized reports whether Initialize has succeeded.
	Initialized() bool

	// EncryptField seals one value into a version 2 envelope.
	EncryptField(ctx context.Context, value string) (string, error)

	// DecryptField opens a version 1 or version 2 envelope.
	DecryptField(ctx context.Context, value string) (string, error)

	// EncryptSensitiveFields returns a copy of record with each named non-empty string
	// field encrypted. Any failure aborts the whole call.
	EncryptSensitiveFields(ctx context.Context, record fieldDomain.Record, fields []string) (fieldDomain.Record, error)

	// DecryptSensitiveFields returns a copy of record with each named non-empty string field
	// decrypted, plus the per-field outcome.
	DecryptSensitiveFields(
		ctx context.Context,
		record fieldDomain.Record,
		fields []string,
		mode fieldDomain.DecryptMode,
	) (fieldDomain.Record, fieldDomain.FieldResults, error)
}
