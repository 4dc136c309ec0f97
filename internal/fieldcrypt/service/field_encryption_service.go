package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
)

// DefaultConcurrency bounds how many fields of one record are processed at once.
// Each field runs a 100,000-iteration PBKDF2.
const DefaultConcurrency = 4

// FieldEncryptionService implements FieldEncryptor on top of the stateless envelope cipher.
type FieldEncryptionService struct {
	cryptoService.SecretHolder

	cipher      cryptoService.CipherService
	concurrency int
	logger      *slog.Logger
}

// NewFieldEncryptionService creates an uninitialized service. concurrency <= 0 uses
// DefaultConcurrency.
func NewFieldEncryptionService(
	cipher cryptoService.CipherService,
	concurrency int,
	logger *slog.Logger,
) *FieldEncryptionService {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FieldEncryptionService{
		cipher:      cipher,
		concurrency: concurrency,
		logger:      logger,
	}
}

// EncryptField seals value under the initialized key.
func (s *FieldEncryptionService) EncryptField(_ context.Context, value string) (string, error) {
	secret, err := s.Secret()
	if err != nil {
		return "", err
	}
	return s.cipher.Encrypt(value, secret)
}

// DecryptField opens an envelope produced by EncryptField or by the legacy format.
func (s *FieldEncryptionService) DecryptField(_ context.Context, value string) (string, error) {
	secret, err := s.Secret()
	if err != nil {
		return "", err
	}
	return s.cipher.Decrypt(value, secret)
}

// targets returns the named fields of record holding a non-empty string, in order, without
// duplicates.
func targets(record fieldDomain.Record, fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		if value, ok := record[field].(string); ok && value != "" {
			out = append(out, field)
		}
	}
	return out
}

// EncryptSensitiveFields encrypts the named fields concurrently. Absent, empty and
// non-string fields are copied unchanged. On any failure no record is returned, so a
// caller can never persist a partially encrypted record.
func (s *FieldEncryptionService) EncryptSensitiveFields(
	ctx context.Context,
	record fieldDomain.Record,
	fields []string,
) (fieldDomain.Record, error) {
	out := record.Clone()
	names := targets(record, fields)
	if len(names) == 0 {
		return out, nil
	}
	if _, err := s.Secret(); err != nil {
		return nil, err
	}

	sealed := make([]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, field := range names {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			envelope, err := s.EncryptField(gctx, record[field].(string))
			if err != nil {
				return err
			}
			sealed[i] = envelope
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.Error("failed to encrypt record fields", slog.Any("error", err))
		return nil, err
	}

	for i, field := range names {
		out[field] = sealed[i]
	}
	return out, nil
}

// DecryptSensitiveFields decrypts the named fields concurrently and reports every attempt.
//
// In DecryptStrict mode the first failure, in field order, is returned wrapped in
// ErrFieldDecryptionFailed and no record is returned; results still covers every field. In DecryptLenient mode failed fields
// keep their stored value, each failure is logged, and the error is nil. An uninitialized
// service fails in both modes.
func (s *FieldEncryptionService) DecryptSensitiveFields(
	ctx context.Context,
	record fieldDomain.Record,
	fields []string,
	mode fieldDomain.DecryptMode,
) (fieldDomain.Record, fieldDomain.FieldResults, error) {
	out := record.Clone()
	results := fieldDomain.FieldResults{}
	names := targets(record, fields)
	if len(names) == 0 {
		return out, results, nil
	}
	if _, err := s.Secret(); err != nil {
		return nil, nil, err
	}

	opened := make([]string, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, field := range names {
		g.Go(func() error {
			opened[i], errs[i] = s.DecryptField(ctx, record[field].(string))
			return nil
		})
	}
	_ = g.Wait()

	var firstErr error
	for i, field := range names {
		results[field] = errs[i]
		if errs[i] == nil {
			out[field] = opened[i]
			continue
		}

		if mode == fieldDomain.DecryptStrict {
			if firstErr == nil {
				firstErr = fieldDomain.NewFieldDecryptionError(field, errs[i])
			}
			continue
		}

		s.logger.Warn("field left undecrypted",
			slog.String("field", field),
			slog.String("mode", mode.String()),
			slog.Any("error", errs[i]),
		)
	}
	if firstErr != nil {
		return nil, results, firstErr
	}

	return out, results, nil
}
