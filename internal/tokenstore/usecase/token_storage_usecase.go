package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/database"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	tokenService "github.com/allisson/fieldvault/internal/oauthtoken/service"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

// TokenStorage implements UseCase. It owns its TokenEncryptor so storage runs under its own
// key, independent of the service that encrypts tokens for callers.
type TokenStorage struct {
	encryptor tokenService.TokenEncryptor
	repo      TokenRepository
	txManager database.TxManager
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewTokenStorage creates a token storage use case. txManager may be nil for repositories
// without transactions; ReEncryptAll then runs without one.
func NewTokenStorage(
	encryptor tokenService.TokenEncryptor,
	repo TokenRepository,
	txManager database.TxManager,
	clock clockwork.Clock,
	logger *slog.Logger,
) *TokenStorage {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenStorage{
		encryptor: encryptor,
		repo:      repo,
		txManager: txManager,
		clock:     clock,
		logger:    logger,
	}
}

// Initialize stores the token storage key.
func (s *TokenStorage) Initialize(key string) error {
	return s.encryptor.Initialize(key)
}

// Initialized reports whether the storage key is set.
func (s *TokenStorage) Initialized() bool {
	return s.encryptor.Initialized()
}

// Save encrypts tokens and stores them for subject, replacing any previous pair. Returns the
// persisted token.
func (s *TokenStorage) Save(
	ctx context.Context,
	subject string,
	tokens tokenDomain.Tokens,
) (*storeDomain.StoredToken, error) {
	if err := storeDomain.ValidateSubject(subject); err != nil {
		return nil, err
	}

	record, err := s.encryptor.EncryptTokens(ctx, tokens)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	now := s.clock.Now().UTC()
	stored := &storeDomain.StoredToken{
		ID:        id,
		Subject:   subject,
		Record:    *record,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, stored); err != nil {
		return nil, err
	}
	// Repositories keep the id and creation time of an existing subject.
	return s.repo.Get(ctx, subject)
}

// Load returns subject's decrypted tokens. A record in an old scheme is rewritten in the
// current one; failing to rewrite is logged and does not fail the read.
func (s *TokenStorage) Load(ctx context.Context, subject string) (*tokenDomain.DecryptedTokens, error) {
	if err := storeDomain.ValidateSubject(subject); err != nil {
		return nil, err
	}

	stored, err := s.repo.Get(ctx, subject)
	if err != nil {
		return nil, err
	}

	tokens, err := s.encryptor.DecryptTokens(ctx, &stored.Record)
	if err != nil {
		return nil, err
	}

	if s.encryptor.NeedsReEncryption(&stored.Record) {
		if err := s.reseal(ctx, stored, tokens); err != nil {
			s.logger.Warn("failed to re-encrypt token on read",
				slog.String("subject", subject),
				slog.Any("error", err),
			)
		} else {
			s.logger.Info("token re-encrypted on read", slog.String("subject", subject))
		}
	}

	return tokens, nil
}

// reseal encrypts tokens under the current scheme and writes them back, keeping the
// original issue and expiry times.
func (s *TokenStorage) reseal(
	ctx context.Context,
	stored *storeDomain.StoredToken,
	tokens *tokenDomain.DecryptedTokens,
) error {
	remaining := max(tokens.ExpiresAt.Sub(s.clock.Now()), 0)
	record, err := s.encryptor.EncryptTokens(ctx, tokenDomain.Tokens{
		AccessToken:      tokens.AccessToken,
		RefreshToken:     tokens.RefreshToken,
		ExpiresInSeconds: int64(remaining / time.Second),
	})
	if err != nil {
		return err
	}

	if !stored.Record.ExpiresAt.IsZero() {
		record.ExpiresAt = stored.Record.ExpiresAt
	}
	if !stored.Record.IssuedAt.IsZero() {
		record.IssuedAt = stored.Record.IssuedAt
	}

	updated := *stored
	updated.Record = *record
	updated.UpdatedAt = s.clock.Now().UTC()
	return s.repo.Upsert(ctx, &updated)
}

// Refresh replaces an existing token pair after a refresh grant. Returns ErrTokenNotFound if
// subject has no stored token.
func (s *TokenStorage) Refresh(
	ctx context.Context,
	subject string,
	tokens tokenDomain.Tokens,
) (*storeDomain.StoredToken, error) {
	if err := storeDomain.ValidateSubject(subject); err != nil {
		return nil, err
	}
	if _, err := s.repo.Get(ctx, subject); err != nil {
		return nil, err
	}
	return s.Save(ctx, subject, tokens)
}

// Delete removes subject's tokens.
func (s *TokenStorage) Delete(ctx context.Context, subject string) error {
	if err := storeDomain.ValidateSubject(subject); err != nil {
		return err
	}
	return s.repo.Delete(ctx, subject)
}

// ReEncryptAll rewrites every stale token in the current scheme. Tokens that cannot be
// decrypted are reported in Failed and left as stored. Runs in a transaction when a
// TxManager is configured.
func (s *TokenStorage) ReEncryptAll(ctx context.Context) (*storeDomain.ReEncryptReport, error) {
	if !s.encryptor.Initialized() {
		return nil, cryptoDomain.ErrUninitializedService
	}

	report := &storeDomain.ReEncryptReport{Failed: []string{}}

	sweep := func(ctx context.Context) error {
		stale, err := s.repo.ListStale(ctx, tokenDomain.CurrentEncryptionVersion)
		if err != nil {
			return err
		}
		report.Scanned = len(stale)

		for _, stored := range stale {
			tokens, err := s.encryptor.DecryptTokens(ctx, &stored.Record)
			if err == nil {
				err = s.reseal(ctx, stored, tokens)
			}
			if err != nil {
				s.logger.Error("failed to re-encrypt token",
					slog.String("subject", stored.Subject),
					slog.Any("error", err),
				)
				report.Failed = append(report.Failed, stored.Subject)
				continue
			}
			report.ReEncrypted++
		}
		return nil
	}

	var err error
	if s.txManager != nil {
		err = s.txManager.WithTx(ctx, sweep)
	} else {
		err = sweep(ctx)
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("token re-encryption completed",
		slog.Int("scanned", report.Scanned),
		slog.Int("re_encrypted", report.ReEncrypted),
		slog.Int("failed", len(report.Failed)),
	)
	return report, nil
}
