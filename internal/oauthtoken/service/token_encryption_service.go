package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
)

// TokenEncryptionService implements TokenEncryptor.
type TokenEncryptionService struct {
	cryptoService.SecretHolder

	cipher cryptoService.CipherService
	clock  clockwork.Clock
	logger *slog.Logger
}

// NewTokenEncryptionService creates an uninitialized service. A nil clock uses the real clock.
func NewTokenEncryptionService(
	cipher cryptoService.CipherService,
	clock clockwork.Clock,
	logger *slog.Logger,
) *TokenEncryptionService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenEncryptionService{
		cipher: cipher,
		clock:  clock,
		logger: logger,
	}
}

// EncryptTokens seals both tokens. IssuedAt is now and ExpiresAt is now plus the token
// lifetime, both in UTC truncated to milliseconds.
func (s *TokenEncryptionService) EncryptTokens(
	_ context.Context,
	tokens tokenDomain.Tokens,
) (*tokenDomain.TokenRecord, error) {
	if err := tokens.Validate(); err != nil {
		return nil, err
	}
	secret, err := s.Secret()
	if err != nil {
		return nil, err
	}

	access, err := s.cipher.Encrypt(tokens.AccessToken, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt access token: %w", err)
	}
	refresh, err := s.cipher.Encrypt(tokens.RefreshToken, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt refresh token: %w", err)
	}

	now := s.clock.Now().UTC().Truncate(time.Millisecond)
	return &tokenDomain.TokenRecord{
		AccessToken:       access,
		RefreshToken:      refresh,
		ExpiresAt:         now.Add(time.Duration(tokens.ExpiresInSeconds) * time.Second),
		IssuedAt:          now,
		IsEncrypted:       true,
		EncryptionVersion: tokenDomain.CurrentEncryptionVersion,
	}, nil
}

// DecryptTokens opens both tokens of an encrypted record.
func (s *TokenEncryptionService) DecryptTokens(
	_ context.Context,
	record *tokenDomain.TokenRecord,
) (*tokenDomain.DecryptedTokens, error) {
	if record == nil {
		return nil, tokenDomain.ErrInvalidTokens
	}

	if !record.IsEncrypted {
		s.logger.Warn("reading unencrypted token record",
			slog.Time("issued_at", record.IssuedAt),
		)
		return &tokenDomain.DecryptedTokens{
			AccessToken:  record.AccessToken,
			RefreshToken: record.RefreshToken,
			ExpiresAt:    record.ExpiresAt,
		}, nil
	}

	secret, err := s.Secret()
	if err != nil {
		return nil, err
	}

	access, err := s.cipher.Decrypt(record.AccessToken, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt access token: %w", err)
	}
	refresh, err := s.cipher.Decrypt(record.RefreshToken, secret)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt refresh token: %w", err)
	}

	return &tokenDomain.DecryptedTokens{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    record.ExpiresAt,
	}, nil
}

// NeedsReEncryption is true for plaintext records, for records tagged with another version
// and for tokens still sealed in a version 1 envelope.
func (s *TokenEncryptionService) NeedsReEncryption(record *tokenDomain.TokenRecord) bool {
	if record == nil {
		return false
	}
	return !record.IsEncrypted ||
		record.EncryptionVersion != tokenDomain.CurrentEncryptionVersion ||
		record.HasLegacyEnvelope()
}

// ValidateEncryption reports whether record decrypts under the current key.
func (s *TokenEncryptionService) ValidateEncryption(
	ctx context.Context,
	record *tokenDomain.TokenRecord,
) tokenDomain.ValidationReport {
	if _, err := s.DecryptTokens(ctx, record); err != nil {
		return tokenDomain.ValidationReport{Valid: false, Error: err.Error()}
	}
	return tokenDomain.ValidationReport{Valid: true}
}
