package service

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
)

var (
	testKey = strings.Repeat("h", 32)
	issued  = time.Date(2026, 4, 6, 9, 30, 15, 123456789, time.UTC)
)

func newService(t *testing.T, logger *slog.Logger) (*TokenEncryptionService, *clockwork.FakeClock) {
	t.Helper()
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	clock := clockwork.NewFakeClockAt(issued)
	svc := NewTokenEncryptionService(cryptoService.NewCipherService(), clock, logger)
	require.NoError(t, svc.Initialize(testKey))
	return svc, clock
}

func TestTokenEncryptionService_EncryptTokens(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)

	record, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{
		AccessToken:      "access-abc",
		RefreshToken:     "refresh-xyz",
		ExpiresInSeconds: 3600,
	})
	require.NoError(t, err)

	wantIssued := issued.Truncate(time.Millisecond)
	assert.Equal(t, wantIssued, record.IssuedAt)
	assert.Equal(t, wantIssued.Add(3600*time.Second), record.ExpiresAt)
	assert.Equal(t, int64(3600_000), record.ExpiresAt.Sub(record.IssuedAt).Milliseconds())
	assert.True(t, record.IsEncrypted)
	assert.Equal(t, "v1", record.EncryptionVersion)
	assert.NotEqual(t, "access-abc", record.AccessToken)
	assert.NotEqual(t, "refresh-xyz", record.RefreshToken)

	t.Run("rejects missing access token", func(t *testing.T) {
		_, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{RefreshToken: "r", ExpiresInSeconds: 1})
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidTokens)
	})

	t.Run("rejects lifetime beyond the cap", func(t *testing.T) {
		_, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{AccessToken: "a", ExpiresInSeconds: 1 << 62})
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidTokens)
	})

	t.Run("longest lifetime stays in the future", func(t *testing.T) {
		record, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{
			AccessToken:      "a",
			ExpiresInSeconds: tokenDomain.MaxExpiresInSeconds,
		})
		require.NoError(t, err)
		assert.True(t, record.ExpiresAt.After(record.IssuedAt))
	})

	t.Run("uninitialized", func(t *testing.T) {
		fresh := NewTokenEncryptionService(cryptoService.NewCipherService(), nil, nil)
		_, err := fresh.EncryptTokens(ctx, tokenDomain.Tokens{AccessToken: "a", ExpiresInSeconds: 1})
		assert.ErrorIs(t, err, cryptoDomain.ErrUninitializedService)
	})
}

func TestTokenEncryptionService_DecryptTokens(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		svc, _ := newService(t, nil)
		record, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{
			AccessToken:      "access-abc",
			RefreshToken:     "refresh-xyz",
			ExpiresInSeconds: 60,
		})
		require.NoError(t, err)

		tokens, err := svc.DecryptTokens(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, "access-abc", tokens.AccessToken)
		assert.Equal(t, "refresh-xyz", tokens.RefreshToken)
		assert.Equal(t, record.ExpiresAt, tokens.ExpiresAt)
	})

	t.Run("legacy plaintext record passes through with warning", func(t *testing.T) {
		var logs bytes.Buffer
		svc, _ := newService(t, slog.New(slog.NewTextHandler(&logs, nil)))

		record := &tokenDomain.TokenRecord{
			AccessToken:  "plain-access",
			RefreshToken: "plain-refresh",
			ExpiresAt:    issued.Add(time.Hour),
		}
		tokens, err := svc.DecryptTokens(ctx, record)
		require.NoError(t, err)
		assert.Equal(t, "plain-access", tokens.AccessToken)
		assert.Equal(t, "plain-refresh", tokens.RefreshToken)
		assert.Contains(t, logs.String(), "reading unencrypted token record")
		assert.NotContains(t, logs.String(), "plain-access")
	})

	t.Run("wrong key propagates", func(t *testing.T) {
		svc, _ := newService(t, nil)
		record, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{AccessToken: "a", RefreshToken: "r"})
		require.NoError(t, err)

		require.NoError(t, svc.Initialize(strings.Repeat("o", 32)))
		_, err = svc.DecryptTokens(ctx, record)
		assert.ErrorIs(t, err, cryptoDomain.ErrAuthenticationFailed)
		assert.Contains(t, err.Error(), "access token")
	})

	t.Run("nil record", func(t *testing.T) {
		svc, _ := newService(t, nil)
		_, err := svc.DecryptTokens(ctx, nil)
		assert.ErrorIs(t, err, tokenDomain.ErrInvalidTokens)
	})
}

func TestTokenEncryptionService_NeedsReEncryption(t *testing.T) {
	svc, _ := newService(t, nil)

	tests := []struct {
		name   string
		record *tokenDomain.TokenRecord
		want   bool
	}{
		{name: "plaintext", record: &tokenDomain.TokenRecord{IsEncrypted: false, EncryptionVersion: "v1"}, want: true},
		{name: "missing version", record: &tokenDomain.TokenRecord{IsEncrypted: true}, want: true},
		{name: "older version", record: &tokenDomain.TokenRecord{IsEncrypted: true, EncryptionVersion: "v0"}, want: true},
		{name: "current", record: &tokenDomain.TokenRecord{IsEncrypted: true, EncryptionVersion: "v1"}, want: false},
		{
			name: "fixed salt envelope",
			record: &tokenDomain.TokenRecord{
				AccessToken:       "AQECAwQFBgcICQoLDPuBKAYC15ZQSA6S/u/L2V1kFW7qgUbAvne8jjSz",
				IsEncrypted:       true,
				EncryptionVersion: "v1",
			},
			want: true,
		},
		{name: "nil", record: nil, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.NeedsReEncryption(tt.record))
		})
	}
}

func TestTokenEncryptionService_ValidateEncryption(t *testing.T) {
	ctx := context.Background()
	svc, _ := newService(t, nil)

	record, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{AccessToken: "a", RefreshToken: "r", ExpiresInSeconds: 5})
	require.NoError(t, err)

	assert.Equal(t, tokenDomain.ValidationReport{Valid: true}, svc.ValidateEncryption(ctx, record))

	corrupted := *record
	corrupted.RefreshToken = "AgAAAA=="
	report := svc.ValidateEncryption(ctx, &corrupted)
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Error)
}

func TestTokenEncryptionService_UsesInjectedClock(t *testing.T) {
	ctx := context.Background()
	svc, clock := newService(t, nil)

	first, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{AccessToken: "a", ExpiresInSeconds: 10})
	require.NoError(t, err)

	clock.Advance(90 * time.Second)
	second, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{AccessToken: "a", ExpiresInSeconds: 10})
	require.NoError(t, err)

	assert.Equal(t, 90*time.Second, second.IssuedAt.Sub(first.IssuedAt))
	assert.True(t, first.Expired(clock.Now()))
	assert.False(t, second.Expired(clock.Now()))
}

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

func TestTokenEncryptorWithMetrics(t *testing.T) {
	ctx := context.Background()
	inner, _ := newService(t, nil)

	m := &mockBusinessMetrics{}
	for _, call := range []struct{ op, status string }{
		{"tokens_encrypt", "success"},
		{"tokens_decrypt", "success"},
		{"tokens_validate", "success"},
		{"tokens_validate", "invalid"},
	} {
		m.On("RecordOperation", mock.Anything, "oauthtoken", call.op, call.status).Once()
		m.On("RecordDuration", mock.Anything, "oauthtoken", call.op, mock.Anything, call.status).Once()
	}

	svc := NewTokenEncryptorWithMetrics(inner, m)
	assert.True(t, svc.Initialized())

	record, err := svc.EncryptTokens(ctx, tokenDomain.Tokens{AccessToken: "a", ExpiresInSeconds: 1})
	require.NoError(t, err)
	_, err = svc.DecryptTokens(ctx, record)
	require.NoError(t, err)
	assert.False(t, svc.NeedsReEncryption(record))

	assert.True(t, svc.ValidateEncryption(ctx, record).Valid)
	record.AccessToken = "AgAAAA=="
	assert.False(t, svc.ValidateEncryption(ctx, record).Valid)

	m.AssertExpectations(t)
}
