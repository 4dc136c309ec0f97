package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
)

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

func expectRecord(m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", mock.Anything, "fieldcrypt", operation, status).Once()
	m.On("RecordDuration", mock.Anything, "fieldcrypt", operation, mock.AnythingOfType("time.Duration"), status).Once()
}

func TestFieldEncryptorWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("records success and error", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		expectRecord(m, "initialize", "error")
		expectRecord(m, "initialize", "success")
		expectRecord(m, "field_encrypt", "success")
		expectRecord(m, "field_decrypt", "success")
		expectRecord(m, "field_decrypt", "error")

		svc := NewFieldEncryptorWithMetrics(newService(t, nil), m)

		assert.ErrorIs(t, svc.Initialize("short"), cryptoDomain.ErrKeyTooShort)
		require.NoError(t, svc.Initialize(testKey))
		assert.True(t, svc.Initialized())

		envelope, err := svc.EncryptField(ctx, "AB123456C")
		require.NoError(t, err)
		_, err = svc.DecryptField(ctx, envelope)
		require.NoError(t, err)
		_, err = svc.DecryptField(ctx, "garbage")
		assert.Error(t, err)

		m.AssertExpectations(t)
	})

	t.Run("lenient decrypt with failures is partial", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		expectRecord(m, "record_encrypt", "success")
		expectRecord(m, "record_decrypt", "partial")
		expectRecord(m, "record_decrypt", "error")

		svc := NewFieldEncryptorWithMetrics(newService(t, nil), m)

		out, err := svc.EncryptSensitiveFields(ctx, fieldDomain.Record{"a": "secret"}, []string{"a"})
		require.NoError(t, err)
		out["b"] = "plaintext"

		_, _, err = svc.DecryptSensitiveFields(ctx, out, []string{"a", "b"}, fieldDomain.DecryptLenient)
		require.NoError(t, err)
		_, _, err = svc.DecryptSensitiveFields(ctx, out, []string{"a", "b"}, fieldDomain.DecryptStrict)
		assert.Error(t, err)

		m.AssertExpectations(t)
	})
}
