package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

func TestMySQLTokenRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLTokenRepository(db)
	token := sampleToken("employer-1")
	id, err := token.ID.MarshalBinary()
	require.NoError(t, err)

	mock.ExpectExec(regexp.QuoteMeta("ON DUPLICATE KEY UPDATE")).
		WithArgs(
			id, "employer-1", "sealed-access", "sealed-refresh",
			token.Record.ExpiresAt, token.Record.IssuedAt, true, "v1", fixedTime, fixedTime,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), token))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTokenRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLTokenRepository(db)
	id := uuid.Must(uuid.NewV7())
	raw, err := id.MarshalBinary()
	require.NoError(t, err)

	rows := sqlmock.NewRows(tokenRowColumns).AddRow(
		raw, "employer-1", "a", "r",
		fixedTime.Add(time.Hour), fixedTime, true, "v1", fixedTime, fixedTime,
	)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE subject = ?")).
		WithArgs("employer-1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE subject = ?")).
		WithArgs("nobody").
		WillReturnRows(sqlmock.NewRows(tokenRowColumns))

	token, err := repo.Get(context.Background(), "employer-1")
	require.NoError(t, err)
	assert.Equal(t, id, token.ID)
	assert.Equal(t, "employer-1", token.Subject)

	_, err = repo.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, storeDomain.ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTokenRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM oauth_tokens WHERE subject = ?")).
		WithArgs("nobody").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "nobody"), storeDomain.ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLTokenRepository_ListStale(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLTokenRepository(db)
	raw, err := uuid.Must(uuid.NewV7()).MarshalBinary()
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("OR REGEXP_LIKE(refresh_token, ?, 'c')")).
		WithArgs("v1", cryptoDomain.LegacyEnvelopePattern, cryptoDomain.LegacyEnvelopePattern).
		WillReturnRows(sqlmock.NewRows(tokenRowColumns).
			AddRow(raw, "legacy", "a", "r", fixedTime, fixedTime, false, nil, fixedTime, fixedTime))

	stale, err := repo.ListStale(context.Background(), "v1")
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "legacy", stale[0].Subject)
	assert.NoError(t, mock.ExpectationsWereMet())
}
