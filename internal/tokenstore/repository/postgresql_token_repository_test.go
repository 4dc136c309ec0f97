package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/database"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

var (
	tokenRowColumns = []string{
		"id", "subject", "access_token", "refresh_token", "expires_at", "issued_at",
		"is_encrypted", "encryption_version", "created_at", "updated_at",
	}
	fixedTime = time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})
	return db, mock
}

func sampleToken(subject string) *storeDomain.StoredToken {
	return &storeDomain.StoredToken{
		ID:      uuid.Must(uuid.NewV7()),
		Subject: subject,
		Record: tokenDomain.TokenRecord{
			AccessToken:       "sealed-access",
			RefreshToken:      "sealed-refresh",
			ExpiresAt:         fixedTime.Add(time.Hour),
			IssuedAt:          fixedTime,
			IsEncrypted:       true,
			EncryptionVersion: tokenDomain.CurrentEncryptionVersion,
		},
		CreatedAt: fixedTime,
		UpdatedAt: fixedTime,
	}
}

func TestPostgreSQLTokenRepository_Upsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLTokenRepository(db)
	token := sampleToken("employer-1")

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO oauth_tokens")).
		WithArgs(
			token.ID.String(),
			"employer-1",
			"sealed-access",
			"sealed-refresh",
			token.Record.ExpiresAt,
			token.Record.IssuedAt,
			true,
			"v1",
			fixedTime,
			fixedTime,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Upsert(context.Background(), token))
	assert.NoError(t, mock.ExpectationsWereMet())

	t.Run("plaintext record stores null version", func(t *testing.T) {
		plain := sampleToken("employer-2")
		plain.Record.IsEncrypted = false
		plain.Record.EncryptionVersion = ""

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO oauth_tokens")).
			WithArgs(
				sqlmock.AnyArg(), "employer-2", sqlmock.AnyArg(), sqlmock.AnyArg(),
				sqlmock.AnyArg(), sqlmock.AnyArg(), false, nil, sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.Upsert(context.Background(), plain))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("database error", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO oauth_tokens")).
			WillReturnError(errors.New("connection reset"))

		err := repo.Upsert(context.Background(), sampleToken("employer-3"))
		assert.ErrorContains(t, err, "failed to upsert token")
	})
}

func TestPostgreSQLTokenRepository_Get(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLTokenRepository(db)
	id := uuid.Must(uuid.NewV7())

	t.Run("found", func(t *testing.T) {
		rows := sqlmock.NewRows(tokenRowColumns).AddRow(
			id.String(), "employer-1", "a", "r",
			fixedTime.Add(time.Hour), fixedTime, true, "v1", fixedTime, fixedTime,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM oauth_tokens")).
			WithArgs("employer-1").
			WillReturnRows(rows)

		token, err := repo.Get(context.Background(), "employer-1")
		require.NoError(t, err)
		assert.Equal(t, id, token.ID)
		assert.Equal(t, "a", token.Record.AccessToken)
		assert.Equal(t, "v1", token.Record.EncryptionVersion)
		assert.True(t, token.Record.IsEncrypted)
		assert.Equal(t, fixedTime.Add(time.Hour), token.Record.ExpiresAt)
	})

	t.Run("null version", func(t *testing.T) {
		rows := sqlmock.NewRows(tokenRowColumns).AddRow(
			id.String(), "legacy", "a", "r",
			fixedTime, fixedTime, false, nil, fixedTime, fixedTime,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM oauth_tokens")).
			WithArgs("legacy").
			WillReturnRows(rows)

		token, err := repo.Get(context.Background(), "legacy")
		require.NoError(t, err)
		assert.Empty(t, token.Record.EncryptionVersion)
		assert.False(t, token.Record.IsEncrypted)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta("FROM oauth_tokens")).
			WithArgs("nobody").
			WillReturnRows(sqlmock.NewRows(tokenRowColumns))

		_, err := repo.Get(context.Background(), "nobody")
		assert.ErrorIs(t, err, storeDomain.ErrTokenNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTokenRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLTokenRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM oauth_tokens WHERE subject = $1")).
		WithArgs("employer-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM oauth_tokens WHERE subject = $1")).
		WithArgs("employer-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "employer-1"))
	assert.ErrorIs(t, repo.Delete(context.Background(), "employer-1"), storeDomain.ErrTokenNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLTokenRepository_ListStale(t *testing.T) {
	t.Run("outside transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)

		rows := sqlmock.NewRows(tokenRowColumns).
			AddRow(uuid.Must(uuid.NewV7()).String(), "a", "x", "y", fixedTime, fixedTime, false, nil, fixedTime, fixedTime).
			AddRow(uuid.Must(uuid.NewV7()).String(), "b", "x", "y", fixedTime, fixedTime, true, "v0", fixedTime, fixedTime)
		mock.ExpectQuery(`encryption_version <> \$1\s+OR access_token ~ \$2\s+OR refresh_token ~ \$2\s+ORDER BY subject$`).
			WithArgs("v1", cryptoDomain.LegacyEnvelopePattern).
			WillReturnRows(rows)

		stale, err := repo.ListStale(context.Background(), "v1")
		require.NoError(t, err)
		require.Len(t, stale, 2)
		assert.Equal(t, "a", stale[0].Subject)
		assert.Equal(t, "v0", stale[1].Record.EncryptionVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("locks rows inside transaction", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLTokenRepository(db)
		txManager := database.NewTxManager(db)

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY subject FOR UPDATE")).
			WithArgs("v1", cryptoDomain.LegacyEnvelopePattern).
			WillReturnRows(sqlmock.NewRows(tokenRowColumns))
		mock.ExpectCommit()

		err := txManager.WithTx(context.Background(), func(ctx context.Context) error {
			stale, err := repo.ListStale(ctx, "v1")
			assert.Empty(t, stale)
			return err
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
