package repository

import (
	"context"
	"database/sql"
	"errors"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/database"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

// MySQLTokenRepository stores tokens in the oauth_tokens table.
// IDs are stored as BINARY(16).
type MySQLTokenRepository struct {
	db *sql.DB
}

// NewMySQLTokenRepository creates a new MySQL token repository.
func NewMySQLTokenRepository(db *sql.DB) *MySQLTokenRepository {
	return &MySQLTokenRepository{db: db}
}

const mysqlTokenColumns = `id, subject, access_token, refresh_token, expires_at, issued_at,
			  is_encrypted, encryption_version, created_at, updated_at`

// Upsert inserts the token or replaces the token pair stored for the same subject.
func (m *MySQLTokenRepository) Upsert(ctx context.Context, token *storeDomain.StoredToken) error {
	querier := database.GetTx(ctx, m.db)

	id, err := token.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal token id")
	}

	query := `INSERT INTO oauth_tokens (` + mysqlTokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			  ON DUPLICATE KEY UPDATE
			      access_token = VALUES(access_token),
			      refresh_token = VALUES(refresh_token),
			      expires_at = VALUES(expires_at),
			      issued_at = VALUES(issued_at),
			      is_encrypted = VALUES(is_encrypted),
			      encryption_version = VALUES(encryption_version),
			      updated_at = VALUES(updated_at)`

	_, err = querier.ExecContext(
		ctx,
		query,
		id,
		token.Subject,
		token.Record.AccessToken,
		token.Record.RefreshToken,
		token.Record.ExpiresAt,
		token.Record.IssuedAt,
		token.Record.IsEncrypted,
		nullableVersion(token.Record.EncryptionVersion),
		token.CreatedAt,
		token.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to upsert token")
	}
	return nil
}

// Get returns the token stored for subject or ErrTokenNotFound.
func (m *MySQLTokenRepository) Get(ctx context.Context, subject string) (*storeDomain.StoredToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlTokenColumns + `
			  FROM oauth_tokens
			  WHERE subject = ?`

	token, err := scanToken(querier.QueryRowContext(ctx, query, subject), scanBinaryUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return token, nil
}

// Delete removes the token stored for subject. Returns ErrTokenNotFound if none was stored.
func (m *MySQLTokenRepository) Delete(ctx context.Context, subject string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE subject = ?`, subject)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete token")
	}
	return requireAffected(result)
}

// ListStale returns tokens that are plaintext, tagged with a version other than currentVersion
// or sealed in a version 1 envelope.
func (m *MySQLTokenRepository) ListStale(
	ctx context.Context,
	currentVersion string,
) ([]*storeDomain.StoredToken, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + mysqlTokenColumns + `
			  FROM oauth_tokens
			  WHERE is_encrypted = FALSE
			     OR encryption_version IS NULL
			     OR encryption_version <> ?
			     OR REGEXP_LIKE(access_token, ?, 'c')
			     OR REGEXP_LIKE(refresh_token, ?, 'c')
			  ORDER BY subject`
	if database.InTx(ctx) {
		query += ` FOR UPDATE`
	}

	rows, err := querier.QueryContext(
		ctx,
		query,
		currentVersion,
		cryptoDomain.LegacyEnvelopePattern,
		cryptoDomain.LegacyEnvelopePattern,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*storeDomain.StoredToken
	for rows.Next() {
		token, err := scanToken(rows, scanBinaryUUID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan token")
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate tokens")
	}
	return tokens, nil
}
