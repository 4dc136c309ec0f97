// Package repository persists encrypted OAuth token records.
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

// PostgreSQLTokenRepository stores tokens in the oauth_tokens table.
// Participates in transactions via database.GetTx().
type PostgreSQLTokenRepository struct {
	db *sql.DB
}

// NewPostgreSQLTokenRepository creates a new PostgreSQL token repository.
func NewPostgreSQLTokenRepository(db *sql.DB) *PostgreSQLTokenRepository {
	return &PostgreSQLTokenRepository{db: db}
}

const postgresTokenColumns = `id, subject, access_token, refresh_token, expires_at, issued_at,
			  is_encrypted, encryption_version, created_at, updated_at`

// Upsert inserts the token or replaces the token pair stored for the same subject.
// The original id and created_at are kept on conflict.
func (p *PostgreSQLTokenRepository) Upsert(ctx context.Context, token *storeDomain.StoredToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO oauth_tokens (` + postgresTokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			  ON CONFLICT (subject) DO UPDATE SET
			      access_token = EXCLUDED.access_token,
			      refresh_token = EXCLUDED.refresh_token,
			      expires_at = EXCLUDED.expires_at,
			      issued_at = EXCLUDED.issued_at,
			      is_encrypted = EXCLUDED.is_encrypted,
			      encryption_version = EXCLUDED.encryption_version,
			      updated_at = EXCLUDED.updated_at`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
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
func (p *PostgreSQLTokenRepository) Get(ctx context.Context, subject string) (*storeDomain.StoredToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresTokenColumns + `
			  FROM oauth_tokens
			  WHERE subject = $1`

	token, err := scanToken(querier.QueryRowContext(ctx, query, subject), scanUUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storeDomain.ErrTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get token")
	}
	return token, nil
}

// Delete removes the token stored for subject. Returns ErrTokenNotFound if none was stored.
func (p *PostgreSQLTokenRepository) Delete(ctx context.Context, subject string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM oauth_tokens WHERE subject = $1`, subject)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete token")
	}
	return requireAffected(result)
}

// ListStale returns tokens that are plaintext, tagged with a version other than currentVersion
// or sealed in a version 1 envelope.
// Rows are locked for update when called inside a transaction.
func (p *PostgreSQLTokenRepository) ListStale(
	ctx context.Context,
	currentVersion string,
) ([]*storeDomain.StoredToken, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + postgresTokenColumns + `
			  FROM oauth_tokens
			  WHERE is_encrypted = FALSE
			     OR encryption_version IS NULL
			     OR encryption_version <> $1
			     OR access_token ~ $2
			     OR refresh_token ~ $2
			  ORDER BY subject`
	if database.InTx(ctx) {
		query += ` FOR UPDATE`
	}

	rows, err := querier.QueryContext(ctx, query, currentVersion, cryptoDomain.LegacyEnvelopePattern)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list stale tokens")
	}
	defer func() {
		_ = rows.Close()
	}()

	var tokens []*storeDomain.StoredToken
	for rows.Next() {
		token, err := scanToken(rows, scanUUID)
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
