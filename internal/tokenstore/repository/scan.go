package repository

import (
	"database/sql"

	"github.com/google/uuid"

	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
)

type rowScanner interface {
	Scan(dest ...any) error
}

// idScanner returns a scan destination for the id column and a function that converts it
// once the row has been scanned.
type idScanner func() (dest any, convert func() (uuid.UUID, error))

func scanUUID() (any, func() (uuid.UUID, error)) {
	var id uuid.UUID
	return &id, func() (uuid.UUID, error) { return id, nil }
}

func scanBinaryUUID() (any, func() (uuid.UUID, error)) {
	var raw []byte
	return &raw, func() (uuid.UUID, error) { return uuid.FromBytes(raw) }
}

func scanToken(row rowScanner, idScan idScanner) (*storeDomain.StoredToken, error) {
	var (
		token   storeDomain.StoredToken
		version sql.NullString
	)
	idDest, convert := idScan()

	err := row.Scan(
		idDest,
		&token.Subject,
		&token.Record.AccessToken,
		&token.Record.RefreshToken,
		&token.Record.ExpiresAt,
		&token.Record.IssuedAt,
		&token.Record.IsEncrypted,
		&version,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if token.ID, err = convert(); err != nil {
		return nil, err
	}
	token.Record.EncryptionVersion = version.String
	token.Record.ExpiresAt = token.Record.ExpiresAt.UTC()
	token.Record.IssuedAt = token.Record.IssuedAt.UTC()
	token.CreatedAt = token.CreatedAt.UTC()
	token.UpdatedAt = token.UpdatedAt.UTC()
	return &token, nil
}

func nullableVersion(version string) sql.NullString {
	return sql.NullString{String: version, Valid: version != ""}
}

func requireAffected(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeDomain.ErrTokenNotFound
	}
	return nil
}
