// Package domain defines OAuth token records persisted per subject.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/allisson/fieldvault/internal/errors"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
)

// MaxSubjectLength matches the subject column width.
const MaxSubjectLength = 255

// StoredToken is one subject's token pair at rest. Subject identifies the owner, such as an
// employer's HMRC account.
type StoredToken struct {
	ID        uuid.UUID               `json:"id"`
	Subject   string                  `json:"subject"`
	Record    tokenDomain.TokenRecord `json:"record"`
	CreatedAt time.Time               `json:"createdAt"`
	UpdatedAt time.Time               `json:"updatedAt"`
}

// IsStale reports whether the record is plaintext, tagged with a version other than current
// or sealed in a version 1 envelope.
func (s *StoredToken) IsStale(currentVersion string) bool {
	return !s.Record.IsEncrypted ||
		s.Record.EncryptionVersion != currentVersion ||
		s.Record.HasLegacyEnvelope()
}

var (
	// ErrTokenNotFound indicates no token is stored for the subject.
	ErrTokenNotFound = errors.Wrap(errors.ErrNotFound, "token not found")

	// ErrInvalidSubject indicates a blank or oversized subject.
	ErrInvalidSubject = errors.Wrap(errors.ErrInvalidInput, "invalid subject")
)

// ValidateSubject checks a subject before it is used as a storage key.
func ValidateSubject(subject string) error {
	if strings.TrimSpace(subject) == "" || len(subject) > MaxSubjectLength {
		return ErrInvalidSubject
	}
	return nil
}

// ReEncryptReport summarizes a migration sweep.
type ReEncryptReport struct {
	Scanned     int      `json:"scanned"`
	ReEncrypted int      `json:"reEncrypted"`
	Failed      []string `json:"failed"`
}
