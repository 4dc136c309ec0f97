// Package domain defines records and per-field results for field-level encryption.
package domain

import (
	"fmt"
	"maps"
	"sort"

	"github.com/allisson/fieldvault/internal/errors"
)

// Record is a flat document whose named string fields may be encrypted in place.
type Record map[string]any

// Clone returns a shallow copy. Nested values are shared.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// DecryptMode selects how DecryptSensitiveFields reacts to a field that fails to decrypt.
type DecryptMode int

const (
	// DecryptStrict fails the whole call on the first field that does not decrypt.
	DecryptStrict DecryptMode = iota

	// DecryptLenient logs each failure and leaves that field as stored, which may be
	// ciphertext or legacy plaintext. Callers opt in explicitly, typically during a migration.
	DecryptLenient
)

// String returns the mode name.
func (m DecryptMode) String() string {
	if m == DecryptLenient {
		return "lenient"
	}
	return "strict"
}

// FieldResults maps each attempted field to its decrypt outcome. A nil error is success.
type FieldResults map[string]error

// Failed returns the names of fields that did not decrypt, sorted.
func (r FieldResults) Failed() []string {
	failed := make([]string, 0, len(r))
	for field, err := range r {
		if err != nil {
			failed = append(failed, field)
		}
	}
	sort.Strings(failed)
	return failed
}

// ErrFieldDecryptionFailed is returned by strict bulk decryption. The wrapped chain also
// carries the underlying cause, e.g. ErrAuthenticationFailed.
var ErrFieldDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "field decryption failed")

// NewFieldDecryptionError names the field that failed and keeps cause matchable.
func NewFieldDecryptionError(field string, cause error) error {
	return fmt.Errorf("%w: field %q: %w", ErrFieldDecryptionFailed, field, cause)
}
