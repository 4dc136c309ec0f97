// Package domain defines the named logical keys resolved by the key management service.
package domain

import (
	"fmt"
	"strings"

	"github.com/allisson/fieldvault/internal/errors"
)

// KeyType names a logical encryption key. The value doubles as the configuration
// variable the secret is read from.
type KeyType string

const (
	KeyHMRCEncryption KeyType = "HMRC_ENCRYPTION_KEY"
	KeyEmployeeData   KeyType = "EMPLOYEE_DATA_KEY"
	KeyFinancialData  KeyType = "FINANCIAL_DATA_KEY"
	KeyTokenStorage   KeyType = "TOKEN_STORAGE_KEY"

	// KeyGeneral is consulted whenever a type-specific key is absent.
	KeyGeneral KeyType = "GENERAL_ENCRYPTION_KEY"
)

// ClientPrefix is prepended to every variable name when keys are resolved in a client
// context, where only publicly exposed configuration is visible.
const ClientPrefix = "PUBLIC_"

// AllKeyTypes lists the type-specific keys in a stable order.
var AllKeyTypes = []KeyType{
	KeyHMRCEncryption,
	KeyEmployeeData,
	KeyFinancialData,
	KeyTokenStorage,
}

// ErrMissingKey indicates neither the type-specific key nor the general fallback is configured.
// The key service reports it through return values instead of failing.
var ErrMissingKey = errors.Wrap(errors.ErrNotFound, "encryption key not configured")

// ErrUnknownKeyType indicates a string that does not name a KeyType.
var ErrUnknownKeyType = errors.Wrap(errors.ErrInvalidInput, "unknown key type")

// ParseKeyType accepts the exact variable name, case-insensitively.
func ParseKeyType(s string) (KeyType, error) {
	candidate := KeyType(strings.ToUpper(strings.TrimSpace(s)))
	for _, kt := range AllKeyTypes {
		if kt == candidate {
			return kt, nil
		}
	}
	if candidate == KeyGeneral {
		return KeyGeneral, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKeyType, s)
}

// ValidationResult partitions the requested key types by whether a usable secret resolved.
type ValidationResult struct {
	Valid      bool      `json:"valid"`
	Missing    []KeyType `json:"missing"`
	Configured []KeyType `json:"configured"`
}
