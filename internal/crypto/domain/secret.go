package domain

import "unicode/utf8"

// ValidateSecret returns ErrKeyTooShort when secret has fewer than MinSecretLength characters.
// Length is counted in Unicode code points.
func ValidateSecret(secret string) error {
	if utf8.RuneCountInString(secret) < MinSecretLength {
		return ErrKeyTooShort
	}
	return nil
}
