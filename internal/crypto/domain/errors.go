package domain

import (
	"github.com/allisson/fieldvault/internal/errors"
)

// Cryptographic error definitions.
//
// These wrap the shared sentinels from internal/errors so the HTTP layer can map them
// to status codes while callers match the specific failure with errors.Is.
var (
	// ErrKeyTooShort indicates a secret shorter than MinSecretLength characters.
	// Services refuse to initialize with such a key.
	ErrKeyTooShort = errors.Wrap(errors.ErrInvalidInput, "encryption key must be at least 32 characters")

	// ErrUninitializedService indicates a crypto operation was attempted before Initialize.
	// This is a programmer error: all crypto use must sit behind the startup barrier.
	ErrUninitializedService = errors.Wrap(errors.ErrUnavailable, "encryption service not initialized")

	// ErrAuthenticationFailed indicates the AES-GCM tag did not verify.
	//
	// This can mean the envelope was tampered with, corrupted in storage, or decrypted
	// with the wrong key. The specific cause is deliberately not distinguished.
	ErrAuthenticationFailed = errors.Wrap(errors.ErrInvalidInput, "authentication failed")

	// ErrUnknownEnvelopeVersion indicates the envelope's leading byte is not a known version.
	ErrUnknownEnvelopeVersion = errors.Wrap(errors.ErrInvalidInput, "unknown envelope version")

	// ErrMalformedEnvelope indicates the value is not valid base64 or is too short to hold
	// the layout its version byte promises.
	ErrMalformedEnvelope = errors.Wrap(errors.ErrInvalidInput, "malformed envelope")

	// ErrInvalidSaltSize indicates a salt of the wrong length was passed to key derivation.
	ErrInvalidSaltSize = errors.Wrap(errors.ErrInvalidInput, "invalid salt size")

	// ErrInvalidKeySize indicates an AEAD key that is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")
)
