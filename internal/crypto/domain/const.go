package domain

// EnvelopeVersion is the leading byte of every encrypted envelope. It selects how the rest
// of the envelope is laid out and which key derivation path decrypts it.
type EnvelopeVersion byte

const (
	// VersionLegacy envelopes carry no salt. Their key is derived with LegacySalt.
	// Retained only so data written before the salt upgrade keeps decrypting.
	VersionLegacy EnvelopeVersion = 1

	// VersionCurrent envelopes carry a random 16-byte salt. All new writes use this version.
	VersionCurrent EnvelopeVersion = 2
)

const (
	// SaltSize is the PBKDF2 salt length stored in version 2 envelopes.
	SaltSize = 16

	// NonceSize is the AES-GCM nonce (IV) length stored in every envelope.
	NonceSize = 12

	// TagSize is the AES-GCM authentication tag length appended to the ciphertext.
	TagSize = 16

	// KeySize is the derived AES-256 key length in bytes.
	KeySize = 32

	// PBKDF2Iterations is the iteration count used for both derivation paths.
	PBKDF2Iterations = 100_000

	// MinSecretLength is the minimum number of characters a configured secret must have.
	MinSecretLength = 32
)

// LegacySalt is the fixed salt used to derive keys for version 1 envelopes.
// Never use it for new writes.
const LegacySalt = "hmrc-compliance-salt-v1"

// LegacyEnvelopePattern matches the base64 form of a version 1 envelope: a leading 0x01 byte
// encodes as 'A' followed by one of Q-Z or a-f. Stores use it to find legacy values in SQL.
const LegacyEnvelopePattern = "^A[Q-Za-f]"
