package domain

import (
	"bytes"
	"encoding/base64"
	"fmt"
)

// Envelope is the self-describing unit stored in place of a plaintext value.
//
// The wire layout is:
//
//	[version:1][salt:16, version 2 only][iv:12][ciphertext+tag:n]
//
// surfaced to callers as standard padded base64. Envelope is a closed set: EnvelopeV1 and
// EnvelopeV2 are the only implementations, and DecodeEnvelope switches exhaustively on the
// version byte. Adding a version means adding a variant and a case, nothing else.
type Envelope interface {
	// Version returns the leading version byte.
	Version() EnvelopeVersion

	// Nonce returns the AES-GCM nonce used for this value.
	Nonce() []byte

	// Sealed returns the ciphertext with the authentication tag appended.
	Sealed() []byte

	// Encode validates the field sizes and returns the base64 wire form.
	Encode() (string, error)

	envelope()
}

// EnvelopeV1 is the legacy layout. Its key is derived with the fixed LegacySalt.
type EnvelopeV1 struct {
	IV         []byte
	Ciphertext []byte
}

// EnvelopeV2 is the current layout with a per-value random salt.
type EnvelopeV2 struct {
	Salt       []byte
	IV         []byte
	Ciphertext []byte
}

func (EnvelopeV1) envelope() {}
func (EnvelopeV2) envelope() {}

// Version returns VersionLegacy.
func (EnvelopeV1) Version() EnvelopeVersion { return VersionLegacy }

// Version returns VersionCurrent.
func (EnvelopeV2) Version() EnvelopeVersion { return VersionCurrent }

// Nonce returns the IV.
func (e EnvelopeV1) Nonce() []byte { return e.IV }

// Nonce returns the IV.
func (e EnvelopeV2) Nonce() []byte { return e.IV }

// Sealed returns the ciphertext and tag.
func (e EnvelopeV1) Sealed() []byte { return e.Ciphertext }

// Sealed returns the ciphertext and tag.
func (e EnvelopeV2) Sealed() []byte { return e.Ciphertext }

// Encode serializes a legacy envelope. Only fixtures and migration tooling should need this.
func (e EnvelopeV1) Encode() (string, error) {
	if err := checkBody(e.IV, e.Ciphertext); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.Grow(1 + len(e.IV) + len(e.Ciphertext))
	buf.WriteByte(byte(VersionLegacy))
	buf.Write(e.IV)
	buf.Write(e.Ciphertext)

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// Encode serializes a current-format envelope.
func (e EnvelopeV2) Encode() (string, error) {
	if len(e.Salt) != SaltSize {
		return "", fmt.Errorf("%w: salt must be %d bytes, got %d", ErrMalformedEnvelope, SaltSize, len(e.Salt))
	}
	if err := checkBody(e.IV, e.Ciphertext); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	buf.Grow(1 + len(e.Salt) + len(e.IV) + len(e.Ciphertext))
	buf.WriteByte(byte(VersionCurrent))
	buf.Write(e.Salt)
	buf.Write(e.IV)
	buf.Write(e.Ciphertext)

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func checkBody(iv, ciphertext []byte) error {
	if len(iv) != NonceSize {
		return fmt.Errorf("%w: iv must be %d bytes, got %d", ErrMalformedEnvelope, NonceSize, len(iv))
	}
	if len(ciphertext) < TagSize {
		return fmt.Errorf("%w: ciphertext shorter than authentication tag", ErrMalformedEnvelope)
	}
	return nil
}

// EncodeEnvelope returns the base64 wire form of e.
func EncodeEnvelope(e Envelope) (string, error) {
	if e == nil {
		return "", fmt.Errorf("%w: nil envelope", ErrMalformedEnvelope)
	}
	return e.Encode()
}

// DecodeEnvelope parses the base64 wire form produced by Encode.
//
// Returns:
//   - ErrMalformedEnvelope if the value is not base64 or is truncated
//   - ErrUnknownEnvelopeVersion if the leading byte is neither 1 nor 2
//
// The returned slices never alias the decoded buffer of another call.
func DecodeEnvelope(encoded string) (Envelope, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEnvelope, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: empty value", ErrMalformedEnvelope)
	}

	version, body := EnvelopeVersion(raw[0]), raw[1:]

	switch version {
	case VersionLegacy:
		if len(body) < NonceSize+TagSize {
			return nil, fmt.Errorf("%w: version 1 envelope too short", ErrMalformedEnvelope)
		}
		return EnvelopeV1{
			IV:         body[:NonceSize],
			Ciphertext: body[NonceSize:],
		}, nil

	case VersionCurrent:
		if len(body) < SaltSize+NonceSize+TagSize {
			return nil, fmt.Errorf("%w: version 2 envelope too short", ErrMalformedEnvelope)
		}
		return EnvelopeV2{
			Salt:       body[:SaltSize],
			IV:         body[SaltSize : SaltSize+NonceSize],
			Ciphertext: body[SaltSize+NonceSize:],
		}, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEnvelopeVersion, raw[0])
	}
}
