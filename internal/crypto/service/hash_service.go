package service

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashService provides one-way hashing for comparing values without storing plaintext,
// e.g. deduplicating national insurance numbers across encrypted records.
type HashService interface {
	Hash(value []byte) string
}

type sha256HashService struct{}

// NewSHA256HashService creates a new SHA-256 hash service.
func NewSHA256HashService() HashService {
	return &sha256HashService{}
}

// Hash computes the SHA-256 hash of the input value and returns it as lowercase hex.
func (s *sha256HashService) Hash(value []byte) string {
	hash := sha256.Sum256(value)
	return hex.EncodeToString(hash[:])
}

// SHA256Hex hashes a string. Deterministic and unsalted.
func SHA256Hex(data string) string {
	return NewSHA256HashService().Hash([]byte(data))
}
