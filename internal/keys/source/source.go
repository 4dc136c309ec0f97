// Package source provides the backends the key management service reads secrets from.
package source

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// EnvSource reads secrets from the process environment.
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource creates a source backed by os.LookupEnv.
func NewEnvSource() *EnvSource {
	return &EnvSource{lookup: os.LookupEnv}
}

// Lookup returns the variable's value. Unset and blank variables are reported as absent.
func (s *EnvSource) Lookup(_ context.Context, name string) (string, bool, error) {
	value, ok := s.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", false, nil
	}
	return value, true, nil
}

// StaticSource serves secrets from a fixed map. Used for fixtures and one-shot CLI runs.
type StaticSource map[string]string

// Lookup returns the mapped value. Empty values are reported as absent.
func (s StaticSource) Lookup(_ context.Context, name string) (string, bool, error) {
	value, ok := s[name]
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

// Lookuper is the contract shared by every source.
type Lookuper interface {
	Lookup(ctx context.Context, name string) (string, bool, error)
}

// KeeperSource unwraps secrets that are stored as base64 KMS ciphertext in another source.
//
// The stored value is produced by the wrap-key command. The keeper is owned by the caller.
type KeeperSource struct {
	inner  Lookuper
	keeper cryptoDomain.KMSKeeper
}

// NewKeeperSource wraps inner so every value it returns is decrypted through keeper.
func NewKeeperSource(inner Lookuper, keeper cryptoDomain.KMSKeeper) *KeeperSource {
	return &KeeperSource{inner: inner, keeper: keeper}
}

// Lookup reads the wrapped value from the inner source and decrypts it.
func (s *KeeperSource) Lookup(ctx context.Context, name string) (string, bool, error) {
	wrapped, ok, err := s.inner.Lookup(ctx, name)
	if err != nil || !ok {
		return "", ok, err
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimSpace(wrapped))
	if err != nil {
		return "", false, fmt.Errorf("failed to decode wrapped key %s: %w", name, err)
	}

	plaintext, err := s.keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", false, fmt.Errorf("failed to unwrap key %s: %w", name, err)
	}
	return string(plaintext), true, nil
}

// WrapSecret encrypts secret through keeper and returns the base64 form KeeperSource expects.
func WrapSecret(ctx context.Context, keeper cryptoDomain.KMSKeeper, secret string) (string, error) {
	ciphertext, err := keeper.Encrypt(ctx, []byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to wrap key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}
