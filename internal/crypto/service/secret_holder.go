package service

import (
	"sync"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
)

// SecretHolder stores the secret a service was initialized with.
// Initialize may be called again to rotate. Safe for concurrent use.
type SecretHolder struct {
	mu     sync.RWMutex
	secret string
}

// Initialize validates and stores secret, replacing any previous one.
// A rejected secret leaves the previous one in place.
func (h *SecretHolder) Initialize(secret string) error {
	if err := cryptoDomain.ValidateSecret(secret); err != nil {
		return err
	}
	h.mu.Lock()
	h.secret = secret
	h.mu.Unlock()
	return nil
}

// Secret returns the stored secret or ErrUninitializedService.
func (h *SecretHolder) Secret() (string, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.secret == "" {
		return "", cryptoDomain.ErrUninitializedService
	}
	return h.secret, nil
}

// Initialized reports whether a secret has been stored.
func (h *SecretHolder) Initialized() bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.secret != ""
}
