package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	keysDomain "github.com/allisson/fieldvault/internal/keys/domain"
)

// Option configures a KeyManagementService.
type Option func(*KeyManagementService)

// WithClientContext resolves keys from PUBLIC_-prefixed variables. Every resolution logs a
// warning, since anything readable in a client context is readable by the client.
func WithClientContext() Option {
	return func(s *KeyManagementService) {
		s.client = true
	}
}

// KeyManagementService resolves secrets by KeyType with a general fallback and caches them
// for the life of the process. Safe for concurrent use.
type KeyManagementService struct {
	source KeySource
	logger *slog.Logger
	client bool

	mu    sync.RWMutex
	cache map[keysDomain.KeyType]string
	gen   uint64
	group singleflight.Group
}

// NewKeyManagementService creates a key service reading from source.
func NewKeyManagementService(source KeySource, logger *slog.Logger, opts ...Option) *KeyManagementService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &KeyManagementService{
		source: source,
		logger: logger,
		cache:  make(map[keysDomain.KeyType]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetKey returns the secret for keyType, falling back to GENERAL_ENCRYPTION_KEY when the
// type-specific secret is absent. Returns ok=false when neither is configured or the source
// fails; failures are not cached.
func (s *KeyManagementService) GetKey(ctx context.Context, keyType keysDomain.KeyType) (string, bool) {
	if s.client {
		s.logger.Warn("resolving encryption key in client context; production deployments should fetch keys from an authenticated server",
			slog.String("key_type", string(keyType)),
		)
	}

	if key, ok := s.cached(keyType); ok {
		return key, true
	}

	s.mu.RLock()
	gen := s.gen
	s.mu.RUnlock()

	flightKey := string(keyType) + "/" + strconv.FormatUint(gen, 10)
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.group.Do(flightKey, func() (any, error) {
		if key, ok := s.cached(keyType); ok {
			return key, nil
		}

		key, err := s.resolve(flightCtx, keyType)
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		if s.gen == gen {
			s.cache[keyType] = key
		}
		s.mu.Unlock()
		return key, nil
	})
	if err != nil {
		if errors.Is(err, keysDomain.ErrMissingKey) {
			s.logger.Warn("encryption key not configured",
				slog.String("key_type", string(keyType)),
				slog.String("fallback", string(keysDomain.KeyGeneral)),
			)
		}
		return "", false
	}

	return v.(string), true
}

func (s *KeyManagementService) cached(keyType keysDomain.KeyType) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.cache[keyType]
	return key, ok
}

// resolve falls back to the general key only when the type-specific secret is absent.
// A source error stops resolution so a transient outage never binds the general key.
func (s *KeyManagementService) resolve(ctx context.Context, keyType keysDomain.KeyType) (string, error) {
	key, ok, err := s.lookup(ctx, keyType)
	if err != nil {
		return "", err
	}
	if ok {
		return key, nil
	}
	if keyType != keysDomain.KeyGeneral {
		key, ok, err := s.lookup(ctx, keysDomain.KeyGeneral)
		if err != nil {
			return "", err
		}
		if ok {
			s.logger.Debug("using general encryption key",
				slog.String("key_type", string(keyType)),
			)
			return key, nil
		}
	}
	return "", keysDomain.ErrMissingKey
}

func (s *KeyManagementService) lookup(ctx context.Context, keyType keysDomain.KeyType) (string, bool, error) {
	name := string(keyType)
	if s.client {
		name = keysDomain.ClientPrefix + name
	}

	value, ok, err := s.source.Lookup(ctx, name)
	if err != nil {
		s.logger.Error("failed to read encryption key",
			slog.String("name", name),
			slog.Any("error", err),
		)
		return "", false, err
	}
	return value, ok, nil
}

// ValidateKeys checks that every required type resolves to a secret of usable length.
// Short secrets are reported as missing.
func (s *KeyManagementService) ValidateKeys(
	ctx context.Context,
	required []keysDomain.KeyType,
) keysDomain.ValidationResult {
	result := keysDomain.ValidationResult{
		Missing:    []keysDomain.KeyType{},
		Configured: []keysDomain.KeyType{},
	}

	for _, keyType := range required {
		key, ok := s.GetKey(ctx, keyType)
		if !ok || cryptoDomain.ValidateSecret(key) != nil {
			result.Missing = append(result.Missing, keyType)
			continue
		}
		result.Configured = append(result.Configured, keyType)
	}

	result.Valid = len(result.Missing) == 0
	return result
}

// InitializeServices resolves each service's key and initializes it. A failure for one
// service is recorded and the remaining services are still attempted.
func (s *KeyManagementService) InitializeServices(ctx context.Context, services Services) keysDomain.InitializationReport {
	report := keysDomain.InitializationReport{
		Initialized: []keysDomain.ServiceName{},
		Failures:    []keysDomain.InitializationFailure{},
	}

	targets := []struct {
		name keysDomain.ServiceName
		svc  Initializer
	}{
		{keysDomain.ServiceFieldEncryption, services.FieldEncryption},
		{keysDomain.ServiceTokenEncryption, services.TokenEncryption},
		{keysDomain.ServiceTokenStorage, services.TokenStorage},
	}

	for _, target := range targets {
		name, svc := target.name, target.svc
		if svc == nil {
			continue
		}

		keyType := keysDomain.KeyTypeFor(name)
		key, ok := s.GetKey(ctx, keyType)
		if !ok {
			report.Failures = append(report.Failures, keysDomain.InitializationFailure{
				Service: name,
				KeyType: keyType,
				Error:   keysDomain.ErrMissingKey.Error(),
			})
			continue
		}

		if err := svc.Initialize(key); err != nil {
			s.logger.Error("failed to initialize encryption service",
				slog.String("service", string(name)),
				slog.Any("error", err),
			)
			report.Failures = append(report.Failures, keysDomain.InitializationFailure{
				Service: name,
				KeyType: keyType,
				Error:   err.Error(),
			})
			continue
		}

		s.logger.Info("encryption service initialized", slog.String("service", string(name)))
		report.Initialized = append(report.Initialized, name)
	}

	return report
}

// ClearCache drops every cached secret so the next GetKey reads the source again.
// Resolutions already in flight do not repopulate the cache.
func (s *KeyManagementService) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.cache)
	s.gen++
}
