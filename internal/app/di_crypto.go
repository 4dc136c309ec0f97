package app

import (
	"context"
	"fmt"

	"github.com/allisson/fieldvault/internal/config"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	"github.com/allisson/fieldvault/internal/database"
	fieldService "github.com/allisson/fieldvault/internal/fieldcrypt/service"
	keysDomain "github.com/allisson/fieldvault/internal/keys/domain"
	keysService "github.com/allisson/fieldvault/internal/keys/service"
	"github.com/allisson/fieldvault/internal/keys/source"
	tokenService "github.com/allisson/fieldvault/internal/oauthtoken/service"
	"github.com/allisson/fieldvault/internal/tokenstore/repository"
	storeUseCase "github.com/allisson/fieldvault/internal/tokenstore/usecase"
)

// StartupReport is the outcome of the key initialization barrier.
type StartupReport struct {
	keysDomain.InitializationReport
	// Degraded is true when any service failed to initialize. The process keeps running and
	// endpoints backed by an uninitialized service answer 503.
	Degraded bool `json:"degraded"`
}

// KeySource returns the configured key source. With KEY_SOURCE=kms every environment value
// is treated as KMS ciphertext and unwrapped through the keeper at KMS_KEY_URI.
func (c *Container) KeySource() (keysService.KeySource, error) {
	err := c.once(&c.keySourceInit, "keySource", func() error {
		if c.config.KeySource != config.KeySourceKMS {
			c.keySource = source.NewEnvSource()
			return nil
		}

		keeper, err := cryptoService.NewKMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
		if err != nil {
			return err
		}
		c.kmsKeeper = keeper
		c.keySource = source.NewKeeperSource(source.NewEnvSource(), keeper)
		return nil
	})
	return c.keySource, err
}

// KeyService returns the key management service.
func (c *Container) KeyService() (*keysService.KeyManagementService, error) {
	err := c.once(&c.keyServiceInit, "keyService", func() error {
		src, err := c.KeySource()
		if err != nil {
			return fmt.Errorf("failed to get key source: %w", err)
		}
		var opts []keysService.Option
		if c.config.ClientContext {
			opts = append(opts, keysService.WithClientContext())
		}
		c.keyService = keysService.NewKeyManagementService(src, c.Logger(), opts...)
		return nil
	})
	return c.keyService, err
}

// FieldEncryptor returns the field encryption service, uninitialized until Startup.
func (c *Container) FieldEncryptor() (fieldService.FieldEncryptor, error) {
	err := c.once(&c.fieldEncryptorInit, "fieldEncryptor", func() error {
		var encryptor fieldService.FieldEncryptor = fieldService.NewFieldEncryptionService(
			cryptoService.NewCipherService(),
			c.config.BulkEncryptConcurrency,
			c.Logger(),
		)
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}
		if businessMetrics != nil {
			encryptor = fieldService.NewFieldEncryptorWithMetrics(encryptor, businessMetrics)
		}
		c.fieldEncryptor = encryptor
		return nil
	})
	return c.fieldEncryptor, err
}

// TokenEncryptor returns the token lifecycle encryption service used by the /v1/tokens API.
func (c *Container) TokenEncryptor() (tokenService.TokenEncryptor, error) {
	err := c.once(&c.tokenEncryptorInit, "tokenEncryptor", func() error {
		var encryptor tokenService.TokenEncryptor = tokenService.NewTokenEncryptionService(
			cryptoService.NewCipherService(),
			nil,
			c.Logger(),
		)
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}
		if businessMetrics != nil {
			encryptor = tokenService.NewTokenEncryptorWithMetrics(encryptor, businessMetrics)
		}
		c.tokenEncryptor = encryptor
		return nil
	})
	return c.tokenEncryptor, err
}

// TokenRepository returns the repository selected by TOKEN_STORE.
func (c *Container) TokenRepository() (storeUseCase.TokenRepository, error) {
	err := c.once(&c.tokenRepoInit, "tokenRepo", func() error {
		switch c.config.TokenStore {
		case config.TokenStoreMemory:
			c.tokenRepo = repository.NewMemoryTokenRepository()
		case config.TokenStoreRedis:
			client, err := c.RedisClient()
			if err != nil {
				return err
			}
			c.tokenRepo = repository.NewRedisTokenRepository(client, c.config.RedisKeyPrefix)
		case config.TokenStorePostgres, config.TokenStoreMySQL:
			db, err := c.DB()
			if err != nil {
				return fmt.Errorf("failed to get database for token repository: %w", err)
			}
			if c.config.TokenStore == config.TokenStoreMySQL {
				c.tokenRepo = repository.NewMySQLTokenRepository(db)
			} else {
				c.tokenRepo = repository.NewPostgreSQLTokenRepository(db)
			}
		default:
			return fmt.Errorf("unsupported token store: %s", c.config.TokenStore)
		}
		return nil
	})
	return c.tokenRepo, err
}

// TokenStorage returns the token storage use case. It encrypts under its own key with an
// encryptor separate from TokenEncryptor.
func (c *Container) TokenStorage() (storeUseCase.UseCase, error) {
	err := c.once(&c.tokenStorageInit, "tokenStorage", func() error {
		repo, err := c.TokenRepository()
		if err != nil {
			return err
		}

		var txManager database.TxManager
		if c.config.UsesDatabase() {
			if txManager, err = c.TxManager(); err != nil {
				return err
			}
		}

		encryptor := tokenService.NewTokenEncryptionService(cryptoService.NewCipherService(), nil, c.Logger())
		var storage storeUseCase.UseCase = storeUseCase.NewTokenStorage(encryptor, repo, txManager, nil, c.Logger())

		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return err
		}
		if businessMetrics != nil {
			storage = storeUseCase.NewTokenStorageWithMetrics(storage, businessMetrics)
		}
		c.tokenStorage = storage
		return nil
	})
	return c.tokenStorage, err
}

// Startup resolves keys and initializes every crypto service. Missing or invalid keys do not
// fail startup; they are reported and the container runs degraded. An error is returned only
// when a dependency cannot be constructed.
func (c *Container) Startup(ctx context.Context) (StartupReport, error) {
	keys, err := c.KeyService()
	if err != nil {
		return StartupReport{}, err
	}
	field, err := c.FieldEncryptor()
	if err != nil {
		return StartupReport{}, err
	}
	tokens, err := c.TokenEncryptor()
	if err != nil {
		return StartupReport{}, err
	}
	storage, err := c.TokenStorage()
	if err != nil {
		return StartupReport{}, err
	}

	report := keys.InitializeServices(ctx, keysService.Services{
		FieldEncryption: field,
		TokenEncryption: tokens,
		TokenStorage:    storage,
	})

	startup := StartupReport{InitializationReport: report, Degraded: !report.OK()}
	if startup.Degraded {
		c.Logger().Warn("starting in degraded mode; encryption endpoints will answer 503",
			"failures", report.Failures,
		)
	}
	return startup, nil
}

// InitializedFieldEncryptor returns the field encryptor with its key loaded. Unlike Startup it
// fails when the key is missing, for one-shot commands that cannot run degraded.
func (c *Container) InitializedFieldEncryptor(ctx context.Context) (fieldService.FieldEncryptor, error) {
	field, err := c.FieldEncryptor()
	if err != nil {
		return nil, err
	}
	if err := c.initializeOnly(ctx, keysService.Services{FieldEncryption: field}); err != nil {
		return nil, err
	}
	return field, nil
}

// InitializedTokenStorage returns the token storage with its key loaded, failing when the
// key is missing.
func (c *Container) InitializedTokenStorage(ctx context.Context) (storeUseCase.UseCase, error) {
	storage, err := c.TokenStorage()
	if err != nil {
		return nil, err
	}
	if err := c.initializeOnly(ctx, keysService.Services{TokenStorage: storage}); err != nil {
		return nil, err
	}
	return storage, nil
}

func (c *Container) initializeOnly(ctx context.Context, services keysService.Services) error {
	keys, err := c.KeyService()
	if err != nil {
		return err
	}
	report := keys.InitializeServices(ctx, services)
	if !report.OK() {
		failure := report.Failures[0]
		return fmt.Errorf("%s: %s", failure.KeyType, failure.Error)
	}
	return nil
}
