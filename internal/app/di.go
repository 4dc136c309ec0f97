// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/allisson/fieldvault/internal/config"
	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	"github.com/allisson/fieldvault/internal/database"
	fieldService "github.com/allisson/fieldvault/internal/fieldcrypt/service"
	"github.com/allisson/fieldvault/internal/http"
	keysService "github.com/allisson/fieldvault/internal/keys/service"
	"github.com/allisson/fieldvault/internal/metrics"
	tokenService "github.com/allisson/fieldvault/internal/oauthtoken/service"
	storeUseCase "github.com/allisson/fieldvault/internal/tokenstore/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// Components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	db              *sql.DB
	txManager       database.TxManager
	redisClient     *redis.Client
	kmsKeeper       cryptoDomain.KMSKeeper

	// Keys and crypto services
	keySource      keysService.KeySource
	keyService     *keysService.KeyManagementService
	fieldEncryptor fieldService.FieldEncryptor
	tokenEncryptor tokenService.TokenEncryptor
	tokenRepo      storeUseCase.TokenRepository
	tokenStorage   storeUseCase.UseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	metricsProviderInit sync.Once
	businessMetricsInit sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	redisClientInit     sync.Once
	keySourceInit       sync.Once
	keyServiceInit      sync.Once
	fieldEncryptorInit  sync.Once
	tokenEncryptorInit  sync.Once
	tokenRepoInit       sync.Once
	tokenStorageInit    sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// once runs init at most once and remembers its error under name.
func (c *Container) once(o *sync.Once, name string, init func() error) error {
	o.Do(func() {
		if err := init(); err != nil {
			c.mu.Lock()
			c.initErrors[name] = err
			c.mu.Unlock()
		}
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[name]
}

// MetricsProvider returns the Prometheus-backed meter provider, or nil when metrics are
// disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.once(&c.metricsProviderInit, "metricsProvider", func() error {
		if !c.config.MetricsEnabled {
			return nil
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		c.metricsProvider = provider
		return nil
	})
	return c.metricsProvider, err
}

// BusinessMetrics returns the operation metrics, or nil when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.once(&c.businessMetricsInit, "businessMetrics", func() error {
		provider, err := c.MetricsProvider()
		if err != nil || provider == nil {
			return err
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		return err
	})
	return c.businessMetrics, err
}

// DB returns the database connection. Only used by the postgres and mysql token stores.
func (c *Container) DB() (*sql.DB, error) {
	err := c.once(&c.dbInit, "db", func() error {
		db, err := database.Connect(context.Background(), database.Config{
			Driver:             c.config.DBDriver,
			ConnectionString:   c.config.DBConnectionString,
			MaxOpenConnections: c.config.DBMaxOpenConnections,
			MaxIdleConnections: c.config.DBMaxIdleConnections,
			ConnMaxLifetime:    c.config.DBConnMaxLifetime,
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.db = db
		return nil
	})
	return c.db, err
}

// TxManager returns the transaction manager.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.once(&c.txManagerInit, "txManager", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		c.txManager = database.NewTxManager(db)
		return nil
	})
	return c.txManager, err
}

// RedisClient returns the client for the redis token store.
func (c *Container) RedisClient() (*redis.Client, error) {
	err := c.once(&c.redisClientInit, "redisClient", func() error {
		opts, err := redis.ParseURL(c.config.RedisURL)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		c.redisClient = redis.NewClient(opts)
		return nil
	})
	return c.redisClient, err
}

// Shutdown performs cleanup of all initialized resources.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http server shutdown: %w", err))
		}
	}
	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}
	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if c.db != nil {
		if err := c.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database close: %w", err))
		}
	}
	if c.kmsKeeper != nil {
		if err := c.kmsKeeper.Close(); err != nil {
			errs = append(errs, fmt.Errorf("kms keeper close: %w", err))
		}
	}

	return errors.Join(errs...)
}

// initLogger creates a structured logger from LOG_LEVEL and LOG_FORMAT. Logs go to stderr
// so CLI commands can write results to stdout.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: logLevel}
	if c.config.LogFormat == config.LogFormatText {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
