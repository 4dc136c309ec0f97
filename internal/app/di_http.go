package app

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"

	authService "github.com/allisson/fieldvault/internal/auth/service"
	"github.com/allisson/fieldvault/internal/config"
	cryptoHTTP "github.com/allisson/fieldvault/internal/crypto/http"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	fieldHTTP "github.com/allisson/fieldvault/internal/fieldcrypt/http"
	"github.com/allisson/fieldvault/internal/http"
	keysDomain "github.com/allisson/fieldvault/internal/keys/domain"
	keysHTTP "github.com/allisson/fieldvault/internal/keys/http"
	maskHTTP "github.com/allisson/fieldvault/internal/masking/http"
	tokenHTTP "github.com/allisson/fieldvault/internal/oauthtoken/http"
	storeHTTP "github.com/allisson/fieldvault/internal/tokenstore/http"
)

// HTTPServer returns the API server with its router configured. ctx bounds middleware
// background work and should live as long as the server.
func (c *Container) HTTPServer(ctx context.Context) (*http.Server, error) {
	err := c.once(&c.httpServerInit, "httpServer", func() error {
		server, err := c.initHTTPServer(ctx)
		if err != nil {
			return fmt.Errorf("failed to create http server: %w", err)
		}
		c.httpServer = server
		return nil
	})
	return c.httpServer, err
}

// MetricsServer returns the Prometheus scrape server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.once(&c.metricsServerInit, "metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil || provider == nil {
			return err
		}
		services, err := c.serviceStatuses()
		if err != nil {
			return err
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost, c.config.MetricsPort, provider, services, c.Logger(),
		)
		return nil
	})
	return c.metricsServer, err
}

// serviceStatuses maps each key-dependent service to its name in health reports.
func (c *Container) serviceStatuses() (map[string]http.Initializable, error) {
	field, err := c.FieldEncryptor()
	if err != nil {
		return nil, err
	}
	tokens, err := c.TokenEncryptor()
	if err != nil {
		return nil, err
	}
	storage, err := c.TokenStorage()
	if err != nil {
		return nil, err
	}
	return map[string]http.Initializable{
		string(keysDomain.ServiceFieldEncryption): field,
		string(keysDomain.ServiceTokenEncryption): tokens,
		string(keysDomain.ServiceTokenStorage):    storage,
	}, nil
}

func (c *Container) initHTTPServer(ctx context.Context) (*http.Server, error) {
	logger := c.Logger()

	keys, err := c.KeyService()
	if err != nil {
		return nil, err
	}
	field, err := c.FieldEncryptor()
	if err != nil {
		return nil, err
	}
	tokens, err := c.TokenEncryptor()
	if err != nil {
		return nil, err
	}
	storage, err := c.TokenStorage()
	if err != nil {
		return nil, err
	}
	provider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	checks := map[string]http.HealthCheck{}
	switch c.config.TokenStore {
	case config.TokenStoreRedis:
		client, err := c.RedisClient()
		if err != nil {
			return nil, err
		}
		checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	case config.TokenStorePostgres, config.TokenStoreMySQL:
		db, err := c.DB()
		if err != nil {
			return nil, err
		}
		checks["database"] = db.PingContext
	}

	services, err := c.serviceStatuses()
	if err != nil {
		return nil, err
	}
	server := http.NewServer(services, checks, c.config.ServerHost, c.config.ServerPort, logger)

	var meterProvider metric.MeterProvider
	if provider != nil {
		meterProvider = provider.MeterProvider()
	}

	server.SetupRouter(ctx, c.config, http.Handlers{
		Field:      fieldHTTP.NewFieldHandler(field, logger),
		Token:      tokenHTTP.NewTokenHandler(tokens, nil, logger),
		TokenStore: storeHTTP.NewTokenStoreHandler(storage, logger),
		Mask:       maskHTTP.NewMaskHandler(logger),
		Hash:       cryptoHTTP.NewHashHandler(cryptoService.NewSHA256HashService(), logger),
		KeyStatus:  keysHTTP.NewKeyStatusHandler(keys, logger),
	}, authService.NewAPITokenService(), meterProvider)

	return server, nil
}
