// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	authHTTP "github.com/allisson/fieldvault/internal/auth/http"
	authService "github.com/allisson/fieldvault/internal/auth/service"
	"github.com/allisson/fieldvault/internal/config"
	cryptoHTTP "github.com/allisson/fieldvault/internal/crypto/http"
	fieldHTTP "github.com/allisson/fieldvault/internal/fieldcrypt/http"
	keysHTTP "github.com/allisson/fieldvault/internal/keys/http"
	maskHTTP "github.com/allisson/fieldvault/internal/masking/http"
	"github.com/allisson/fieldvault/internal/metrics"
	tokenHTTP "github.com/allisson/fieldvault/internal/oauthtoken/http"
	storeHTTP "github.com/allisson/fieldvault/internal/tokenstore/http"
)

// Handlers groups the API handlers mounted under /v1.
type Handlers struct {
	Field      *fieldHTTP.FieldHandler
	Token      *tokenHTTP.TokenHandler
	TokenStore *storeHTTP.TokenStoreHandler
	Mask       *maskHTTP.MaskHandler
	Hash       *cryptoHTTP.HashHandler
	KeyStatus  *keysHTTP.KeyStatusHandler
}

// Server represents the HTTP server
type Server struct {
	server   *http.Server
	router   *gin.Engine
	services map[string]Initializable
	checks   map[string]HealthCheck
	logger   *slog.Logger
}

// NewServer creates a new HTTP server. services are reported by /health and /ready; checks
// are the backing stores /ready pings.
func NewServer(
	services map[string]Initializable,
	checks map[string]HealthCheck,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		services: services,
		checks:   checks,
		logger:   logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine. The /v1 group is only mounted when cfg.APITokenHash is
// set. ctx bounds background work owned by middleware.
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	handlers Handlers,
	tokens authService.APITokenService,
	meterProvider metric.MeterProvider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if meterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(meterProvider, cfg.MetricsNamespace))
	}
	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	s.router = router

	if cfg.APITokenHash == "" {
		s.logger.Warn("API_TOKEN_HASH is not set; /v1 routes are disabled")
		return
	}

	v1 := router.Group("/v1")
	if cfg.RateLimitEnabled {
		v1.Use(authHTTP.RateLimitMiddleware(ctx, cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}
	v1.Use(authHTTP.AuthenticationMiddleware(tokens, cfg.APITokenHash, s.logger))

	fields := v1.Group("/fields")
	{
		fields.POST("/encrypt", handlers.Field.EncryptHandler)
		fields.POST("/decrypt", handlers.Field.DecryptHandler)
	}

	tokenRoutes := v1.Group("/tokens")
	{
		tokenRoutes.POST("/encrypt", handlers.Token.EncryptHandler)
		tokenRoutes.POST("/decrypt", handlers.Token.DecryptHandler)
		tokenRoutes.POST("/validate", handlers.Token.ValidateHandler)
	}

	store := v1.Group("/token-store")
	{
		store.POST("/reencrypt", handlers.TokenStore.ReEncryptHandler)
		store.PUT("/:subject", handlers.TokenStore.SaveHandler)
		store.GET("/:subject", handlers.TokenStore.GetHandler)
		store.DELETE("/:subject", handlers.TokenStore.DeleteHandler)
		store.POST("/:subject/refresh", handlers.TokenStore.RefreshHandler)
	}

	v1.POST("/mask", handlers.Mask.MaskHandler)
	v1.POST("/hash", handlers.Hash.HashHandler)
	v1.GET("/keys/status", handlers.KeyStatus.StatusHandler)
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.router == nil {
		return fmt.Errorf("router not configured: call SetupRouter first")
	}
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}
