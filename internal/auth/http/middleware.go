// Package http provides the authentication and rate limiting middleware for the API.
package http

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/fieldvault/internal/auth/service"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/httputil"
)

// AuthenticationMiddleware requires "Authorization: Bearer <token>" matching tokenHash.
//
// Argon2id verification is expensive, so the SHA-256 digest of a token that verified once is
// remembered for the life of the middleware. Failed tokens are never remembered.
//
// Error handling:
//   - Missing or malformed Authorization header → 401 Unauthorized
//   - Token that does not match tokenHash → 401 Unauthorized
func AuthenticationMiddleware(
	tokens authService.APITokenService,
	tokenHash string,
	logger *slog.Logger,
) gin.HandlerFunc {
	var verified sync.Map

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		digest := cryptoService.SHA256Hex(plainToken)
		if _, ok := verified.Load(digest); !ok {
			if !tokens.Verify(plainToken, tokenHash) {
				logger.Debug("authentication failed: token mismatch")
				httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
				c.Abort()
				return
			}
			verified.Store(digest, struct{}{})
		}

		c.Next()
	}
}
