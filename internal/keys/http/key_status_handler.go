// Package http exposes which encryption keys are configured, by name only.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/allisson/fieldvault/internal/httputil"
	keysDomain "github.com/allisson/fieldvault/internal/keys/domain"
)

// KeyValidator is the subset of the key management service the handler needs.
type KeyValidator interface {
	ValidateKeys(ctx context.Context, required []keysDomain.KeyType) keysDomain.ValidationResult
}

// KeyStatusHandler reports key configuration without revealing key material.
type KeyStatusHandler struct {
	keys   KeyValidator
	logger *slog.Logger
}

// NewKeyStatusHandler creates a new key status handler.
func NewKeyStatusHandler(keys KeyValidator, logger *slog.Logger) *KeyStatusHandler {
	return &KeyStatusHandler{
		keys:   keys,
		logger: logger,
	}
}

// StatusHandler validates every key type, or the comma-separated list in ?types=.
// GET /v1/keys/status
func (h *KeyStatusHandler) StatusHandler(c *gin.Context) {
	required := keysDomain.AllKeyTypes

	if raw := c.Query("types"); raw != "" {
		required = nil
		for name := range strings.SplitSeq(raw, ",") {
			keyType, err := keysDomain.ParseKeyType(name)
			if err != nil {
				httputil.HandleErrorGin(c, err, h.logger)
				return
			}
			required = append(required, keyType)
		}
	}

	c.JSON(http.StatusOK, h.keys.ValidateKeys(c.Request.Context(), required))
}
