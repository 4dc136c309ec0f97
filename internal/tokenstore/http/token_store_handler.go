// Package http provides HTTP handlers for per-subject token storage.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/fieldvault/internal/httputil"
	"github.com/allisson/fieldvault/internal/tokenstore/http/dto"
	storeUseCase "github.com/allisson/fieldvault/internal/tokenstore/usecase"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// TokenStoreHandler handles HTTP requests for stored OAuth tokens.
type TokenStoreHandler struct {
	storage storeUseCase.UseCase
	logger  *slog.Logger
}

// NewTokenStoreHandler creates a new token store handler.
func NewTokenStoreHandler(storage storeUseCase.UseCase, logger *slog.Logger) *TokenStoreHandler {
	return &TokenStoreHandler{
		storage: storage,
		logger:  logger,
	}
}

func (h *TokenStoreHandler) bindTokens(c *gin.Context) (*dto.StoreTokensRequest, bool) {
	var req dto.StoreTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return nil, false
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return nil, false
	}
	return &req, true
}

// SaveHandler stores a token pair for a subject, replacing any previous pair.
// PUT /v1/token-store/:subject
func (h *TokenStoreHandler) SaveHandler(c *gin.Context) {
	req, ok := h.bindTokens(c)
	if !ok {
		return
	}

	stored, err := h.storage.Save(c.Request.Context(), c.Param("subject"), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStoredTokenToResponse(stored))
}

// RefreshHandler replaces the token pair of a subject that already has one.
// POST /v1/token-store/:subject/refresh
func (h *TokenStoreHandler) RefreshHandler(c *gin.Context) {
	req, ok := h.bindTokens(c)
	if !ok {
		return
	}

	stored, err := h.storage.Refresh(c.Request.Context(), c.Param("subject"), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapStoredTokenToResponse(stored))
}

// GetHandler returns a subject's decrypted tokens.
// GET /v1/token-store/:subject
func (h *TokenStoreHandler) GetHandler(c *gin.Context) {
	tokens, err := h.storage.Load(c.Request.Context(), c.Param("subject"))
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapTokensToResponse(tokens))
}

// DeleteHandler removes a subject's tokens.
// DELETE /v1/token-store/:subject
func (h *TokenStoreHandler) DeleteHandler(c *gin.Context) {
	if err := h.storage.Delete(c.Request.Context(), c.Param("subject")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// ReEncryptHandler rewrites every stale token in the current scheme.
// POST /v1/token-store/reencrypt
func (h *TokenStoreHandler) ReEncryptHandler(c *gin.Context) {
	report, err := h.storage.ReEncryptAll(c.Request.Context())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, report)
}
