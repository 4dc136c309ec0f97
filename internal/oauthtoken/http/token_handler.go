// Package http provides HTTP handlers for OAuth token record encryption.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"github.com/allisson/fieldvault/internal/httputil"
	"github.com/allisson/fieldvault/internal/oauthtoken/http/dto"
	tokenService "github.com/allisson/fieldvault/internal/oauthtoken/service"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// TokenHandler handles HTTP requests for token record encryption.
type TokenHandler struct {
	encryptor tokenService.TokenEncryptor
	clock     clockwork.Clock
	logger    *slog.Logger
}

// NewTokenHandler creates a new token handler. A nil clock uses the real clock.
func NewTokenHandler(
	encryptor tokenService.TokenEncryptor,
	clock clockwork.Clock,
	logger *slog.Logger,
) *TokenHandler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &TokenHandler{
		encryptor: encryptor,
		clock:     clock,
		logger:    logger,
	}
}

// EncryptHandler encrypts a token response into a storable record.
// POST /v1/tokens/encrypt
func (h *TokenHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.encryptor.EncryptTokens(c.Request.Context(), req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapTokenRecordToResponse(record))
}

// DecryptHandler returns the plaintext tokens of a stored record.
// POST /v1/tokens/decrypt
func (h *TokenHandler) DecryptHandler(c *gin.Context) {
	var req dto.TokenRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record := req.ToDomain()
	tokens, err := h.encryptor.DecryptTokens(c.Request.Context(), record)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapDecryptedTokensToResponse(
		tokens,
		h.clock.Now(),
		h.encryptor.NeedsReEncryption(record),
	))
}

// ValidateHandler reports whether a stored record decrypts under the current key.
// POST /v1/tokens/validate
// Always 200 for a well-formed request; the outcome is in the body.
func (h *TokenHandler) ValidateHandler(c *gin.Context) {
	var req dto.TokenRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record := req.ToDomain()
	report := h.encryptor.ValidateEncryption(c.Request.Context(), record)

	c.JSON(http.StatusOK, dto.MapValidationReportToResponse(report, h.encryptor.NeedsReEncryption(record)))
}
