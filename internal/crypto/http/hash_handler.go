// Package http provides the HTTP handler for deterministic value hashing.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	"github.com/allisson/fieldvault/internal/httputil"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// HashRequest carries the value to hash.
type HashRequest struct {
	Value string `json:"value"`
}

// Validate checks if the hash request is valid.
func (r *HashRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Value, validation.Required),
	)
}

// HashResponse holds the lowercase hex SHA-256 digest.
type HashResponse struct {
	Algorithm string `json:"algorithm"`
	Hash      string `json:"hash"`
}

// HashHandler handles hashing requests.
type HashHandler struct {
	hasher cryptoService.HashService
	logger *slog.Logger
}

// NewHashHandler creates a new hash handler.
func NewHashHandler(hasher cryptoService.HashService, logger *slog.Logger) *HashHandler {
	return &HashHandler{
		hasher: hasher,
		logger: logger,
	}
}

// HashHandler returns the SHA-256 digest of a value for equality lookups.
// POST /v1/hash
func (h *HashHandler) HashHandler(c *gin.Context) {
	var req HashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	c.JSON(http.StatusOK, HashResponse{
		Algorithm: "sha256",
		Hash:      h.hasher.Hash([]byte(req.Value)),
	})
}
