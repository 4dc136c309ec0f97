// Package http provides HTTP handlers for encrypting and decrypting record fields.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
	"github.com/allisson/fieldvault/internal/fieldcrypt/http/dto"
	fieldService "github.com/allisson/fieldvault/internal/fieldcrypt/service"
	"github.com/allisson/fieldvault/internal/httputil"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// FieldHandler handles HTTP requests for record field encryption.
type FieldHandler struct {
	encryptor fieldService.FieldEncryptor
	logger    *slog.Logger
}

// NewFieldHandler creates a new field handler.
func NewFieldHandler(encryptor fieldService.FieldEncryptor, logger *slog.Logger) *FieldHandler {
	return &FieldHandler{
		encryptor: encryptor,
		logger:    logger,
	}
}

// EncryptHandler encrypts the named fields of a record.
// POST /v1/fields/encrypt
// Returns 503 while the field encryption key is not initialized.
func (h *FieldHandler) EncryptHandler(c *gin.Context) {
	var req dto.EncryptFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	record, err := h.encryptor.EncryptSensitiveFields(c.Request.Context(), req.Record, req.Fields)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record, nil))
}

// DecryptHandler decrypts the named fields of a record.
// POST /v1/fields/decrypt
// Strict by default: a field that fails to decrypt fails the request with 422.
func (h *FieldHandler) DecryptHandler(c *gin.Context) {
	var req dto.DecryptFieldsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	mode := fieldDomain.DecryptStrict
	if req.Lenient {
		mode = fieldDomain.DecryptLenient
	}

	record, results, err := h.encryptor.DecryptSensitiveFields(c.Request.Context(), req.Record, req.Fields, mode)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapRecordToResponse(record, results))
}
