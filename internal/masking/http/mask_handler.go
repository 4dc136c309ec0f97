// Package http provides the HTTP handler for masking identifiers.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/jellydator/validation"

	"github.com/allisson/fieldvault/internal/httputil"
	"github.com/allisson/fieldvault/internal/masking"
	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// MaskRequest names a masking rule and the values to mask with it.
type MaskRequest struct {
	Kind   string   `json:"kind"`
	Values []string `json:"values"`
}

// Validate checks if the mask request is valid.
func (r *MaskRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Kind, validation.Required, customValidation.MaskKind),
		validation.Field(&r.Values, validation.Required),
	)
}

// MaskResponse holds the masked values in request order.
type MaskResponse struct {
	Kind   string   `json:"kind"`
	Masked []string `json:"masked"`
}

// MaskHandler handles masking requests.
type MaskHandler struct {
	logger *slog.Logger
}

// NewMaskHandler creates a new mask handler.
func NewMaskHandler(logger *slog.Logger) *MaskHandler {
	return &MaskHandler{logger: logger}
}

// MaskHandler masks each value with the named rule.
// POST /v1/mask
func (h *MaskHandler) MaskHandler(c *gin.Context) {
	var req MaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	masked := make([]string, 0, len(req.Values))
	for _, value := range req.Values {
		out, err := masking.Mask(masking.Kind(req.Kind), value)
		if err != nil {
			httputil.HandleErrorGin(c, err, h.logger)
			return
		}
		masked = append(masked, out)
	}

	c.JSON(http.StatusOK, MaskResponse{Kind: req.Kind, Masked: masked})
}
