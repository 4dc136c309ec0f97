// Package validation provides custom validation rules for request DTOs.
package validation

import (
	"slices"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/fieldvault/internal/errors"
	"github.com/allisson/fieldvault/internal/masking"
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)

// MaskKind accepts the masker names in masking.Kinds.
var MaskKind = validation.NewStringRuleWithError(
	func(s string) bool {
		return slices.Contains(masking.Kinds, masking.Kind(s))
	},
	validation.NewError("validation_mask_kind", "must be a known mask kind"),
)

// FieldNames validates a list of record keys: each non-blank and listed once.
var FieldNames = validation.By(func(value any) error {
	fields, ok := value.([]string)
	if !ok {
		return validation.NewError("validation_field_names_type", "must be a list of strings")
	}
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if strings.TrimSpace(field) == "" {
			return validation.NewError("validation_field_names_blank", "must not contain blank names")
		}
		if _, dup := seen[field]; dup {
			return validation.NewError("validation_field_names_duplicate", "must not repeat "+field)
		}
		seen[field] = struct{}{}
	}
	return nil
})
