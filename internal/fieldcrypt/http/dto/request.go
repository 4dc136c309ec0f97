// Package dto provides data transfer objects for the field encryption endpoints.
package dto

import (
	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/fieldvault/internal/validation"
)

// EncryptFieldsRequest names the record keys to encrypt.
type EncryptFieldsRequest struct {
	Record map[string]any `json:"record"`
	Fields []string       `json:"fields"`
}

// Validate checks if the encrypt request is valid.
func (r *EncryptFieldsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Record, validation.NotNil),
		validation.Field(&r.Fields, validation.Required, customValidation.FieldNames),
	)
}

// DecryptFieldsRequest names the record keys to decrypt. Lenient leaves fields that fail
// to decrypt as stored instead of failing the request.
type DecryptFieldsRequest struct {
	Record  map[string]any `json:"record"`
	Fields  []string       `json:"fields"`
	Lenient bool           `json:"lenient"`
}

// Validate checks if the decrypt request is valid.
func (r *DecryptFieldsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Record, validation.NotNil),
		validation.Field(&r.Fields, validation.Required, customValidation.FieldNames),
	)
}
