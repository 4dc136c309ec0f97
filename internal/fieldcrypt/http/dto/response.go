package dto

import (
	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
)

// FieldsResponse carries the transformed record. Failed lists the fields a lenient
// decrypt left as stored.
type FieldsResponse struct {
	Record map[string]any `json:"record"`
	Failed []string       `json:"failed,omitempty"`
}

// MapRecordToResponse converts a transformed record and its per-field results.
func MapRecordToResponse(record fieldDomain.Record, results fieldDomain.FieldResults) FieldsResponse {
	return FieldsResponse{
		Record: record,
		Failed: results.Failed(),
	}
}
