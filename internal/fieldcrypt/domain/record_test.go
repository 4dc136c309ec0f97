package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecord_Clone(t *testing.T) {
	original := Record{"a": "secret", "b": 5}
	clone := original.Clone()
	clone["a"] = "changed"

	assert.Equal(t, "secret", original["a"])
	assert.Equal(t, 5, clone["b"])
	assert.NotNil(t, Record(nil).Clone())
}

func TestFieldResults_Failed(t *testing.T) {
	results := FieldResults{
		"nino":   nil,
		"salary": errors.New("boom"),
		"bank":   errors.New("boom"),
	}
	assert.Equal(t, []string{"bank", "salary"}, results.Failed())
	assert.Empty(t, FieldResults{"nino": nil}.Failed())
}

func TestNewFieldDecryptionError(t *testing.T) {
	cause := errors.New("authentication failed")
	err := NewFieldDecryptionError("nino", cause)

	assert.ErrorIs(t, err, ErrFieldDecryptionFailed)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"nino"`)
}

func TestDecryptMode_String(t *testing.T) {
	assert.Equal(t, "strict", DecryptStrict.String())
	assert.Equal(t, "lenient", DecryptLenient.String())
}
