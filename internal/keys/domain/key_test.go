package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/fieldvault/internal/errors"
)

func TestParseKeyType(t *testing.T) {
	t.Run("exact names", func(t *testing.T) {
		for _, kt := range append(AllKeyTypes, KeyGeneral) {
			got, err := ParseKeyType(string(kt))
			require.NoError(t, err)
			assert.Equal(t, kt, got)
		}
	})

	t.Run("case insensitive", func(t *testing.T) {
		got, err := ParseKeyType(" employee_data_key ")
		require.NoError(t, err)
		assert.Equal(t, KeyEmployeeData, got)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := ParseKeyType("PAYROLL_KEY")
		assert.ErrorIs(t, err, ErrUnknownKeyType)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})
}

func TestKeyTypeFor(t *testing.T) {
	assert.Equal(t, KeyEmployeeData, KeyTypeFor(ServiceFieldEncryption))
	assert.Equal(t, KeyHMRCEncryption, KeyTypeFor(ServiceTokenEncryption))
	assert.Equal(t, KeyTokenStorage, KeyTypeFor(ServiceTokenStorage))
	assert.Equal(t, KeyGeneral, KeyTypeFor("unknown"))
}

func TestInitializationReport_OK(t *testing.T) {
	assert.True(t, InitializationReport{Initialized: []ServiceName{ServiceFieldEncryption}}.OK())
	assert.False(t, InitializationReport{
		Failures: []InitializationFailure{{Service: ServiceTokenStorage, Error: "missing"}},
	}.OK())
}
