package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "empty", secret: "", wantErr: true},
		{name: "short", secret: "short", wantErr: true},
		{name: "31 characters", secret: strings.Repeat("a", 31), wantErr: true},
		{name: "exactly 32 characters", secret: strings.Repeat("a", 32)},
		{name: "64 characters", secret: strings.Repeat("k", 64)},
		{name: "multibyte counted by code point", secret: strings.Repeat("é", 32)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSecret(tt.secret)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrKeyTooShort)
				return
			}
			assert.NoError(t, err)
		})
	}
}
