package commands

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	keysDomain "github.com/allisson/fieldvault/internal/keys/domain"
)

// RunGenerateKey prints a random secret for keyType as an environment assignment. The
// secret is size random bytes in standard base64, so any size of 24 or more clears the
// minimum secret length.
func RunGenerateKey(writer io.Writer, keyType string, size int) error {
	kt, err := keysDomain.ParseKeyType(keyType)
	if err != nil {
		return err
	}

	secret, err := generateSecret(size)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(writer, "%s=%q\n", kt, secret)
	return err
}

// generateSecret returns size random bytes in standard base64.
func generateSecret(size int) (string, error) {
	raw := make([]byte, size)
	defer cryptoDomain.Zero(raw)

	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}

	secret := base64.StdEncoding.EncodeToString(raw)
	if err := cryptoDomain.ValidateSecret(secret); err != nil {
		return "", fmt.Errorf("key size %d is too small: %w", size, err)
	}
	return secret, nil
}
