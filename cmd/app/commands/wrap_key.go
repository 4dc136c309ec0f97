package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	keysDomain "github.com/allisson/fieldvault/internal/keys/domain"
	"github.com/allisson/fieldvault/internal/keys/source"
)

// RunWrapKey encrypts a secret with the KMS key at kmsKeyURI and prints the configuration
// that lets KEY_SOURCE=kms unwrap it. A random secret is generated when secret is empty.
//
// Output format:
//   - KEY_SOURCE="kms"
//   - KMS_KEY_URI="<uri>"
//   - <KEY_TYPE>="<base64-encoded-kms-ciphertext>"
func RunWrapKey(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	logger *slog.Logger,
	writer io.Writer,
	kmsKeyURI string,
	keyType string,
	secret string,
) error {
	kt, err := keysDomain.ParseKeyType(keyType)
	if err != nil {
		return err
	}

	if secret == "" {
		if secret, err = generateSecret(cryptoDomain.KeySize); err != nil {
			return err
		}
	} else if err := cryptoDomain.ValidateSecret(secret); err != nil {
		return err
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := keeper.Close(); closeErr != nil {
			logger.Error("failed to close KMS keeper", slog.Any("error", closeErr))
		}
	}()

	wrapped, err := source.WrapSecret(ctx, keeper, secret)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(writer, "KEY_SOURCE=%q\nKMS_KEY_URI=%q\n%s=%q\n", "kms", kmsKeyURI, kt, wrapped)
	return err
}
