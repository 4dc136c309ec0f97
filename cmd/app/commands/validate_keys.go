package commands

import (
	"context"
	"errors"
	"fmt"
	"io"

	keysDomain "github.com/allisson/fieldvault/internal/keys/domain"
)

// ErrKeysInvalid is returned by RunValidateKeys when any requested key is missing.
var ErrKeysInvalid = errors.New("one or more encryption keys are missing or too short")

// KeyValidator checks which keys resolve to usable secrets.
type KeyValidator interface {
	ValidateKeys(ctx context.Context, required []keysDomain.KeyType) keysDomain.ValidationResult
}

// RunValidateKeys reports which of keyTypes are configured, defaulting to every key type.
// Only key names are printed. Returns ErrKeysInvalid when any key is missing so the command
// exits non-zero in deployment checks.
func RunValidateKeys(
	ctx context.Context,
	keys KeyValidator,
	writer io.Writer,
	keyTypes []string,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	required := keysDomain.AllKeyTypes
	if len(keyTypes) > 0 {
		required = make([]keysDomain.KeyType, 0, len(keyTypes))
		for _, name := range keyTypes {
			kt, err := keysDomain.ParseKeyType(name)
			if err != nil {
				return err
			}
			required = append(required, kt)
		}
	}

	result := keys.ValidateKeys(ctx, required)

	if format == "json" {
		if err := writeJSON(writer, result); err != nil {
			return err
		}
	} else {
		for _, kt := range result.Configured {
			_, _ = fmt.Fprintf(writer, "ok       %s\n", kt)
		}
		for _, kt := range result.Missing {
			_, _ = fmt.Fprintf(writer, "missing  %s\n", kt)
		}
	}

	if !result.Valid {
		return ErrKeysInvalid
	}
	return nil
}
