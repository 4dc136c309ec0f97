package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	storeUseCase "github.com/allisson/fieldvault/internal/tokenstore/usecase"
)

// RunReEncryptTokens re-seals every stored token that is plaintext or carries an older
// envelope version. Individual failures are reported, not fatal.
func RunReEncryptTokens(
	ctx context.Context,
	storage storeUseCase.UseCase,
	writer io.Writer,
	format string,
) error {
	if err := validateFormat(format); err != nil {
		return err
	}

	report, err := storage.ReEncryptAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to re-encrypt tokens: %w", err)
	}

	if format == "json" {
		return writeJSON(writer, report)
	}

	_, _ = fmt.Fprintf(writer, "Scanned: %d\nRe-encrypted: %d\n", report.Scanned, report.ReEncrypted)
	if len(report.Failed) > 0 {
		_, _ = fmt.Fprintf(writer, "Failed: %s\n", strings.Join(report.Failed, ", "))
	}
	return nil
}
