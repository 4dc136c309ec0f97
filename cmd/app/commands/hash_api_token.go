package commands

import (
	"fmt"
	"io"

	authService "github.com/allisson/fieldvault/internal/auth/service"
)

// RunHashAPIToken prints the API_TOKEN_HASH for token. When token is empty a new token is
// generated and printed once; it cannot be recovered from the hash.
func RunHashAPIToken(tokens authService.APITokenService, writer io.Writer, token string) error {
	if token == "" {
		plain, hash, err := tokens.Generate()
		if err != nil {
			return fmt.Errorf("failed to generate API token: %w", err)
		}
		_, err = fmt.Fprintf(writer, "# Store the token securely; it is not shown again.\nAPI_TOKEN=%q\nAPI_TOKEN_HASH=%q\n", plain, hash)
		return err
	}

	hash, err := tokens.Hash(token)
	if err != nil {
		return fmt.Errorf("failed to hash API token: %w", err)
	}
	_, err = fmt.Fprintf(writer, "API_TOKEN_HASH=%q\n", hash)
	return err
}
