package commands

import (
	"fmt"
	"io"

	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	"github.com/allisson/fieldvault/internal/masking"
)

// RunMask prints each value masked with the rule named by kind, one per line.
func RunMask(writer io.Writer, kind string, values []string) error {
	for _, value := range values {
		masked, err := masking.Mask(masking.Kind(kind), value)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(writer, masked); err != nil {
			return err
		}
	}
	return nil
}

// RunHash prints the lowercase hex SHA-256 of value.
func RunHash(writer io.Writer, hasher cryptoService.HashService, value string) error {
	_, err := fmt.Fprintln(writer, hasher.Hash([]byte(value)))
	return err
}
