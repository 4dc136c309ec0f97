package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
	fieldService "github.com/allisson/fieldvault/internal/fieldcrypt/service"
)

// RunEncrypt encrypts a single value, or with fields set, the named fields of a JSON record
// read from io.Reader. An empty value is read from io.Reader as one trimmed line.
func RunEncrypt(
	ctx context.Context,
	encryptor fieldService.FieldEncryptor,
	io IOTuple,
	value string,
	fields []string,
) error {
	if len(fields) > 0 {
		record, err := readRecord(io.Reader)
		if err != nil {
			return err
		}
		encrypted, err := encryptor.EncryptSensitiveFields(ctx, record, fields)
		if err != nil {
			return err
		}
		return writeJSON(io.Writer, encrypted)
	}

	value, err := valueOrStdin(io.Reader, value)
	if err != nil {
		return err
	}

	envelope, err := encryptor.EncryptField(ctx, value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(io.Writer, envelope)
	return err
}

// RunDecrypt reverses RunEncrypt. With lenient set, fields that fail to decrypt keep their
// stored value and their names are reported on the log instead of failing the command.
func RunDecrypt(
	ctx context.Context,
	encryptor fieldService.FieldEncryptor,
	io IOTuple,
	value string,
	fields []string,
	lenient bool,
) error {
	if len(fields) > 0 {
		record, err := readRecord(io.Reader)
		if err != nil {
			return err
		}

		mode := fieldDomain.DecryptStrict
		if lenient {
			mode = fieldDomain.DecryptLenient
		}

		decrypted, _, err := encryptor.DecryptSensitiveFields(ctx, record, fields, mode)
		if err != nil {
			return err
		}
		return writeJSON(io.Writer, decrypted)
	}

	value, err := valueOrStdin(io.Reader, value)
	if err != nil {
		return err
	}

	plaintext, err := encryptor.DecryptField(ctx, value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(io.Writer, plaintext)
	return err
}

func readRecord(r io.Reader) (fieldDomain.Record, error) {
	var record fieldDomain.Record
	if err := json.NewDecoder(r).Decode(&record); err != nil {
		return nil, fmt.Errorf("failed to read JSON record: %w", err)
	}
	return record, nil
}

func valueOrStdin(r io.Reader, value string) (string, error) {
	if value != "" {
		return value, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read value: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
