package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
	fieldDomain "github.com/allisson/fieldvault/internal/fieldcrypt/domain"
	fieldService "github.com/allisson/fieldvault/internal/fieldcrypt/service"
	"github.com/allisson/fieldvault/internal/masking"
	tokenDomain "github.com/allisson/fieldvault/internal/oauthtoken/domain"
	tokenService "github.com/allisson/fieldvault/internal/oauthtoken/service"
	storeDomain "github.com/allisson/fieldvault/internal/tokenstore/domain"
	"github.com/allisson/fieldvault/internal/tokenstore/repository"
	storeUseCase "github.com/allisson/fieldvault/internal/tokenstore/usecase"
)

func newFieldEncryptor(t *testing.T, key string) *fieldService.FieldEncryptionService {
	t.Helper()
	svc := fieldService.NewFieldEncryptionService(cryptoService.NewCipherService(), 2, discardLogger())
	require.NoError(t, svc.Initialize(key))
	return svc
}

func TestRunEncryptDecrypt_Value(t *testing.T) {
	ctx := context.Background()
	svc := newFieldEncryptor(t, strings.Repeat("e", 32))

	var sealed bytes.Buffer
	require.NoError(t, RunEncrypt(ctx, svc, IOTuple{Reader: strings.NewReader(""), Writer: &sealed}, "AB123456C", nil))
	envelope := strings.TrimSpace(sealed.String())
	assert.NotEqual(t, "AB123456C", envelope)

	// Value read from stdin when the flag is empty.
	var opened bytes.Buffer
	require.NoError(t, RunDecrypt(ctx, svc, IOTuple{Reader: strings.NewReader(envelope + "\n"), Writer: &opened}, "", nil, false))
	assert.Equal(t, "AB123456C\n", opened.String())
}

func TestRunEncryptDecrypt_Fields(t *testing.T) {
	ctx := context.Background()
	svc := newFieldEncryptor(t, strings.Repeat("e", 32))
	input := `{"name":"Jane","nino":"AB123456C","age":41}`

	var sealed bytes.Buffer
	err := RunEncrypt(ctx, svc, IOTuple{Reader: strings.NewReader(input), Writer: &sealed}, "", []string{"nino", "age"})
	require.NoError(t, err)

	var encrypted map[string]any
	require.NoError(t, json.Unmarshal(sealed.Bytes(), &encrypted))
	assert.Equal(t, "Jane", encrypted["name"])
	assert.Equal(t, float64(41), encrypted["age"])
	assert.NotEqual(t, "AB123456C", encrypted["nino"])

	var opened bytes.Buffer
	err = RunDecrypt(ctx, svc, IOTuple{Reader: bytes.NewReader(sealed.Bytes()), Writer: &opened}, "", []string{"nino"}, false)
	require.NoError(t, err)

	var decrypted map[string]any
	require.NoError(t, json.Unmarshal(opened.Bytes(), &decrypted))
	assert.Equal(t, "AB123456C", decrypted["nino"])
}

func TestRunDecrypt_Modes(t *testing.T) {
	ctx := context.Background()
	svc := newFieldEncryptor(t, strings.Repeat("e", 32))
	input := `{"nino":"AB123456C"}`

	t.Run("strict-fails-on-plaintext", func(t *testing.T) {
		err := RunDecrypt(ctx, svc, IOTuple{Reader: strings.NewReader(input), Writer: &bytes.Buffer{}}, "", []string{"nino"}, false)
		assert.ErrorIs(t, err, fieldDomain.ErrFieldDecryptionFailed)
	})

	t.Run("lenient-keeps-value", func(t *testing.T) {
		var out bytes.Buffer
		err := RunDecrypt(ctx, svc, IOTuple{Reader: strings.NewReader(input), Writer: &out}, "", []string{"nino"}, true)
		require.NoError(t, err)
		assert.Contains(t, out.String(), `"nino": "AB123456C"`)
	})

	t.Run("malformed-json", func(t *testing.T) {
		err := RunDecrypt(ctx, svc, IOTuple{Reader: strings.NewReader("{"), Writer: &bytes.Buffer{}}, "", []string{"nino"}, false)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read JSON record")
	})
}

func TestRunEncrypt_Uninitialized(t *testing.T) {
	svc := fieldService.NewFieldEncryptionService(cryptoService.NewCipherService(), 1, discardLogger())
	err := RunEncrypt(context.Background(), svc, IOTuple{Reader: strings.NewReader(""), Writer: &bytes.Buffer{}}, "x", nil)
	assert.ErrorIs(t, err, cryptoDomain.ErrUninitializedService)
}

func TestRunMask(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunMask(&out, string(masking.KindNINumber), []string{"AB123456C", ""}))

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, masking.NINumber("AB123456C"), lines[0])
	assert.Equal(t, masking.NINumber(""), lines[1])

	err := RunMask(&bytes.Buffer{}, "passport", []string{"x"})
	assert.ErrorIs(t, err, masking.ErrUnknownMaskKind)
}

func TestRunHash(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, RunHash(&out, cryptoService.NewSHA256HashService(), "abc"))
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad\n", out.String())
}

func TestRunReEncryptTokens(t *testing.T) {
	ctx := context.Background()
	logger := discardLogger()
	clock := clockwork.NewFakeClockAt(time.Date(2026, 4, 6, 8, 0, 0, 0, time.UTC))
	repo := repository.NewMemoryTokenRepository()
	encryptor := tokenService.NewTokenEncryptionService(cryptoService.NewCipherService(), clock, logger)
	storage := storeUseCase.NewTokenStorage(encryptor, repo, nil, clock, logger)
	require.NoError(t, storage.Initialize(strings.Repeat("t", 32)))

	require.NoError(t, repo.Upsert(ctx, &storeDomain.StoredToken{
		ID:      uuid.Must(uuid.NewV7()),
		Subject: "employer-1",
		Record: tokenDomain.TokenRecord{
			AccessToken: "plain-access",
			ExpiresAt:   clock.Now().Add(time.Hour),
			IssuedAt:    clock.Now(),
		},
	}))

	t.Run("text", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunReEncryptTokens(ctx, storage, &out, "text"))
		assert.Contains(t, out.String(), "Scanned: 1")
		assert.Contains(t, out.String(), "Re-encrypted: 1")
	})

	t.Run("json-nothing-left", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, RunReEncryptTokens(ctx, storage, &out, "json"))

		var report storeDomain.ReEncryptReport
		require.NoError(t, json.Unmarshal(out.Bytes(), &report))
		assert.Equal(t, 0, report.Scanned)
	})

	t.Run("invalid-format", func(t *testing.T) {
		assert.Error(t, RunReEncryptTokens(ctx, storage, &bytes.Buffer{}, "xml"))
	})
}
