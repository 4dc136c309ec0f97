package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/auth/service"
	"github.com/allisson/fieldvault/internal/config"
	cryptoDomain "github.com/allisson/fieldvault/internal/crypto/domain"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
)

func keyTypeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "type",
		Aliases:  []string{"t"},
		Required: true,
		Usage:    "Key type (HMRC_ENCRYPTION_KEY, EMPLOYEE_DATA_KEY, FINANCIAL_DATA_KEY, TOKEN_STORAGE_KEY, GENERAL_ENCRYPTION_KEY)",
	}
}

func getKeyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "generate-key",
			Usage: "Generate a random encryption key",
			Flags: []cli.Flag{
				keyTypeFlag(),
				&cli.IntFlag{
					Name:  "bytes",
					Value: cryptoDomain.KeySize,
					Usage: "Number of random bytes before base64 encoding",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateKey(
					commands.DefaultIO().Writer,
					cmd.String("type"),
					int(cmd.Int("bytes")),
				)
			},
		},
		{
			Name:  "wrap-key",
			Usage: "Encrypt a key with a KMS for KEY_SOURCE=kms",
			Flags: []cli.Flag{
				keyTypeFlag(),
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Required: true,
					Usage:    "KMS key URI (e.g., base64key://, gcpkms://projects/.../cryptoKeys/...)",
				},
				&cli.StringFlag{
					Name:  "secret",
					Usage: "Secret to wrap (omit to generate one)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunWrapKey(
					ctx,
					cryptoService.NewKMSService(),
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("type"),
					cmd.String("secret"),
				)
			},
		},
		{
			Name:  "validate-keys",
			Usage: "Check that encryption keys are configured without printing them",
			Flags: []cli.Flag{
				&cli.StringSliceFlag{
					Name:    "type",
					Aliases: []string{"t"},
					Usage:   "Key types to check (default: all)",
				},
				formatFlag(),
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				if err := cfg.Validate(); err != nil {
					return err
				}
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				keys, err := container.KeyService()
				if err != nil {
					return err
				}

				return commands.RunValidateKeys(
					ctx,
					keys,
					commands.DefaultIO().Writer,
					cmd.StringSlice("type"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "hash-api-token",
			Usage: "Hash an API token for API_TOKEN_HASH, generating one when omitted",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "token",
					Usage: "Token to hash",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunHashAPIToken(
					service.NewAPITokenService(),
					commands.DefaultIO().Writer,
					cmd.String("token"),
				)
			},
		},
	}
}
