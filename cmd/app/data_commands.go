package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/fieldvault/cmd/app/commands"
	"github.com/allisson/fieldvault/internal/app"
	"github.com/allisson/fieldvault/internal/config"
	cryptoService "github.com/allisson/fieldvault/internal/crypto/service"
)

func fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "value",
			Aliases: []string{"v"},
			Usage:   "Single value (omit to read it from stdin)",
		},
		&cli.StringSliceFlag{
			Name:  "field",
			Usage: "Field of a JSON record read from stdin; repeat for several fields",
		},
	}
}

func getDataCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt",
			Usage: "Encrypt a value or the named fields of a JSON record with EMPLOYEE_DATA_KEY",
			Flags: fieldFlags(),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				encryptor, err := container.InitializedFieldEncryptor(ctx)
				if err != nil {
					return err
				}

				return commands.RunEncrypt(
					ctx,
					encryptor,
					commands.DefaultIO(),
					cmd.String("value"),
					cmd.StringSlice("field"),
				)
			},
		},
		{
			Name:  "decrypt",
			Usage: "Decrypt a value or the named fields of a JSON record with EMPLOYEE_DATA_KEY",
			Flags: append(fieldFlags(), &cli.BoolFlag{
				Name:  "lenient",
				Usage: "Keep fields that fail to decrypt instead of failing",
			}),
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				encryptor, err := container.InitializedFieldEncryptor(ctx)
				if err != nil {
					return err
				}

				return commands.RunDecrypt(
					ctx,
					encryptor,
					commands.DefaultIO(),
					cmd.String("value"),
					cmd.StringSlice("field"),
					cmd.Bool("lenient"),
				)
			},
		},
		{
			Name:      "mask",
			Usage:     "Mask values for display",
			ArgsUsage: "<value>...",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kind",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Mask kind (ni_number, paye_reference, email, phone, bank_account, sort_code, ip_address, address, date_of_birth)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunMask(commands.DefaultIO().Writer, cmd.String("kind"), cmd.Args().Slice())
			},
		},
		{
			Name:      "hash",
			Usage:     "Print the SHA-256 of a value",
			ArgsUsage: "<value>",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunHash(
					commands.DefaultIO().Writer,
					cryptoService.NewSHA256HashService(),
					cmd.Args().First(),
				)
			},
		},
	}
}
