package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credstore/cmd/app/commands"
	"github.com/allisson/credstore/internal/app"
)

func getKeyCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-encryption-key",
			Usage: "Print a new ENCRYPTION_KEYS entry, optionally wrapped with a KMS key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "id",
					Aliases: []string{"i"},
					Usage:   "Encryption key ID (default: encryption-key-YYYY-MM-DD)",
				},
				&cli.StringFlag{
					Name:  "kms-key-uri",
					Usage: "KMS key URI that wraps the new key (e.g., gcpkms://projects/.../cryptoKeys/...)",
				},
			},
			Action: containerAction(version, func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				return commands.RunCreateEncryptionKey(
					ctx,
					c.KMSService(),
					c.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("id"),
					cmd.String("kms-key-uri"),
				)
			}),
		},
	}
}
