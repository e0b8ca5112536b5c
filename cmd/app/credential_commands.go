package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credstore/cmd/app/commands"
	"github.com/allisson/credstore/internal/app"
)

func getCredentialCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "regenerate",
			Usage: "Regenerate a credential from its stored generation parameters",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Credential name",
				},
				actorFlag(),
			},
			Action: containerAction(version, func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				executor, err := c.AuditedOperationExecutor()
				if err != nil {
					return err
				}
				engine, err := c.RegenerationEngine()
				if err != nil {
					return err
				}
				return commands.RunRegenerate(
					ctx,
					executor,
					engine,
					c.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("actor"),
					cmd.String("name"),
				)
			}),
		},
		{
			Name:  "bulk-regenerate",
			Usage: "Regenerate every certificate signed by a certificate authority",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "signed-by",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Name of the signing CA credential",
				},
				actorFlag(),
				formatFlag(),
			},
			Action: containerAction(version, func(ctx context.Context, cmd *cli.Command, c *app.Container) error {
				engine, err := c.RegenerationEngine()
				if err != nil {
					return err
				}
				return commands.RunBulkRegenerate(
					ctx,
					engine,
					c.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("actor"),
					cmd.String("signed-by"),
					cmd.String("format"),
				)
			}),
		},
	}
}
