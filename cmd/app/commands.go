package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/credstore/internal/app"
	"github.com/allisson/credstore/internal/config"
)

func getCommands(version string) []*cli.Command {
	var cmds []*cli.Command
	cmds = append(cmds, getSystemCommands(version)...)
	cmds = append(cmds, getKeyCommands(version)...)
	cmds = append(cmds, getCredentialCommands(version)...)
	return cmds
}

// containerAction runs fn with a container built from the environment and shuts the
// container down afterwards.
func containerAction(
	version string,
	fn func(ctx context.Context, cmd *cli.Command, container *app.Container) error,
) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		container := app.NewContainer(config.Load()).WithVersion(version)
		defer func() { _ = container.Shutdown(ctx) }()
		return fn(ctx, cmd, container)
	}
}

func formatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Value:   "text",
		Usage:   "Output format: 'text' or 'json'",
	}
}

func actorFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "actor",
		Aliases:  []string{"a"},
		Required: true,
		Usage:    "Actor the operation is performed and audited as (e.g., uaa-client:ops)",
	}
}
