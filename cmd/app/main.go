// Command app runs the credential store server and its operational commands.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:     "credstore",
		Usage:    "Versioned credential store with per-credential access control and audit trail",
		Version:  version,
		Commands: getCommands(version),
	}
}

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		os.Exit(1)
	}
}
