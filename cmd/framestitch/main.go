// Package main provides the CLI entry point for framestitch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Fprintln(c.App.Writer, l10n.F("framestitch version %s", c.App.Version))
	}

	return &cli.App{
		Name:    "framestitch",
		Usage:   l10n.T("Serve frames from many videos as one"),
		Version: version,
		Description: l10n.T("framestitch concatenates source videos without re-encoding and " +
			"decodes frames from the joined stream with a pool of parallel decoders."),
		Commands: []*cli.Command{
			extractCommand(),
			sheetCommand(),
			probeCommand(),
			synthCommand(),
		},
	}
}
