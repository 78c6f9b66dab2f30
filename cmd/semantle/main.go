package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/semantle/internal/version"
)

func main() {
	root := &cobra.Command{
		Use:           "semantle",
		Short:         "Daily semantic word game server and admin tools",
		Version:       version.Version + " (" + version.Commit + ")",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		serveCmd(),
		setSecretCmd(),
		importVectorsCmd(),
		dayStatsCmd(),
		rankingsCmd(),
		repairRankingsCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
