package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"rivalwatch/internal/app"
	"rivalwatch/internal/config"
	"rivalwatch/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:           "rivalwatch",
	Short:         "Competitor digest collector and offline-first cache server",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func newApplication() (*app.Application, context.Context, context.CancelFunc) {
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return app.New(cfg, logger), ctx, stop
}

func registerCommands() {
	var loop bool

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "Gather competitor mentions and publish a digest artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, ctx, stop := newApplication()
			defer stop()
			return application.Collect(ctx, loop)
		},
	}
	collectCmd.Flags().BoolVar(&loop, "loop", false, "keep collecting on the configured interval")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve digests offline-first with cached shell resources",
		RunE: func(cmd *cobra.Command, args []string) error {
			application, ctx, stop := newApplication()
			defer stop()
			return application.Serve(ctx)
		},
	}

	rootCmd.AddCommand(collectCmd, serveCmd)
}

func main() {
	// .env is optional; absence is not an error.
	_ = godotenv.Load()

	registerCommands()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
