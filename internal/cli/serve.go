package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evcraddock/rentbook/internal/auth"
	"github.com/evcraddock/rentbook/internal/logging"
	"github.com/evcraddock/rentbook/internal/property"
	"github.com/evcraddock/rentbook/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Serve the property store and ledger over HTTP. Requests under /api/ need an API key (see 'rb keys create').",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, port int) error {
	if flagServer != "" {
		return fmt.Errorf("serve uses a local database; drop --server")
	}

	logger, err := logging.FromEnv("info")
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	srv := web.NewServer(
		property.NewRepository(database),
		auth.NewAPIKeyStore(database),
		logger,
		web.Options{AllowedOrigins: corsOrigins(), Currency: getCurrency()},
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, port); err != nil {
		logger.Error("server stopped", zap.Error(err))
		return err
	}
	return nil
}
