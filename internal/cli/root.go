// Package cli defines the cobra command tree for rentbook.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evcraddock/rentbook/internal/client"
	"github.com/evcraddock/rentbook/internal/db"
	"github.com/evcraddock/rentbook/internal/ledger"
	"github.com/evcraddock/rentbook/internal/logging"
	"github.com/evcraddock/rentbook/internal/property"
)

var (
	flagFormat string
	flagDB     string
	flagServer string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rb",
		Short:         "Track rent, tenants and payments",
		Long:          "A rental property ledger. Record tenants, rent and payments for every unit, see what is outstanding, and print receipts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().StringVar(&flagDB, "db", "", "SQLite path or postgres:// URL (default: ~/.config/rb/rentbook.db)")
	root.PersistentFlags().StringVar(&flagServer, "server", "", "use the rentbook server at this URL instead of a local database")

	root.AddCommand(
		newAddCmd(),
		newListCmd(),
		newShowCmd(),
		newEditCmd(),
		newPayCmd(),
		newToggleCmd(),
		newRemoveCmd(),
		newSummaryCmd(),
		newHistoryCmd(),
		newReceiptCmd(),
		newStatementCmd(),
		newExportCmd(),
		newServeCmd(),
		newKeysCmd(),
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// openDB opens the database named by --db, RB_DATABASE_URL, the config
// file, or the default path, in that order.
func openDB() (*db.DB, error) {
	target, err := databaseTarget()
	if err != nil {
		return nil, err
	}
	return db.OpenTarget(target)
}

// openStore returns the property store for this invocation and a func that
// releases it.
func openStore() (property.Store, func(), error) {
	if flagServer != "" {
		return client.New(flagServer, getAPIKey()), func() {}, nil
	}

	database, err := openDB()
	if err != nil {
		return nil, nil, err
	}
	return property.NewRepository(database), func() { closeDB(database) }, nil
}

// openBook loads the property collection from the store.
func openBook(ctx context.Context) (*ledger.Book, func(), error) {
	store, release, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	book := ledger.NewBook(store, ledger.NewEngine(), newLogger("warn"))
	if err := book.Load(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("loading properties: %w", err)
	}
	return book, release, nil
}

// newLogger builds a logger from RB_LOG_LEVEL/RB_LOG_FORMAT, falling back to
// a no-op logger if the settings are unusable.
func newLogger(defaultLevel string) *zap.Logger {
	logger, err := logging.FromEnv(defaultLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		return zap.NewNop()
	}
	return logger
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}

// closeDB closes the database, logging any error to stderr.
func closeDB(database *db.DB) {
	if err := database.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: closing database: %v\n", err)
	}
}
