package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/portfolio"
)

func newListCmd() *cobra.Command {
	var search, filter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List properties",
		Long:  "List properties, optionally matching a search term against apartment, house number or tenant, and filtered by paid status.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, search, filter)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "case-insensitive search text")
	cmd.Flags().StringVar(&filter, "filter", "all", "payment status (all|paid|unpaid)")

	return cmd
}

func runList(cmd *cobra.Command, search, filter string) error {
	f, err := portfolio.ParsePaymentFilter(filter)
	if err != nil {
		return err
	}

	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	props := portfolio.Filter(book.Properties(), search, f)

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), props)
	}
	return printPropertyTable(cmd.OutOrStdout(), props, getCurrency())
}
