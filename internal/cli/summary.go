package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/web"
)

func newSummaryCmd() *cobra.Command {
	var search, filter string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show portfolio statistics",
		Long: `Show property count, rent, collected and outstanding totals, debt and the
collection rate for the whole portfolio. --search and --filter add a table of the
matching properties below the statistics; they never narrow the statistics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, search, filter)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "list properties matching this text")
	cmd.Flags().StringVar(&filter, "filter", "all", "list properties by payment status (all|paid|unpaid)")

	return cmd
}

func runSummary(cmd *cobra.Command, search, filter string) error {
	f, err := portfolio.ParsePaymentFilter(filter)
	if err != nil {
		return err
	}

	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	all := book.Properties()
	resp := web.SummaryResponse{
		Summary:    portfolio.Summarize(all),
		Properties: portfolio.Filter(all, search, f),
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, resp)
	}

	currency := getCurrency()
	printSummary(out, resp.Summary, currency)
	if search == "" && f == portfolio.FilterAll {
		return nil
	}
	fmt.Fprintln(out)
	return printPropertyTable(out, resp.Properties, currency)
}
