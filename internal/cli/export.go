package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/export"
	"github.com/evcraddock/rentbook/internal/portfolio"
)

func newExportCmd() *cobra.Command {
	var out, search, filter string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export properties to a spreadsheet",
		Long:  "Write the matching properties and the portfolio summary to an .xlsx workbook.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, out, search, filter)
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output .xlsx file (required)")
	cmd.Flags().StringVar(&search, "search", "", "case-insensitive search text")
	cmd.Flags().StringVar(&filter, "filter", "all", "payment status (all|paid|unpaid)")

	return cmd
}

func runExport(cmd *cobra.Command, out, search, filter string) error {
	if out == "" {
		return errors.New("--out is required")
	}
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
	props := portfolio.Filter(all, search, f)
	if err := export.WriteFile(out, props, portfolio.Summarize(all)); err != nil {
		return err
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{
			"path":       out,
			"properties": len(props),
		})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d properties to %s\n", len(props), out)
	return nil
}
