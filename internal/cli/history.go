package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/portfolio"
)

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a property's payment history",
		Long:  "List payments newest first with totals paid and the balance still owed.",
		Args:  cobra.ExactArgs(1),
		RunE:  runHistory,
	}
}

func runHistory(cmd *cobra.Command, args []string) error {
	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	id, err := resolveID(book, args[0])
	if err != nil {
		return err
	}
	p, ok := book.Get(id)
	if !ok {
		return fmt.Errorf("property %s not found", args[0])
	}

	view := portfolio.History(p)
	if isJSON() {
		return printJSON(cmd.OutOrStdout(), view)
	}
	return printHistory(cmd.OutOrStdout(), view, getCurrency())
}
