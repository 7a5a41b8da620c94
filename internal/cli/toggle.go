package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a property's paid status",
		Long:  "Mark a paid property unpaid or an unpaid property paid. Debt and payment history are not changed.",
		Args:  cobra.ExactArgs(1),
		RunE:  runToggle,
	}
}

func runToggle(cmd *cobra.Command, args []string) error {
	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	id, err := resolveID(book, args[0])
	if err != nil {
		return err
	}
	p, ok, err := book.TogglePaid(cmd.Context(), id)
	if err != nil {
		return fmt.Errorf("toggling paid status: %w", err)
	}
	if !ok {
		return fmt.Errorf("property %s not found", args[0])
	}

	if isJSON() {
		return printJSON(cmd.OutOrStdout(), p)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s is now %s.\n", p.ApartmentName, p.HouseNumber, paidLabel(p.IsPaid))
	return nil
}
