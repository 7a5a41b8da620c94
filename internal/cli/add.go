package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/ledger"
)

func newAddCmd() *cobra.Command {
	var in ledger.NewProperty

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a property",
		Long:  "Add a rented unit with its tenant, monthly rent and opening debt.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, in)
		},
	}

	cmd.Flags().StringVar(&in.ApartmentName, "apartment", "", "apartment or building name")
	cmd.Flags().StringVar(&in.HouseNumber, "house", "", "house or unit number")
	cmd.Flags().StringVar(&in.TenantName, "tenant", "", "tenant name")
	cmd.Flags().StringVar(&in.PhoneNumber, "phone", "", "tenant phone number")
	cmd.Flags().StringVar(&in.RentAmount, "rent", "", "monthly rent")
	cmd.Flags().StringVar(&in.Debt, "debt", "0", "amount currently owed")
	cmd.Flags().BoolVar(&in.IsPaid, "paid", false, "mark the property as paid")

	return cmd
}

func runAdd(cmd *cobra.Command, in ledger.NewProperty) error {
	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	p, err := book.Add(cmd.Context(), in)
	if err != nil {
		return fmt.Errorf("adding property: %w", err)
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, p)
	}

	fmt.Fprintln(out, "Property added.")
	printProperty(out, p, getCurrency())
	return nil
}
