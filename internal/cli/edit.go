package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/ledger"
)

func newEditCmd() *cobra.Command {
	var apartment, house, tenant, phone, rent, debt string
	var paid bool

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a property",
		Long: `Overwrite any of a property's fields. Only the flags you pass are changed.
Rent and debt values that are not numbers are stored as 0.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var in ledger.PatchText
			if flags.Changed("apartment") {
				in.ApartmentName = &apartment
			}
			if flags.Changed("house") {
				in.HouseNumber = &house
			}
			if flags.Changed("tenant") {
				in.TenantName = &tenant
			}
			if flags.Changed("phone") {
				in.PhoneNumber = &phone
			}
			if flags.Changed("rent") {
				in.RentAmount = &rent
			}
			if flags.Changed("debt") {
				in.Debt = &debt
			}
			if flags.Changed("paid") {
				in.IsPaid = &paid
			}
			return runEdit(cmd, args[0], in)
		},
	}

	cmd.Flags().StringVar(&apartment, "apartment", "", "apartment or building name")
	cmd.Flags().StringVar(&house, "house", "", "house or unit number")
	cmd.Flags().StringVar(&tenant, "tenant", "", "tenant name")
	cmd.Flags().StringVar(&phone, "phone", "", "tenant phone number")
	cmd.Flags().StringVar(&rent, "rent", "", "monthly rent")
	cmd.Flags().StringVar(&debt, "debt", "", "amount currently owed")
	cmd.Flags().BoolVar(&paid, "paid", false, "paid status")

	return cmd
}

func runEdit(cmd *cobra.Command, arg string, in ledger.PatchText) error {
	patch := ledger.PatchFromText(in)
	if patch.IsEmpty() {
		return errors.New("nothing to change: pass at least one field flag")
	}

	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	id, err := resolveID(book, arg)
	if err != nil {
		return err
	}
	p, ok, err := book.Update(cmd.Context(), id, patch)
	if err != nil {
		return fmt.Errorf("updating property: %w", err)
	}
	if !ok {
		return fmt.Errorf("property %s not found", arg)
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, p)
	}
	fmt.Fprintln(out, "Property updated.")
	printProperty(out, p, getCurrency())
	return nil
}
