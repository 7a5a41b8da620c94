package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/amount"
	"github.com/evcraddock/rentbook/internal/ledger"
)

func newPayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pay <id> <amount|rent|half|debt>",
		Short: "Record a payment",
		Long: `Record a payment dated today. The debt is reduced by the amount, never below zero, and the property is marked paid once nothing is owed.

The amount may be a number or one of:
  rent   the full monthly rent
  half   half of the monthly rent
  debt   everything currently owed

With --dry-run the new debt is shown and nothing is saved.`,
		Args: cobra.ExactArgs(2),
		RunE: runPay,
	}
	cmd.Flags().Bool("dry-run", false, "Show the resulting debt without recording the payment")
	return cmd
}

func runPay(cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	// Numbers are checked before touching the database.
	if !ledger.IsPaymentKeyword(args[1]) {
		if _, err := ledger.ParsePaymentAmount(args[1]); err != nil {
			return err
		}
	}

	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	id, err := resolveID(book, args[0])
	if err != nil {
		return err
	}
	current, ok := book.Get(id)
	if !ok {
		return fmt.Errorf("property %s not found", args[0])
	}
	amt, err := ledger.ResolvePaymentAmount(current, args[1])
	if err != nil {
		return err
	}

	if dryRun {
		preview, _, err := book.PreviewPayment(id, amt)
		if err != nil {
			return err
		}
		return printPaymentPreview(cmd, current.TenantName, preview)
	}

	p, ok, err := book.RecordPayment(cmd.Context(), id, amt)
	if err != nil {
		return fmt.Errorf("recording payment: %w", err)
	}
	if !ok {
		return fmt.Errorf("property %s not found", args[0])
	}

	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, p)
	}

	currency := getCurrency()
	fmt.Fprintf(out, "Recorded %s from %s.\n", amount.Format(amt, currency), p.TenantName)
	fmt.Fprintf(out, "Remaining debt: %s (%s)\n", amount.Format(p.Debt, currency), paidLabel(p.IsPaid))
	return nil
}

func printPaymentPreview(cmd *cobra.Command, tenant string, preview ledger.PaymentPreview) error {
	out := cmd.OutOrStdout()
	if isJSON() {
		return printJSON(out, preview)
	}

	currency := getCurrency()
	fmt.Fprintf(out, "Dry run, nothing saved: %s from %s.\n", amount.Format(preview.Amount, currency), tenant)
	fmt.Fprintf(out, "Current debt: %s\n", amount.Format(preview.Debt, currency))
	fmt.Fprintf(out, "New debt: %s (%s)\n", amount.Format(preview.NewDebt, currency), paidLabel(preview.PaidAfter))
	return nil
}
