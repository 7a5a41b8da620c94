package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/evcraddock/rentbook/internal/amount"
	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/property"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printProperty prints a single property in text format.
func printProperty(w io.Writer, p property.Property, currency string) {
	fmt.Fprintf(w, "Property %s\n", p.ID)
	fmt.Fprintf(w, "  Apartment: %s\n", p.ApartmentName)
	fmt.Fprintf(w, "  House:     %s\n", p.HouseNumber)
	fmt.Fprintf(w, "  Tenant:    %s\n", p.TenantName)
	fmt.Fprintf(w, "  Phone:     %s\n", p.PhoneNumber)
	fmt.Fprintf(w, "  Rent:      %s\n", amount.Format(p.RentAmount, currency))
	fmt.Fprintf(w, "  Debt:      %s\n", amount.Format(p.Debt, currency))
	fmt.Fprintf(w, "  Status:    %s\n", paidLabel(p.IsPaid))
	fmt.Fprintf(w, "  Payments:  %d\n", len(p.PaymentHistory))
}

// printPropertyTable prints a list of properties as a formatted table.
func printPropertyTable(out io.Writer, props []property.Property, currency string) error {
	if len(props) == 0 {
		fmt.Fprintln(out, "No properties found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintln(w, "ID\tAPARTMENT\tHOUSE\tTENANT\tRENT\tDEBT\tSTATUS"); err != nil {
		return fmt.Errorf("writing table header: %w", err)
	}
	if _, err := fmt.Fprintln(w, "--\t---------\t-----\t------\t----\t----\t------"); err != nil {
		return fmt.Errorf("writing table separator: %w", err)
	}

	for _, p := range props {
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(p.ID),
			truncate(p.ApartmentName, 24),
			p.HouseNumber,
			truncate(p.TenantName, 24),
			amount.Format(p.RentAmount, currency),
			amount.Format(p.Debt, currency),
			paidLabel(p.IsPaid),
		); err != nil {
			return fmt.Errorf("writing table row: %w", err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}

	fmt.Fprintf(out, "\nTotal: %d properties\n", len(props))
	return nil
}

// printSummary prints portfolio statistics in text format.
func printSummary(w io.Writer, s portfolio.Summary, currency string) {
	fmt.Fprintf(w, "Properties:      %d (%d unpaid)\n", s.Count, s.UnpaidCount)
	fmt.Fprintf(w, "Total rent:      %s\n", amount.Format(s.TotalRent, currency))
	fmt.Fprintf(w, "Collected:       %s\n", amount.Format(s.TotalCollected, currency))
	fmt.Fprintf(w, "Outstanding:     %s\n", amount.Format(s.TotalOutstanding, currency))
	fmt.Fprintf(w, "Total debt:      %s\n", amount.Format(s.TotalDebt, currency))
	fmt.Fprintf(w, "Collection rate: %s%%\n", s.CollectionRate.StringFixed(1))
}

// printHistory prints a payment history newest first.
func printHistory(out io.Writer, view portfolio.HistoryView, currency string) error {
	p := view.Property
	fmt.Fprintf(out, "%s %s (%s)\n\n", p.ApartmentName, p.HouseNumber, p.TenantName)

	if len(view.Payments) == 0 {
		fmt.Fprintln(out, "No payments recorded yet.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(w, "#\tDATE\tAMOUNT"); err != nil {
			return fmt.Errorf("writing table header: %w", err)
		}
		for _, e := range view.Payments {
			if _, err := fmt.Fprintf(w, "#%d\t%s\t%s\n", e.Number, e.Date, amount.Format(e.Amount, currency)); err != nil {
				return fmt.Errorf("writing table row: %w", err)
			}
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("flushing table: %w", err)
		}
	}

	fmt.Fprintf(out, "\nTotal paid: %s\n", amount.Format(view.TotalPaid, currency))
	fmt.Fprintf(out, "Balance:    %s\n", amount.Format(view.Balance, currency))
	return nil
}

func paidLabel(paid bool) string {
	if paid {
		return "paid"
	}
	return "unpaid"
}

// shortID shows the first block of a uuid, enough to tell rows apart.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
