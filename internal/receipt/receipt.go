// Package receipt renders a property's payment history as a printable receipt.
package receipt

import (
	"bytes"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/evcraddock/rentbook/internal/amount"
	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/property"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders the receipt for p. Amounts are shown in currency and
// generated is printed as the issue date.
func Markdown(p property.Property, currency string, generated time.Time) string {
	view := portfolio.History(p)

	var b strings.Builder
	fmt.Fprintf(&b, "# Payment Receipt\n\n")
	fmt.Fprintf(&b, "Generated on %s\n\n", generated.Format(property.DateFormat))

	fmt.Fprintln(&b, "## Property")
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, "| | |")
	fmt.Fprintln(&b, "|:---|:---|")
	fmt.Fprintf(&b, "| Apartment | %s |\n", cell(p.ApartmentName))
	fmt.Fprintf(&b, "| House | %s |\n", cell(p.HouseNumber))
	fmt.Fprintf(&b, "| Tenant | %s |\n", cell(p.TenantName))
	fmt.Fprintf(&b, "| Phone | %s |\n", cell(p.PhoneNumber))
	fmt.Fprintf(&b, "| Monthly rent | %s |\n", amount.Format(p.RentAmount, currency))
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Payment History")
	fmt.Fprintln(&b)
	if len(view.Payments) == 0 {
		fmt.Fprintln(&b, "No payments recorded yet.")
	} else {
		fmt.Fprintln(&b, "| Payment # | Date | Amount |")
		fmt.Fprintln(&b, "|:---|:---|---:|")
		for _, e := range view.Payments {
			fmt.Fprintf(&b, "| #%d | %s | %s |\n", e.Number, e.Date, amount.Format(e.Amount, currency))
		}
	}
	fmt.Fprintln(&b)

	fmt.Fprintln(&b, "## Totals")
	fmt.Fprintln(&b)
	fmt.Fprintf(&b, "- **Total paid:** %s\n", amount.Format(view.TotalPaid, currency))
	fmt.Fprintf(&b, "- **Balance owed:** %s\n", amount.Format(view.Balance, currency))
	fmt.Fprintf(&b, "- **Status:** %s\n", status(p.IsPaid))

	return b.String()
}

// HTML renders the receipt as a standalone HTML page.
func HTML(p property.Property, currency string, generated time.Time) (string, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(p, currency, generated)), &body); err != nil {
		return "", fmt.Errorf("rendering receipt: %w", err)
	}

	title := html.EscapeString(fmt.Sprintf("Receipt - %s %s", p.ApartmentName, p.HouseNumber))

	var b strings.Builder
	fmt.Fprintln(&b, "<!DOCTYPE html>")
	fmt.Fprintln(&b, "<html>")
	fmt.Fprintln(&b, "<head>")
	fmt.Fprintln(&b, `<meta charset="utf-8">`)
	fmt.Fprintf(&b, "<title>%s</title>\n", title)
	fmt.Fprintln(&b, "<style>"+style+"</style>")
	fmt.Fprintln(&b, "</head>")
	fmt.Fprintln(&b, "<body>")
	b.Write(body.Bytes())
	fmt.Fprintln(&b, "</body>")
	fmt.Fprintln(&b, "</html>")
	return b.String(), nil
}

const style = `body{font-family:sans-serif;max-width:800px;margin:40px auto;color:#111}` +
	`h1{color:#8b5cf6;border-bottom:3px solid #8b5cf6}` +
	`table{width:100%;border-collapse:collapse}` +
	`th{background:#8b5cf6;color:#fff;text-align:left;padding:8px}` +
	`td{padding:8px;border-bottom:1px solid #e5e7eb}`

func status(paid bool) string {
	if paid {
		return "Paid"
	}
	return "Unpaid"
}

// cell keeps user text from breaking the table layout.
func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}
