package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/email"
	"github.com/evcraddock/rentbook/internal/receipt"
)

func newReceiptCmd() *cobra.Command {
	var asHTML bool
	var out string
	var mailTo []string

	cmd := &cobra.Command{
		Use:   "receipt <id>",
		Short: "Print a payment receipt",
		Long:  "Print a Markdown receipt of a property's payments, or a standalone HTML page with --html. With --email the HTML receipt is mailed using the RB_SMTP_* settings.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceipt(cmd, args[0], asHTML, out, mailTo)
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "render HTML instead of Markdown")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the receipt to this file instead of stdout")
	cmd.Flags().StringSliceVar(&mailTo, "email", nil, "email the receipt to these addresses")

	return cmd
}

func runReceipt(cmd *cobra.Command, arg string, asHTML bool, out string, mailTo []string) error {
	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	id, err := resolveID(book, arg)
	if err != nil {
		return err
	}
	p, ok := book.Get(id)
	if !ok {
		return fmt.Errorf("property %s not found", arg)
	}

	currency := getCurrency()
	now := time.Now()

	if len(mailTo) > 0 {
		html, err := receipt.HTML(p, currency, now)
		if err != nil {
			return fmt.Errorf("rendering receipt: %w", err)
		}
		msg := email.Message{
			To:      mailTo,
			Subject: fmt.Sprintf("Payment receipt - %s %s", p.ApartmentName, p.HouseNumber),
			Body:    html,
			HTML:    true,
		}
		if err := email.Send(smtpConfig(), msg); err != nil {
			return fmt.Errorf("emailing receipt: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Receipt sent to %s\n", strings.Join(mailTo, ", "))
		return nil
	}

	doc := receipt.Markdown(p, currency, now)
	if asHTML {
		if doc, err = receipt.HTML(p, currency, now); err != nil {
			return fmt.Errorf("rendering receipt: %w", err)
		}
	}

	if out == "" {
		_, err := io.WriteString(cmd.OutOrStdout(), doc)
		return err
	}

	if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
		return fmt.Errorf("writing receipt: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Receipt written to %s\n", out)
	return nil
}
