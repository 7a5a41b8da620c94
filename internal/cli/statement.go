package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentbook/internal/email"
)

func newStatementCmd() *cobra.Command {
	var mailTo []string

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Print or email the outstanding rent statement",
		Long:  "List every unpaid property with what it owes, followed by portfolio totals. With --email the statement is mailed using the RB_SMTP_* settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatement(cmd, mailTo)
		},
	}

	cmd.Flags().StringSliceVar(&mailTo, "email", nil, "email the statement to these addresses")

	return cmd
}

func runStatement(cmd *cobra.Command, mailTo []string) error {
	book, release, err := openBook(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	now := time.Now()
	body := email.FormatStatement(book.Properties(), getCurrency(), now)

	if len(mailTo) == 0 {
		_, err := io.WriteString(cmd.OutOrStdout(), body)
		return err
	}

	msg := email.Message{
		To:      mailTo,
		Subject: "Rent statement " + now.Format("2006-01-02"),
		Body:    body,
	}
	if err := email.Send(smtpConfig(), msg); err != nil {
		return fmt.Errorf("emailing statement: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Statement sent to %s\n", strings.Join(mailTo, ", "))
	return nil
}
