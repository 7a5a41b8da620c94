// Package email formats rent statements and sends them, and payment
// receipts, over SMTP.
package email

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/evcraddock/rentbook/internal/amount"
	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/property"
)

// SMTPConfig holds SMTP connection settings.
type SMTPConfig struct {
	Host string
	Port string
	User string
	Pass string
	From string
}

// IsConfigured returns true if SMTP settings are present.
func (c SMTPConfig) IsConfigured() bool {
	return c.Host != "" && c.From != ""
}

// Message is a single email. HTML selects a text/html body.
type Message struct {
	To      []string
	Subject string
	Body    string
	HTML    bool
}

// FormatStatement builds a plain-text statement of every unpaid property and
// the portfolio totals.
func FormatStatement(props []property.Property, currency string, asOf time.Time) string {
	var buf bytes.Buffer

	unpaid := portfolio.Filter(props, "", portfolio.FilterUnpaid)
	s := portfolio.Summarize(props)

	fmt.Fprintf(&buf, "Rent statement for %s\n\n", asOf.Format("2 January 2006"))

	if len(unpaid) == 0 {
		fmt.Fprintln(&buf, "Every property is paid up.")
	} else {
		fmt.Fprintf(&buf, "%d of %d properties are unpaid:\n\n", len(unpaid), s.Count)
		for i, p := range unpaid {
			fmt.Fprintf(&buf, "%d. %s %s - %s", i+1, p.ApartmentName, p.HouseNumber, p.TenantName)
			if p.PhoneNumber != "" {
				fmt.Fprintf(&buf, " (%s)", p.PhoneNumber)
			}
			fmt.Fprintln(&buf)
			fmt.Fprintf(&buf, "   Rent %s | Owes %s\n",
				amount.Format(p.RentAmount, currency),
				amount.Format(p.Debt, currency),
			)
			if n := len(p.PaymentHistory); n > 0 {
				last := p.PaymentHistory[n-1]
				fmt.Fprintf(&buf, "   Last payment %s on %s\n", amount.Format(last.Amount, currency), last.Date)
			}
		}
	}

	fmt.Fprintln(&buf)
	fmt.Fprintf(&buf, "Collected: %s of %s (%s%%)\n",
		amount.Format(s.TotalCollected, currency),
		amount.Format(s.TotalRent, currency),
		s.CollectionRate.StringFixed(1),
	)
	fmt.Fprintf(&buf, "Total debt: %s\n", amount.Format(s.TotalDebt, currency))

	return buf.String()
}

// Send sends an email via SMTP.
// Supports both port 465 (implicit TLS) and port 587 (STARTTLS).
func Send(cfg SMTPConfig, m Message) error {
	if !cfg.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}
	if len(m.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	msg := compose(cfg.From, m)
	addr := cfg.Host + ":" + cfg.Port

	if cfg.Port == "465" {
		return sendImplicitTLS(cfg, addr, m.To, msg)
	}
	return sendSTARTTLS(cfg, addr, m.To, msg)
}

func compose(from string, m Message) string {
	contentType := "text/plain"
	if m.HTML {
		contentType = "text/html"
	}
	return fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: %s; charset=utf-8\r\n\r\n%s",
		from,
		strings.Join(m.To, ", "),
		m.Subject,
		contentType,
		m.Body,
	)
}

// sendImplicitTLS connects over TLS directly (port 465/SMTPS).
func sendImplicitTLS(cfg SMTPConfig, addr string, to []string, msg string) (err error) {
	tlsCfg := &tls.Config{ServerName: cfg.Host}
	conn, err := tls.Dial("tcp", addr, tlsCfg)
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}

	c, err := smtp.NewClient(conn, cfg.Host)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	defer func() {
		if quitErr := c.Quit(); quitErr != nil && err == nil {
			err = fmt.Errorf("quit: %w", quitErr)
		}
	}()

	if cfg.User != "" {
		auth := smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
		if err := c.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := c.Mail(cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close data: %w", err)
	}

	return nil
}

// sendSTARTTLS connects plain then upgrades to TLS (port 587).
func sendSTARTTLS(cfg SMTPConfig, addr string, to []string, msg string) error {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Pass, cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, cfg.From, to, []byte(msg)); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
