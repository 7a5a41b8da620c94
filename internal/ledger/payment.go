package ledger

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/rentbook/internal/property"
)

// Payment amount keywords accepted in place of a number.
const (
	PayRent     = "rent"
	PayHalfRent = "half"
	PayDebt     = "debt"
)

var two = decimal.NewFromInt(2)

// Suggestion is a ready-made payment amount for a property.
type Suggestion struct {
	Key      string          `json:"key"`
	Label    string          `json:"label"`
	Amount   decimal.Decimal `json:"amount"`
	Disabled bool            `json:"disabled"`
}

// PaymentPreview is the outcome of a payment that has not been recorded.
type PaymentPreview struct {
	ID        string          `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Debt      decimal.Decimal `json:"debt"`
	NewDebt   decimal.Decimal `json:"new_debt"`
	PaidAfter bool            `json:"paid_after"`
}

// SuggestedPayments returns the full rent, half the rent and the full debt.
// Paying the debt is disabled when nothing is owed.
func SuggestedPayments(p property.Property) []Suggestion {
	return []Suggestion{
		{Key: PayRent, Label: "Full Rent", Amount: p.RentAmount},
		{Key: PayHalfRent, Label: "Half Rent", Amount: p.RentAmount.Div(two)},
		{Key: PayDebt, Label: "Full Debt", Amount: p.Debt, Disabled: p.Debt.IsZero()},
	}
}

// IsPaymentKeyword reports whether text names a suggested amount.
func IsPaymentKeyword(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case PayRent, PayHalfRent, PayDebt:
		return true
	}
	return false
}

// ResolvePaymentAmount reads a payment amount for p from a number or a
// keyword (rent, half, debt).
func ResolvePaymentAmount(p property.Property, text string) (decimal.Decimal, error) {
	if !IsPaymentKeyword(text) {
		return ParsePaymentAmount(text)
	}

	key := strings.ToLower(strings.TrimSpace(text))
	for _, s := range SuggestedPayments(p) {
		if s.Key != key {
			continue
		}
		if s.Disabled {
			return decimal.Zero, &ValidationError{Field: "amount", Reason: "nothing is owed"}
		}
		if !s.Amount.IsPositive() {
			return decimal.Zero, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
		}
		return s.Amount, nil
	}
	return decimal.Zero, &ValidationError{Field: "amount", Reason: "unknown keyword " + key}
}

// DebtAfter returns what p owes after paying amt, never below zero.
func DebtAfter(p property.Property, amt decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, p.Debt.Sub(amt))
}

// PreviewPayment computes the result of paying amt without recording it.
func (e *Engine) PreviewPayment(p property.Property, amt decimal.Decimal) (PaymentPreview, error) {
	next, err := e.RecordPayment(p, amt)
	if err != nil {
		return PaymentPreview{}, err
	}
	return PaymentPreview{
		ID:        p.ID,
		Amount:    amt,
		Debt:      p.Debt,
		NewDebt:   next.Debt,
		PaidAfter: next.IsPaid,
	}, nil
}
