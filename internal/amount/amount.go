// Package amount parses and formats monetary values.
//
// Two parsing policies exist side by side. Parse is strict and is used where
// bad input must be rejected (creating a property, recording a payment).
// ParseOrZero is lenient and coerces anything unparseable to zero, which is
// how edited rent and debt fields have always behaved.
package amount

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is used for display when no currency is configured.
const DefaultCurrency = "KES"

var (
	// ErrEmpty is returned by Parse for blank input.
	ErrEmpty = errors.New("amount is empty")
	// ErrNotNumeric is returned by Parse for input that is not a decimal number.
	ErrNotNumeric = errors.New("amount is not a number")
)

// Parse reads a decimal amount from user text.
func Parse(text string) (decimal.Decimal, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return decimal.Zero, ErrEmpty
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNotNumeric, text)
	}
	return d, nil
}

// ParseOrZero reads a decimal amount from user text, returning zero when the
// text is not a number.
func ParseOrZero(text string) decimal.Decimal {
	d, err := Parse(text)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Format renders value in the given ISO currency, e.g. "KSh1,500.00".
// An empty or unknown code falls back to DefaultCurrency.
func Format(value decimal.Decimal, code string) string {
	cur := currency(code)
	minor := value.Shift(int32(cur.Fraction)).Round(0).IntPart()
	return cur.Formatter().Format(minor)
}

func currency(code string) money.Currency {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" || money.GetCurrency(code) == nil {
		code = DefaultCurrency
	}
	// money.New guarantees a non-nil currency.
	return *money.New(0, code).Currency()
}
