// Package portfolio derives filtered views and statistics from a property collection.
package portfolio

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/rentbook/internal/property"
)

// PaymentFilter narrows a collection by paid status.
type PaymentFilter string

const (
	FilterAll    PaymentFilter = "all"
	FilterPaid   PaymentFilter = "paid"
	FilterUnpaid PaymentFilter = "unpaid"
)

// ParsePaymentFilter maps user text to a filter. Empty text means all.
func ParsePaymentFilter(text string) (PaymentFilter, error) {
	switch f := PaymentFilter(strings.ToLower(strings.TrimSpace(text))); f {
	case "", FilterAll:
		return FilterAll, nil
	case FilterPaid, FilterUnpaid:
		return f, nil
	}
	return "", fmt.Errorf("unknown payment filter %q (want all, paid or unpaid)", text)
}

func (f PaymentFilter) matches(p property.Property) bool {
	switch f {
	case FilterPaid:
		return p.IsPaid
	case FilterUnpaid:
		return !p.IsPaid
	}
	return true
}

// Filter returns the properties whose apartment name, house number or tenant
// name contains query (case-insensitive) and that pass f. Order is preserved.
func Filter(props []property.Property, query string, f PaymentFilter) []property.Property {
	q := strings.ToLower(query)
	out := make([]property.Property, 0, len(props))
	for _, p := range props {
		if !f.matches(p) {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(p.ApartmentName), q) &&
			!strings.Contains(strings.ToLower(p.HouseNumber), q) &&
			!strings.Contains(strings.ToLower(p.TenantName), q) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Summary holds portfolio totals.
type Summary struct {
	Count            int             `json:"count"`
	UnpaidCount      int             `json:"unpaid_count"`
	TotalRent        decimal.Decimal `json:"total_rent"`
	TotalCollected   decimal.Decimal `json:"total_collected"`
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	TotalDebt        decimal.Decimal `json:"total_debt"`
	CollectionRate   decimal.Decimal `json:"collection_rate"`
}

// MarshalJSON writes the collection rate with exactly one decimal place.
func (s Summary) MarshalJSON() ([]byte, error) {
	type summary Summary
	return json.Marshal(struct {
		summary
		CollectionRate string `json:"collection_rate"`
	}{summary(s), s.CollectionRate.StringFixed(1)})
}

var hundred = decimal.NewFromInt(100)

// Summarize computes totals in one pass. Collected counts the full rent of
// every paid property regardless of debt; the rate is a percentage rounded to
// one decimal place and zero when there is no rent.
func Summarize(props []property.Property) Summary {
	s := Summary{
		TotalRent:        decimal.Zero,
		TotalCollected:   decimal.Zero,
		TotalOutstanding: decimal.Zero,
		TotalDebt:        decimal.Zero,
		CollectionRate:   decimal.Zero,
	}

	for _, p := range props {
		s.Count++
		s.TotalRent = s.TotalRent.Add(p.RentAmount)
		s.TotalDebt = s.TotalDebt.Add(p.Debt)
		if p.IsPaid {
			s.TotalCollected = s.TotalCollected.Add(p.RentAmount)
		} else {
			s.UnpaidCount++
			s.TotalOutstanding = s.TotalOutstanding.Add(p.RentAmount)
		}
	}

	if !s.TotalRent.IsZero() {
		s.CollectionRate = s.TotalCollected.Div(s.TotalRent).Mul(hundred).Round(1)
	}
	return s
}

// HistoryEntry is one numbered payment in a history view.
type HistoryEntry struct {
	Number int             `json:"number"`
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// HistoryView is a property's payments newest first with totals.
type HistoryView struct {
	Property  property.Property `json:"property"`
	Payments  []HistoryEntry    `json:"payments"`
	TotalPaid decimal.Decimal   `json:"total_paid"`
	Balance   decimal.Decimal   `json:"balance"`
}

// History orders p's payments newest first and numbers them from the count
// down to 1. Payments on the same date keep their recorded order.
func History(p property.Property) HistoryView {
	n := len(p.PaymentHistory)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return p.PaymentHistory[idx[a]].Date > p.PaymentHistory[idx[b]].Date
	})

	view := HistoryView{
		Property:  p.Clone(),
		Payments:  make([]HistoryEntry, 0, n),
		TotalPaid: decimal.Zero,
		Balance:   p.Debt,
	}
	for i, j := range idx {
		pay := p.PaymentHistory[j]
		view.Payments = append(view.Payments, HistoryEntry{
			Number: n - i,
			Date:   pay.Date,
			Amount: pay.Amount,
		})
		view.TotalPaid = view.TotalPaid.Add(pay.Amount)
	}
	return view
}
