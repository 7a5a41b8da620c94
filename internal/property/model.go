// Package property provides the rental property domain model and data access.
package property

import (
	"github.com/shopspring/decimal"
)

// DateFormat is the calendar date layout used for payment dates.
const DateFormat = "2006-01-02"

// Payment is one recorded payment against a property.
type Payment struct {
	Date   string          `json:"date"` // YYYY-MM-DD
	Amount decimal.Decimal `json:"amount"`
}

// Property is a rented unit with its tenant and ledger state.
//
// IsPaid is a display flag the landlord can override. It is set from Debt when
// a payment is recorded but is otherwise independent of it.
type Property struct {
	ID             string          `json:"id"`
	ApartmentName  string          `json:"apartment_name"`
	HouseNumber    string          `json:"house_number"`
	TenantName     string          `json:"tenant_name"`
	PhoneNumber    string          `json:"phone_number"`
	RentAmount     decimal.Decimal `json:"rent_amount"`
	Debt           decimal.Decimal `json:"debt"`
	IsPaid         bool            `json:"is_paid"`
	PaymentHistory []Payment       `json:"payment_history"`
}

// Clone returns a copy of p that shares no history backing array with it.
func (p Property) Clone() Property {
	c := p
	c.PaymentHistory = make([]Payment, len(p.PaymentHistory))
	copy(c.PaymentHistory, p.PaymentHistory)
	return c
}

// Row is the flattened record exchanged with a Store. Every field is
// optional: on insert and update a nil field means "not provided".
type Row struct {
	ID             string           `json:"id,omitempty"`
	ApartmentName  *string          `json:"apartment_name,omitempty"`
	HouseNumber    *string          `json:"house_number,omitempty"`
	TenantName     *string          `json:"tenant_name,omitempty"`
	PhoneNumber    *string          `json:"phone_number,omitempty"`
	RentAmount     *decimal.Decimal `json:"rent_amount,omitempty"`
	Debt           *decimal.Decimal `json:"debt,omitempty"`
	IsPaid         *bool            `json:"is_paid,omitempty"`
	PaymentHistory []Payment        `json:"payment_history,omitempty"`
}

// FromRow maps a stored row to a Property. Missing fields become zero values.
func FromRow(r Row) Property {
	p := Property{
		ID:             r.ID,
		ApartmentName:  deref(r.ApartmentName),
		HouseNumber:    deref(r.HouseNumber),
		TenantName:     deref(r.TenantName),
		PhoneNumber:    deref(r.PhoneNumber),
		RentAmount:     decimal.Zero,
		Debt:           decimal.Zero,
		PaymentHistory: []Payment{},
	}
	if r.RentAmount != nil {
		p.RentAmount = *r.RentAmount
	}
	if r.Debt != nil {
		p.Debt = *r.Debt
	}
	if r.IsPaid != nil {
		p.IsPaid = *r.IsPaid
	}
	if len(r.PaymentHistory) > 0 {
		p.PaymentHistory = append(p.PaymentHistory, r.PaymentHistory...)
	}
	return p
}

// ToRow maps a Property to a row with every field set.
func ToRow(p Property) Row {
	history := make([]Payment, len(p.PaymentHistory))
	copy(history, p.PaymentHistory)
	return Row{
		ID:             p.ID,
		ApartmentName:  ptr(p.ApartmentName),
		HouseNumber:    ptr(p.HouseNumber),
		TenantName:     ptr(p.TenantName),
		PhoneNumber:    ptr(p.PhoneNumber),
		RentAmount:     ptr(p.RentAmount),
		Debt:           ptr(p.Debt),
		IsPaid:         ptr(p.IsPaid),
		PaymentHistory: history,
	}
}

// Patch is a partial overwrite of a property's editable fields.
// Nil fields are left unchanged. The id and payment history are not editable.
type Patch struct {
	ApartmentName *string
	HouseNumber   *string
	TenantName    *string
	PhoneNumber   *string
	RentAmount    *decimal.Decimal
	Debt          *decimal.Decimal
	IsPaid        *bool
}

// IsEmpty reports whether the patch changes nothing.
func (pt Patch) IsEmpty() bool {
	return pt.ApartmentName == nil && pt.HouseNumber == nil && pt.TenantName == nil &&
		pt.PhoneNumber == nil && pt.RentAmount == nil && pt.Debt == nil && pt.IsPaid == nil
}

// Row returns the partial row carrying only the patched fields.
func (pt Patch) Row() Row {
	return Row{
		ApartmentName: pt.ApartmentName,
		HouseNumber:   pt.HouseNumber,
		TenantName:    pt.TenantName,
		PhoneNumber:   pt.PhoneNumber,
		RentAmount:    pt.RentAmount,
		Debt:          pt.Debt,
		IsPaid:        pt.IsPaid,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr[T any](v T) *T {
	return &v
}
