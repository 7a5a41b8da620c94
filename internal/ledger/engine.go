// Package ledger computes how a property's debt, paid flag and payment history
// change, and keeps the property collection in step with the store.
package ledger

import (
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/evcraddock/rentbook/internal/amount"
	"github.com/evcraddock/rentbook/internal/property"
)

var validate = validator.New()

// NewProperty is the input for creating a property. Amounts are the text the
// user entered and are parsed strictly.
type NewProperty struct {
	ApartmentName string `json:"apartment_name" validate:"required"`
	HouseNumber   string `json:"house_number" validate:"required"`
	TenantName    string `json:"tenant_name" validate:"required"`
	PhoneNumber   string `json:"phone_number" validate:"required"`
	RentAmount    string `json:"rent_amount"`
	Debt          string `json:"debt"`
	IsPaid        bool   `json:"is_paid"`
}

// PatchText is edit input as entered text. Nil fields are left unchanged.
type PatchText struct {
	ApartmentName *string
	HouseNumber   *string
	TenantName    *string
	PhoneNumber   *string
	RentAmount    *string
	Debt          *string
	IsPaid        *bool
}

// Engine computes next property states. Now supplies the payment date.
type Engine struct {
	Now func() time.Time
}

// NewEngine returns an engine on the wall clock.
func NewEngine() *Engine {
	return &Engine{Now: time.Now}
}

// Create validates input and returns the property to persist.
// The id is left empty for the store to assign.
func (e *Engine) Create(in NewProperty) (property.Property, error) {
	in.ApartmentName = strings.TrimSpace(in.ApartmentName)
	in.HouseNumber = strings.TrimSpace(in.HouseNumber)
	in.TenantName = strings.TrimSpace(in.TenantName)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	if err := validate.Struct(in); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return property.Property{}, &ValidationError{Field: fieldName(fieldErrs[0].Field()), Reason: "is required"}
		}
		return property.Property{}, &ValidationError{Field: "property", Reason: err.Error()}
	}

	rent, err := nonNegative("rent_amount", in.RentAmount)
	if err != nil {
		return property.Property{}, err
	}
	debt, err := nonNegative("debt", in.Debt)
	if err != nil {
		return property.Property{}, err
	}

	return property.Property{
		ApartmentName:  in.ApartmentName,
		HouseNumber:    in.HouseNumber,
		TenantName:     in.TenantName,
		PhoneNumber:    in.PhoneNumber,
		RentAmount:     rent,
		Debt:           debt,
		IsPaid:         in.IsPaid,
		PaymentHistory: []property.Payment{},
	}, nil
}

// Apply overwrites the patched fields of p. It never touches the id or history.
func (e *Engine) Apply(p property.Property, pt property.Patch) property.Property {
	next := p.Clone()
	if pt.ApartmentName != nil {
		next.ApartmentName = *pt.ApartmentName
	}
	if pt.HouseNumber != nil {
		next.HouseNumber = *pt.HouseNumber
	}
	if pt.TenantName != nil {
		next.TenantName = *pt.TenantName
	}
	if pt.PhoneNumber != nil {
		next.PhoneNumber = *pt.PhoneNumber
	}
	if pt.RentAmount != nil {
		next.RentAmount = *pt.RentAmount
	}
	if pt.Debt != nil {
		next.Debt = *pt.Debt
	}
	if pt.IsPaid != nil {
		next.IsPaid = *pt.IsPaid
	}
	return next
}

// RecordPayment applies a payment of amt to p. The debt never goes below
// zero, and the paid flag follows the resulting debt.
func (e *Engine) RecordPayment(p property.Property, amt decimal.Decimal) (property.Property, error) {
	if !amt.IsPositive() {
		return property.Property{}, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}

	next := p.Clone()
	next.Debt = DebtAfter(p, amt)
	next.PaymentHistory = append(next.PaymentHistory, property.Payment{
		Date:   e.Now().Format(property.DateFormat),
		Amount: amt,
	})
	next.IsPaid = next.Debt.IsZero()
	return next, nil
}

// TogglePaid flips the paid flag and nothing else. The result may show a
// property as paid while it still carries debt.
func (e *Engine) TogglePaid(p property.Property) property.Property {
	next := p.Clone()
	next.IsPaid = !p.IsPaid
	return next
}

// ParsePaymentAmount reads a payment amount from user text.
func ParsePaymentAmount(text string) (decimal.Decimal, error) {
	amt, err := amount.Parse(text)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: err.Error()}
	}
	if !amt.IsPositive() {
		return decimal.Zero, &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	return amt, nil
}

// PatchFromText converts edit input to a patch. Unparseable amounts become zero.
func PatchFromText(in PatchText) property.Patch {
	pt := property.Patch{
		ApartmentName: in.ApartmentName,
		HouseNumber:   in.HouseNumber,
		TenantName:    in.TenantName,
		PhoneNumber:   in.PhoneNumber,
		IsPaid:        in.IsPaid,
	}
	if in.RentAmount != nil {
		v := amount.ParseOrZero(*in.RentAmount)
		pt.RentAmount = &v
	}
	if in.Debt != nil {
		v := amount.ParseOrZero(*in.Debt)
		pt.Debt = &v
	}
	return pt
}

func nonNegative(field, text string) (decimal.Decimal, error) {
	v, err := amount.Parse(text)
	if err != nil {
		return decimal.Zero, &ValidationError{Field: field, Reason: err.Error()}
	}
	if v.IsNegative() {
		return decimal.Zero, &ValidationError{Field: field, Reason: "must not be negative"}
	}
	return v, nil
}

func fieldName(structField string) string {
	switch structField {
	case "ApartmentName":
		return "apartment_name"
	case "HouseNumber":
		return "house_number"
	case "TenantName":
		return "tenant_name"
	case "PhoneNumber":
		return "phone_number"
	}
	return strings.ToLower(structField)
}
