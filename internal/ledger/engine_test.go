package ledger

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/rentbook/internal/property"
)

func fixedEngine() *Engine {
	return &Engine{Now: func() time.Time {
		return time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	}}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string { return &s }

func TestCreate(t *testing.T) {
	e := fixedEngine()

	valid := NewProperty{
		ApartmentName: " Sunset Towers ",
		HouseNumber:   "A1",
		TenantName:    "Jane",
		PhoneNumber:   "0712",
		RentAmount:    "1000",
		Debt:          "0",
	}

	p, err := e.Create(valid)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ApartmentName != "Sunset Towers" {
		t.Errorf("ApartmentName = %q, want trimmed", p.ApartmentName)
	}
	if !p.RentAmount.Equal(dec("1000")) {
		t.Errorf("RentAmount = %s, want 1000", p.RentAmount)
	}
	if p.ID != "" {
		t.Errorf("ID = %q, want empty", p.ID)
	}
	if p.PaymentHistory == nil || len(p.PaymentHistory) != 0 {
		t.Errorf("PaymentHistory = %v, want empty non-nil", p.PaymentHistory)
	}

	tests := []struct {
		name  string
		edit  func(*NewProperty)
		field string
	}{
		{"blank apartment", func(in *NewProperty) { in.ApartmentName = "  " }, "apartment_name"},
		{"missing house", func(in *NewProperty) { in.HouseNumber = "" }, "house_number"},
		{"missing tenant", func(in *NewProperty) { in.TenantName = "" }, "tenant_name"},
		{"missing phone", func(in *NewProperty) { in.PhoneNumber = "" }, "phone_number"},
		{"empty rent", func(in *NewProperty) { in.RentAmount = "" }, "rent_amount"},
		{"text rent", func(in *NewProperty) { in.RentAmount = "a lot" }, "rent_amount"},
		{"negative rent", func(in *NewProperty) { in.RentAmount = "-5" }, "rent_amount"},
		{"negative debt", func(in *NewProperty) { in.Debt = "-1" }, "debt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			_, err := e.Create(in)

			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
			if verr.Field != tt.field {
				t.Errorf("Field = %q, want %q", verr.Field, tt.field)
			}
		})
	}
}

func TestRecordPayment(t *testing.T) {
	e := fixedEngine()

	tests := []struct {
		name     string
		debt     string
		isPaid   bool
		amount   string
		wantDebt string
		wantPaid bool
	}{
		{"partial payment", "1000", false, "500", "500", false},
		{"overpayment clamps to zero", "500", false, "800", "0", true},
		{"exact payment", "1000", false, "1000", "0", true},
		{"payment on zero debt", "0", false, "100", "0", true},
		{"partial payment clears override", "1000", true, "1", "999", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := property.Property{
				ID:             "p1",
				RentAmount:     dec("1000"),
				Debt:           dec(tt.debt),
				IsPaid:         tt.isPaid,
				PaymentHistory: []property.Payment{{Date: "2024-02-01", Amount: dec("50")}},
			}

			got, err := e.RecordPayment(p, dec(tt.amount))
			if err != nil {
				t.Fatalf("RecordPayment: %v", err)
			}
			if !got.Debt.Equal(dec(tt.wantDebt)) {
				t.Errorf("Debt = %s, want %s", got.Debt, tt.wantDebt)
			}
			if got.IsPaid != tt.wantPaid {
				t.Errorf("IsPaid = %v, want %v", got.IsPaid, tt.wantPaid)
			}
			if len(got.PaymentHistory) != 2 {
				t.Fatalf("history length = %d, want 2", len(got.PaymentHistory))
			}
			last := got.PaymentHistory[1]
			if last.Date != "2024-03-15" || !last.Amount.Equal(dec(tt.amount)) {
				t.Errorf("last payment = %+v", last)
			}
			if !got.RentAmount.Equal(p.RentAmount) || got.ID != p.ID {
				t.Error("payment changed fields other than debt, paid and history")
			}
			if len(p.PaymentHistory) != 1 {
				t.Error("input history was mutated")
			}
		})
	}
}

func TestRecordPaymentRejectsNonPositive(t *testing.T) {
	e := fixedEngine()
	p := property.Property{ID: "p1", Debt: dec("100"), PaymentHistory: []property.Payment{}}

	for _, amt := range []string{"0", "-10"} {
		_, err := e.RecordPayment(p, dec(amt))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("amount %s: err = %v, want ValidationError", amt, err)
		}
	}
}

func TestParsePaymentAmount(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"500", "500", false},
		{" 12.50 ", "12.5", false},
		{"", "", true},
		{"abc", "", true},
		{"0", "", true},
		{"-3", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePaymentAmount(tt.in)
		if tt.wantErr {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Errorf("ParsePaymentAmount(%q) err = %v, want ValidationError", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParsePaymentAmount(%q): %v", tt.in, err)
			continue
		}
		if !got.Equal(dec(tt.want)) {
			t.Errorf("ParsePaymentAmount(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestTogglePaidOnlyFlipsFlag(t *testing.T) {
	e := fixedEngine()
	p := property.Property{
		ID:             "p1",
		ApartmentName:  "Sunset",
		Debt:           dec("300"),
		PaymentHistory: []property.Payment{{Date: "2024-01-01", Amount: dec("10")}},
	}

	once := e.TogglePaid(p)
	if !once.IsPaid {
		t.Error("IsPaid = false after toggle")
	}
	if !once.Debt.Equal(p.Debt) || len(once.PaymentHistory) != 1 {
		t.Error("toggle changed debt or history")
	}

	twice := e.TogglePaid(once)
	if twice.IsPaid != p.IsPaid {
		t.Error("toggling twice did not restore the flag")
	}
}

func TestApply(t *testing.T) {
	e := fixedEngine()
	p := property.Property{
		ID:             "p1",
		ApartmentName:  "Sunset",
		TenantName:     "Jane",
		RentAmount:     dec("1000"),
		PaymentHistory: []property.Payment{{Date: "2024-01-01", Amount: dec("10")}},
	}

	rent := dec("1200")
	got := e.Apply(p, property.Patch{TenantName: strPtr("John"), RentAmount: &rent})

	if got.TenantName != "John" || !got.RentAmount.Equal(rent) {
		t.Errorf("patched fields not applied: %+v", got)
	}
	if got.ApartmentName != "Sunset" || got.ID != "p1" || len(got.PaymentHistory) != 1 {
		t.Errorf("unpatched fields changed: %+v", got)
	}

	if same := e.Apply(p, property.Patch{}); same.TenantName != "Jane" {
		t.Error("empty patch changed the property")
	}
}

func TestPatchFromTextIsLenient(t *testing.T) {
	paid := true
	pt := PatchFromText(PatchText{
		TenantName: strPtr("John"),
		RentAmount: strPtr("lots"),
		Debt:       strPtr("250.5"),
		IsPaid:     &paid,
	})

	if pt.RentAmount == nil || !pt.RentAmount.IsZero() {
		t.Errorf("RentAmount = %v, want 0", pt.RentAmount)
	}
	if pt.Debt == nil || !pt.Debt.Equal(dec("250.5")) {
		t.Errorf("Debt = %v, want 250.5", pt.Debt)
	}
	if pt.TenantName == nil || *pt.TenantName != "John" {
		t.Error("TenantName not carried over")
	}
	if pt.ApartmentName != nil || pt.HouseNumber != nil {
		t.Error("unset fields should stay nil")
	}
}
