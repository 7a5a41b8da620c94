package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/property"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a long string", 10, "this is..."},
		{"Nyumba ya Kijani Ndogo", 12, "Nyumba ya..."},
	}

	for _, tt := range tests {
		got := truncate(tt.input, tt.maxLen)
		if got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("6f1c2a9e-7d41-4c1b-9a55-0c8d2f3e4b10"); got != "6f1c2a9e" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Errorf("shortID of short id = %q", got)
	}
}

func TestPrintPropertyTableEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := printPropertyTable(&buf, nil, "KES"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No properties found.") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintPropertyTable(t *testing.T) {
	props := []property.Property{{
		ID:            "6f1c2a9e-7d41-4c1b-9a55-0c8d2f3e4b10",
		ApartmentName: "Sunrise",
		HouseNumber:   "A1",
		TenantName:    "Jane",
		RentAmount:    decimal.NewFromInt(1000),
		Debt:          decimal.NewFromInt(250),
	}}

	var buf bytes.Buffer
	if err := printPropertyTable(&buf, props, "KES"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"6f1c2a9e", "Sunrise", "unpaid", "Total: 1 properties"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "7d41") {
		t.Errorf("table should show the short id only:\n%s", out)
	}
}

func TestPrintSummaryRate(t *testing.T) {
	s := portfolio.Summarize([]property.Property{
		{RentAmount: decimal.NewFromInt(1000), Debt: decimal.NewFromInt(200)},
		{RentAmount: decimal.NewFromInt(1500), IsPaid: true},
	})

	var buf bytes.Buffer
	printSummary(&buf, s, "KES")
	if !strings.Contains(buf.String(), "Collection rate: 60.0%") {
		t.Errorf("summary:\n%s", buf.String())
	}
}

func TestPrintHistoryEmpty(t *testing.T) {
	view := portfolio.History(property.Property{ApartmentName: "Sunrise", HouseNumber: "A1"})

	var buf bytes.Buffer
	if err := printHistory(&buf, view, "KES"); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "No payments recorded yet.") {
		t.Errorf("history:\n%s", buf.String())
	}
}
