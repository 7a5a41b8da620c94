package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/rentbook/internal/export"
	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/property"
)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	return string(data), err
}

// addProperty runs "rb add" against dbPath and returns the stored property.
func addProperty(t *testing.T, dbPath string, args ...string) property.Property {
	t.Helper()
	out, err := executeCommand(append([]string{"add", "--db", dbPath, "--format", "json"}, args...)...)
	if err != nil {
		t.Fatalf("add: %v\n%s", err, out)
	}
	var p property.Property
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decoding add output: %v\n%s", err, out)
	}
	return p
}

func sunrise(rent, debt string) []string {
	return []string{
		"--apartment", "Sunrise", "--house", "A1", "--tenant", "Jane Wanjiku",
		"--phone", "0712345678", "--rent", rent, "--debt", debt,
	}
}

func TestAddAndShow(t *testing.T) {
	dbPath := testEnv(t)

	p := addProperty(t, dbPath, sunrise("1000", "500")...)
	if p.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if !p.RentAmount.Equal(dec(t, "1000")) || !p.Debt.Equal(dec(t, "500")) {
		t.Errorf("amounts = %s/%s", p.RentAmount, p.Debt)
	}
	if len(p.PaymentHistory) != 0 {
		t.Errorf("history = %v, want empty", p.PaymentHistory)
	}

	out, err := executeCommand("show", shortID(p.ID), "--db", dbPath)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	for _, want := range []string{p.ID, "Sunrise", "Jane Wanjiku", "unpaid"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}
}

func TestAddValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing tenant", []string{"--apartment", "Sunrise", "--house", "A1", "--phone", "07", "--rent", "1000"}},
		{"negative rent", sunrise("-1", "0")},
		{"text debt", sunrise("1000", "lots")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := testEnv(t)
			if _, err := executeCommand(append([]string{"add", "--db", dbPath}, tt.args...)...); err == nil {
				t.Fatal("expected validation error")
			}

			out, err := executeCommand("list", "--db", dbPath)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if !strings.Contains(out, "No properties found.") {
				t.Errorf("rejected property was stored:\n%s", out)
			}
		})
	}
}

func TestPayThenHistory(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "500")...)

	out, err := executeCommand("pay", p.ID, "200", "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	var paid property.Property
	if err := json.Unmarshal([]byte(out), &paid); err != nil {
		t.Fatal(err)
	}
	if !paid.Debt.Equal(dec(t, "300")) || paid.IsPaid {
		t.Errorf("after 200: debt=%s paid=%v, want 300 unpaid", paid.Debt, paid.IsPaid)
	}

	// Overpayment clamps the debt to zero and marks the property paid.
	if _, err := executeCommand("pay", p.ID, "800", "--db", dbPath); err != nil {
		t.Fatalf("pay: %v", err)
	}

	out, err = executeCommand("history", p.ID, "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var view portfolio.HistoryView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Payments) != 2 {
		t.Fatalf("payments = %d, want 2", len(view.Payments))
	}
	if view.Payments[0].Number != 2 || view.Payments[1].Number != 1 {
		t.Errorf("numbers = %d,%d, want 2,1", view.Payments[0].Number, view.Payments[1].Number)
	}
	if !view.TotalPaid.Equal(dec(t, "1000")) || !view.Balance.IsZero() {
		t.Errorf("totals = %s/%s, want 1000/0", view.TotalPaid, view.Balance)
	}
	if !view.Property.IsPaid {
		t.Error("expected property to be paid once debt reaches zero")
	}
}

func TestPayUnknownProperty(t *testing.T) {
	dbPath := testEnv(t)
	addProperty(t, dbPath, sunrise("1000", "500")...)

	_, err := executeCommand("pay", "no-such-id", "100", "--db", dbPath)
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestToggleLeavesDebt(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "500")...)

	out, err := executeCommand("toggle", p.ID, "--db", dbPath)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !strings.Contains(out, "is now paid") {
		t.Errorf("toggle output = %q", out)
	}

	out, err = executeCommand("show", p.ID, "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatal(err)
	}
	var got property.Property
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !got.IsPaid {
		t.Error("toggle was not persisted")
	}
	if !got.Debt.Equal(dec(t, "500")) {
		t.Errorf("debt = %s, want unchanged 500", got.Debt)
	}
}

func TestEditIsLenient(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "500")...)

	out, err := executeCommand("edit", p.ID, "--rent", "abc", "--tenant", "John Otieno", "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	var got property.Property
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !got.RentAmount.IsZero() {
		t.Errorf("rent = %s, want 0 for non-numeric input", got.RentAmount)
	}
	if got.TenantName != "John Otieno" {
		t.Errorf("tenant = %q", got.TenantName)
	}
	if !got.Debt.Equal(dec(t, "500")) || got.ApartmentName != "Sunrise" {
		t.Errorf("unpatched fields changed: %+v", got)
	}
}

func TestRemove(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "500")...)

	out, err := executeCommand("remove", p.ID, "--db", dbPath)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !strings.Contains(out, "removed") {
		t.Errorf("remove output = %q", out)
	}

	// Removing again is a no-op, not an error.
	out, err = executeCommand("remove", p.ID, "--db", dbPath)
	if err != nil {
		t.Fatalf("second remove: %v", err)
	}
	if !strings.Contains(out, "No property") {
		t.Errorf("second remove output = %q", out)
	}
}

func TestListSearchAndFilter(t *testing.T) {
	dbPath := testEnv(t)
	addProperty(t, dbPath, sunrise("1000", "200")...)
	addProperty(t, dbPath, "--apartment", "Greenview", "--house", "B2", "--tenant", "Ali Hassan",
		"--phone", "0799", "--rent", "1500", "--debt", "0", "--paid")

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"all", nil, []string{"Sunrise", "Greenview"}},
		{"search tenant", []string{"--search", "HASSAN"}, []string{"Greenview"}},
		{"unpaid", []string{"--filter", "unpaid"}, []string{"Sunrise"}},
		{"paid and search miss", []string{"--filter", "paid", "--search", "sun"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"list", "--db", dbPath, "--format", "json"}, tt.args...)
			out, err := executeCommand(args...)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			var props []property.Property
			if err := json.Unmarshal([]byte(out), &props); err != nil {
				t.Fatal(err)
			}
			var names []string
			for _, p := range props {
				names = append(names, p.ApartmentName)
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") {
				t.Errorf("got %v, want %v", names, tt.want)
			}
		})
	}
}

func TestSummary(t *testing.T) {
	dbPath := testEnv(t)
	addProperty(t, dbPath, sunrise("1000", "200")...)
	addProperty(t, dbPath, "--apartment", "Greenview", "--house", "B2", "--tenant", "Ali Hassan",
		"--phone", "0799", "--rent", "1500", "--debt", "0", "--paid")

	out, err := executeCommand("summary", "--db", dbPath)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"2 (1 unpaid)", "Collection rate: 60.0%"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestReceiptToFile(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "500")...)
	if _, err := executeCommand("pay", p.ID, "200", "--db", dbPath); err != nil {
		t.Fatal(err)
	}

	out, err := executeCommand("receipt", p.ID, "--db", dbPath)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if !strings.Contains(out, "# Payment Receipt") || !strings.Contains(out, "| #1 |") {
		t.Errorf("markdown receipt:\n%s", out)
	}

	path := filepath.Join(t.TempDir(), "receipt.html")
	if _, err := executeCommand("receipt", p.ID, "--html", "--out", path, "--db", dbPath); err != nil {
		t.Fatalf("receipt --html: %v", err)
	}
	data, err := readFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(data, "<table>") {
		t.Errorf("html receipt has no table:\n%s", data)
	}
}

func TestExport(t *testing.T) {
	dbPath := testEnv(t)
	addProperty(t, dbPath, sunrise("1000", "500")...)

	path := filepath.Join(t.TempDir(), "rent.xlsx")
	out, err := executeCommand("export", "--out", path, "--db", dbPath)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "Exported 1 properties") {
		t.Errorf("export output = %q", out)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	tenant, err := f.GetCellValue(export.PropertiesSheet, "D2")
	if err != nil {
		t.Fatal(err)
	}
	if tenant != "Jane Wanjiku" {
		t.Errorf("D2 = %q, want tenant name", tenant)
	}
}

func TestStatement(t *testing.T) {
	dbPath := testEnv(t)
	addProperty(t, dbPath, sunrise("1000", "500")...)

	out, err := executeCommand("statement", "--db", dbPath)
	if err != nil {
		t.Fatalf("statement: %v", err)
	}
	if !strings.Contains(out, "1 of 1 properties are unpaid") || !strings.Contains(out, "Jane Wanjiku") {
		t.Errorf("statement:\n%s", out)
	}
}

func TestEmailNeedsSMTP(t *testing.T) {
	dbPath := testEnv(t)
	t.Setenv("RB_SMTP_HOST", "")
	t.Setenv("RB_SMTP_FROM", "")
	p := addProperty(t, dbPath, sunrise("1000", "500")...)

	if _, err := executeCommand("statement", "--email", "me@example.com", "--db", dbPath); err == nil {
		t.Error("statement --email: expected SMTP error")
	}
	if _, err := executeCommand("receipt", p.ID, "--email", "me@example.com", "--db", dbPath); err == nil {
		t.Error("receipt --email: expected SMTP error")
	}
}

func TestPayKeywords(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "1500")...)

	steps := []struct {
		keyword  string
		wantDebt string
		wantPaid bool
	}{
		{"half", "1000", false},
		{"rent", "0", true},
	}
	for _, s := range steps {
		out, err := executeCommand("pay", p.ID, s.keyword, "--db", dbPath, "--format", "json")
		if err != nil {
			t.Fatalf("pay %s: %v", s.keyword, err)
		}
		var paid property.Property
		if err := json.Unmarshal([]byte(out), &paid); err != nil {
			t.Fatal(err)
		}
		if !paid.Debt.Equal(dec(t, s.wantDebt)) || paid.IsPaid != s.wantPaid {
			t.Errorf("after %s: debt=%s paid=%v, want %s %v", s.keyword, paid.Debt, paid.IsPaid, s.wantDebt, s.wantPaid)
		}
	}

	// Nothing is owed, so the debt keyword has no amount.
	_, err := executeCommand("pay", p.ID, "debt", "--db", dbPath)
	if err == nil || !strings.Contains(err.Error(), "nothing is owed") {
		t.Fatalf("err = %v, want nothing is owed", err)
	}

	out, err := executeCommand("history", p.ID, "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	var view portfolio.HistoryView
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatal(err)
	}
	if len(view.Payments) != 2 {
		t.Errorf("payments = %d, want 2", len(view.Payments))
	}
}

func TestPayDebtKeyword(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "350")...)

	out, err := executeCommand("pay", shortID(p.ID), "debt", "--db", dbPath)
	if err != nil {
		t.Fatalf("pay: %v", err)
	}
	if !strings.Contains(out, "350") || !strings.Contains(out, "(paid)") {
		t.Errorf("pay output = %q", out)
	}
}

func TestPayDryRun(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "500")...)

	out, err := executeCommand("pay", p.ID, "200", "--dry-run", "--db", dbPath)
	if err != nil {
		t.Fatalf("pay --dry-run: %v", err)
	}
	for _, want := range []string{"nothing saved", "Current debt", "New debt", "300", "unpaid"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}

	out, err = executeCommand("pay", p.ID, "rent", "--dry-run", "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("pay --dry-run: %v", err)
	}
	var preview struct {
		Debt      decimal.Decimal `json:"debt"`
		NewDebt   decimal.Decimal `json:"new_debt"`
		PaidAfter bool            `json:"paid_after"`
	}
	if err := json.Unmarshal([]byte(out), &preview); err != nil {
		t.Fatal(err)
	}
	if !preview.Debt.Equal(dec(t, "500")) || !preview.NewDebt.IsZero() || !preview.PaidAfter {
		t.Errorf("preview = %+v, want 500 -> 0 paid", preview)
	}

	out, err = executeCommand("show", p.ID, "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var got property.Property
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Debt.Equal(dec(t, "500")) || got.IsPaid || len(got.PaymentHistory) != 0 {
		t.Errorf("dry run changed the property: %+v", got)
	}
}

func TestBlankOrShortIDIsNoop(t *testing.T) {
	dbPath := testEnv(t)
	p := addProperty(t, dbPath, sunrise("1000", "500")...)

	for _, arg := range []string{"", "  ", p.ID[:3]} {
		out, err := executeCommand("remove", arg, "--db", dbPath)
		if err != nil {
			t.Fatalf("remove %q: %v", arg, err)
		}
		if !strings.Contains(out, "No property") {
			t.Errorf("remove %q output = %q", arg, out)
		}

		_, err = executeCommand("pay", arg, "100", "--db", dbPath)
		if err == nil || !strings.Contains(err.Error(), "not found") {
			t.Errorf("pay %q err = %v, want not found", arg, err)
		}
	}

	out, err := executeCommand("show", p.ID, "--db", dbPath, "--format", "json")
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	var got property.Property
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatal(err)
	}
	if !got.Debt.Equal(dec(t, "500")) || len(got.PaymentHistory) != 0 {
		t.Errorf("property changed: %+v", got)
	}

	// A long enough unique prefix still resolves.
	if _, err := executeCommand("remove", p.ID[:minPrefixLen], "--db", dbPath); err != nil {
		t.Fatalf("remove by prefix: %v", err)
	}
	out, err = executeCommand("list", "--db", dbPath)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "No properties found.") {
		t.Errorf("prefix remove left the property:\n%s", out)
	}
}

func TestSummaryFilterKeepsPortfolioStats(t *testing.T) {
	dbPath := testEnv(t)
	addProperty(t, dbPath, sunrise("1000", "200")...)
	addProperty(t, dbPath, "--apartment", "Greenview", "--house", "B2", "--tenant", "Ali Hassan",
		"--phone", "0799", "--rent", "1500", "--debt", "0", "--paid")

	out, err := executeCommand("summary", "--filter", "unpaid", "--db", dbPath)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	for _, want := range []string{"2 (1 unpaid)", "Collection rate: 60.0%", "Sunrise"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Greenview") {
		t.Errorf("filtered listing includes a paid property:\n%s", out)
	}
}
