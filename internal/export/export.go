// Package export writes the property collection to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/evcraddock/rentbook/internal/portfolio"
	"github.com/evcraddock/rentbook/internal/property"
)

const (
	PropertiesSheet = "Properties"
	SummarySheet    = "Summary"
)

// PropertiesHeader is the header row of the properties sheet.
var PropertiesHeader = []string{
	"ID",
	"Apartment",
	"House Number",
	"Tenant",
	"Phone Number",
	"Rent",
	"Debt",
	"Status",
	"Payments",
	"Last Payment",
}

var columnWidths = []float64{38, 24, 14, 24, 16, 12, 12, 10, 10, 14}

// Write builds the workbook for props and summary and writes it to w.
func Write(w io.Writer, props []property.Property, summary portfolio.Summary) error {
	f, err := Workbook(props, summary)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// WriteFile saves the workbook for props and summary at path.
func WriteFile(path string, props []property.Property, summary portfolio.Summary) error {
	f, err := Workbook(props, summary)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook %s: %w", path, err)
	}
	return nil
}

// Workbook returns a workbook listing props on the properties sheet and
// summary on the summary sheet. The summary is written as given, so a
// filtered listing can carry portfolio-wide totals. The caller must close it.
func Workbook(props []property.Property, summary portfolio.Summary) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := fill(f, props, summary); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func fill(f *excelize.File, props []property.Property, summary portfolio.Summary) error {
	index, err := f.NewSheet(PropertiesSheet)
	if err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("creating sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("removing default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#EDE9FE"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	if err := f.SetSheetRow(PropertiesSheet, "A1", &PropertiesHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(PropertiesHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(PropertiesSheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, width := range columnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(PropertiesSheet, col, col, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}

	for i, p := range props {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := propertyRow(p)
		if err := f.SetSheetRow(PropertiesSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	return writeSummary(f, summary, headerStyle)
}

func propertyRow(p property.Property) []any {
	status := "Unpaid"
	if p.IsPaid {
		status = "Paid"
	}
	lastPayment := ""
	if n := len(p.PaymentHistory); n > 0 {
		lastPayment = portfolio.History(p).Payments[0].Date
	}
	return []any{
		p.ID,
		p.ApartmentName,
		p.HouseNumber,
		p.TenantName,
		p.PhoneNumber,
		number(p.RentAmount),
		number(p.Debt),
		status,
		len(p.PaymentHistory),
		lastPayment,
	}
}

func writeSummary(f *excelize.File, s portfolio.Summary, headerStyle int) error {
	rows := [][]any{
		{"Metric", "Value"},
		{"Properties", s.Count},
		{"Unpaid", s.UnpaidCount},
		{"Total Rent", number(s.TotalRent)},
		{"Collected", number(s.TotalCollected)},
		{"Outstanding", number(s.TotalOutstanding)},
		{"Total Debt", number(s.TotalDebt)},
		{"Collection Rate (%)", number(s.CollectionRate)},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}

	if err := f.SetCellStyle(SummarySheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("styling summary header: %w", err)
	}
	return f.SetColWidth(SummarySheet, "A", "A", 22)
}

func number(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
