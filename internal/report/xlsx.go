// Package report renders maturity forecasts as spreadsheets and publishes
// them to object storage.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/noah-isme/backend-jewelry/internal/scheme"
)

// ContentTypeXLSX is the media type of rendered workbooks.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

const (
	forecastSheet = "Forecast"
	summarySheet  = "Summary"
)

var forecastHeader = []any{
	"Enrollment", "Customer", "Phone", "Scheme", "Type", "Maturity Date",
	"Total Paid", "Accumulated Weight (g)", "Expected Payout",
}

// RenderForecast writes rep as a two-sheet workbook: one row per enrollment,
// then the totals and the month-by-month breakdown.
func RenderForecast(rep scheme.Report) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", forecastSheet); err != nil {
		return nil, err
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		return nil, err
	}
	grams, err := f.NewStyle(&excelize.Style{CustomNumFmt: strPtr("0.000")})
	if err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(forecastSheet, "A1", &forecastHeader); err != nil {
		return nil, err
	}
	_ = f.SetRowStyle(forecastSheet, 1, 1, bold)
	for i, item := range rep.Forecast {
		maturity := ""
		if !item.MaturityDate.IsZero() {
			maturity = item.MaturityDate.Format("02-01-2006")
		}
		row := []any{
			item.ID,
			item.CustomerName,
			item.CustomerPhone,
			item.SchemeName,
			string(item.CalculationType),
			maturity,
			item.TotalPaid.InexactFloat64(),
			item.AccumulatedWeight.InexactFloat64(),
			item.ExpectedPayoutValue.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(forecastSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if last := len(rep.Forecast) + 1; last > 1 {
		_ = f.SetCellStyle(forecastSheet, "G2", fmt.Sprintf("G%d", last), money)
		_ = f.SetCellStyle(forecastSheet, "H2", fmt.Sprintf("H%d", last), grams)
		_ = f.SetCellStyle(forecastSheet, "I2", fmt.Sprintf("I%d", last), money)
	}
	_ = f.SetColWidth(forecastSheet, "A", "A", 38)
	_ = f.SetColWidth(forecastSheet, "B", "I", 18)

	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, err
	}
	summary := [][]any{
		{"Window", fmt.Sprintf("%s to %s", rep.From.Format("02-01-2006"), rep.To.Format("02-01-2006"))},
		{"Estimated Gold Rate", rep.EstimatedRate.InexactFloat64()},
		{"Enrollments", rep.Summary.TotalCount},
		{"Total Gold Weight (g)", rep.Summary.TotalGoldWeight.InexactFloat64()},
		{"Total Cash Liability", rep.Summary.TotalCashLiability.InexactFloat64()},
		{},
		{"Month", "Expected Payout"},
	}
	for _, bucket := range rep.Summary.MonthlyBreakdown {
		summary = append(summary, []any{bucket.Label, bucket.Total.InexactFloat64()})
	}
	for i, row := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}
	_ = f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), bold)
	_ = f.SetCellStyle(summarySheet, "B8", fmt.Sprintf("B%d", max(len(summary), 8)), money)
	_ = f.SetColWidth(summarySheet, "A", "B", 24)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func strPtr(s string) *string { return &s }
