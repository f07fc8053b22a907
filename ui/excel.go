package ui

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"adpulse/app"
)

// FormatCurrency renders a value like "AED 1,234.56"
func FormatCurrency(value float64, currency string) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}

	totalCents := int64(math.Round(value * 100))
	whole := totalCents / 100
	cents := totalCents % 100

	// Group the integer part with thousands separators.
	digits := fmt.Sprintf("%d", whole)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(d)
	}

	return fmt.Sprintf("%s %s%s.%02d", currency, sign, grouped.String(), cents)
}

// buildImpactWorkbook renders an impact report as a two-sheet workbook:
// a summary sheet plus the per-action detail.
func (a *App) buildImpactWorkbook(report *app.ImpactReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to name summary sheet: %w", err)
	}

	summaryRows := [][]interface{}{
		{"Account", report.Summary.AccountID.String()},
		{"Total Actions", report.Summary.TotalActions},
		{"Validated Actions", report.Summary.ValidatedActions},
		{"ROAS Before", report.Summary.ROASBefore},
		{"ROAS After", report.Summary.ROASAfter},
		{"ROAS Lift %", report.Summary.ROASLiftPct},
		{"Incremental Revenue", FormatCurrency(report.Summary.IncrementalRevenue, a.currency)},
		{"Win Rate", report.Summary.WinRate},
		{"P-Value", report.Summary.PValue},
		{"Confidence", string(report.Confidence.Level)},
		{"Signal Ratio", report.Confidence.SignalRatio},
		{"Spend Avoided", FormatCurrency(report.SpendAvoided.TotalSpendAvoided, a.currency)},
		{"Spend Avoided Confidence", string(report.SpendAvoided.Level)},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row %d: %w", i+1, err)
		}
	}

	const actionSheet = "Actions"
	if _, err := f.NewSheet(actionSheet); err != nil {
		return nil, fmt.Errorf("failed to create actions sheet: %w", err)
	}

	header := []interface{}{
		"Target", "Action Type", "Market Tag", "Validated",
		"Decision Impact", "Before Spend", "After Spend", "Spend Avoided", "Applied At",
	}
	if err := f.SetSheetRow(actionSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write actions header: %w", err)
	}
	for i, action := range report.Actions {
		row := []interface{}{
			action.TargetText,
			string(action.ActionType),
			string(action.MarketTag),
			action.IsValidated,
			action.DecisionImpact,
			action.BeforeSpend,
			action.ObservedAfterSpend,
			action.SpendAvoided(),
			action.AppliedAt.String(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(actionSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write action row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
