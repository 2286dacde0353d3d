// Package export renders trial balance reports as CSV, XLSX, and PDF files.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/quarrydesk/quarrydesk/internal/accounting/reports"
)

var groupLabels = map[string]string{
	"1": "Assets",
	"2": "Liabilities",
	"3": "Equity",
	"4": "Revenue",
	"5": "Cost of Sales",
	"6": "Expenses",
}

// GroupLabel translates the leading account code digit into a section name.
func GroupLabel(key string) string {
	if label, ok := groupLabels[key]; ok {
		return label
	}
	return "Other"
}

// TrialBalanceCSV renders the trial balance as CSV with one row per account
// and a subtotal row per group.
func TrialBalanceCSV(tb reports.TrialBalance, from, to time.Time) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	rows := [][]string{
		{"Trial Balance", from.Format("2006-01-02"), to.Format("2006-01-02")},
		{"Group", "Code", "Account", "Opening", "Debit", "Credit", "Closing"},
	}
	for _, grp := range tb.Groups {
		label := GroupLabel(grp.Key)
		for _, acc := range grp.Accounts {
			rows = append(rows, []string{
				label,
				acc.Code,
				acc.Name,
				acc.Opening.StringFixed(2),
				acc.Debit.StringFixed(2),
				acc.Credit.StringFixed(2),
				acc.Closing.StringFixed(2),
			})
		}
		rows = append(rows, []string{
			label, "", "Subtotal",
			grp.Opening.StringFixed(2),
			grp.Debit.StringFixed(2),
			grp.Credit.StringFixed(2),
			grp.Closing.StringFixed(2),
		})
	}
	rows = append(rows, []string{
		"", "", "Total",
		tb.TotalOpening.StringFixed(2),
		tb.TotalDebit.StringFixed(2),
		tb.TotalCredit.StringFixed(2),
		tb.TotalClosing.StringFixed(2),
	})

	if err := writer.WriteAll(rows); err != nil {
		return nil, fmt.Errorf("export: write csv: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("export: flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// TrialBalanceXLSX renders the trial balance as a single-sheet workbook.
func TrialBalanceXLSX(tb reports.TrialBalance, from, to time.Time) ([]byte, error) {
	f := excelize.NewFile()
	sheet := "Trial Balance"
	f.SetSheetName("Sheet1", sheet)

	_ = f.SetCellValue(sheet, "A1", "Trial Balance")
	_ = f.SetCellValue(sheet, "B1", from.Format("2006-01-02"))
	_ = f.SetCellValue(sheet, "C1", to.Format("2006-01-02"))

	headers := []string{"Group", "Code", "Account", "Opening", "Debit", "Credit", "Closing"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 3)
		_ = f.SetCellValue(sheet, cell, header)
	}

	row := 4
	writeRow := func(values []any) {
		for i, value := range values {
			cell, _ := excelize.CoordinatesToCellName(i+1, row)
			_ = f.SetCellValue(sheet, cell, value)
		}
		row++
	}

	for _, grp := range tb.Groups {
		label := GroupLabel(grp.Key)
		for _, acc := range grp.Accounts {
			writeRow([]any{
				label, acc.Code, acc.Name,
				acc.Opening.StringFixed(2),
				acc.Debit.StringFixed(2),
				acc.Credit.StringFixed(2),
				acc.Closing.StringFixed(2),
			})
		}
		writeRow([]any{
			label, "", "Subtotal",
			grp.Opening.StringFixed(2),
			grp.Debit.StringFixed(2),
			grp.Credit.StringFixed(2),
			grp.Closing.StringFixed(2),
		})
	}
	writeRow([]any{
		"", "", "Total",
		tb.TotalOpening.StringFixed(2),
		tb.TotalDebit.StringFixed(2),
		tb.TotalCredit.StringFixed(2),
		tb.TotalClosing.StringFixed(2),
	})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("export: write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

// TrialBalancePDF renders the trial balance as a portrait A4 document.
func TrialBalancePDF(tb reports.TrialBalance, from, to time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Trial Balance")
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s to %s", from.Format("2006-01-02"), to.Format("2006-01-02")))
	pdf.Ln(8)

	header := func() {
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(18, 6, "Code", "1", 0, "C", false, 0, "")
		pdf.CellFormat(60, 6, "Account", "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, "Opening", "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, "Debit", "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, "Credit", "1", 0, "C", false, 0, "")
		pdf.CellFormat(28, 6, "Closing", "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
		pdf.SetFont("Arial", "", 9)
	}

	for _, grp := range tb.Groups {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, GroupLabel(grp.Key))
		pdf.Ln(6)
		header()
		for _, acc := range grp.Accounts {
			pdf.CellFormat(18, 6, acc.Code, "1", 0, "C", false, 0, "")
			pdf.CellFormat(60, 6, acc.Name, "1", 0, "L", false, 0, "")
			pdf.CellFormat(28, 6, acc.Opening.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(28, 6, acc.Debit.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(28, 6, acc.Credit.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.CellFormat(28, 6, acc.Closing.StringFixed(2), "1", 0, "R", false, 0, "")
			pdf.Ln(-1)
		}
		pdf.SetFont("Arial", "B", 9)
		pdf.CellFormat(78, 6, "Subtotal", "1", 0, "L", false, 0, "")
		pdf.CellFormat(28, 6, grp.Opening.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, grp.Debit.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, grp.Credit.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(28, 6, grp.Closing.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(8)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(78, 6, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(28, 6, tb.TotalOpening.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(28, 6, tb.TotalDebit.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(28, 6, tb.TotalCredit.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.CellFormat(28, 6, tb.TotalClosing.StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("export: write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// Renderer adapts the package functions to the reports handler.
type Renderer struct{}

func (Renderer) TrialBalanceCSV(tb reports.TrialBalance, from, to time.Time) ([]byte, error) {
	return TrialBalanceCSV(tb, from, to)
}

func (Renderer) TrialBalanceXLSX(tb reports.TrialBalance, from, to time.Time) ([]byte, error) {
	return TrialBalanceXLSX(tb, from, to)
}

func (Renderer) TrialBalancePDF(tb reports.TrialBalance, from, to time.Time) ([]byte, error) {
	return TrialBalancePDF(tb, from, to)
}
