package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quarrydesk/quarrydesk/internal/accounting/reports"
)

func sampleTrialBalance() reports.TrialBalance {
	return reports.BuildTrialBalance([]reports.AccountBalance{
		{Code: "1000", Name: "Cash on Hand", Opening: decimal.NewFromInt(1000), Debit: decimal.NewFromInt(5000), Credit: decimal.NewFromInt(1200)},
		{Code: "4010", Name: "Sales - Size 6", Credit: decimal.NewFromInt(5000)},
		{Code: "6000", Name: "Fuel & Oil", Debit: decimal.NewFromInt(1200)},
	})
}

func window() (time.Time, time.Time) {
	return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
}

func TestTrialBalanceCSVLaysOutGroupsAndTotals(t *testing.T) {
	from, to := window()
	out, err := TrialBalanceCSV(sampleTrialBalance(), from, to)
	require.NoError(t, err)

	reader := csv.NewReader(bytes.NewReader(out))
	// Rows vary in width (3-field title vs 7-field data rows).
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	require.NoError(t, err)

	// Title, header, 3 accounts, 3 subtotals, total.
	require.Len(t, records, 9)
	assert.Equal(t, []string{"Trial Balance", "2026-05-01", "2026-05-31"}, records[0])
	assert.Equal(t, "Code", records[1][1])

	assert.Equal(t, "Assets", records[2][0])
	assert.Equal(t, "1000", records[2][1])
	assert.Equal(t, "5000.00", records[2][4])
	assert.Equal(t, "4800.00", records[2][6])

	assert.Equal(t, "Subtotal", records[3][2])
	assert.Equal(t, "Revenue", records[4][0])
	assert.Equal(t, "Expenses", records[6][0])

	total := records[8]
	assert.Equal(t, "Total", total[2])
	assert.Equal(t, "6200.00", total[4])
	assert.Equal(t, "6200.00", total[5])
}

func TestTrialBalanceXLSXProducesWorkbook(t *testing.T) {
	from, to := window()
	out, err := TrialBalanceXLSX(sampleTrialBalance(), from, to)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	// XLSX files are zip archives.
	assert.Equal(t, []byte{'P', 'K'}, out[:2])
}

func TestTrialBalancePDFProducesDocument(t *testing.T) {
	from, to := window()
	out, err := TrialBalancePDF(sampleTrialBalance(), from, to)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestGroupLabelFallsBackToOther(t *testing.T) {
	assert.Equal(t, "Assets", GroupLabel("1"))
	assert.Equal(t, "Cost of Sales", GroupLabel("5"))
	assert.Equal(t, "Other", GroupLabel("9"))
}
