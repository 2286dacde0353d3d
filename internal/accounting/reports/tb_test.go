package reports

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

func sampleBalances() []AccountBalance {
	return []AccountBalance{
		{Code: "6000", Name: "Fuel & Oil", Category: "EXPENSE", Debit: amt("8200")},
		{Code: "1000", Name: "Cash on Hand", Category: "ASSET", Opening: amt("1000"), Debit: amt("13500"), Credit: amt("8200")},
		{Code: "4010", Name: "Sales - Size 6", Category: "REVENUE", Credit: amt("13500")},
		{Code: "5400", Name: "Sales Commission", Category: "COST_OF_SALES", Debit: amt("600")},
		{Code: "2200", Name: "Fees Payable", Category: "LIABILITY", Credit: amt("600")},
	}
}

func TestBuildTrialBalanceGroupsByLeadingDigit(t *testing.T) {
	tb := BuildTrialBalance(sampleBalances())

	require.Len(t, tb.Groups, 5)
	keys := make([]string, 0, len(tb.Groups))
	for _, g := range tb.Groups {
		keys = append(keys, g.Key)
	}
	assert.Equal(t, []string{"1", "2", "4", "5", "6"}, keys)
}

func TestBuildTrialBalanceTotalsBalance(t *testing.T) {
	tb := BuildTrialBalance(sampleBalances())

	assert.True(t, amt("22300").Equal(tb.TotalDebit))
	assert.True(t, amt("22300").Equal(tb.TotalCredit))
	assert.True(t, tb.Balanced())
	assert.True(t, amt("1000").Equal(tb.TotalOpening))
	assert.True(t, amt("1000").Equal(tb.TotalClosing))
}

func TestBuildTrialBalanceClosingPerAccount(t *testing.T) {
	tb := BuildTrialBalance(sampleBalances())

	assets := tb.Groups[0]
	require.Len(t, assets.Accounts, 1)
	cash := assets.Accounts[0]
	assert.Equal(t, "1000", cash.Code)
	// 1000 opening + 13500 debits - 8200 credits.
	assert.True(t, amt("6300").Equal(cash.Closing))
}

func TestBuildTrialBalanceSortsAccountsWithinGroup(t *testing.T) {
	tb := BuildTrialBalance([]AccountBalance{
		{Code: "6300", Name: "Electricity", Debit: amt("100")},
		{Code: "6000", Name: "Fuel & Oil", Debit: amt("200")},
		{Code: "6100", Name: "Salaries & Wages", Debit: amt("300")},
	})

	require.Len(t, tb.Groups, 1)
	grp := tb.Groups[0]
	require.Len(t, grp.Accounts, 3)
	assert.Equal(t, "6000", grp.Accounts[0].Code)
	assert.Equal(t, "6100", grp.Accounts[1].Code)
	assert.Equal(t, "6300", grp.Accounts[2].Code)
	assert.True(t, amt("600").Equal(grp.Debit))
}

func TestBuildTrialBalanceEmpty(t *testing.T) {
	tb := BuildTrialBalance(nil)
	assert.Empty(t, tb.Groups)
	assert.True(t, tb.Balanced())
}

type mockRepository struct {
	balances []AccountBalance
	calls    int
}

func (m *mockRepository) AccountBalances(ctx context.Context, quarryID int64, from, to time.Time) ([]AccountBalance, error) {
	m.calls++
	return m.balances, nil
}

func TestTrialBalanceServiceAggregates(t *testing.T) {
	repo := &mockRepository{balances: sampleBalances()}
	service := NewService(repo)

	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	tb, err := service.TrialBalance(context.Background(), 7, from, to)
	require.NoError(t, err)
	assert.True(t, tb.Balanced())
	assert.Len(t, tb.Groups, 5)
	assert.Equal(t, 1, repo.calls)
}
