package reports

import (
	"sort"

	"github.com/shopspring/decimal"
)

// AccountBalance models a ledger account with balances aggregated from
// posted journal lines.
type AccountBalance struct {
	Code     string
	Name     string
	Category string
	Opening  decimal.Decimal
	Debit    decimal.Decimal
	Credit   decimal.Decimal
}

// Closing computes the closing balance for the account.
func (a AccountBalance) Closing() decimal.Decimal {
	return a.Opening.Add(a.Debit).Sub(a.Credit)
}

// GroupKey returns the leading code digit used for grouping rows, so assets,
// liabilities, equity, revenue, cost of sales, and expenses each form a block.
func (a AccountBalance) GroupKey() string {
	if len(a.Code) > 0 {
		return a.Code[:1]
	}
	return a.Code
}

// TrialBalanceAccount is a row inside a trial balance group.
type TrialBalanceAccount struct {
	Code    string
	Name    string
	Opening decimal.Decimal
	Debit   decimal.Decimal
	Credit  decimal.Decimal
	Closing decimal.Decimal
}

// TrialBalanceGroup aggregates accounts for presentation.
type TrialBalanceGroup struct {
	Key      string
	Accounts []TrialBalanceAccount
	Opening  decimal.Decimal
	Debit    decimal.Decimal
	Credit   decimal.Decimal
	Closing  decimal.Decimal
}

// TrialBalance is the final structure rendered to HTML, CSV, XLSX, or PDF.
type TrialBalance struct {
	Groups       []TrialBalanceGroup
	TotalDebit   decimal.Decimal
	TotalCredit  decimal.Decimal
	TotalOpening decimal.Decimal
	TotalClosing decimal.Decimal
}

// Balanced reports whether total debits equal total credits.
func (tb TrialBalance) Balanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}

// BuildTrialBalance converts account balances into grouped trial balance data.
func BuildTrialBalance(accounts []AccountBalance) TrialBalance {
	groups := make(map[string]*TrialBalanceGroup)
	keys := make([]string, 0)
	for _, acc := range accounts {
		key := acc.GroupKey()
		grp, ok := groups[key]
		if !ok {
			grp = &TrialBalanceGroup{Key: key, Opening: decimal.Zero, Debit: decimal.Zero, Credit: decimal.Zero, Closing: decimal.Zero}
			groups[key] = grp
			keys = append(keys, key)
		}
		row := TrialBalanceAccount{
			Code:    acc.Code,
			Name:    acc.Name,
			Opening: acc.Opening,
			Debit:   acc.Debit,
			Credit:  acc.Credit,
			Closing: acc.Closing(),
		}
		grp.Accounts = append(grp.Accounts, row)
		grp.Opening = grp.Opening.Add(row.Opening)
		grp.Debit = grp.Debit.Add(row.Debit)
		grp.Credit = grp.Credit.Add(row.Credit)
		grp.Closing = grp.Closing.Add(row.Closing)
	}

	sort.Strings(keys)
	result := TrialBalance{
		TotalDebit:   decimal.Zero,
		TotalCredit:  decimal.Zero,
		TotalOpening: decimal.Zero,
		TotalClosing: decimal.Zero,
	}
	for _, key := range keys {
		grp := groups[key]
		sort.Slice(grp.Accounts, func(i, j int) bool {
			return grp.Accounts[i].Code < grp.Accounts[j].Code
		})
		result.Groups = append(result.Groups, *grp)
		result.TotalOpening = result.TotalOpening.Add(grp.Opening)
		result.TotalDebit = result.TotalDebit.Add(grp.Debit)
		result.TotalCredit = result.TotalCredit.Add(grp.Credit)
		result.TotalClosing = result.TotalClosing.Add(grp.Closing)
	}
	return result
}
