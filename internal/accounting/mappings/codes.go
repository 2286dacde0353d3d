// Package mappings holds the static lookup tables that translate business
// vocabulary (expense categories, product names) into ledger account codes.
package mappings

import "strings"

// DefaultExpenseCode is the miscellaneous expenses account.
const DefaultExpenseCode = "6900"

// DefaultSalesCode is the general aggregate sales revenue account.
const DefaultSalesCode = "4000"

// Fee accounts used when journalling a sale's deductions.
const (
	CommissionCode  = "5400"
	LoadersFeeCode  = "5200"
	LandRateCode    = "5300"
	CashCode        = "1000"
	BankCode        = "1010"
	FeesPayableCode = "2200"
)

var expenseAccountCodes = map[string]string{
	"fuel":           "6000",
	"salaries":       "6100",
	"wages":          "6100",
	"repairs":        "6200",
	"maintenance":    "6200",
	"electricity":    "6300",
	"utilities":      "6300",
	"security":       "6400",
	"insurance":      "6500",
	"bank charges":   "6600",
	"licenses":       "6700",
	"permits":        "6700",
	"office":         "6800",
	"administration": "6800",
	"blasting":       "5000",
	"drilling":       "5000",
	"crushing":       "5100",
	"loading":        "5200",
	"hauling":        "5200",
	"royalties":      "5300",
	"land rates":     "5300",
}

var productSalesCodes = map[string]string{
	"size 6":      "4010",
	"size 9":      "4020",
	"quarry dust": "4030",
	"dust":        "4030",
	"rejects":     "4040",
}

// ExpenseAccountCode maps an expense category to its ledger account code,
// falling back to the miscellaneous account for anything unrecognised.
func ExpenseAccountCode(category string) string {
	if code, ok := expenseAccountCodes[normalise(category)]; ok {
		return code
	}
	return DefaultExpenseCode
}

// ProductSalesAccountCode maps a product name to its revenue sub-account,
// case-insensitively. Reject products roll up under the rejects account;
// everything unmapped lands on general aggregate sales.
func ProductSalesAccountCode(productName string) string {
	name := normalise(productName)
	if code, ok := productSalesCodes[name]; ok {
		return code
	}
	if strings.Contains(name, "reject") {
		return productSalesCodes["rejects"]
	}
	return DefaultSalesCode
}

func normalise(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
