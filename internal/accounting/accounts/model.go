package accounts

import "time"

// Category enumerates the six top-level chart of accounts groupings.
type Category string

const (
	CategoryAssets      Category = "ASSETS"
	CategoryLiabilities Category = "LIABILITIES"
	CategoryEquity      Category = "EQUITY"
	CategoryRevenue     Category = "REVENUE"
	CategoryCostOfSales Category = "COST_OF_SALES"
	CategoryExpenses    Category = "EXPENSES"
)

// Valid reports whether the category is one of the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryAssets, CategoryLiabilities, CategoryEquity,
		CategoryRevenue, CategoryCostOfSales, CategoryExpenses:
		return true
	}
	return false
}

// DebitNormal reports whether balances in this category increase with debits.
func (c Category) DebitNormal() bool {
	switch c {
	case CategoryAssets, CategoryExpenses, CategoryCostOfSales:
		return true
	}
	return false
}

// AccountType refines a category into a posting classification.
type AccountType string

const (
	TypeCash               AccountType = "CASH"
	TypeBank               AccountType = "BANK"
	TypeAccountsReceivable AccountType = "ACCOUNTS_RECEIVABLE"
	TypeInventory          AccountType = "INVENTORY"
	TypePrepayment         AccountType = "PREPAYMENT"
	TypeFixedAsset         AccountType = "FIXED_ASSET"
	TypeAccountsPayable    AccountType = "ACCOUNTS_PAYABLE"
	TypeCustomerDeposit    AccountType = "CUSTOMER_DEPOSIT"
	TypeAccruedLiability   AccountType = "ACCRUED_LIABILITY"
	TypeLoan               AccountType = "LOAN"
	TypeTaxPayable         AccountType = "TAX_PAYABLE"
	TypeOwnersCapital      AccountType = "OWNERS_CAPITAL"
	TypeRetainedEarnings   AccountType = "RETAINED_EARNINGS"
	TypeSalesRevenue       AccountType = "SALES_REVENUE"
	TypeOtherIncome        AccountType = "OTHER_INCOME"
	TypeDirectCost         AccountType = "DIRECT_COST"
	TypeOperatingExpense   AccountType = "OPERATING_EXPENSE"
)

// Account models a chart of accounts node scoped to a quarry.
type Account struct {
	ID            int64
	QuarryID      int64
	Code          string
	Name          string
	Category      Category
	Type          AccountType
	ParentID      *int64
	IsDebitNormal bool
	IsSystem      bool
	DisplayOrder  int
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
