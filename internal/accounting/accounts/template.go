package accounts

// TemplateAccount describes one entry of the per-quarry chart of accounts
// template. ParentCode, when set, must reference an earlier template entry.
type TemplateAccount struct {
	Code       string
	Name       string
	Category   Category
	Type       AccountType
	ParentCode string
}

// ChartTemplate is the fixed chart of accounts copied into every quarry at
// onboarding. Codes follow the usual 1xxx assets .. 6xxx expenses layout and
// every seeded account is a protected system account.
var ChartTemplate = []TemplateAccount{
	// Assets (1xxx)
	{Code: "1000", Name: "Cash on Hand", Category: CategoryAssets, Type: TypeCash},
	{Code: "1010", Name: "Bank Account", Category: CategoryAssets, Type: TypeBank},
	{Code: "1100", Name: "Accounts Receivable", Category: CategoryAssets, Type: TypeAccountsReceivable},
	{Code: "1200", Name: "Fuel Stock", Category: CategoryAssets, Type: TypeInventory},
	{Code: "1210", Name: "Aggregate Stockpile", Category: CategoryAssets, Type: TypeInventory},
	{Code: "1300", Name: "Prepaid Expenses", Category: CategoryAssets, Type: TypePrepayment},
	{Code: "1400", Name: "Plant and Machinery", Category: CategoryAssets, Type: TypeFixedAsset},
	{Code: "1410", Name: "Motor Vehicles", Category: CategoryAssets, Type: TypeFixedAsset},
	{Code: "1420", Name: "Quarry Land and Development", Category: CategoryAssets, Type: TypeFixedAsset},

	// Liabilities (2xxx)
	{Code: "2000", Name: "Accounts Payable", Category: CategoryLiabilities, Type: TypeAccountsPayable},
	{Code: "2100", Name: "Customer Prepayments", Category: CategoryLiabilities, Type: TypeCustomerDeposit},
	{Code: "2200", Name: "Accrued Fees Payable", Category: CategoryLiabilities, Type: TypeAccruedLiability},
	{Code: "2300", Name: "Loans Payable", Category: CategoryLiabilities, Type: TypeLoan},
	{Code: "2400", Name: "Taxes Payable", Category: CategoryLiabilities, Type: TypeTaxPayable},

	// Equity (3xxx)
	{Code: "3000", Name: "Owner's Capital", Category: CategoryEquity, Type: TypeOwnersCapital},
	{Code: "3100", Name: "Retained Earnings", Category: CategoryEquity, Type: TypeRetainedEarnings},

	// Revenue (4xxx) - product sub-accounts hang off general aggregate sales.
	{Code: "4000", Name: "Aggregate Sales", Category: CategoryRevenue, Type: TypeSalesRevenue},
	{Code: "4010", Name: "Size 6 Sales", Category: CategoryRevenue, Type: TypeSalesRevenue, ParentCode: "4000"},
	{Code: "4020", Name: "Size 9 Sales", Category: CategoryRevenue, Type: TypeSalesRevenue, ParentCode: "4000"},
	{Code: "4030", Name: "Quarry Dust Sales", Category: CategoryRevenue, Type: TypeSalesRevenue, ParentCode: "4000"},
	{Code: "4040", Name: "Rejects Sales", Category: CategoryRevenue, Type: TypeSalesRevenue, ParentCode: "4000"},
	{Code: "4090", Name: "Other Income", Category: CategoryRevenue, Type: TypeOtherIncome},

	// Cost of sales (5xxx)
	{Code: "5000", Name: "Blasting and Drilling", Category: CategoryCostOfSales, Type: TypeDirectCost},
	{Code: "5100", Name: "Crushing Costs", Category: CategoryCostOfSales, Type: TypeDirectCost},
	{Code: "5200", Name: "Loading and Hauling", Category: CategoryCostOfSales, Type: TypeDirectCost},
	{Code: "5300", Name: "Royalties and Land Rates", Category: CategoryCostOfSales, Type: TypeDirectCost},
	{Code: "5400", Name: "Sales Commissions", Category: CategoryCostOfSales, Type: TypeDirectCost},

	// Expenses (6xxx)
	{Code: "6000", Name: "Fuel Expense", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6100", Name: "Salaries and Wages", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6200", Name: "Repairs and Maintenance", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6300", Name: "Electricity and Utilities", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6400", Name: "Security", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6500", Name: "Insurance", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6600", Name: "Bank Charges", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6700", Name: "Licenses and Permits", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6800", Name: "Office and Administration", Category: CategoryExpenses, Type: TypeOperatingExpense},
	{Code: "6900", Name: "Miscellaneous Expenses", Category: CategoryExpenses, Type: TypeOperatingExpense},
}

// LookupTemplate finds a template entry by code.
func LookupTemplate(code string) *TemplateAccount {
	for i := range ChartTemplate {
		if ChartTemplate[i].Code == code {
			return &ChartTemplate[i]
		}
	}
	return nil
}
