package template

import "budgeteer/internal/core"

// The built-in catalog. Entries are returned by value so callers cannot
// mutate the shared definitions. Amounts are authored in cents; negative
// transaction amounts mark outflows by convention only.
var catalog = []BudgetTemplate{
	{
		ID:          "personal-monthly",
		Name:        "Personal Monthly",
		Description: "A simple single-income monthly budget with the usual living costs.",
		Icon:        "wallet",
		Color:       "#2563eb",
		Categories: []CategoryTemplate{
			{Name: "Salary", Type: core.Income, Planned: core.Money{Cents: 320000}, Color: "#16a34a"},
			{Name: "Rent", Type: core.Expense, Planned: core.Money{Cents: 120000}, Color: "#dc2626"},
			{Name: "Groceries", Type: core.Expense, Planned: core.Money{Cents: 45000}, Color: "#ea580c"},
			{Name: "Transport", Type: core.Expense, Planned: core.Money{Cents: 12000}, Color: "#ca8a04"},
			{Name: "Leisure", Type: core.Expense, Planned: core.Money{Cents: 20000}, Color: "#7c3aed"},
		},
		Transactions: []TransactionTemplate{
			{CategoryName: "Salary", Description: "Monthly salary", AmountCents: 320000, RelativeDayOffset: -14, IsPosted: true},
			{CategoryName: "Rent", Description: "Rent payment", AmountCents: -120000, RelativeDayOffset: -12, IsPosted: true},
			{CategoryName: "Groceries", Description: "Weekly groceries", AmountCents: -11250, RelativeDayOffset: -7, IsPosted: true},
			{CategoryName: "Groceries", Description: "Weekly groceries", AmountCents: -10800, RelativeDayOffset: 0, IsPosted: true},
			{CategoryName: "Transport", Description: "Transit pass", AmountCents: -7500, RelativeDayOffset: -10, IsPosted: true},
			{CategoryName: "Leisure", Description: "Cinema night", AmountCents: -3200, RelativeDayOffset: -3, IsPosted: true},
			{CategoryName: "Groceries", Description: "Weekly groceries", AmountCents: -11000, RelativeDayOffset: 7, IsPosted: false},
		},
	},
	{
		ID:          "family-household",
		Name:        "Family Household",
		Description: "Two incomes, childcare and household running costs.",
		Icon:        "home",
		Color:       "#0d9488",
		Categories: []CategoryTemplate{
			{Name: "Primary Salary", Type: core.Income, Planned: core.Money{Cents: 380000}, Color: "#16a34a"},
			{Name: "Secondary Salary", Type: core.Income, Planned: core.Money{Cents: 260000}, Color: "#15803d"},
			{Name: "Mortgage", Type: core.Expense, Planned: core.Money{Cents: 180000}, Color: "#dc2626"},
			{Name: "Childcare", Type: core.Expense, Planned: core.Money{Cents: 95000}, Color: "#db2777"},
			{Name: "Groceries", Type: core.Expense, Planned: core.Money{Cents: 80000}, Color: "#ea580c"},
			{Name: "Utilities", Type: core.Expense, Planned: core.Money{Cents: 28000}, Color: "#ca8a04"},
			{Name: "Insurance", Type: core.Expense, Planned: core.Money{Cents: 22000}, Color: "#4f46e5"},
		},
		Transactions: []TransactionTemplate{
			{CategoryName: "Primary Salary", Description: "Salary", AmountCents: 380000, RelativeDayOffset: -15, IsPosted: true},
			{CategoryName: "Secondary Salary", Description: "Salary", AmountCents: 260000, RelativeDayOffset: -15, IsPosted: true},
			{CategoryName: "Mortgage", Description: "Mortgage payment", AmountCents: -180000, RelativeDayOffset: -13, IsPosted: true},
			{CategoryName: "Childcare", Description: "Nursery fees", AmountCents: -95000, RelativeDayOffset: -11, IsPosted: true},
			{CategoryName: "Groceries", Description: "Supermarket", AmountCents: -19500, RelativeDayOffset: -9, IsPosted: true},
			{CategoryName: "Utilities", Description: "Electricity", AmountCents: -14200, RelativeDayOffset: -6, IsPosted: true},
			{CategoryName: "Utilities", Description: "Water", AmountCents: -6300, RelativeDayOffset: -6, IsPosted: true},
			{CategoryName: "Groceries", Description: "Supermarket", AmountCents: -21000, RelativeDayOffset: -2, IsPosted: true},
			{CategoryName: "Insurance", Description: "Home insurance", AmountCents: -22000, RelativeDayOffset: 3, IsPosted: false},
		},
	},
	{
		ID:          "freelancer",
		Name:        "Freelancer",
		Description: "Irregular client income with business and personal costs kept apart.",
		Icon:        "briefcase",
		Color:       "#9333ea",
		Categories: []CategoryTemplate{
			{Name: "Client Invoices", Type: core.Income, Planned: core.Money{Cents: 450000}, Color: "#16a34a"},
			{Name: "Software & Tools", Type: core.Expense, Planned: core.Money{Cents: 15000}, Color: "#4f46e5"},
			{Name: "Coworking", Type: core.Expense, Planned: core.Money{Cents: 30000}, Color: "#ca8a04"},
			{Name: "Taxes Set Aside", Type: core.Expense, Planned: core.Money{Cents: 135000}, Color: "#dc2626"},
			{Name: "Living Costs", Type: core.Expense, Planned: core.Money{Cents: 160000}, Color: "#ea580c"},
		},
		Transactions: []TransactionTemplate{
			{CategoryName: "Client Invoices", Description: "Invoice #1042", AmountCents: 220000, RelativeDayOffset: -20, IsPosted: true},
			{CategoryName: "Client Invoices", Description: "Invoice #1043", AmountCents: 180000, RelativeDayOffset: -4, IsPosted: true},
			{CategoryName: "Software & Tools", Description: "IDE subscription", AmountCents: -2900, RelativeDayOffset: -18, IsPosted: true},
			{CategoryName: "Coworking", Description: "Desk rental", AmountCents: -30000, RelativeDayOffset: -16, IsPosted: true},
			{CategoryName: "Taxes Set Aside", Description: "Quarterly tax reserve", AmountCents: -66000, RelativeDayOffset: -4, IsPosted: true},
			{CategoryName: "Living Costs", Description: "Groceries and sundries", AmountCents: -8400, RelativeDayOffset: -1, IsPosted: true},
			{CategoryName: "Client Invoices", Description: "Invoice #1044", AmountCents: 50000, RelativeDayOffset: 10, IsPosted: false},
		},
	},
}

// clone deep-copies a template. The category and transaction slices must
// be copied too, or callers would still share the catalog's backing arrays.
func clone(tpl BudgetTemplate) BudgetTemplate {
	out := tpl
	out.Categories = make([]CategoryTemplate, len(tpl.Categories))
	copy(out.Categories, tpl.Categories)
	out.Transactions = make([]TransactionTemplate, len(tpl.Transactions))
	copy(out.Transactions, tpl.Transactions)
	return out
}

// Catalog returns a copy of the built-in template list.
func Catalog() []BudgetTemplate {
	out := make([]BudgetTemplate, len(catalog))
	for i, tpl := range catalog {
		out[i] = clone(tpl)
	}
	return out
}

// ByID looks a template up by its catalog id.
func ByID(id string) (BudgetTemplate, bool) {
	for _, tpl := range catalog {
		if tpl.ID == id {
			return clone(tpl), true
		}
	}
	return BudgetTemplate{}, false
}
