package template

import "budgeteer/internal/core"

// Summarize computes the preview totals for a template without touching
// storage. The UI shows these numbers before the user commits, so they are
// defined as sums over the same category list Materialize expands.
func Summarize(tpl BudgetTemplate) Summary {
	var s Summary
	for _, ct := range tpl.Categories {
		switch ct.Type {
		case core.Income:
			s.IncomeCategoryCount++
			s.TotalPlannedIncome.Cents += ct.Planned.Cents
		case core.Expense:
			s.ExpenseCategoryCount++
			s.TotalPlannedExpense.Cents += ct.Planned.Cents
		}
	}
	s.NetPlanned = s.TotalPlannedIncome.Cents - s.TotalPlannedExpense.Cents
	s.SampleTransactionCount = len(tpl.Transactions)
	return s
}
