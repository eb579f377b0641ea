// Package template implements template-based budget instantiation: a
// built-in catalog of budget templates, a pure materializer that turns a
// template plus an anchor date into a complete set of budget entities, and
// a pure preview summary.
package template

import (
	"errors"

	"budgeteer/internal/core"
)

type (
	// BudgetTemplate is an immutable catalog entry. Templates are read-only
	// reference data, never persisted per user.
	BudgetTemplate struct {
		ID          string
		Name        string
		Description string
		Icon        string
		Color       string
		Categories  []CategoryTemplate
		Transactions []TransactionTemplate
	}

	// CategoryTemplate describes one category to create. Name doubles as
	// the join key for transaction templates and must be unique within the
	// template.
	CategoryTemplate struct {
		Name    string
		Type    core.CategoryType
		Planned core.Money
		Color   string
	}

	// TransactionTemplate describes one sample transaction. CategoryName is
	// a free-text reference into the template's category list; there is no
	// numeric id at the template level. AmountCents is signed as an
	// authoring convenience (negative conventionally means outflow) but the
	// sign is discarded on materialization.
	TransactionTemplate struct {
		CategoryName      string
		Description       string
		AmountCents       int64
		RelativeDayOffset int
		IsPosted          bool
	}

	// BudgetMeta is the user-supplied metadata for the budget to create.
	// Empty fields fall back to the template's own name and color.
	BudgetMeta struct {
		Name        string
		Description string
		Color       string
	}

	// MaterializedBudget is the complete, internally consistent set of
	// entities a template expands to. Ids are already assigned; the storage
	// layer commits the whole set in a single transaction or not at all.
	MaterializedBudget struct {
		Budget       core.Budget
		Categories   []core.Category
		Transactions []core.Transaction
	}

	// Summary is the side-effect-free preview shown before committing. Its
	// totals must agree exactly with the categories Materialize would
	// create.
	Summary struct {
		IncomeCategoryCount    int
		ExpenseCategoryCount   int
		TotalPlannedIncome     core.Money
		TotalPlannedExpense    core.Money
		NetPlanned             int64
		SampleTransactionCount int
	}
)

// Both errors indicate a malformed catalog entry, which is a programming
// error in the template catalog rather than a user-input error. They are
// surfaced unmodified; recovering by skipping entities would break the
// "this template includes N sample transactions" preview guarantee.
var (
	ErrDuplicateCategoryName    = errors.New("duplicate category name in template")
	ErrMissingCategoryReference = errors.New("transaction references unknown category")
)
