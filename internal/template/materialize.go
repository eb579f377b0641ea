package template

import (
	"fmt"
	"time"

	"budgeteer/internal/core"
)

// Materialize expands a template against an anchor date into a budget, its
// categories and its sample transactions. The result is a pure value: ids
// are generated up front and nothing is persisted here.
//
// The expansion is all-or-nothing. Category names are resolved in two
// phases: first every category is created and a name→id map is built (a
// duplicate name fails immediately), then every transaction template is
// resolved through that map. A transaction whose category name does not
// resolve fails the whole call; skipping it would silently produce a budget
// with fewer transactions than the template declares.
func Materialize(tpl BudgetTemplate, meta BudgetMeta, anchor time.Time) (*MaterializedBudget, error) {
	budget := core.Budget{
		ID:          core.NewID(core.BudgetIDPrefix),
		Name:        meta.Name,
		Description: meta.Description,
		Color:       meta.Color,
		CreatedAt:   time.Now().UTC(),
	}
	// Template-derived defaults are a convenience; explicit meta always wins.
	if budget.Name == "" {
		budget.Name = tpl.Name
	}
	if budget.Color == "" {
		budget.Color = tpl.Color
	}

	// Phase one: categories, and the name→id map transactions resolve through.
	categories := make([]core.Category, 0, len(tpl.Categories))
	idByName := make(map[string]string, len(tpl.Categories))
	for _, ct := range tpl.Categories {
		if _, seen := idByName[ct.Name]; seen {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategoryName, ct.Name)
		}
		cat := core.Category{
			ID:       core.NewID(core.CategoryIDPrefix),
			BudgetID: budget.ID,
			Name:     ct.Name,
			Type:     ct.Type,
			Planned:  ct.Planned,
			Color:    ct.Color,
			IsActive: true,
		}
		categories = append(categories, cat)
		idByName[ct.Name] = cat.ID
	}

	// Phase two: transactions. Dates are whole-day offsets from the anchor;
	// authored signs are discarded, direction lives on the category type.
	transactions := make([]core.Transaction, 0, len(tpl.Transactions))
	for _, tt := range tpl.Transactions {
		categoryID, ok := idByName[tt.CategoryName]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrMissingCategoryReference, tt.CategoryName)
		}
		transactions = append(transactions, core.Transaction{
			ID:          core.NewID(core.TransactionIDPrefix),
			BudgetID:    budget.ID,
			CategoryID:  categoryID,
			Description: tt.Description,
			Amount:      core.Money{Cents: tt.AmountCents}.Abs(),
			Date:        core.AddDays(anchor, tt.RelativeDayOffset),
			IsPosted:    tt.IsPosted,
			CreatedAt:   budget.CreatedAt,
		})
	}

	return &MaterializedBudget{
		Budget:       budget,
		Categories:   categories,
		Transactions: transactions,
	}, nil
}
