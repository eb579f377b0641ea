package template

import (
	"errors"
	"testing"
	"time"

	"budgeteer/internal/core"
)

func fixtureTemplate() BudgetTemplate {
	return BudgetTemplate{
		ID:    "fixture",
		Name:  "Fixture",
		Color: "#336699",
		Categories: []CategoryTemplate{
			{Name: "Salary", Type: core.Income, Planned: core.Money{Cents: 300000}},
			{Name: "Rent", Type: core.Expense, Planned: core.Money{Cents: 180000}},
			{Name: "Food", Type: core.Expense, Planned: core.Money{Cents: 40000}},
		},
		Transactions: []TransactionTemplate{
			{CategoryName: "Salary", Description: "Pay day", AmountCents: 300000, RelativeDayOffset: -5, IsPosted: true},
			{CategoryName: "Rent", Description: "Rent", AmountCents: -180000, RelativeDayOffset: 0, IsPosted: true},
			{CategoryName: "Food", Description: "Groceries", AmountCents: -4200, RelativeDayOffset: 3, IsPosted: false},
		},
	}
}

func TestMaterializeCounts(t *testing.T) {
	tpl := fixtureTemplate()
	got, err := Materialize(tpl, BudgetMeta{Name: "June"}, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	if len(got.Categories) != len(tpl.Categories) {
		t.Fatalf("got %d categories, want %d", len(got.Categories), len(tpl.Categories))
	}
	if len(got.Transactions) != len(tpl.Transactions) {
		t.Fatalf("got %d transactions, want %d", len(got.Transactions), len(tpl.Transactions))
	}
}

func TestMaterializeMetaDefaults(t *testing.T) {
	tpl := fixtureTemplate()

	t.Run("explicit meta wins", func(t *testing.T) {
		got, err := Materialize(tpl, BudgetMeta{Name: "My Budget", Color: "#000000"}, time.Now())
		if err != nil {
			t.Fatalf("materialize: %v", err)
		}
		if got.Budget.Name != "My Budget" || got.Budget.Color != "#000000" {
			t.Fatalf("meta not applied: %+v", got.Budget)
		}
	})

	t.Run("empty meta falls back to template", func(t *testing.T) {
		got, err := Materialize(tpl, BudgetMeta{}, time.Now())
		if err != nil {
			t.Fatalf("materialize: %v", err)
		}
		if got.Budget.Name != tpl.Name || got.Budget.Color != tpl.Color {
			t.Fatalf("template defaults not applied: %+v", got.Budget)
		}
	})
}

func TestMaterializeDateResolution(t *testing.T) {
	tpl := fixtureTemplate()
	anchor := time.Date(2024, 6, 15, 13, 37, 0, 0, time.UTC) // time-of-day must be discarded

	got, err := Materialize(tpl, BudgetMeta{}, anchor)
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	wants := []time.Time{
		time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC),
	}
	for i, want := range wants {
		if !got.Transactions[i].Date.Equal(want) {
			t.Fatalf("transaction %d: got %v want %v", i, got.Transactions[i].Date, want)
		}
	}
}

func TestMaterializeSignNormalization(t *testing.T) {
	tpl := fixtureTemplate()
	got, err := Materialize(tpl, BudgetMeta{}, time.Now())
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}
	// Authored -180000 against the expense category must be stored as a
	// positive magnitude.
	if got.Transactions[1].Amount.Cents != 180000 {
		t.Fatalf("got %d want 180000", got.Transactions[1].Amount.Cents)
	}
	for i, tx := range got.Transactions {
		if tx.Amount.Cents < 0 {
			t.Fatalf("transaction %d has negative stored amount %d", i, tx.Amount.Cents)
		}
	}
}

func TestMaterializeReferentialIntegrity(t *testing.T) {
	tpl := fixtureTemplate()
	got, err := Materialize(tpl, BudgetMeta{}, time.Now())
	if err != nil {
		t.Fatalf("materialize: %v", err)
	}

	categoryIDs := make(map[string]bool)
	for _, c := range got.Categories {
		if c.BudgetID != got.Budget.ID {
			t.Fatalf("category %s belongs to %s, want %s", c.ID, c.BudgetID, got.Budget.ID)
		}
		categoryIDs[c.ID] = true
	}
	for _, tx := range got.Transactions {
		if tx.BudgetID != got.Budget.ID {
			t.Fatalf("transaction %s belongs to %s, want %s", tx.ID, tx.BudgetID, got.Budget.ID)
		}
		if !categoryIDs[tx.CategoryID] {
			t.Fatalf("transaction %s references unknown category %s", tx.ID, tx.CategoryID)
		}
	}
}

func TestMaterializeMissingCategoryReference(t *testing.T) {
	tpl := fixtureTemplate()
	tpl.Transactions = append(tpl.Transactions, TransactionTemplate{
		CategoryName: "Nope", Description: "dangling", AmountCents: -100,
	})

	got, err := Materialize(tpl, BudgetMeta{}, time.Now())
	if !errors.Is(err, ErrMissingCategoryReference) {
		t.Fatalf("expected ErrMissingCategoryReference, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result on failure, got %+v", got)
	}
}

func TestMaterializeDuplicateCategoryName(t *testing.T) {
	tpl := fixtureTemplate()
	tpl.Categories = append(tpl.Categories, CategoryTemplate{Name: "Rent", Type: core.Expense})

	got, err := Materialize(tpl, BudgetMeta{}, time.Now())
	if !errors.Is(err, ErrDuplicateCategoryName) {
		t.Fatalf("expected ErrDuplicateCategoryName, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil result on failure, got %+v", got)
	}
}

func TestMaterializeCatalogEntries(t *testing.T) {
	// Every shipped template must materialize cleanly with exact counts and
	// valid entities.
	for _, tpl := range Catalog() {
		t.Run(tpl.ID, func(t *testing.T) {
			got, err := Materialize(tpl, BudgetMeta{}, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
			if err != nil {
				t.Fatalf("materialize: %v", err)
			}
			if len(got.Categories) != len(tpl.Categories) || len(got.Transactions) != len(tpl.Transactions) {
				t.Fatalf("partial expansion: %d/%d categories, %d/%d transactions",
					len(got.Categories), len(tpl.Categories), len(got.Transactions), len(tpl.Transactions))
			}
			if err := got.Budget.Validate(); err != nil {
				t.Fatalf("budget invalid: %v", err)
			}
			for _, c := range got.Categories {
				if err := c.Validate(); err != nil {
					t.Fatalf("category %q invalid: %v", c.Name, err)
				}
			}
			for _, tx := range got.Transactions {
				if err := tx.Validate(); err != nil {
					t.Fatalf("transaction %q invalid: %v", tx.Description, err)
				}
			}
		})
	}
}
