package services

import (
	"context"
	"testing"
	"time"

	"budgeteer/internal/core"
)

func TestProcessDueCreatesConcreteTransaction(t *testing.T) {
	svc := newTestService(t)
	processor := NewRecurringProcessor(svc.storage, svc)
	ctx := context.Background()

	b, err := svc.CreateBudget(ctx, "Home", "", "")
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	cat := core.Category{ID: core.NewID(core.CategoryIDPrefix), BudgetID: b.ID, Name: "Bills", Type: core.Expense}
	if err := svc.storage.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}

	recurring := core.Transaction{
		ID:          core.NewID(core.TransactionIDPrefix),
		BudgetID:    b.ID,
		CategoryID:  cat.ID,
		Description: "Electricity",
		Amount:      core.Money{Cents: 9000},
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
		Frequency:   core.Monthly,
		DayOfMonth:  1,
		CreatedAt:   time.Now().UTC(),
	}
	if err := svc.storage.CreateTransaction(ctx, recurring); err != nil {
		t.Fatalf("create recurring transaction: %v", err)
	}

	now := time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)
	processed, err := processor.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("process due: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}

	txs, err := svc.storage.ListTransactions(ctx, b.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("expected recurring plus concrete transaction, got %d", len(txs))
	}
	concrete := txs[1]
	if concrete.IsRecurring {
		t.Fatal("concrete transaction must not be recurring")
	}
	if !concrete.IsPosted {
		t.Fatal("concrete transaction should be posted")
	}
	if !concrete.Date.Equal(core.Day(now)) {
		t.Fatalf("concrete date = %v, want %v", concrete.Date, core.Day(now))
	}
	if concrete.Amount.Cents != 9000 {
		t.Fatalf("concrete amount = %d, want 9000", concrete.Amount.Cents)
	}

	// A second run on the same day must be a no-op.
	processed, err = processor.ProcessDue(ctx, now)
	if err != nil {
		t.Fatalf("second process due: %v", err)
	}
	if processed != 0 {
		t.Fatalf("second run processed = %d, want 0", processed)
	}
}

func TestProcessDueSkipsNotYetDue(t *testing.T) {
	svc := newTestService(t)
	processor := NewRecurringProcessor(svc.storage, svc)
	ctx := context.Background()

	b, err := svc.CreateBudget(ctx, "Home", "", "")
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	cat := core.Category{ID: core.NewID(core.CategoryIDPrefix), BudgetID: b.ID, Name: "Bills", Type: core.Expense}
	if err := svc.storage.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}

	weekly := core.Transaction{
		ID:          core.NewID(core.TransactionIDPrefix),
		BudgetID:    b.ID,
		CategoryID:  cat.ID,
		Description: "Cleaning",
		Amount:      core.Money{Cents: 4500},
		Date:        time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		IsRecurring: true,
		Frequency:   core.Weekly,
		CreatedAt:   time.Now().UTC(),
	}
	if err := svc.storage.CreateTransaction(ctx, weekly); err != nil {
		t.Fatalf("create recurring transaction: %v", err)
	}
	ranAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if err := svc.storage.UpdateRecurringLastRun(ctx, weekly.ID, ranAt); err != nil {
		t.Fatalf("seed last run: %v", err)
	}

	// Only 3 days later, the weekly transaction is not due yet.
	processed, err := processor.ProcessDue(ctx, ranAt.AddDate(0, 0, 3))
	if err != nil {
		t.Fatalf("process due: %v", err)
	}
	if processed != 0 {
		t.Fatalf("processed = %d, want 0", processed)
	}
}

func TestProcessDueUninitialized(t *testing.T) {
	processor := NewRecurringProcessor(nil, nil)
	if _, err := processor.ProcessDue(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error from uninitialized processor")
	}
}
