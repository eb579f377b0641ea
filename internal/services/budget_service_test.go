package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"budgeteer/internal/core"
	"budgeteer/internal/storage"
	"budgeteer/internal/template"
)

// newTestService builds a service on a throwaway SQLite file and no AMQP
// client. Publishing is best effort, so a nil client must never fail a call.
func newTestService(t *testing.T) *BudgetService {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budgeteer.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	svc := NewBudgetService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc
}

func TestMaterializeTemplatePersistsBudget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	anchor := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)

	mb, err := svc.MaterializeTemplate(ctx, "personal-monthly", template.BudgetMeta{Name: "June"}, anchor)
	if err != nil {
		t.Fatalf("materialize template: %v", err)
	}

	got, err := svc.storage.GetBudget(ctx, mb.Budget.ID)
	if err != nil {
		t.Fatalf("budget not persisted: %v", err)
	}
	if got.Name != "June" {
		t.Fatalf("budget name: got %q", got.Name)
	}

	txs, err := svc.storage.ListTransactions(ctx, mb.Budget.ID)
	if err != nil {
		t.Fatalf("list transactions: %v", err)
	}
	if len(txs) != len(mb.Transactions) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(mb.Transactions))
	}
}

func TestMaterializeTemplateUnknownID(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.MaterializeTemplate(context.Background(), "no-such-template", template.BudgetMeta{}, time.Now())
	if !errors.Is(err, ErrTemplateNotFound) {
		t.Fatalf("expected ErrTemplateNotFound, got %v", err)
	}
}

func TestCreateAndDeleteBudget(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBudget(ctx, "Side project", "", "#aabbcc")
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	if b.ID == "" {
		t.Fatal("expected generated budget id")
	}

	if err := svc.DeleteBudget(ctx, b.ID); err != nil {
		t.Fatalf("delete budget: %v", err)
	}
	if _, err := svc.storage.GetBudget(ctx, b.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestCreateBudgetRejectsEmptyName(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.CreateBudget(context.Background(), "", "", ""); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
}

func TestCreateTransactionFillsDefaults(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	b, err := svc.CreateBudget(ctx, "Home", "", "")
	if err != nil {
		t.Fatalf("create budget: %v", err)
	}
	cat := core.Category{ID: core.NewID(core.CategoryIDPrefix), BudgetID: b.ID, Name: "Groceries", Type: core.Expense}
	if err := svc.storage.CreateCategory(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}

	tx, err := svc.CreateTransaction(ctx, core.Transaction{
		BudgetID:    b.ID,
		CategoryID:  cat.ID,
		Description: "Weekly shop",
		Amount:      core.Money{Cents: 8250},
		Date:        time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("create transaction: %v", err)
	}
	if tx.ID == "" {
		t.Fatal("expected generated transaction id")
	}
	if tx.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be filled")
	}

	if err := svc.DeleteTransaction(ctx, tx.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}
	if _, err := svc.storage.GetTransaction(ctx, tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}
