// Package worker moves budget snapshots from SQLite to the export backend.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgeteer/internal/amqp"
	"budgeteer/internal/query"
	"budgeteer/internal/sheets"
	"budgeteer/internal/storage"
)

// ExportWorker handles exporting budgets from SQLite to the configured
// export backend.
type ExportWorker struct {
	storage   *storage.SQLiteRepository
	exporter  sheets.BudgetExporter
	deleter   sheets.ExportDeleter
	batchSize int
}

func NewExportWorker(storage *storage.SQLiteRepository, exporter sheets.BudgetExporter, deleter sheets.ExportDeleter, batchSize int) *ExportWorker {
	return &ExportWorker{
		storage:   storage,
		exporter:  exporter,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleExportMessage processes a single budget export message from AMQP.
func (w *ExportWorker) HandleExportMessage(ctx context.Context, msg *amqp.BudgetExportMessage) error {
	slog.InfoContext(ctx, "Processing export message",
		"budget_id", msg.BudgetID,
		"reason", msg.Reason)

	return w.exportBudget(ctx, msg.BudgetID)
}

// HandleDeleteMessage processes a single budget delete message from AMQP.
func (w *ExportWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.BudgetDeleteMessage) error {
	slog.InfoContext(ctx, "Processing delete message", "budget_id", msg.BudgetID)

	if w.deleter == nil {
		slog.WarnContext(ctx, "No export deleter configured, skipping snapshot removal",
			"budget_id", msg.BudgetID)
		return nil
	}

	if err := w.deleter.DeleteExport(ctx, msg.BudgetID); err != nil {
		slog.ErrorContext(ctx, "Failed to delete exported snapshot",
			"budget_id", msg.BudgetID,
			"error", err,
			"timestamp", msg.Timestamp)
		return fmt.Errorf("delete exported snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Successfully deleted exported snapshot",
		"budget_id", msg.BudgetID,
		"timestamp", msg.Timestamp)
	return nil
}

// ProcessPendingExports exports any budgets that haven't been exported yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *ExportWorker) ProcessPendingExports(ctx context.Context) error {
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("list pending exports: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending exports", "count", len(pending))

	for _, p := range pending {
		if err := w.exportBudget(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export budget", "budget_id", p.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupExportCheck exports any pending budgets at worker startup. This is
// useful to recover from missed AMQP messages or worker downtime.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	// Get a larger batch for startup check
	pending, err := w.storage.ListPendingExport(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("list pending exports for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending exports found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending exports on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, p := range pending {
		if err := w.exportBudget(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to export budget during startup",
				"budget_id", p.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export check completed",
		"total", len(pending),
		"exported", successCount,
		"errors", errorCount)

	return nil
}

// exportBudget loads the budget with its entities, computes aggregates over
// all of its transactions, and writes the snapshot to the backend. The
// budget's export bookkeeping records the outcome either way.
func (w *ExportWorker) exportBudget(ctx context.Context, budgetID string) error {
	budget, err := w.storage.GetBudget(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("get budget from storage: %w", err)
	}
	categories, err := w.storage.ListCategories(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("list categories: %w", err)
	}
	transactions, err := w.storage.ListTransactions(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}

	result := query.Run(transactions, categories, query.Filter{})

	snap := sheets.Snapshot{
		Budget:       budget,
		Categories:   categories,
		Transactions: transactions,
		TotalIncome:  result.TotalIncome,
		TotalExpense: result.TotalExpense,
		Net:          result.Net,
		ExportedAt:   time.Now().UTC(),
	}

	ref, err := w.exporter.ExportBudget(ctx, snap)
	if err != nil {
		if markErr := w.storage.MarkExportError(ctx, budgetID, err); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark export error", "budget_id", budgetID, "error", markErr)
		}
		return fmt.Errorf("export budget: %w", err)
	}

	if err := w.storage.MarkExported(ctx, budgetID); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as exported", "budget_id", budgetID, "error", err)
		// Don't return error here - the export actually worked
	}

	slog.InfoContext(ctx, "Successfully exported budget",
		"budget_id", budgetID,
		"ref", ref,
		"transactions", len(transactions),
		"net_cents", result.Net)

	return nil
}
