package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgeteer/internal/core"
	"budgeteer/internal/storage"
)

// RecurringProcessor turns due recurring transactions into concrete posted
// transactions on their budgets.
type RecurringProcessor struct {
	storage       *storage.SQLiteRepository
	budgetService *BudgetService
}

func NewRecurringProcessor(storage *storage.SQLiteRepository, budgetService *BudgetService) *RecurringProcessor {
	return &RecurringProcessor{
		storage:       storage,
		budgetService: budgetService,
	}
}

// ProcessDue runs all recurring transactions that are due at the given time
// and returns how many were created. A failure on one recurring transaction
// never blocks the others.
func (p *RecurringProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.storage == nil || p.budgetService == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	recurring, err := p.storage.ListRecurring(ctx)
	if err != nil {
		return 0, fmt.Errorf("list recurring transactions: %w", err)
	}

	slog.InfoContext(ctx, "Processing recurring transactions",
		"total_active", len(recurring),
		"processing_date", core.Day(now).Format("2006-01-02"))

	processedCount := 0

	for _, rt := range recurring {
		checker, err := GetDuenessChecker(rt.Frequency)
		if err != nil {
			slog.ErrorContext(ctx, "Unknown recurring frequency",
				"transaction_id", rt.ID, "frequency", string(rt.Frequency))
			continue
		}

		if !checker.IsDue(rt.LastRunAt, now, rt.Transaction) {
			continue
		}

		// The concrete transaction posts on the processing day and is not
		// recurring itself.
		concrete := core.Transaction{
			ID:          core.NewID(core.TransactionIDPrefix),
			BudgetID:    rt.BudgetID,
			CategoryID:  rt.CategoryID,
			Description: rt.Description,
			Amount:      rt.Amount,
			Date:        core.Day(now),
			IsPosted:    true,
			CreatedAt:   now.UTC(),
		}

		if _, err := p.budgetService.CreateTransaction(ctx, concrete); err != nil {
			slog.ErrorContext(ctx, "Failed to create transaction from recurring one",
				"recurring_id", rt.ID,
				"description", rt.Description,
				"error", err)
			continue
		}

		if err := p.storage.UpdateRecurringLastRun(ctx, rt.ID, now); err != nil {
			slog.ErrorContext(ctx, "Failed to update recurring last run",
				"recurring_id", rt.ID,
				"error", err)
			// Continue anyway - the transaction was created successfully
		}

		processedCount++
		slog.InfoContext(ctx, "Created transaction from recurring one",
			"recurring_id", rt.ID,
			"description", rt.Description,
			"amount_cents", rt.Amount.Cents,
			"frequency", string(rt.Frequency))
	}

	slog.InfoContext(ctx, "Recurring transaction processing complete",
		"processed", processedCount,
		"total_checked", len(recurring))

	return processedCount, nil
}
