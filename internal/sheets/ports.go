package sheets

import (
	"context"
	"time"

	"budgeteer/internal/core"
)

// Snapshot is the exported view of one budget: its entities plus the
// aggregates the export worker computed over them.
type Snapshot struct {
	Budget       core.Budget
	Categories   []core.Category
	Transactions []core.Transaction

	TotalIncome  core.Money
	TotalExpense core.Money
	Net          int64

	ExportedAt time.Time
}

// Ports for outbound adapters.
type (
	BudgetExporter interface {
		ExportBudget(ctx context.Context, snap Snapshot) (ref string, err error)
	}

	// ExportDeleter removes a previously exported budget snapshot.
	ExportDeleter interface {
		DeleteExport(ctx context.Context, budgetID string) error
	}
)
