package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgeteer/internal/core"
)

func insertCategory(ctx context.Context, e execer, c core.Category) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO categories (id, budget_id, name, type, planned_cents, color, is_active)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.BudgetID, c.Name, string(c.Type), c.Planned.Cents, c.Color, boolToInt(c.IsActive))
	return err
}

func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := insertCategory(ctx, r.db, c); err != nil {
		return fmt.Errorf("create category: %w", err)
	}
	slog.InfoContext(ctx, "Category saved to SQLite",
		"category_id", c.ID, "budget_id", c.BudgetID, "name", c.Name, "type", string(c.Type))
	return nil
}

func (r *SQLiteRepository) ListCategories(ctx context.Context, budgetID string) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, budget_id, name, type, planned_cents, color, is_active
		 FROM categories WHERE budget_id = ? ORDER BY rowid`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []core.Category
	for rows.Next() {
		var c core.Category
		var typ string
		var active int
		if err := rows.Scan(&c.ID, &c.BudgetID, &c.Name, &typ, &c.Planned.Cents, &c.Color, &active); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		c.Type = core.CategoryType(typ)
		c.IsActive = active != 0
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func insertTransaction(ctx context.Context, e execer, t core.Transaction) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO transactions
		 (id, budget_id, category_id, description, amount_cents, date,
		  is_posted, is_recurring, frequency, day_of_month, last_run_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, '', ?)`,
		t.ID, t.BudgetID, t.CategoryID, t.Description, t.Amount.Cents,
		core.Day(t.Date).Format(dayFormat),
		boolToInt(t.IsPosted), boolToInt(t.IsRecurring),
		string(t.Frequency), t.DayOfMonth,
		t.CreatedAt.UTC().Format(timeFormat))
	return err
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if err := insertTransaction(ctx, r.db, t); err != nil {
		return fmt.Errorf("create transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"transaction_id", t.ID,
		"budget_id", t.BudgetID,
		"amount_cents", t.Amount.Cents,
		"date", core.Day(t.Date).Format(dayFormat))
	return nil
}

const transactionColumns = `id, budget_id, category_id, description, amount_cents, date,
	is_posted, is_recurring, frequency, day_of_month, created_at`

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id)
	t, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return t, nil
}

// ListTransactions returns all transactions of a budget in insertion order.
// Filtering and bucketing happen in the query engine, not in SQL, so the
// engine's semantics apply uniformly regardless of the storage backend.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, budgetID string) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE budget_id = ? ORDER BY rowid`, budgetID)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var transactions []core.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		transactions = append(transactions, t)
	}
	return transactions, rows.Err()
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("transaction %s: %w", id, ErrNotFound)
	}
	slog.InfoContext(ctx, "Transaction deleted", "transaction_id", id)
	return nil
}

// RecurringTransaction pairs a recurring transaction with the last time the
// recurring processor ran it.
type RecurringTransaction struct {
	core.Transaction
	LastRunAt time.Time
}

func (r *SQLiteRepository) ListRecurring(ctx context.Context) ([]RecurringTransaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+`, last_run_at
		 FROM transactions WHERE is_recurring = 1 ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("list recurring: %w", err)
	}
	defer rows.Close()

	var recurring []RecurringTransaction
	for rows.Next() {
		var rt RecurringTransaction
		var lastRun string
		var typ, date, created string
		var posted, recur int
		if err := rows.Scan(&rt.ID, &rt.BudgetID, &rt.CategoryID, &rt.Description,
			&rt.Amount.Cents, &date, &posted, &recur, &typ, &rt.DayOfMonth, &created, &lastRun); err != nil {
			return nil, fmt.Errorf("scan recurring: %w", err)
		}
		rt.Date, _ = time.ParseInLocation(dayFormat, date, time.UTC)
		rt.IsPosted = posted != 0
		rt.IsRecurring = recur != 0
		rt.Frequency = core.Frequency(typ)
		rt.CreatedAt, _ = time.Parse(timeFormat, created)
		if lastRun != "" {
			rt.LastRunAt, _ = time.Parse(timeFormat, lastRun)
		}
		recurring = append(recurring, rt)
	}
	return recurring, rows.Err()
}

func (r *SQLiteRepository) UpdateRecurringLastRun(ctx context.Context, id string, ranAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE transactions SET last_run_at = ? WHERE id = ?`,
		ranAt.UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("update recurring last run: %w", err)
	}
	return nil
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var t core.Transaction
	var date, freq, created string
	var posted, recurring int
	if err := row.Scan(&t.ID, &t.BudgetID, &t.CategoryID, &t.Description,
		&t.Amount.Cents, &date, &posted, &recurring, &freq, &t.DayOfMonth, &created); err != nil {
		return core.Transaction{}, err
	}
	t.Date, _ = time.ParseInLocation(dayFormat, date, time.UTC)
	t.IsPosted = posted != 0
	t.IsRecurring = recurring != 0
	t.Frequency = core.Frequency(freq)
	t.CreatedAt, _ = time.Parse(timeFormat, created)
	return t, nil
}
