// Package storage persists budgets, categories and transactions in SQLite.
// It is the atomic-write collaborator the materializer relies on: a
// materialized budget is committed in a single transaction or not at all.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"budgeteer/internal/core"
	"budgeteer/internal/template"

	_ "modernc.org/sqlite"
)

// Dates are stored as calendar-day strings, instants as RFC3339.
const (
	dayFormat  = "2006-01-02"
	timeFormat = time.RFC3339
)

var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ApplyTemplate commits a materialized budget as a single unit. If any
// insert fails the whole transaction rolls back, so a failure can never
// leave an orphaned budget or category set behind.
func (r *SQLiteRepository) ApplyTemplate(ctx context.Context, mb *template.MaterializedBudget) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertBudget(ctx, tx, mb.Budget); err != nil {
		return fmt.Errorf("insert budget: %w", err)
	}
	for _, c := range mb.Categories {
		if err := insertCategory(ctx, tx, c); err != nil {
			return fmt.Errorf("insert category %q: %w", c.Name, err)
		}
	}
	for _, t := range mb.Transactions {
		if err := insertTransaction(ctx, tx, t); err != nil {
			return fmt.Errorf("insert transaction %q: %w", t.Description, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	slog.InfoContext(ctx, "Budget materialized to SQLite",
		"budget_id", mb.Budget.ID,
		"name", mb.Budget.Name,
		"categories", len(mb.Categories),
		"transactions", len(mb.Transactions))
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertBudget(ctx context.Context, e execer, b core.Budget) error {
	_, err := e.ExecContext(ctx,
		`INSERT INTO budgets (id, name, description, color, is_archived, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Description, b.Color, boolToInt(b.IsArchived), b.CreatedAt.UTC().Format(timeFormat))
	return err
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) error {
	if err := insertBudget(ctx, r.db, b); err != nil {
		return fmt.Errorf("create budget: %w", err)
	}
	slog.InfoContext(ctx, "Budget saved to SQLite", "budget_id", b.ID, "name", b.Name)
	return nil
}

const budgetColumns = "id, name, description, color, is_archived, created_at"

func (r *SQLiteRepository) GetBudget(ctx context.Context, id string) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context, includeArchived bool) ([]core.Budget, error) {
	q := `SELECT ` + budgetColumns + ` FROM budgets`
	if !includeArchived {
		q += ` WHERE is_archived = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var budgets []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		budgets = append(budgets, b)
	}
	return budgets, rows.Err()
}

func (r *SQLiteRepository) ArchiveBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET is_archived = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("archive budget: %w", err)
	}
	return requireAffected(res, id)
}

// DeleteBudget removes a budget; categories and transactions follow through
// the ON DELETE CASCADE foreign keys.
func (r *SQLiteRepository) DeleteBudget(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if err := requireAffected(res, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "Budget deleted", "budget_id", id)
	return nil
}

// PendingExportBudget identifies a budget that has not yet been written to
// the configured export backend.
type PendingExportBudget struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func (r *SQLiteRepository) ListPendingExport(ctx context.Context, limit int) ([]PendingExportBudget, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM budgets
		 WHERE exported_at = '' AND export_error = ''
		 ORDER BY created_at ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending export: %w", err)
	}
	defer rows.Close()

	var pending []PendingExportBudget
	for rows.Next() {
		var p PendingExportBudget
		var created string
		if err := rows.Scan(&p.ID, &p.Name, &created); err != nil {
			return nil, fmt.Errorf("scan pending export: %w", err)
		}
		p.CreatedAt, _ = time.Parse(timeFormat, created)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

func (r *SQLiteRepository) MarkExported(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET exported_at = ?, export_error = '' WHERE id = ?`,
		time.Now().UTC().Format(timeFormat), id)
	if err != nil {
		return fmt.Errorf("mark exported: %w", err)
	}
	slog.InfoContext(ctx, "Budget marked as exported", "budget_id", id)
	return nil
}

func (r *SQLiteRepository) MarkExportError(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE budgets SET export_error = ? WHERE id = ?`, msg, id)
	if err != nil {
		return fmt.Errorf("mark export error: %w", err)
	}
	slog.WarnContext(ctx, "Budget marked with export error", "budget_id", id, "cause", msg)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var b core.Budget
	var archived int
	var created string
	if err := row.Scan(&b.ID, &b.Name, &b.Description, &b.Color, &archived, &created); err != nil {
		return core.Budget{}, err
	}
	b.IsArchived = archived != 0
	b.CreatedAt, _ = time.Parse(timeFormat, created)
	return b, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("budget %s: %w", id, ErrNotFound)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
