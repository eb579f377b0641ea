package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgeteer/internal/amqp"
	"budgeteer/internal/core"
	"budgeteer/internal/storage"
	"budgeteer/internal/template"
)

var ErrTemplateNotFound = errors.New("template not found")

// BudgetService orchestrates budget operations across SQLite and AMQP.
// Storage is the source of truth; export messages are best effort and a
// failed publish never fails the caller's request.
type BudgetService struct {
	storage    *storage.SQLiteRepository
	amqpClient *amqp.Client
}

func NewBudgetService(storage *storage.SQLiteRepository, amqpClient *amqp.Client) *BudgetService {
	return &BudgetService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// MaterializeTemplate turns a catalog template into a persisted budget with
// its categories and seed transactions, anchored on the given date. The
// write is all or nothing.
func (s *BudgetService) MaterializeTemplate(ctx context.Context, templateID string, meta template.BudgetMeta, anchor time.Time) (*template.MaterializedBudget, error) {
	tpl, ok := template.ByID(templateID)
	if !ok {
		return nil, fmt.Errorf("template %q: %w", templateID, ErrTemplateNotFound)
	}

	mb, err := template.Materialize(tpl, meta, anchor)
	if err != nil {
		return nil, fmt.Errorf("materialize template: %w", err)
	}

	if err := s.storage.ApplyTemplate(ctx, mb); err != nil {
		return nil, fmt.Errorf("apply template: %w", err)
	}

	// Publish async export message (non-blocking)
	if err := s.publishExportMessage(ctx, mb.Budget.ID, "materialized"); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"budget_id", mb.Budget.ID, "error", err)
		// Don't fail the request - budget is saved locally
	}

	return mb, nil
}

// CreateBudget saves an empty budget and publishes an export message.
func (s *BudgetService) CreateBudget(ctx context.Context, name, description, color string) (core.Budget, error) {
	b := core.Budget{
		ID:          core.NewID(core.BudgetIDPrefix),
		Name:        name,
		Description: description,
		Color:       color,
		CreatedAt:   time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if err := s.storage.CreateBudget(ctx, b); err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}

	if err := s.publishExportMessage(ctx, b.ID, "created"); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"budget_id", b.ID, "error", err)
	}

	return b, nil
}

// ArchiveBudget marks a budget archived and requests a fresh export so the
// backend reflects the archived state.
func (s *BudgetService) ArchiveBudget(ctx context.Context, id string) error {
	if err := s.storage.ArchiveBudget(ctx, id); err != nil {
		return err
	}

	if err := s.publishExportMessage(ctx, id, "archived"); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"budget_id", id, "error", err)
	}
	return nil
}

// DeleteBudget removes a budget locally and publishes a delete message so
// the export worker can drop the exported snapshot.
func (s *BudgetService) DeleteBudget(ctx context.Context, id string) error {
	if err := s.storage.DeleteBudget(ctx, id); err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}

	if err := s.publishDeleteMessage(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"budget_id", id, "error", err)
		// Don't fail the request - budget is deleted locally
	}

	return nil
}

// CreateTransaction saves a transaction and requests a re-export of its
// budget.
func (s *BudgetService) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.ID == "" {
		t.ID = core.NewID(core.TransactionIDPrefix)
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	if err := s.storage.CreateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}

	if err := s.publishExportMessage(ctx, t.BudgetID, "transaction"); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"budget_id", t.BudgetID, "error", err)
	}

	return t, nil
}

// DeleteTransaction removes a transaction and requests a re-export.
func (s *BudgetService) DeleteTransaction(ctx context.Context, id string) error {
	t, err := s.storage.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.storage.DeleteTransaction(ctx, id); err != nil {
		return err
	}

	if err := s.publishExportMessage(ctx, t.BudgetID, "transaction"); err != nil {
		slog.ErrorContext(ctx, "Failed to publish export message",
			"budget_id", t.BudgetID, "error", err)
	}
	return nil
}

func (s *BudgetService) publishExportMessage(ctx context.Context, budgetID, reason string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping export message")
		return nil
	}

	return s.amqpClient.PublishBudgetExport(ctx, budgetID, reason)
}

func (s *BudgetService) publishDeleteMessage(ctx context.Context, budgetID string) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping delete message")
		return nil
	}

	return s.amqpClient.PublishBudgetDelete(ctx, budgetID)
}

// Close closes both storage and AMQP connections.
func (s *BudgetService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %v", errs)
	}

	return nil
}
