// Package memory is an in-process export backend used in development and
// tests, where a real spreadsheet is overkill.
package memory

import (
	"context"
	"fmt"
	"sync"

	"budgeteer/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	snaps map[string]sheets.Snapshot
}

func New() *Store {
	return &Store{snaps: make(map[string]sheets.Snapshot)}
}

// ExportBudget stores the snapshot and returns a synthetic reference.
// Re-exporting the same budget overwrites the previous snapshot.
func (s *Store) ExportBudget(_ context.Context, snap sheets.Snapshot) (string, error) {
	if err := snap.Budget.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps[snap.Budget.ID] = snap
	return fmt.Sprintf("mem:%s", snap.Budget.ID), nil
}

// DeleteExport drops the snapshot if present. Deleting an unknown budget is
// not an error, the outcome is the same.
func (s *Store) DeleteExport(_ context.Context, budgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.snaps, budgetID)
	return nil
}

// Get returns the stored snapshot for a budget.
func (s *Store) Get(budgetID string) (sheets.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, ok := s.snaps[budgetID]
	return snap, ok
}

// Len returns how many budgets are currently exported.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}
