package memory

import (
	"context"
	"testing"
	"time"

	"budgeteer/internal/core"
	"budgeteer/internal/sheets"
)

func testSnapshot(id string) sheets.Snapshot {
	return sheets.Snapshot{
		Budget:       core.Budget{ID: id, Name: "June", CreatedAt: time.Now().UTC()},
		TotalIncome:  core.Money{Cents: 300000},
		TotalExpense: core.Money{Cents: 220000},
		Net:          80000,
		ExportedAt:   time.Now().UTC(),
	}
}

func TestExportAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	ref, err := store.ExportBudget(ctx, testSnapshot("bgt_1"))
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if ref != "mem:bgt_1" {
		t.Fatalf("ref = %q", ref)
	}

	snap, ok := store.Get("bgt_1")
	if !ok {
		t.Fatal("snapshot not stored")
	}
	if snap.Net != 80000 {
		t.Fatalf("net = %d, want 80000", snap.Net)
	}

	// Re-export overwrites.
	updated := testSnapshot("bgt_1")
	updated.Net = 75000
	if _, err := store.ExportBudget(ctx, updated); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("len = %d, want 1", store.Len())
	}
	snap, _ = store.Get("bgt_1")
	if snap.Net != 75000 {
		t.Fatalf("net after re-export = %d, want 75000", snap.Net)
	}

	if err := store.DeleteExport(ctx, "bgt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := store.Get("bgt_1"); ok {
		t.Fatal("snapshot should be gone")
	}

	// Deleting again is a no-op.
	if err := store.DeleteExport(ctx, "bgt_1"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestExportRejectsInvalidBudget(t *testing.T) {
	store := New()
	snap := sheets.Snapshot{Budget: core.Budget{ID: "bgt_1"}}
	if _, err := store.ExportBudget(context.Background(), snap); err == nil {
		t.Fatal("expected validation error")
	}
}
