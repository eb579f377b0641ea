package google

import (
	"context"
	"os"
	"testing"
	"time"

	"budgeteer/internal/core"
	ports "budgeteer/internal/sheets"
)

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error without GOOGLE_SPREADSHEET_ID")
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error without credentials")
	}
}

func TestNewFromEnvMissingCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "sheet-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/nonexistent/credentials.json")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Fatal("expected error for missing credentials file")
	}
	if _, err := os.Stat("/nonexistent/credentials.json"); err == nil {
		t.Fatal("test precondition: file must not exist")
	}
}

func TestSummaryRow(t *testing.T) {
	exportedAt := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)
	snap := ports.Snapshot{
		Budget: core.Budget{ID: "bgt_1", Name: "June"},
		Categories: []core.Category{
			{ID: "cat_1"}, {ID: "cat_2"},
		},
		Transactions: []core.Transaction{{ID: "txn_1"}},
		TotalIncome:  core.Money{Cents: 300000},
		TotalExpense: core.Money{Cents: 220050},
		Net:          79950,
		ExportedAt:   exportedAt,
	}

	row := summaryRow(snap)
	if len(row) != 8 {
		t.Fatalf("row has %d columns, want 8", len(row))
	}
	if row[0] != "bgt_1" || row[1] != "June" {
		t.Fatalf("id/name columns wrong: %v", row[:2])
	}
	if row[2] != 2 || row[3] != 1 {
		t.Fatalf("count columns wrong: %v", row[2:4])
	}
	if row[4] != 3000.0 || row[5] != 2200.5 || row[6] != 799.5 {
		t.Fatalf("amount columns wrong: %v", row[4:7])
	}
	if row[7] != "2024-06-15T10:00:00Z" {
		t.Fatalf("exported at column wrong: %v", row[7])
	}
}

func TestTransactionRow(t *testing.T) {
	tx := core.Transaction{
		ID:          "txn_1",
		Description: "Rent",
		Amount:      core.Money{Cents: 180000},
		Date:        time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC),
		IsPosted:    true,
	}

	row := transactionRow("bgt_1", tx)
	if len(row) != 7 {
		t.Fatalf("row has %d columns, want 7", len(row))
	}
	if row[0] != "bgt_1" || row[1] != "txn_1" {
		t.Fatalf("id columns wrong: %v", row[:2])
	}
	if row[2] != "2024-06-10" {
		t.Fatalf("date column wrong: %v", row[2])
	}
	if row[4] != 1800.0 {
		t.Fatalf("amount column wrong: %v", row[4])
	}
	if row[5] != true || row[6] != false {
		t.Fatalf("flag columns wrong: %v", row[5:])
	}
}

func TestCentsToDecimal(t *testing.T) {
	tests := []struct {
		cents int64
		want  float64
	}{
		{0, 0},
		{100, 1},
		{12345, 123.45},
		{-9050, -90.5},
	}
	for _, tt := range tests {
		if got := centsToDecimal(tt.cents); got != tt.want {
			t.Errorf("centsToDecimal(%d) = %v, want %v", tt.cents, got, tt.want)
		}
	}
}
