package core

import (
	"testing"
	"time"
)

func TestDayTruncation(t *testing.T) {
	morning := time.Date(2024, 6, 15, 8, 30, 12, 0, time.UTC)
	evening := time.Date(2024, 6, 15, 23, 59, 59, 0, time.UTC)

	if !Day(morning).Equal(Day(evening)) {
		t.Fatalf("expected same bucket day, got %v and %v", Day(morning), Day(evening))
	}
	if got := Day(morning); got.Hour() != 0 || got.Minute() != 0 {
		t.Fatalf("expected midnight, got %v", got)
	}
}

func TestAddDays(t *testing.T) {
	anchor := time.Date(2024, 6, 15, 14, 45, 0, 0, time.UTC)
	cases := []struct {
		offset int
		want   time.Time
	}{
		{-5, time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)},
		{0, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)},
		{3, time.Date(2024, 6, 18, 0, 0, 0, 0, time.UTC)},
	}
	for i, tc := range cases {
		if got := AddDays(anchor, tc.offset); !got.Equal(tc.want) {
			t.Fatalf("case %d: offset %d: got %v want %v", i, tc.offset, got, tc.want)
		}
	}
}

func TestMoneyValidate(t *testing.T) {
	if err := (Money{Cents: 1800}).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Money{Cents: 0}).Validate(); err != nil {
		t.Fatalf("zero is a valid magnitude, got %v", err)
	}
	if err := (Money{Cents: -1}).Validate(); err == nil {
		t.Fatalf("expected error for negative magnitude")
	}
}

func TestMoneyAbs(t *testing.T) {
	if got := (Money{Cents: -1800}).Abs(); got.Cents != 1800 {
		t.Fatalf("got %d want 1800", got.Cents)
	}
	if got := (Money{Cents: 250}).Abs(); got.Cents != 250 {
		t.Fatalf("got %d want 250", got.Cents)
	}
}

func TestBudgetValidate(t *testing.T) {
	good := Budget{ID: "bgt_1", Name: "Household"}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Budget{ID: "bgt_1", Name: "  "}).Validate(); err == nil {
		t.Fatalf("expected error for blank name")
	}
}

func TestCategoryValidate(t *testing.T) {
	good := Category{ID: "cat_1", BudgetID: "bgt_1", Name: "Rent", Type: Expense, Planned: Money{Cents: 180000}}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Category{
		{ID: "cat_1", BudgetID: "bgt_1", Name: "", Type: Expense},
		{ID: "cat_1", BudgetID: "", Name: "Rent", Type: Expense},
		{ID: "cat_1", BudgetID: "bgt_1", Name: "Rent", Type: "savings"},
		{ID: "cat_1", BudgetID: "bgt_1", Name: "Rent", Type: Expense, Planned: Money{Cents: -1}},
	}
	for i, c := range bads {
		if err := c.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	day := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	good := Transaction{
		ID: "txn_1", BudgetID: "bgt_1", CategoryID: "cat_1",
		Description: "Rent", Amount: Money{Cents: 180000}, Date: day, IsPosted: true,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Transaction{
		{ID: "t", BudgetID: "", CategoryID: "c", Description: "x", Amount: Money{Cents: 1}, Date: day},
		{ID: "t", BudgetID: "b", CategoryID: "", Description: "x", Amount: Money{Cents: 1}, Date: day},
		{ID: "t", BudgetID: "b", CategoryID: "c", Description: "", Amount: Money{Cents: 1}, Date: day},
		{ID: "t", BudgetID: "b", CategoryID: "c", Description: "x", Amount: Money{Cents: -1}, Date: day},
		{ID: "t", BudgetID: "b", CategoryID: "c", Description: "x", Amount: Money{Cents: 1}},
		{ID: "t", BudgetID: "b", CategoryID: "c", Description: "x", Amount: Money{Cents: 1}, Date: day, IsRecurring: true, Frequency: "fortnightly"},
		{ID: "t", BudgetID: "b", CategoryID: "c", Description: "x", Amount: Money{Cents: 1}, Date: day, IsRecurring: true, Frequency: Monthly, DayOfMonth: 0},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}

	recurring := good
	recurring.IsRecurring = true
	recurring.Frequency = Monthly
	recurring.DayOfMonth = 15
	if err := recurring.Validate(); err != nil {
		t.Fatalf("expected recurring ok, got %v", err)
	}
}

func TestNewID(t *testing.T) {
	a := NewID(BudgetIDPrefix)
	b := NewID(BudgetIDPrefix)
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if len(a) != len("bgt_")+16 {
		t.Fatalf("unexpected id length: %q", a)
	}
}
