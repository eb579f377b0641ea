package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income  CategoryType = "income"
	Expense CategoryType = "expense"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	// CategoryType classifies a category as an income or expense bucket.
	// A transaction's direction is always derived from its category's type,
	// never from a stored sign.
	CategoryType string

	// Frequency is the repetition schedule of a recurring transaction.
	Frequency string

	Money struct {
		Cents int64
	}

	Budget struct {
		ID          string
		Name        string
		Description string
		Color       string
		IsArchived  bool
		CreatedAt   time.Time
	}

	Category struct {
		ID       string
		BudgetID string
		Name     string
		Type     CategoryType
		Planned  Money
		Color    string
		IsActive bool
	}

	// Transaction carries an unsigned amount magnitude. Date is a calendar
	// day (UTC midnight, no time-of-day component). Frequency and DayOfMonth
	// are only meaningful when IsRecurring is set.
	Transaction struct {
		ID          string
		BudgetID    string
		CategoryID  string
		Description string
		Amount      Money
		Date        time.Time
		IsPosted    bool
		IsRecurring bool
		Frequency   Frequency
		DayOfMonth  int
		CreatedAt   time.Time
	}
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNegativeAmount     = errors.New("amount must not be negative")
	ErrEmptyName          = errors.New("empty name")
	ErrEmptyDescription   = errors.New("empty description")
	ErrEmptyBudgetID      = errors.New("empty budget id")
	ErrEmptyCategoryID    = errors.New("empty category id")
	ErrInvalidType        = errors.New("invalid category type")
	ErrInvalidFrequency   = errors.New("invalid frequency")
	ErrZeroDate           = errors.New("date cannot be zero")
	ErrInvalidDayOfMonth  = errors.New("invalid day of month")
)

// Day truncates t to its calendar day in UTC. All transaction dates and
// bucket keys are normalized through this so that two instants on the same
// day always compare equal.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts a calendar day by n whole days. Calendar arithmetic is
// used rather than 24h durations so offsets stay meaningful across DST.
func AddDays(t time.Time, n int) time.Time {
	return Day(t).AddDate(0, 0, n)
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

func (t CategoryType) Valid() bool {
	return t == Income || t == Expense
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}

// Validate rejects negative magnitudes. Zero is allowed: planned amounts
// and placeholder transactions may legitimately be zero.
func (m Money) Validate() error {
	if m.Cents < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// Abs returns the magnitude of the amount.
func (m Money) Abs() Money {
	if m.Cents < 0 {
		return Money{Cents: -m.Cents}
	}
	return m
}

func (b Budget) Validate() error {
	if len(strings.TrimSpace(b.Name)) == 0 {
		return ErrEmptyName
	}
	if len(b.Name) > 100 {
		return errors.New("name too long (max 100 characters)")
	}
	if len(b.Description) > 500 {
		return errors.New("description too long (max 500 characters)")
	}
	return nil
}

func (c Category) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if c.BudgetID == "" {
		return ErrEmptyBudgetID
	}
	if !c.Type.Valid() {
		return ErrInvalidType
	}
	if err := c.Planned.Validate(); err != nil {
		return err
	}
	return nil
}

func (tx Transaction) Validate() error {
	if tx.BudgetID == "" {
		return ErrEmptyBudgetID
	}
	if tx.CategoryID == "" {
		return ErrEmptyCategoryID
	}
	if len(strings.TrimSpace(tx.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(tx.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := tx.Amount.Validate(); err != nil {
		return err
	}
	if tx.Date.IsZero() {
		return ErrZeroDate
	}
	if tx.IsRecurring {
		if !tx.Frequency.Valid() {
			return ErrInvalidFrequency
		}
		if tx.Frequency == Monthly && (tx.DayOfMonth < 1 || tx.DayOfMonth > 31) {
			return ErrInvalidDayOfMonth
		}
	}
	return nil
}
