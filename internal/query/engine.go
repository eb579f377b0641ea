// Package query implements the transaction query engine: filtering,
// income/expense partitioning, calendar-day bucketing and aggregation over
// a budget's transactions. Everything here is a pure function over the
// inputs; this path runs on every filter change in a client, so it never
// returns an error and never mutates its arguments.
package query

import (
	"sort"
	"strings"
	"time"

	"budgeteer/internal/core"
)

type (
	// Filter is a conjunction of optional predicates. A nil pointer or zero
	// value means "no restriction" for that field.
	Filter struct {
		// Search is a case-insensitive substring match on the description.
		Search string
		// CategoryIDs restricts to a set of categories. When non-empty it
		// takes precedence over CategoryID; the two are never combined. An
		// empty set means no category restriction, not "match nothing".
		CategoryIDs []string
		// CategoryID restricts to a single category and is consulted only
		// when CategoryIDs is empty.
		CategoryID string
		Posted     *bool
		Recurring  *bool
		DateRange  *DateRange
	}

	// DateRange bounds transaction dates inclusively on both ends.
	DateRange struct {
		Start time.Time
		End   time.Time
	}

	// Bucket groups the transactions of one calendar day, preserving the
	// relative input order of its members.
	Bucket struct {
		Date         time.Time
		Transactions []core.Transaction
	}

	// Result is the full partitioned view: per-side buckets ordered most
	// recent first, plus aggregates computed over the filtered set only.
	Result struct {
		Income       []Bucket
		Expense      []Bucket
		TotalIncome  core.Money
		TotalExpense core.Money
		// Net is TotalIncome - TotalExpense and may be negative.
		Net int64
	}
)

// A transaction whose category id resolves to no known category is placed
// on the expense side rather than dropped, so totals always account for
// every filtered transaction. See DanglingCategorySide's test.
const DanglingCategorySide = core.Expense

// Run filters the transactions, partitions them by the owning category's
// type, groups each side into day buckets and computes the totals.
func Run(transactions []core.Transaction, categories []core.Category, f Filter) Result {
	typeByID := make(map[string]core.CategoryType, len(categories))
	for _, c := range categories {
		typeByID[c.ID] = c.Type
	}

	var res Result
	var income, expense []core.Transaction
	for _, tx := range transactions {
		if !matches(tx, f) {
			continue
		}
		side, ok := typeByID[tx.CategoryID]
		if !ok {
			side = DanglingCategorySide
		}
		// Amounts are stored as magnitudes, but Abs here keeps the totals
		// honest even against data written before that invariant held.
		switch side {
		case core.Income:
			income = append(income, tx)
			res.TotalIncome.Cents += tx.Amount.Abs().Cents
		default:
			expense = append(expense, tx)
			res.TotalExpense.Cents += tx.Amount.Abs().Cents
		}
	}

	res.Income = group(income)
	res.Expense = group(expense)
	res.Net = res.TotalIncome.Cents - res.TotalExpense.Cents
	return res
}

// Timeline is the chronological mode: one unified bucket list across all
// filtered transactions, no side partition. Grouping and ordering rules are
// identical to Run's.
func Timeline(transactions []core.Transaction, _ []core.Category, f Filter) []Bucket {
	var filtered []core.Transaction
	for _, tx := range transactions {
		if matches(tx, f) {
			filtered = append(filtered, tx)
		}
	}
	return group(filtered)
}

func matches(tx core.Transaction, f Filter) bool {
	if f.Search != "" && !strings.Contains(strings.ToLower(tx.Description), strings.ToLower(f.Search)) {
		return false
	}
	if len(f.CategoryIDs) > 0 {
		found := false
		for _, id := range f.CategoryIDs {
			if tx.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	} else if f.CategoryID != "" && tx.CategoryID != f.CategoryID {
		return false
	}
	if f.Posted != nil && tx.IsPosted != *f.Posted {
		return false
	}
	if f.Recurring != nil && tx.IsRecurring != *f.Recurring {
		return false
	}
	if f.DateRange != nil {
		day := core.Day(tx.Date)
		if day.Before(core.Day(f.DateRange.Start)) || day.After(core.Day(f.DateRange.End)) {
			return false
		}
	}
	return true
}

// group buckets transactions by calendar day, most recent day first.
// Within a bucket the input order is preserved; the day sort is stable and
// no secondary key is applied.
func group(transactions []core.Transaction) []Bucket {
	index := make(map[time.Time]int)
	var buckets []Bucket
	for _, tx := range transactions {
		day := core.Day(tx.Date)
		i, ok := index[day]
		if !ok {
			i = len(buckets)
			index[day] = i
			buckets = append(buckets, Bucket{Date: day})
		}
		buckets[i].Transactions = append(buckets[i].Transactions, tx)
	}
	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Date.After(buckets[j].Date)
	})
	return buckets
}
