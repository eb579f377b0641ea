// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for recurring transaction dueness
// checking. Each frequency (daily, weekly, monthly, yearly) has its own
// strategy that encapsulates the logic for determining if a transaction is due.

package services

import (
	"fmt"
	"time"

	"budgeteer/internal/core"
)

// DuenessChecker is the strategy interface for checking if a recurring
// transaction is due. Each implementation encapsulates the algorithm for a
// specific frequency.
type DuenessChecker interface {
	// IsDue returns true if the recurring transaction should be run based on
	// the last run time and the current time. The transaction supplies the
	// schedule anchors (start date, day of month).
	IsDue(lastRun, now time.Time, tx core.Transaction) bool
}

// DailyChecker implements DuenessChecker for daily recurring transactions.
type DailyChecker struct{}

// IsDue returns true if the last run was before today.
func (DailyChecker) IsDue(lastRun, now time.Time, _ core.Transaction) bool {
	if lastRun.IsZero() {
		return true
	}
	return !core.SameDay(lastRun, now)
}

// WeeklyChecker implements DuenessChecker for weekly recurring transactions.
type WeeklyChecker struct{}

// IsDue returns true if 7 or more days have passed since the last run.
func (WeeklyChecker) IsDue(lastRun, now time.Time, _ core.Transaction) bool {
	if lastRun.IsZero() {
		return true
	}
	daysSince := now.Sub(lastRun).Hours() / 24
	return daysSince >= 7
}

// MonthlyChecker implements DuenessChecker for monthly recurring transactions.
type MonthlyChecker struct{}

// IsDue returns true if we're in a new month and have reached the target day.
func (MonthlyChecker) IsDue(lastRun, now time.Time, tx core.Transaction) bool {
	if lastRun.IsZero() {
		return true
	}

	// Already run this month?
	if lastRun.Year() == now.Year() && lastRun.Month() == now.Month() {
		return false
	}

	// Clamp the target day to months that don't have it (e.g. the 31st in
	// February).
	targetDay := tx.DayOfMonth
	if targetDay == 0 {
		targetDay = tx.Date.Day()
	}
	lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if targetDay > lastDayOfMonth {
		targetDay = lastDayOfMonth
	}

	return now.Day() >= targetDay
}

// YearlyChecker implements DuenessChecker for yearly recurring transactions.
type YearlyChecker struct{}

// IsDue returns true if we're in a new year and have reached the target month
// and day, both taken from the transaction's original date.
func (YearlyChecker) IsDue(lastRun, now time.Time, tx core.Transaction) bool {
	if lastRun.IsZero() {
		return true
	}

	// Already run this year?
	if lastRun.Year() == now.Year() {
		return false
	}

	targetMonth := int(tx.Date.Month())
	targetDay := tx.Date.Day()

	if int(now.Month()) < targetMonth {
		return false
	}

	if int(now.Month()) == targetMonth {
		lastDayOfMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
		if targetDay > lastDayOfMonth {
			targetDay = lastDayOfMonth
		}
		return now.Day() >= targetDay
	}

	// We're past the target month
	return true
}

// duenessStrategies maps frequencies to their corresponding checkers.
// This registry enables O(1) lookup and easy extension for new frequencies.
var duenessStrategies = map[core.Frequency]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the appropriate dueness checker for a frequency.
// Returns an error if the frequency is not supported.
func GetDuenessChecker(frequency core.Frequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("unknown frequency: %s", frequency)
	}
	return checker, nil
}

// RegisterDuenessChecker allows registering custom dueness checkers for new
// frequencies. This supports the Open/Closed principle by allowing extension
// without modification.
func RegisterDuenessChecker(frequency core.Frequency, checker DuenessChecker) {
	duenessStrategies[frequency] = checker
}
