package services

import (
	"fmt"
	"time"

	"budgetwise/internal/core"
)

// DuenessChecker decides whether an automation should run again. Each
// frequency has its own strategy.
type DuenessChecker interface {
	// IsDue reports whether a transfer last made at lastRun is due again at
	// now. anchor is the day the automation was set up. A zero lastRun
	// means it never ran.
	IsDue(lastRun, now time.Time, anchor core.Date) bool
}

// IntervalChecker is due once a fixed number of days have passed.
type IntervalChecker struct {
	Days int
}

func (c IntervalChecker) IsDue(lastRun, now time.Time, _ core.Date) bool {
	if lastRun.IsZero() {
		return true
	}
	return core.DateOf(lastRun).DaysUntil(core.DateOf(now)) >= c.Days
}

// MonthlyChecker is due once per calendar month, on or after the anchor's
// day. Anchors past the end of a short month fall on its last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastRun, now time.Time, anchor core.Date) bool {
	if lastRun.IsZero() {
		return true
	}

	last, today := core.DateOf(lastRun), core.DateOf(now)
	if last.Year() == today.Year() && last.Month() == today.Month() {
		return false
	}
	if last.After(today.Time) {
		return false
	}

	target := anchor.Day()
	if days := today.DaysInMonth(); target > days {
		target = days
	}
	return today.Day() >= target
}

var duenessStrategies = map[core.AutomationFrequency]DuenessChecker{
	core.EveryWeek:     IntervalChecker{Days: 7},
	core.EveryTwoWeeks: IntervalChecker{Days: 14},
	core.EveryMonth:    MonthlyChecker{},
}

// GetDuenessChecker returns the strategy for an automation frequency.
func GetDuenessChecker(frequency core.AutomationFrequency) (DuenessChecker, error) {
	checker, ok := duenessStrategies[frequency]
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidFrequency, frequency)
	}
	return checker, nil
}

// IsAutomationDue applies the automation's strategy at now.
func IsAutomationDue(a core.Automation, now time.Time) (bool, error) {
	checker, err := GetDuenessChecker(a.Frequency)
	if err != nil {
		return false, err
	}
	var lastRun time.Time
	if a.LastRunAt != nil {
		lastRun = *a.LastRunAt
	}
	return checker.IsDue(lastRun, now, core.DateOf(a.CreatedAt)), nil
}
