package payperiod

import (
	"math"
	"time"

	"budgetwise/internal/core"
)

// Period is an inclusive range of days between two paychecks.
type Period struct {
	Schedule core.PaySchedule `json:"schedule"`
	Start    core.Date        `json:"periodStart"`
	End      core.Date        `json:"periodEnd"`

	anchor *Anchor
	opts   options
}

// Anchored reports whether the period was computed from a pay anchor.
func (p Period) Anchored() bool { return p.anchor != nil }

func (p Period) Contains(d core.Date) bool {
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

// Days is the number of days in the period, both ends included.
func (p Period) Days() int {
	return p.Start.DaysUntil(p.End) + 1
}

// NextPayDate is the day after the period ends.
func (p Period) NextPayDate() core.Date {
	return p.End.AddDays(1)
}

// Next returns the period that starts the day after p ends.
func (p Period) Next() (Period, error) {
	return p.recompute(p.End.AddDays(1))
}

// Previous returns the period that ends the day before p starts.
func (p Period) Previous() (Period, error) {
	return p.recompute(p.Start.AddDays(-1))
}

func (p Period) recompute(ref core.Date) (Period, error) {
	return Compute(p.Schedule, ref, p.anchor, WithPayDayPolicy(p.opts.policy))
}

// DaysRemaining counts the days left until the end of the period, rounded
// up. It never goes below zero.
func (p Period) DaysRemaining(now time.Time) int {
	left := float64(p.End.Unix()-now.Unix()) / (24 * 60 * 60)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left))
}

// Progress is the share of the period already elapsed on day now, in [0, 100].
func (p Period) Progress(now core.Date) float64 {
	total := p.Start.DaysUntil(p.End)
	elapsed := p.Start.DaysUntil(now)
	switch {
	case elapsed <= 0:
		return 0
	case total <= 0 || elapsed >= total:
		return 100
	}
	return float64(elapsed) / float64(total) * 100
}
