// Package payperiod computes the pay period that contains a given day.
//
// Two modes exist. Anchored mode uses the user's pay day and last known pay
// date to project exact boundaries. Fallback mode is used when either is
// missing and approximates the period from the calendar: monthly periods are
// calendar months and weekly periods are counted from FallbackReference.
//
// Each pay schedule has its own strategy, see strategyFor.
package payperiod

import (
	"fmt"
	"strings"

	"budgetwise/internal/core"
)

// FallbackReference is the start of period zero for weekly and bi-weekly
// schedules without an anchor. It is a Monday.
var FallbackReference = core.NewDate(2024, 1, 1)

// Anchor is a known (pay day, last pay date) pair.
type Anchor struct {
	PayDay      int
	LastPayDate core.Date
}

// AnchorFor returns the anchor stored on a user, or nil when the user has
// not given both a pay day and a last pay date.
func AnchorFor(u core.User) *Anchor {
	if u.PayDay == nil || u.LastPayDate == nil || u.LastPayDate.IsZero() {
		return nil
	}
	return &Anchor{PayDay: *u.PayDay, LastPayDate: *u.LastPayDate}
}

// PayDayPolicy decides what happens when a monthly pay day does not exist
// in a month, e.g. the 31st in February.
type PayDayPolicy int

const (
	// PayDayClamp moves the pay day to the last day of the month.
	PayDayClamp PayDayPolicy = iota
	// PayDayStrict rejects the computation with core.ErrAmbiguousConfiguration.
	PayDayStrict
)

func (p PayDayPolicy) String() string {
	switch p {
	case PayDayClamp:
		return "clamp"
	case PayDayStrict:
		return "strict"
	default:
		return fmt.Sprintf("PayDayPolicy(%d)", int(p))
	}
}

// ParsePayDayPolicy parses "clamp" or "strict". An empty string selects clamp.
func ParsePayDayPolicy(s string) (PayDayPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "clamp":
		return PayDayClamp, nil
	case "strict":
		return PayDayStrict, nil
	default:
		return PayDayClamp, fmt.Errorf("%w: unknown pay day policy %q", core.ErrInvalidInput, s)
	}
}

type options struct {
	policy PayDayPolicy
}

// Option configures a computation.
type Option func(*options)

// WithPayDayPolicy selects how out-of-range monthly pay days are handled.
func WithPayDayPolicy(p PayDayPolicy) Option {
	return func(o *options) { o.policy = p }
}

func buildOptions(opts []Option) options {
	o := options{policy: PayDayClamp}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Compute returns the inclusive pay period containing ref.
//
// A nil anchor selects fallback mode. With an anchor the pay day is checked
// against the range its schedule allows before anything is computed.
func Compute(schedule core.PaySchedule, ref core.Date, anchor *Anchor, opts ...Option) (Period, error) {
	if ref.IsZero() {
		return Period{}, fmt.Errorf("%w: missing reference date", core.ErrInvalidDate)
	}
	s, err := strategyFor(schedule)
	if err != nil {
		return Period{}, err
	}
	o := buildOptions(opts)

	var start, end core.Date
	if anchor != nil {
		if err := core.ValidatePayDay(schedule, anchor.PayDay); err != nil {
			return Period{}, err
		}
		if anchor.LastPayDate.IsZero() {
			return Period{}, fmt.Errorf("%w: anchor without last pay date", core.ErrInvalidDate)
		}
		start, end, err = s.anchored(ref, *anchor, o)
	} else {
		start, end, err = s.fallback(ref, o)
	}
	if err != nil {
		return Period{}, err
	}

	return Period{
		Schedule: schedule,
		Start:    start,
		End:      end,
		anchor:   anchor,
		opts:     o,
	}, nil
}

// strategy computes period bounds for one schedule.
type strategy interface {
	anchored(ref core.Date, a Anchor, o options) (start, end core.Date, err error)
	fallback(ref core.Date, o options) (start, end core.Date, err error)
}

func strategyFor(s core.PaySchedule) (strategy, error) {
	switch s {
	case core.Weekly, core.BiWeekly:
		return rollingStrategy{length: s.NominalDays()}, nil
	case core.Monthly:
		return monthlyStrategy{}, nil
	case core.SemiMonthly:
		return semiMonthlyStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidSchedule, s)
	}
}

// rollingStrategy steps fixed-length periods from an origin date.
type rollingStrategy struct {
	length int
}

func (r rollingStrategy) anchored(ref core.Date, a Anchor, _ options) (core.Date, core.Date, error) {
	start, end := r.from(a.LastPayDate, ref)
	return start, end, nil
}

func (r rollingStrategy) fallback(ref core.Date, _ options) (core.Date, core.Date, error) {
	start, end := r.from(FallbackReference, ref)
	return start, end, nil
}

func (r rollingStrategy) from(origin, ref core.Date) (core.Date, core.Date) {
	elapsed := floorDiv(origin.DaysUntil(ref), r.length)
	start := origin.AddDays(elapsed * r.length)
	return start, start.AddDays(r.length - 1)
}

// floorDiv rounds toward negative infinity so that dates before the origin
// land in the period that contains them.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

type monthlyStrategy struct{}

// anchored treats the pay date as the last day of the period it closes.
func (monthlyStrategy) anchored(ref core.Date, a Anchor, o options) (core.Date, core.Date, error) {
	payDate, err := payDateIn(ref.Year(), ref.Month(), a.PayDay, o.policy)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}

	if !ref.After(payDate.Time) {
		prevMonth := core.NewDate(ref.Year(), ref.Month()-1, 1)
		prevPayDate, err := payDateIn(prevMonth.Year(), prevMonth.Month(), a.PayDay, o.policy)
		if err != nil {
			return core.Date{}, core.Date{}, err
		}
		return prevPayDate.AddDays(1), payDate, nil
	}

	nextMonth := core.NewDate(ref.Year(), ref.Month()+1, 1)
	nextPayDate, err := payDateIn(nextMonth.Year(), nextMonth.Month(), a.PayDay, o.policy)
	if err != nil {
		return core.Date{}, core.Date{}, err
	}
	return payDate.AddDays(1), nextPayDate, nil
}

func (monthlyStrategy) fallback(ref core.Date, _ options) (core.Date, core.Date, error) {
	start := core.NewDate(ref.Year(), ref.Month(), 1)
	return start, core.NewDate(ref.Year(), ref.Month(), ref.DaysInMonth()), nil
}

// payDateIn resolves a day of month, applying the policy when the month is too short.
func payDateIn(year, month, payDay int, policy PayDayPolicy) (core.Date, error) {
	last := core.DaysIn(year, month)
	if payDay <= last {
		return core.NewDate(year, month, payDay), nil
	}
	switch policy {
	case PayDayStrict:
		return core.Date{}, fmt.Errorf("%w: pay day %d does not exist in %04d-%02d",
			core.ErrAmbiguousConfiguration, payDay, year, month)
	default:
		return core.NewDate(year, month, last), nil
	}
}

// semiMonthlyStrategy splits every month at the 15th. The anchor only
// contributes validation because the split does not depend on it.
type semiMonthlyStrategy struct{}

func (s semiMonthlyStrategy) anchored(ref core.Date, _ Anchor, o options) (core.Date, core.Date, error) {
	return s.fallback(ref, o)
}

func (semiMonthlyStrategy) fallback(ref core.Date, _ options) (core.Date, core.Date, error) {
	y, m := ref.Year(), ref.Month()
	if ref.Day() <= 15 {
		return core.NewDate(y, m, 1), core.NewDate(y, m, 15), nil
	}
	return core.NewDate(y, m, 16), core.NewDate(y, m, ref.DaysInMonth()), nil
}
