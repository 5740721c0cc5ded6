package finance

import (
	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

// Range is an inclusive recommended percentage band.
type Range struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

func (r Range) Contains(pct decimal.Decimal) bool {
	return pct.GreaterThanOrEqual(r.Min) && pct.LessThanOrEqual(r.Max)
}

func newRange(lo, hi int64) Range {
	return Range{Min: decimal.NewFromInt(lo), Max: decimal.NewFromInt(hi)}
}

// Recommended returns the suggested band for a category.
func Recommended(c core.Category) (Range, bool) {
	switch c {
	case core.FixedCosts:
		return newRange(50, 60), true
	case core.Investments:
		return newRange(10, 20), true
	case core.Savings:
		return newRange(5, 10), true
	case core.GuiltFreeSpending:
		return newRange(20, 35), true
	default:
		return Range{}, false
	}
}

// CategoryStatus is one row of the budget overview.
type CategoryStatus struct {
	Category          core.Category   `json:"category"`
	Label             string          `json:"label"`
	Percent           decimal.Decimal `json:"percent"`
	Allocated         decimal.Decimal `json:"allocated"`
	Spent             decimal.Decimal `json:"spent"`
	Remaining         decimal.Decimal `json:"remaining"`
	Progress          decimal.Decimal `json:"progress"`
	OverBudget        bool            `json:"overBudget"`
	Recommended       Range           `json:"recommended"`
	WithinRecommended bool            `json:"withinRecommended"`
	BelowRecommended  bool            `json:"belowRecommended"`
}

// BudgetStatus compares what was spent in each category with what the
// split allocated to it. Progress is spent / allocated, capped at 100 for
// display; OverBudget keeps the uncapped answer.
func BudgetStatus(income decimal.Decimal, p Percentages, spending core.CategoryAmounts) []CategoryStatus {
	allocated := Allocate(income, p)
	out := make([]CategoryStatus, 0, len(core.Categories()))
	for _, c := range core.Categories() {
		rec, _ := Recommended(c)
		pct := p.Get(c)
		alloc := allocated.Get(c)
		spent := spending.Get(c)
		out = append(out, CategoryStatus{
			Category:          c,
			Label:             c.Label(),
			Percent:           pct,
			Allocated:         alloc,
			Spent:             spent,
			Remaining:         alloc.Sub(spent),
			Progress:          clampedShare(spent, alloc),
			OverBudget:        spent.GreaterThan(alloc),
			Recommended:       rec,
			WithinRecommended: rec.Contains(pct),
			BelowRecommended:  pct.LessThan(rec.Min),
		})
	}
	return out
}
