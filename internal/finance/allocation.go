// Package finance holds the budget arithmetic: splitting income across the
// four buckets, summing spending, goal progress and the recommended-range
// checks of the conscious spending plan.
//
// Every function is pure. Amounts are decimals and nothing is rounded here;
// rounding happens when values are formatted for display.
package finance

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

var (
	hundred   = decimal.NewFromInt(100)
	tolerance = decimal.RequireFromString("0.01")
)

// ErrPercentagesSum is returned when the four percentages do not add up to 100.
var ErrPercentagesSum = fmt.Errorf("%w: budget percentages must sum to 100", core.ErrInvalidInput)

// Percentages is the share of income given to each bucket, in [0, 100].
type Percentages struct {
	FixedCosts        decimal.Decimal `json:"fixedCostsPercent"`
	Investments       decimal.Decimal `json:"investmentsPercent"`
	Savings           decimal.Decimal `json:"savingsPercent"`
	GuiltFreeSpending decimal.Decimal `json:"guiltFreeSpendingPercent"`
}

// DefaultPercentages is the 50/10/5/35 split offered before a user has a budget.
func DefaultPercentages() Percentages {
	return Percentages{
		FixedCosts:        decimal.NewFromInt(50),
		Investments:       decimal.NewFromInt(10),
		Savings:           decimal.NewFromInt(5),
		GuiltFreeSpending: decimal.NewFromInt(35),
	}
}

// PercentagesOf extracts the split stored on a budget.
func PercentagesOf(b core.Budget) Percentages {
	return Percentages{
		FixedCosts:        b.FixedCostsPercent,
		Investments:       b.InvestmentsPercent,
		Savings:           b.SavingsPercent,
		GuiltFreeSpending: b.GuiltFreeSpendingPercent,
	}
}

func (p Percentages) Get(c core.Category) decimal.Decimal {
	switch c {
	case core.FixedCosts:
		return p.FixedCosts
	case core.Investments:
		return p.Investments
	case core.Savings:
		return p.Savings
	case core.GuiltFreeSpending:
		return p.GuiltFreeSpending
	default:
		return decimal.Zero
	}
}

func (p Percentages) Sum() decimal.Decimal {
	return p.FixedCosts.Add(p.Investments).Add(p.Savings).Add(p.GuiltFreeSpending)
}

// ValidatePercentages accepts a split whose sum is within 0.01 of 100 and
// whose parts each lie in [0, 100].
func ValidatePercentages(p Percentages) error {
	var errs []error
	for _, c := range core.Categories() {
		v := p.Get(c)
		if v.IsNegative() || v.GreaterThan(hundred) {
			errs = append(errs, fmt.Errorf("%w: %s is %s", core.ErrInvalidPercentage, c, v))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return err
	}

	sum := p.Sum()
	if sum.Sub(hundred).Abs().GreaterThanOrEqual(tolerance) {
		return fmt.Errorf("%w: got %s", ErrPercentagesSum, sum)
	}
	return nil
}

// Allocate splits income across the buckets as income × percent / 100.
// The percentages are not validated; that is the caller's boundary.
func Allocate(income decimal.Decimal, p Percentages) core.CategoryAmounts {
	share := func(pct decimal.Decimal) decimal.Decimal {
		return income.Mul(pct).Div(hundred)
	}
	return core.CategoryAmounts{
		FixedCosts:        share(p.FixedCosts),
		Investments:       share(p.Investments),
		Savings:           share(p.Savings),
		GuiltFreeSpending: share(p.GuiltFreeSpending),
	}
}
