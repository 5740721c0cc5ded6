package finance

import (
	"fmt"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

// GoalProgress returns current / target × 100 clamped to [0, 100].
// A zero target yields zero progress rather than an error.
func GoalProgress(current, target decimal.Decimal) (decimal.Decimal, error) {
	if current.IsNegative() || target.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: goal amounts %s / %s", core.ErrNegativeAmount, current, target)
	}
	return clampedShare(current, target), nil
}

// GoalProgressString is GoalProgress for amounts still in their decimal string form.
func GoalProgressString(current, target string) (decimal.Decimal, error) {
	c, err := core.ParseAmount(current)
	if err != nil {
		return decimal.Zero, err
	}
	t, err := core.ParseAmount(target)
	if err != nil {
		return decimal.Zero, err
	}
	return GoalProgress(c, t)
}

// IsGoalComplete reports whether progress has reached 100.
func IsGoalComplete(progress decimal.Decimal) bool {
	return progress.GreaterThanOrEqual(hundred)
}

// clampedShare is part / whole × 100 kept within [0, 100].
func clampedShare(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() || !part.IsPositive() {
		return decimal.Zero
	}
	share := part.Mul(hundred).Div(whole)
	if share.GreaterThan(hundred) {
		return hundred
	}
	return share
}
