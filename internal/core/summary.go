package core

import "github.com/shopspring/decimal"

// CategoryAmounts holds one amount per budget bucket. It is the shape of
// allocations, spending totals and remaining balances alike.
type CategoryAmounts struct {
	FixedCosts        decimal.Decimal `json:"fixedCosts"`
	Investments       decimal.Decimal `json:"investments"`
	Savings           decimal.Decimal `json:"savings"`
	GuiltFreeSpending decimal.Decimal `json:"guiltFreeSpending"`
}

// Get returns the amount for c, or zero for an unknown category.
func (a CategoryAmounts) Get(c Category) decimal.Decimal {
	switch c {
	case FixedCosts:
		return a.FixedCosts
	case Investments:
		return a.Investments
	case Savings:
		return a.Savings
	case GuiltFreeSpending:
		return a.GuiltFreeSpending
	default:
		return decimal.Zero
	}
}

// Add increases the amount for c and reports whether c was a known category.
func (a *CategoryAmounts) Add(c Category, v decimal.Decimal) bool {
	switch c {
	case FixedCosts:
		a.FixedCosts = a.FixedCosts.Add(v)
	case Investments:
		a.Investments = a.Investments.Add(v)
	case Savings:
		a.Savings = a.Savings.Add(v)
	case GuiltFreeSpending:
		a.GuiltFreeSpending = a.GuiltFreeSpending.Add(v)
	default:
		return false
	}
	return true
}

func (a CategoryAmounts) Total() decimal.Decimal {
	return a.FixedCosts.Add(a.Investments).Add(a.Savings).Add(a.GuiltFreeSpending)
}

// Equal compares amounts numerically, so 250 and 250.00 are the same.
func (a CategoryAmounts) Equal(b CategoryAmounts) bool {
	for _, c := range Categories() {
		if !a.Get(c).Equal(b.Get(c)) {
			return false
		}
	}
	return true
}
