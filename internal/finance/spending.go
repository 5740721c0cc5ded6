package finance

import (
	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

// AggregateSpending sums the absolute value of every expense per category.
// Income (positive amounts) and unknown categories are skipped.
func AggregateSpending(txs []core.Transaction) core.CategoryAmounts {
	var out core.CategoryAmounts
	for _, tx := range txs {
		if !tx.Amount.IsNegative() {
			continue
		}
		out.Add(tx.Category, tx.Amount.Abs())
	}
	return out
}

// CashFlow summarizes money in and out of one pay period.
type CashFlow struct {
	PlannedIncome    decimal.Decimal `json:"plannedIncome"`
	OtherIncome      decimal.Decimal `json:"otherIncome"`
	Expenses         decimal.Decimal `json:"expenses"`
	ProjectedBalance decimal.Decimal `json:"projectedBalance"`
	SpentPercent     decimal.Decimal `json:"spentPercent"`
}

// TotalIncome is the paycheck plus any income transactions.
func (c CashFlow) TotalIncome() decimal.Decimal {
	return c.PlannedIncome.Add(c.OtherIncome)
}

// SummarizeCashFlow combines the period's paycheck with its transactions.
// SpentPercent is expenses as a share of total income, zero when there is
// no income.
func SummarizeCashFlow(plannedIncome decimal.Decimal, txs []core.Transaction) CashFlow {
	cf := CashFlow{PlannedIncome: plannedIncome}
	for _, tx := range txs {
		switch {
		case tx.Amount.IsNegative():
			cf.Expenses = cf.Expenses.Add(tx.Amount.Abs())
		case tx.Amount.IsPositive():
			cf.OtherIncome = cf.OtherIncome.Add(tx.Amount)
		}
	}
	income := cf.TotalIncome()
	cf.ProjectedBalance = income.Sub(cf.Expenses)
	if income.IsPositive() {
		cf.SpentPercent = cf.Expenses.Mul(hundred).Div(income)
	}
	return cf
}
