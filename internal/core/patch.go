package core

import "github.com/shopspring/decimal"

// Patch types carry partial updates. A nil field leaves the stored value
// untouched; updates are last-write-wins.
type (
	UserPatch struct {
		FirstName      *string          `json:"firstName,omitempty"`
		LastName       *string          `json:"lastName,omitempty"`
		Email          *string          `json:"email,omitempty"`
		PaySchedule    *PaySchedule     `json:"paySchedule,omitempty"`
		PayDay         *int             `json:"payDay,omitempty"`
		LastPayDate    *Date            `json:"lastPayDate,omitempty"`
		AfterTaxIncome *decimal.Decimal `json:"afterTaxIncome,omitempty"`
		IsOnboarded    *bool            `json:"isOnboarded,omitempty"`
	}

	BudgetPatch struct {
		FixedCostsPercent        *decimal.Decimal `json:"fixedCostsPercent,omitempty"`
		InvestmentsPercent       *decimal.Decimal `json:"investmentsPercent,omitempty"`
		SavingsPercent           *decimal.Decimal `json:"savingsPercent,omitempty"`
		GuiltFreeSpendingPercent *decimal.Decimal `json:"guiltFreeSpendingPercent,omitempty"`
	}

	TransactionPatch struct {
		Description    *string          `json:"description,omitempty"`
		Amount         *decimal.Decimal `json:"amount,omitempty"`
		Category       *Category        `json:"category,omitempty"`
		Date           *Date            `json:"date,omitempty"`
		PayPeriodStart *Date            `json:"payPeriodStart,omitempty"`
		PayPeriodEnd   *Date            `json:"payPeriodEnd,omitempty"`
	}

	GoalPatch struct {
		Name          *string          `json:"name,omitempty"`
		TargetAmount  *decimal.Decimal `json:"targetAmount,omitempty"`
		CurrentAmount *decimal.Decimal `json:"currentAmount,omitempty"`
		Category      *GoalCategory    `json:"category,omitempty"`
		IsActive      *bool            `json:"isActive,omitempty"`
	}

	AutomationPatch struct {
		Name      *string              `json:"name,omitempty"`
		Amount    *decimal.Decimal     `json:"amount,omitempty"`
		Category  *Category            `json:"category,omitempty"`
		Frequency *AutomationFrequency `json:"frequency,omitempty"`
		IsActive  *bool                `json:"isActive,omitempty"`
	}
)

func (p UserPatch) Apply(u *User) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.PaySchedule != nil {
		u.PaySchedule = *p.PaySchedule
	}
	if p.PayDay != nil {
		day := *p.PayDay
		u.PayDay = &day
	}
	if p.LastPayDate != nil {
		d := *p.LastPayDate
		u.LastPayDate = &d
	}
	if p.AfterTaxIncome != nil {
		u.AfterTaxIncome = *p.AfterTaxIncome
	}
	if p.IsOnboarded != nil {
		u.IsOnboarded = *p.IsOnboarded
	}
}

func (p BudgetPatch) Apply(b *Budget) {
	if p.FixedCostsPercent != nil {
		b.FixedCostsPercent = *p.FixedCostsPercent
	}
	if p.InvestmentsPercent != nil {
		b.InvestmentsPercent = *p.InvestmentsPercent
	}
	if p.SavingsPercent != nil {
		b.SavingsPercent = *p.SavingsPercent
	}
	if p.GuiltFreeSpendingPercent != nil {
		b.GuiltFreeSpendingPercent = *p.GuiltFreeSpendingPercent
	}
}

// TouchesPeriod reports whether applying p can move the transaction to another pay period.
func (p TransactionPatch) TouchesPeriod() bool {
	return p.Date != nil || p.PayPeriodStart != nil || p.PayPeriodEnd != nil
}

func (p TransactionPatch) Apply(t *Transaction) {
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Amount != nil {
		t.Amount = *p.Amount
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.PayPeriodStart != nil {
		t.PayPeriodStart = *p.PayPeriodStart
	}
	if p.PayPeriodEnd != nil {
		t.PayPeriodEnd = *p.PayPeriodEnd
	}
}

func (p GoalPatch) Apply(g *Goal) {
	if p.Name != nil {
		g.Name = *p.Name
	}
	if p.TargetAmount != nil {
		g.TargetAmount = *p.TargetAmount
	}
	if p.CurrentAmount != nil {
		g.CurrentAmount = *p.CurrentAmount
	}
	if p.Category != nil {
		g.Category = *p.Category
	}
	if p.IsActive != nil {
		g.IsActive = *p.IsActive
	}
}

func (p AutomationPatch) Apply(a *Automation) {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Amount != nil {
		a.Amount = *p.Amount
	}
	if p.Category != nil {
		a.Category = *p.Category
	}
	if p.Frequency != nil {
		a.Frequency = *p.Frequency
	}
	if p.IsActive != nil {
		a.IsActive = *p.IsActive
	}
}
