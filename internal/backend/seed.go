package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
	"budgetwise/internal/payperiod"
	"budgetwise/internal/services"
	"budgetwise/internal/storage"
)

// DemoEmail identifies the demo user; seeding is skipped when it exists.
const DemoEmail = "john@example.com"

type demoEntry struct {
	description string
	amount      string
	category    core.Category
}

var demoTransactions = []demoEntry{
	{"Rent Payment", "-1200.00", core.FixedCosts},
	{"Electric Bill", "-89.50", core.FixedCosts},
	{"Internet Bill", "-79.99", core.FixedCosts},
	{"Car Insurance", "-145.00", core.FixedCosts},
	{"Phone Bill", "-85.00", core.FixedCosts},
	{"Grocery Shopping", "-125.50", core.FixedCosts},
	{"Gas Station", "-45.00", core.FixedCosts},
	{"401k Contribution", "-480.00", core.Investments},
	{"Roth IRA", "-250.00", core.Investments},
	{"Emergency Fund Transfer", "-200.00", core.Savings},
	{"Vacation Savings", "-120.00", core.Savings},
	{"Restaurant Dinner", "-67.50", core.GuiltFreeSpending},
	{"Coffee Shop", "-12.50", core.GuiltFreeSpending},
	{"Movie Theater", "-28.00", core.GuiltFreeSpending},
	{"Amazon Purchase", "-89.99", core.GuiltFreeSpending},
	{"Gym Membership", "-39.99", core.GuiltFreeSpending},
	{"Streaming Services", "-45.97", core.GuiltFreeSpending},
	{"Book Store", "-24.99", core.GuiltFreeSpending},
}

// demoSets is how many times the transaction list is repeated across the
// last 30 days.
const demoSets = 3

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Seed loads the demo dataset: one bi-weekly user with a 55/15/10/20 budget,
// three goals, three automations and a month of transactions. It returns the
// existing user untouched when the demo user is already present.
func Seed(ctx context.Context, repo storage.Repository, policy payperiod.PayDayPolicy, now time.Time) (core.User, error) {
	existing, err := repo.GetUserByEmail(ctx, DemoEmail)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, storage.ErrNotFound):
		return core.User{}, fmt.Errorf("look up demo user: %w", err)
	}

	svc := services.NewBudgetService(repo, services.WithPayDayPolicy(policy))

	payDay := 5
	lastPay := core.NewDate(2025, 1, 3)
	user, err := svc.CreateUser(ctx, core.User{
		FirstName:      "John",
		LastName:       "Smith",
		Email:          DemoEmail,
		PaySchedule:    core.BiWeekly,
		PayDay:         &payDay,
		LastPayDate:    &lastPay,
		AfterTaxIncome: d("3200.00"),
		IsOnboarded:    true,
	})
	if err != nil {
		return core.User{}, err
	}

	if _, err := svc.CreateBudget(ctx, core.Budget{
		UserID:                   user.ID,
		FixedCostsPercent:        d("55.00"),
		InvestmentsPercent:       d("15.00"),
		SavingsPercent:           d("10.00"),
		GuiltFreeSpendingPercent: d("20.00"),
	}); err != nil {
		return core.User{}, err
	}

	goals := []core.Goal{
		{Name: "Emergency Fund", TargetAmount: d("10000.00"), CurrentAmount: d("2500.00"), Category: core.GoalEmergency},
		{Name: "Hawaii Vacation", TargetAmount: d("5000.00"), CurrentAmount: d("1200.00"), Category: core.GoalVacation},
		{Name: "House Down Payment", TargetAmount: d("50000.00"), CurrentAmount: d("15000.00"), Category: core.GoalHouse},
	}
	for _, g := range goals {
		g.UserID, g.IsActive = user.ID, true
		if _, err := svc.CreateGoal(ctx, g); err != nil {
			return core.User{}, err
		}
	}

	automations := []core.Automation{
		{Name: "401k Contribution", Amount: d("480.00"), Category: core.Investments},
		{Name: "Emergency Fund", Amount: d("200.00"), Category: core.Savings},
		{Name: "Vacation Savings", Amount: d("120.00"), Category: core.Savings},
	}
	for _, a := range automations {
		a.UserID, a.Frequency, a.IsActive = user.ID, core.EveryTwoWeeks, true
		created, err := svc.CreateAutomation(ctx, a)
		if err != nil {
			return core.User{}, err
		}
		// The sample transactions already contain this period's transfers.
		if err := repo.MarkAutomationRun(ctx, created.ID, now); err != nil {
			return core.User{}, fmt.Errorf("mark automation %d: %w", created.ID, err)
		}
	}

	today := core.DateOf(now)
	for set := 0; set < demoSets; set++ {
		for i, e := range demoTransactions {
			offset := (i*7 + set*11) % 30
			if _, err := svc.RecordTransaction(ctx, core.Transaction{
				UserID:      user.ID,
				Description: e.description,
				Amount:      d(e.amount),
				Category:    e.category,
				Date:        today.AddDays(-offset),
			}); err != nil {
				return core.User{}, err
			}
		}
	}

	return user, nil
}
