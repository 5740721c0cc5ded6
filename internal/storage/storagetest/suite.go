// Package storagetest holds the behaviour every storage.Repository must
// share. Backends call Run from their own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/core"
	"budgetwise/internal/storage"
)

// Run exercises repo built fresh by newRepo for every subtest.
func Run(t *testing.T, newRepo func(t *testing.T) storage.Repository) {
	t.Run("users", func(t *testing.T) { testUsers(t, newRepo(t)) })
	t.Run("budgets", func(t *testing.T) { testBudgets(t, newRepo(t)) })
	t.Run("transactions", func(t *testing.T) { testTransactions(t, newRepo(t)) })
	t.Run("goals", func(t *testing.T) { testGoals(t, newRepo(t)) })
	t.Run("automations", func(t *testing.T) { testAutomations(t, newRepo(t)) })
	t.Run("insights", func(t *testing.T) { testInsights(t, newRepo(t)) })
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// SampleUser returns a valid user that has not been stored yet.
func SampleUser(email string) core.User {
	day := 5
	last := core.NewDate(2025, 1, 3)
	return core.User{
		FirstName:      "John",
		LastName:       "Smith",
		Email:          email,
		PaySchedule:    core.BiWeekly,
		PayDay:         &day,
		LastPayDate:    &last,
		AfterTaxIncome: dec("3200.00"),
		IsOnboarded:    true,
	}
}

func mustUser(t *testing.T, repo storage.Repository) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), SampleUser("john@example.com"))
	require.NoError(t, err)
	return u
}

func testUsers(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	u, err := repo.CreateUser(ctx, SampleUser("john@example.com"))
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "John", got.FirstName)
	assert.True(t, got.AfterTaxIncome.Equal(dec("3200")))
	require.NotNil(t, got.PayDay)
	assert.Equal(t, 5, *got.PayDay)
	require.NotNil(t, got.LastPayDate)
	assert.Equal(t, "2025-01-03", got.LastPayDate.String())

	byEmail, err := repo.GetUserByEmail(ctx, "JOHN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	_, err = repo.CreateUser(ctx, SampleUser("john@example.com"))
	assert.ErrorIs(t, err, storage.ErrDuplicateEmail)

	onboarded := false
	income := dec("4100.50")
	updated, err := repo.UpdateUser(ctx, u.ID, core.UserPatch{IsOnboarded: &onboarded, AfterTaxIncome: &income})
	require.NoError(t, err)
	assert.False(t, updated.IsOnboarded)
	assert.True(t, updated.AfterTaxIncome.Equal(income))
	assert.Equal(t, "Smith", updated.LastName)

	_, err = repo.GetUser(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.UpdateUser(ctx, 9999, core.UserPatch{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testBudgets(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	u := mustUser(t, repo)

	_, err := repo.GetBudgetByUserID(ctx, u.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	first, err := repo.CreateBudget(ctx, core.Budget{
		UserID:                   u.ID,
		FixedCostsPercent:        dec("50"),
		InvestmentsPercent:       dec("10"),
		SavingsPercent:           dec("5"),
		GuiltFreeSpendingPercent: dec("35"),
	})
	require.NoError(t, err)

	second, err := repo.CreateBudget(ctx, core.Budget{
		UserID:                   u.ID,
		FixedCostsPercent:        dec("55.00"),
		InvestmentsPercent:       dec("15.00"),
		SavingsPercent:           dec("10.00"),
		GuiltFreeSpendingPercent: dec("20.00"),
	})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	active, err := repo.GetBudgetByUserID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)

	savings := dec("12.5")
	updated, err := repo.UpdateBudget(ctx, second.ID, core.BudgetPatch{SavingsPercent: &savings})
	require.NoError(t, err)
	assert.True(t, updated.SavingsPercent.Equal(savings))
	assert.True(t, updated.FixedCostsPercent.Equal(dec("55")))

	got, err := repo.GetBudget(ctx, second.ID)
	require.NoError(t, err)
	assert.True(t, got.SavingsPercent.Equal(savings))

	_, err = repo.GetBudget(ctx, 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = repo.UpdateBudget(ctx, 9999, core.BudgetPatch{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testTransactions(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	u := mustUser(t, repo)

	start, end := core.NewDate(2025, 1, 3), core.NewDate(2025, 1, 16)
	record := func(desc, amount string, day core.Date, s, e core.Date) core.Transaction {
		t.Helper()
		tx, err := repo.CreateTransaction(ctx, core.Transaction{
			UserID:         u.ID,
			Description:    desc,
			Amount:         dec(amount),
			Category:       core.FixedCosts,
			Date:           day,
			PayPeriodStart: s,
			PayPeriodEnd:   e,
		})
		require.NoError(t, err)
		return tx
	}

	rent := record("Rent", "-1200.00", core.NewDate(2025, 1, 4), start, end)
	power := record("Electric", "-85.25", core.NewDate(2025, 1, 10), start, end)
	older := record("Internet", "-60", core.NewDate(2024, 12, 28), core.NewDate(2024, 12, 20), core.NewDate(2025, 1, 2))

	all, err := repo.ListTransactionsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{power.ID, rent.ID, older.ID}, []int64{all[0].ID, all[1].ID, all[2].ID})
	assert.True(t, all[0].Amount.Equal(dec("-85.25")))

	inPeriod, err := repo.ListTransactionsByPayPeriod(ctx, u.ID, start, end)
	require.NoError(t, err)
	require.Len(t, inPeriod, 2)
	assert.Equal(t, power.ID, inPeriod[0].ID)

	// Bounds must match exactly, not overlap.
	none, err := repo.ListTransactionsByPayPeriod(ctx, u.ID, start, end.AddDays(1))
	require.NoError(t, err)
	assert.Empty(t, none)

	amount := dec("-1250")
	category := core.GuiltFreeSpending
	updated, err := repo.UpdateTransaction(ctx, rent.ID, core.TransactionPatch{Amount: &amount, Category: &category})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(amount))
	assert.Equal(t, core.GuiltFreeSpending, updated.Category)
	assert.Equal(t, "Rent", updated.Description)

	got, err := repo.GetTransaction(ctx, rent.ID)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-04", got.Date.String())
	assert.Equal(t, start.String(), got.PayPeriodStart.String())

	require.NoError(t, repo.DeleteTransaction(ctx, rent.ID))
	assert.ErrorIs(t, repo.DeleteTransaction(ctx, rent.ID), storage.ErrNotFound)
	_, err = repo.GetTransaction(ctx, rent.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = repo.UpdateTransaction(ctx, rent.ID, core.TransactionPatch{})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testGoals(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	u := mustUser(t, repo)

	g, err := repo.CreateGoal(ctx, core.Goal{
		UserID:        u.ID,
		Name:          "Emergency Fund",
		TargetAmount:  dec("10000.00"),
		CurrentAmount: dec("2500.00"),
		Category:      core.GoalEmergency,
		IsActive:      true,
	})
	require.NoError(t, err)

	g, err = repo.AddGoalContribution(ctx, g.ID, dec("250.50"))
	require.NoError(t, err)
	assert.True(t, g.CurrentAmount.Equal(dec("2750.50")))

	inactive := false
	g, err = repo.UpdateGoal(ctx, g.ID, core.GoalPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, g.IsActive)

	goals, err := repo.ListGoalsByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.True(t, goals[0].CurrentAmount.Equal(dec("2750.5")))

	require.NoError(t, repo.DeleteGoal(ctx, g.ID))
	assert.ErrorIs(t, repo.DeleteGoal(ctx, g.ID), storage.ErrNotFound)
	_, err = repo.AddGoalContribution(ctx, g.ID, dec("1"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func testAutomations(t *testing.T, repo storage.Repository) {
	ctx := context.Background()
	u := mustUser(t, repo)

	a, err := repo.CreateAutomation(ctx, core.Automation{
		UserID:    u.ID,
		Name:      "401k Contribution",
		Amount:    dec("480.00"),
		Category:  core.Investments,
		Frequency: core.EveryTwoWeeks,
		IsActive:  true,
	})
	require.NoError(t, err)
	assert.Nil(t, a.LastRunAt)

	paused, err := repo.CreateAutomation(ctx, core.Automation{
		UserID:    u.ID,
		Name:      "Vacation Savings",
		Amount:    dec("120.00"),
		Category:  core.Savings,
		Frequency: core.EveryMonth,
		IsActive:  false,
	})
	require.NoError(t, err)

	active, err := repo.ListActiveAutomations(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, a.ID, active[0].ID)

	mine, err := repo.ListAutomationsByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	ranAt := time.Date(2025, 1, 17, 9, 30, 0, 0, time.UTC)
	require.NoError(t, repo.MarkAutomationRun(ctx, a.ID, ranAt))
	got, err := repo.GetAutomation(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, got.LastRunAt)
	assert.True(t, got.LastRunAt.Equal(ranAt))

	amount := dec("500")
	updated, err := repo.UpdateAutomation(ctx, a.ID, core.AutomationPatch{Amount: &amount})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(amount))

	require.NoError(t, repo.DeleteAutomation(ctx, paused.ID))
	assert.ErrorIs(t, repo.DeleteAutomation(ctx, paused.ID), storage.ErrNotFound)
	assert.ErrorIs(t, repo.MarkAutomationRun(ctx, paused.ID, ranAt), storage.ErrNotFound)
}

func testInsights(t *testing.T, repo storage.Repository) {
	ctx := context.Background()

	defaults, err := repo.ListActiveInsights(ctx)
	require.NoError(t, err)
	require.Len(t, defaults, len(storage.DefaultInsights()))

	_, err = repo.CreateInsight(ctx, core.Insight{
		Title:    "Hidden",
		Content:  "Not shown",
		Author:   core.MorganHousel,
		Category: "psychology",
		IsActive: false,
	})
	require.NoError(t, err)

	created, err := repo.CreateInsight(ctx, core.Insight{
		Title:    "Room for Error",
		Content:  "Plan on your plan not going according to plan.",
		Author:   core.MorganHousel,
		Category: "psychology",
		IsActive: true,
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	housel, err := repo.ListInsightsByAuthor(ctx, core.MorganHousel)
	require.NoError(t, err)
	assert.Len(t, housel, 2)

	sethi, err := repo.ListInsightsByAuthor(ctx, core.RamitSethi)
	require.NoError(t, err)
	assert.Len(t, sethi, 2)

	active, err := repo.ListActiveInsights(ctx)
	require.NoError(t, err)
	assert.Len(t, active, 4)
}
