package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/cache"
	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/payperiod"
	"budgetwise/internal/storage"
	"budgetwise/internal/storage/memory"
	"budgetwise/internal/storage/storagetest"
)

type dashboardFixture struct {
	dash  *DashboardService
	svc   *BudgetService
	store *memory.Store
	user  core.User
	day   core.Date
}

func newDashboardFixture(t *testing.T) dashboardFixture {
	t.Helper()
	store := memory.New()
	dash := NewDashboardService(store, cache.NewLRUCache[Dashboard](16, time.Minute), payperiod.PayDayClamp, nil)
	dash.now = func() time.Time { return time.Date(2025, 1, 20, 15, 0, 0, 0, time.UTC) }
	svc := NewBudgetService(store, WithInvalidator(dash))

	u, err := svc.CreateUser(context.Background(), storagetest.SampleUser("dash@example.com"))
	require.NoError(t, err)
	return dashboardFixture{dash: dash, svc: svc, store: store, user: u, day: core.NewDate(2025, 1, 20)}
}

func (f dashboardFixture) record(t *testing.T, amount string, c core.Category, date core.Date) core.Transaction {
	t.Helper()
	tx, err := f.svc.RecordTransaction(context.Background(), core.Transaction{
		UserID:      f.user.ID,
		Description: "entry",
		Amount:      dec(amount),
		Category:    c,
		Date:        date,
	})
	require.NoError(t, err)
	return tx
}

func TestDashboardUsesDefaultSplitWithoutBudget(t *testing.T) {
	f := newDashboardFixture(t)

	d, err := f.dash.Get(context.Background(), f.user.ID, f.day)
	require.NoError(t, err)

	assert.True(t, d.UsingDefaultBudget)
	assert.Equal(t, finance.DefaultPercentages(), d.Percentages)
	assert.True(t, d.Allocations.FixedCosts.Equal(dec("1600")))
	assert.True(t, d.Allocations.GuiltFreeSpending.Equal(dec("1120")))
	assert.Len(t, d.Categories, 4)
}

func TestDashboardPeriodFigures(t *testing.T) {
	f := newDashboardFixture(t)

	d, err := f.dash.Get(context.Background(), f.user.ID, f.day)
	require.NoError(t, err)

	assert.Equal(t, core.NewDate(2025, 1, 17), d.Period.Start)
	assert.Equal(t, core.NewDate(2025, 1, 30), d.Period.End)
	assert.Equal(t, 14, d.Period.Days)
	assert.Equal(t, 10, d.Period.DaysRemaining)
	assert.Equal(t, core.NewDate(2025, 1, 31), d.Period.NextPayDate)
	assert.NotEmpty(t, d.Period.Label)
}

func TestDashboardCountsOnlyCurrentPeriod(t *testing.T) {
	f := newDashboardFixture(t)
	_, err := f.svc.CreateBudget(context.Background(), core.Budget{
		UserID:                   f.user.ID,
		FixedCostsPercent:        dec("50"),
		InvestmentsPercent:       dec("15"),
		SavingsPercent:           dec("5"),
		GuiltFreeSpendingPercent: dec("30"),
	})
	require.NoError(t, err)

	f.record(t, "-100", core.GuiltFreeSpending, core.NewDate(2025, 1, 18))
	f.record(t, "-1100", core.GuiltFreeSpending, core.NewDate(2025, 1, 19))
	f.record(t, "250", core.GuiltFreeSpending, core.NewDate(2025, 1, 19))
	f.record(t, "-400", core.FixedCosts, core.NewDate(2025, 1, 10))

	d, err := f.dash.Get(context.Background(), f.user.ID, f.day)
	require.NoError(t, err)

	assert.False(t, d.UsingDefaultBudget)
	assert.True(t, d.Spending.GuiltFreeSpending.Equal(dec("1200")), d.Spending.GuiltFreeSpending.String())
	assert.True(t, d.Spending.FixedCosts.IsZero())
	assert.True(t, d.CashFlow.OtherIncome.Equal(dec("250")))
	assert.True(t, d.CashFlow.Expenses.Equal(dec("1200")))
	assert.Len(t, d.RecentTransactions, 4)

	var over []core.Category
	for _, c := range d.Categories {
		if c.OverBudget {
			over = append(over, c.Category)
		}
	}
	assert.Equal(t, []core.Category{core.GuiltFreeSpending}, over)
}

func TestDashboardIsCachedUntilInvalidated(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()

	first, err := f.dash.Get(ctx, f.user.ID, f.day)
	require.NoError(t, err)
	assert.True(t, first.Spending.Total().IsZero())

	// Writes that bypass the service are invisible until invalidation.
	_, err = f.store.CreateTransaction(ctx, core.Transaction{
		UserID:         f.user.ID,
		Description:    "direct",
		Amount:         dec("-20"),
		Category:       core.FixedCosts,
		Date:           f.day,
		PayPeriodStart: core.NewDate(2025, 1, 17),
		PayPeriodEnd:   core.NewDate(2025, 1, 30),
	})
	require.NoError(t, err)

	cached, err := f.dash.Get(ctx, f.user.ID, f.day)
	require.NoError(t, err)
	assert.True(t, cached.Spending.Total().IsZero())

	f.record(t, "-30", core.FixedCosts, f.day)

	fresh, err := f.dash.Get(ctx, f.user.ID, f.day)
	require.NoError(t, err)
	assert.True(t, fresh.Spending.FixedCosts.Equal(dec("50")), fresh.Spending.FixedCosts.String())
}

func TestDashboardZeroDateMeansToday(t *testing.T) {
	f := newDashboardFixture(t)
	d, err := f.dash.Get(context.Background(), f.user.ID, core.Date{})
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2025, 1, 17), d.Period.Start)
}

func TestDashboardUnknownUser(t *testing.T) {
	f := newDashboardFixture(t)
	_, err := f.dash.Get(context.Background(), 999, f.day)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDashboardGoalProgress(t *testing.T) {
	f := newDashboardFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGoal(ctx, core.Goal{
		UserID:       f.user.ID,
		Name:         "Laptop",
		TargetAmount: dec("800"),
		Category:     core.GoalOther,
		IsActive:     true,
	})
	require.NoError(t, err)
	_, err = f.svc.Contribute(ctx, g.ID, dec("800"))
	require.NoError(t, err)

	d, err := f.dash.Get(ctx, f.user.ID, f.day)
	require.NoError(t, err)
	require.Len(t, d.Goals, 1)
	assert.True(t, d.Goals[0].Progress.Equal(dec("100")))
	assert.True(t, d.Goals[0].Complete)
}

func TestOverspendMonitor(t *testing.T) {
	f := newDashboardFixture(t)
	monitor := NewOverspendMonitor(f.dash, nil)

	over, err := monitor.Check(context.Background(), f.user.ID, f.day)
	require.NoError(t, err)
	assert.Empty(t, over)

	f.record(t, "-200", core.Savings, f.day)

	over, err = monitor.Check(context.Background(), f.user.ID, f.day)
	require.NoError(t, err)
	require.Len(t, over, 1)
	assert.Equal(t, core.Savings, over[0].Category)
	assert.True(t, over[0].Allocated.Equal(dec("160")))
}
