package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/storage"
	"budgetwise/internal/storage/memory"
	"budgetwise/internal/storage/storagetest"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []amqp.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e amqp.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) types() []amqp.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]amqp.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type countingInvalidator struct {
	mu    sync.Mutex
	calls map[int64]int
}

func (c *countingInvalidator) InvalidateUser(userID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.calls == nil {
		c.calls = map[int64]int{}
	}
	c.calls[userID]++
}

func (c *countingInvalidator) count(userID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[userID]
}

type serviceFixture struct {
	svc         *BudgetService
	store       *memory.Store
	publisher   *recordingPublisher
	invalidator *countingInvalidator
	user        core.User
}

func newServiceFixture(t *testing.T) serviceFixture {
	t.Helper()
	store := memory.New()
	pub := &recordingPublisher{}
	inv := &countingInvalidator{}
	svc := NewBudgetService(store, WithPublisher(pub), WithInvalidator(inv))

	u, err := svc.CreateUser(context.Background(), storagetest.SampleUser("  jane@example.com "))
	require.NoError(t, err)
	return serviceFixture{svc: svc, store: store, publisher: pub, invalidator: inv, user: u}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCreateUserTrimsEmail(t *testing.T) {
	f := newServiceFixture(t)
	assert.Equal(t, "jane@example.com", f.user.Email)

	_, err := f.svc.CreateUser(context.Background(), storagetest.SampleUser("not-an-email"))
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateUserValidatesMergedUser(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	bad := 9
	_, err := f.svc.UpdateUser(ctx, f.user.ID, core.UserPatch{PayDay: &bad})
	assert.ErrorIs(t, err, core.ErrInvalidPayDay)

	income := dec("4100.00")
	u, err := f.svc.UpdateUser(ctx, f.user.ID, core.UserPatch{AfterTaxIncome: &income})
	require.NoError(t, err)
	assert.True(t, u.AfterTaxIncome.Equal(income))
	assert.Equal(t, 1, f.invalidator.count(f.user.ID))

	_, err = f.svc.UpdateUser(ctx, 999, core.UserPatch{AfterTaxIncome: &income})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateBudgetRequiresFullSplit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateBudget(ctx, core.Budget{
		UserID:                   f.user.ID,
		FixedCostsPercent:        dec("50"),
		InvestmentsPercent:       dec("10"),
		SavingsPercent:           dec("5"),
		GuiltFreeSpendingPercent: dec("34"),
	})
	assert.ErrorIs(t, err, finance.ErrPercentagesSum)
	assert.Empty(t, f.publisher.types())

	b, err := f.svc.CreateBudget(ctx, core.Budget{
		UserID:                   f.user.ID,
		FixedCostsPercent:        dec("55.5"),
		InvestmentsPercent:       dec("10"),
		SavingsPercent:           dec("4.5"),
		GuiltFreeSpendingPercent: dec("30"),
	})
	require.NoError(t, err)
	assert.Equal(t, []amqp.EventType{amqp.EventBudgetChanged}, f.publisher.types())

	got, err := f.svc.GetBudget(ctx, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, b.ID, got.ID)
}

func TestCreateBudgetUnknownUser(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.CreateBudget(context.Background(), core.Budget{
		UserID:                   999,
		FixedCostsPercent:        dec("50"),
		InvestmentsPercent:       dec("10"),
		SavingsPercent:           dec("5"),
		GuiltFreeSpendingPercent: dec("35"),
	})
	assert.ErrorIs(t, err, ErrUnknownUser)
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestUpdateBudgetValidatesMergedSplit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	b, err := f.svc.CreateBudget(ctx, core.Budget{
		UserID:                   f.user.ID,
		FixedCostsPercent:        dec("50"),
		InvestmentsPercent:       dec("10"),
		SavingsPercent:           dec("5"),
		GuiltFreeSpendingPercent: dec("35"),
	})
	require.NoError(t, err)

	sixty := dec("60")
	_, err = f.svc.UpdateBudget(ctx, b.ID, core.BudgetPatch{FixedCostsPercent: &sixty})
	assert.ErrorIs(t, err, finance.ErrPercentagesSum)

	twentyFive := dec("25")
	updated, err := f.svc.UpdateBudget(ctx, b.ID, core.BudgetPatch{
		FixedCostsPercent:        &sixty,
		GuiltFreeSpendingPercent: &twentyFive,
	})
	require.NoError(t, err)
	assert.True(t, updated.FixedCostsPercent.Equal(sixty))

	_, err = f.svc.UpdateBudget(ctx, 999, core.BudgetPatch{FixedCostsPercent: &sixty})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestRecordTransactionComputesPayPeriod(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	tx, err := f.svc.RecordTransaction(ctx, core.Transaction{
		UserID:      f.user.ID,
		Description: "  Groceries ",
		Amount:      dec("-82.40"),
		Category:    core.GuiltFreeSpending,
		Date:        core.NewDate(2025, 1, 20),
	})
	require.NoError(t, err)
	assert.Equal(t, "Groceries", tx.Description)
	assert.Equal(t, core.NewDate(2025, 1, 17), tx.PayPeriodStart)
	assert.Equal(t, core.NewDate(2025, 1, 30), tx.PayPeriodEnd)
	assert.Equal(t, []amqp.EventType{amqp.EventTransactionRecorded}, f.publisher.types())
	assert.Equal(t, 1, f.invalidator.count(f.user.ID))

	byPeriod, err := f.svc.ListTransactionsByPayPeriod(ctx, f.user.ID, tx.PayPeriodStart, tx.PayPeriodEnd)
	require.NoError(t, err)
	require.Len(t, byPeriod, 1)
	assert.Equal(t, tx.ID, byPeriod[0].ID)
}

func TestRecordTransactionKeepsExplicitPeriod(t *testing.T) {
	f := newServiceFixture(t)
	tx, err := f.svc.RecordTransaction(context.Background(), core.Transaction{
		UserID:         f.user.ID,
		Description:    "Rent",
		Amount:         dec("-1200"),
		Category:       core.FixedCosts,
		Date:           core.NewDate(2025, 1, 20),
		PayPeriodStart: core.NewDate(2025, 1, 1),
		PayPeriodEnd:   core.NewDate(2025, 1, 31),
	})
	require.NoError(t, err)
	assert.Equal(t, core.NewDate(2025, 1, 1), tx.PayPeriodStart)
	assert.Equal(t, core.NewDate(2025, 1, 31), tx.PayPeriodEnd)
}

func TestRecordTransactionDefaultsDateToToday(t *testing.T) {
	f := newServiceFixture(t)
	tx, err := f.svc.RecordTransaction(context.Background(), core.Transaction{
		UserID:      f.user.ID,
		Description: "Coffee",
		Amount:      dec("-3.50"),
		Category:    core.GuiltFreeSpending,
	})
	require.NoError(t, err)
	assert.Equal(t, core.Today(), tx.Date)
	assert.False(t, tx.PayPeriodStart.After(tx.Date.Time))
	assert.False(t, tx.PayPeriodEnd.Before(tx.Date.Time))
}

func TestRecordTransactionRejectsInvalidInput(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	valid := core.Transaction{
		UserID:      f.user.ID,
		Description: "Lunch",
		Amount:      dec("-12"),
		Category:    core.GuiltFreeSpending,
		Date:        core.NewDate(2025, 1, 20),
	}

	tests := []struct {
		name    string
		mutate  func(*core.Transaction)
		wantErr error
	}{
		{"zero amount", func(t *core.Transaction) { t.Amount = decimal.Zero }, core.ErrInvalidAmount},
		{"blank description", func(t *core.Transaction) { t.Description = "   " }, core.ErrEmptyDescription},
		{"unknown category", func(t *core.Transaction) { t.Category = "travel" }, core.ErrInvalidCategory},
		{"unknown user", func(t *core.Transaction) { t.UserID = 999 }, ErrUnknownUser},
		{"only period start", func(t *core.Transaction) { t.PayPeriodStart = core.NewDate(2025, 1, 17) }, core.ErrInvalidInput},
		{"inverted period", func(t *core.Transaction) {
			t.PayPeriodStart = core.NewDate(2025, 1, 30)
			t.PayPeriodEnd = core.NewDate(2025, 1, 17)
		}, core.ErrInvalidPeriodRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			_, err := f.svc.RecordTransaction(ctx, tx)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.ErrorIs(t, err, core.ErrInvalidInput)
		})
	}
	assert.Empty(t, f.publisher.types())
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newServiceFixture(t)
	f.publisher.err = errors.New("broker unavailable")

	tx, err := f.svc.RecordTransaction(context.Background(), core.Transaction{
		UserID:      f.user.ID,
		Description: "Gym",
		Amount:      dec("-40"),
		Category:    core.FixedCosts,
		Date:        core.NewDate(2025, 1, 20),
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
	assert.Equal(t, 1, f.invalidator.count(f.user.ID))
}

func TestUpdateTransactionRecomputesPeriodOnDateChange(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	tx, err := f.svc.RecordTransaction(ctx, core.Transaction{
		UserID:      f.user.ID,
		Description: "Dinner",
		Amount:      dec("-55"),
		Category:    core.GuiltFreeSpending,
		Date:        core.NewDate(2025, 1, 20),
	})
	require.NoError(t, err)

	moved := core.NewDate(2025, 2, 1)
	updated, err := f.svc.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Date: &moved})
	require.NoError(t, err)
	assert.Equal(t, moved, updated.Date)
	assert.Equal(t, core.NewDate(2025, 1, 31), updated.PayPeriodStart)
	assert.Equal(t, core.NewDate(2025, 2, 13), updated.PayPeriodEnd)

	zero := decimal.Zero
	_, err = f.svc.UpdateTransaction(ctx, tx.ID, core.TransactionPatch{Amount: &zero})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)

	require.NoError(t, f.svc.DeleteTransaction(ctx, tx.ID))
	_, err = f.svc.GetTransaction(ctx, tx.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.Equal(t, []amqp.EventType{
		amqp.EventTransactionRecorded,
		amqp.EventTransactionUpdated,
		amqp.EventTransactionDeleted,
	}, f.publisher.types())
}

func TestListTransactionsByPayPeriodRejectsBadRange(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.ListTransactionsByPayPeriod(ctx, f.user.ID, core.NewDate(2025, 2, 1), core.NewDate(2025, 1, 1))
	assert.ErrorIs(t, err, core.ErrInvalidPeriodRange)

	_, err = f.svc.ListTransactionsByPayPeriod(ctx, f.user.ID, core.Date{}, core.NewDate(2025, 1, 1))
	assert.ErrorIs(t, err, core.ErrInvalidDate)
}

func TestContribute(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGoal(ctx, core.Goal{
		UserID:       f.user.ID,
		Name:         "Emergency fund",
		TargetAmount: dec("1000"),
		Category:     core.GoalEmergency,
		IsActive:     true,
	})
	require.NoError(t, err)

	for _, bad := range []string{"0", "-10"} {
		_, err := f.svc.Contribute(ctx, g.ID, dec(bad))
		assert.ErrorIs(t, err, core.ErrInvalidAmount, bad)
	}

	updated, err := f.svc.Contribute(ctx, g.ID, dec("250.50"))
	require.NoError(t, err)
	assert.True(t, updated.CurrentAmount.Equal(dec("250.50")))
	assert.Equal(t, []amqp.EventType{amqp.EventGoalContributed}, f.publisher.types())

	_, err = f.svc.Contribute(ctx, 999, dec("10"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGoalLifecycleInvalidatesDashboards(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	g, err := f.svc.CreateGoal(ctx, core.Goal{
		UserID:       f.user.ID,
		Name:         "Japan",
		TargetAmount: dec("3000"),
		Category:     core.GoalVacation,
		IsActive:     true,
	})
	require.NoError(t, err)

	name := "Japan 2026"
	_, err = f.svc.UpdateGoal(ctx, g.ID, core.GoalPatch{Name: &name})
	require.NoError(t, err)

	negative := dec("-1")
	_, err = f.svc.UpdateGoal(ctx, g.ID, core.GoalPatch{TargetAmount: &negative})
	assert.ErrorIs(t, err, core.ErrNegativeAmount)

	require.NoError(t, f.svc.DeleteGoal(ctx, g.ID))
	assert.Equal(t, 3, f.invalidator.count(f.user.ID))
}

func TestAutomationValidation(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateAutomation(ctx, core.Automation{
		UserID:    f.user.ID,
		Name:      "Dining out",
		Amount:    dec("100"),
		Category:  core.GuiltFreeSpending,
		Frequency: core.EveryMonth,
		IsActive:  true,
	})
	assert.ErrorIs(t, err, core.ErrInvalidCategory)

	a, err := f.svc.CreateAutomation(ctx, core.Automation{
		UserID:    f.user.ID,
		Name:      "Roth IRA",
		Amount:    dec("500"),
		Category:  core.Investments,
		Frequency: core.EveryMonth,
		IsActive:  true,
	})
	require.NoError(t, err)

	inactive := false
	updated, err := f.svc.UpdateAutomation(ctx, a.ID, core.AutomationPatch{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	require.NoError(t, f.svc.DeleteAutomation(ctx, a.ID))
	err = f.svc.DeleteAutomation(ctx, a.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListInsightsByAuthor(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	all, err := f.svc.ListInsights(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, all)

	byRamit, err := f.svc.ListInsightsByAuthor(ctx, string(core.RamitSethi))
	require.NoError(t, err)
	for _, i := range byRamit {
		assert.Equal(t, core.RamitSethi, i.Author)
	}

	_, err = f.svc.ListInsightsByAuthor(ctx, "warren-buffett")
	assert.ErrorIs(t, err, core.ErrInvalidAuthor)
}
