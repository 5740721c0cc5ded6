package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/core"
	"budgetwise/internal/storage/memory"
	"budgetwise/internal/storage/storagetest"
)

type failingRecorder struct{}

func (failingRecorder) RecordTransaction(context.Context, core.Transaction) (core.Transaction, error) {
	return core.Transaction{}, errors.New("store unavailable")
}

func TestProcessDueRecordsTransfers(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBudgetService(store)
	u, err := svc.CreateUser(ctx, storagetest.SampleUser("auto@example.com"))
	require.NoError(t, err)

	weekly, err := svc.CreateAutomation(ctx, core.Automation{
		UserID:    u.ID,
		Name:      "Brokerage",
		Amount:    dec("150"),
		Category:  core.Investments,
		Frequency: core.EveryWeek,
		IsActive:  true,
	})
	require.NoError(t, err)
	_, err = svc.CreateAutomation(ctx, core.Automation{
		UserID:    u.ID,
		Name:      "Paused",
		Amount:    dec("75"),
		Category:  core.Savings,
		Frequency: core.EveryWeek,
		IsActive:  false,
	})
	require.NoError(t, err)

	p := NewAutomationProcessor(store, svc, nil)
	now := time.Now()

	n, err := p.ProcessDue(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	txs, err := svc.ListTransactions(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.True(t, txs[0].Amount.Equal(dec("-150")))
	assert.Equal(t, core.Investments, txs[0].Category)
	assert.Equal(t, "Brokerage", txs[0].Description)
	assert.False(t, txs[0].PayPeriodStart.IsZero())

	a, err := store.GetAutomation(ctx, weekly.ID)
	require.NoError(t, err)
	require.NotNil(t, a.LastRunAt)

	// Same day again: nothing is due.
	n, err = p.ProcessDue(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = p.ProcessDue(ctx, now.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestProcessDueSkipsFailedRecords(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	svc := NewBudgetService(store)
	u, err := svc.CreateUser(ctx, storagetest.SampleUser("fail@example.com"))
	require.NoError(t, err)
	a, err := svc.CreateAutomation(ctx, core.Automation{
		UserID:    u.ID,
		Name:      "HYSA",
		Amount:    dec("100"),
		Category:  core.Savings,
		Frequency: core.EveryMonth,
		IsActive:  true,
	})
	require.NoError(t, err)

	p := NewAutomationProcessor(store, failingRecorder{}, nil)
	n, err := p.ProcessDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	got, err := store.GetAutomation(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.LastRunAt)
}

func TestProcessDueRequiresDependencies(t *testing.T) {
	p := NewAutomationProcessor(nil, nil, nil)
	_, err := p.ProcessDue(context.Background(), time.Now())
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	store := memory.New()
	p := NewAutomationProcessor(store, NewBudgetService(store), nil)

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx, 10*time.Millisecond) }()
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
