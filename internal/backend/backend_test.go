package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/config"
	"budgetwise/internal/core"
	"budgetwise/internal/payperiod"
	"budgetwise/internal/storage/memory"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	assert.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "postgres", PayDayPolicy: "clamp"})
	assert.ErrorContains(t, err, "invalid backend type")

	_, err = FromAppConfig(&config.Config{DataBackend: "memory", PayDayPolicy: "sometimes"})
	assert.ErrorContains(t, err, "pay day policy")

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		PayDayPolicy: "strict",
		CacheTTL:     time.Minute,
		CacheSize:    10,
		SeedDemo:     true,
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, payperiod.PayDayStrict, cfg.PayDayPolicy)
	assert.True(t, cfg.SeedDemo)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "db.sqlite"}, false},
		{"unknown type", Config{Type: "sheets"}, true},
		{"amqp without queue", Config{Type: MemoryBackend, AMQPURL: "amqp://localhost", AMQPExchange: "x"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
	assert.Equal(t, []string{"sqlite", "memory"}, GetBackendTypeStrings())
}

func TestCreateMemoryBackendWithSeed(t *testing.T) {
	ctx := context.Background()
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: MemoryBackend, SeedDemo: true})
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, res.Cleanup()) })

	svcs := res.Services
	assert.Nil(t, svcs.AMQP)

	u, err := svcs.Repo.GetUserByEmail(ctx, DemoEmail)
	require.NoError(t, err)

	d, err := svcs.Dashboards.Get(ctx, u.ID, core.Date{})
	require.NoError(t, err)
	assert.False(t, d.UsingDefaultBudget)
	assert.Len(t, d.Goals, 3)
	assert.Len(t, d.Automations, 3)
	assert.Len(t, d.RecentTransactions, 5)
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "budget.db")
	res, err := NewFactory(nil).CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	require.NoError(t, err)
	defer res.Cleanup()

	require.NoError(t, res.Services.Budget.Ping(ctx))
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := memory.New()
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	first, err := Seed(ctx, repo, payperiod.PayDayClamp, now)
	require.NoError(t, err)
	second, err := Seed(ctx, repo, payperiod.PayDayClamp, now)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	txs, err := repo.ListTransactionsByUser(ctx, first.ID)
	require.NoError(t, err)
	assert.Len(t, txs, demoSets*len(demoTransactions))
	for _, tx := range txs {
		assert.False(t, tx.Date.After(now), tx.Date.String())
		assert.False(t, tx.PayPeriodStart.IsZero())
	}

	autos, err := repo.ListActiveAutomations(ctx)
	require.NoError(t, err)
	require.Len(t, autos, 3)
	for _, a := range autos {
		assert.NotNil(t, a.LastRunAt)
	}
}
