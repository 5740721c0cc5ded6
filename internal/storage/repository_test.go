package storage_test

import (
	"bytes"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetwise/internal/log"
	"budgetwise/internal/storage"
	"budgetwise/internal/storage/storagetest"
)

func newSQLite(t *testing.T) storage.Repository {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "budgetwise.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSQLiteRepository(t *testing.T) {
	storagetest.Run(t, newSQLite)
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "budgetwise.db")

	require.NoError(t, storage.RunMigrations(path))
	require.NoError(t, storage.RunMigrations(path))

	version, dirty, err := storage.MigrationVersion(path)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.EqualValues(t, 2, version)
}

func TestMigrationVersionOfEmptyDatabase(t *testing.T) {
	version, dirty, err := storage.MigrationVersion(filepath.Join(t.TempDir(), "empty.db"))
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Zero(t, version)
}

func TestSQLiteRepositoryLogsThroughGivenLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: &buf})

	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "budgetwise.db"), logger)
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	out := buf.String()
	assert.Contains(t, out, "SQLite repository ready")
	assert.Contains(t, out, "SQLite repository closed")
	assert.Contains(t, out, "component=storage")
}
