// Package backend wires the storage backend, caches and services from configuration.
package backend

import (
	"context"

	"budgetwise/internal/amqp"
	"budgetwise/internal/cache"
	"budgetwise/internal/services"
	"budgetwise/internal/storage"
)

// Services is everything the server and the worker need, wired to one repository.
type Services struct {
	Repo        storage.Repository
	Budget      *services.BudgetService
	Dashboards  *services.DashboardService
	Overspend   *services.OverspendMonitor
	Automations *services.AutomationProcessor
	Caches      *cache.Manager

	DashboardCache *cache.LRUCache[services.Dashboard]

	// AMQP is nil when no broker is configured or the connection failed.
	AMQP *amqp.Client
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the wired services and the function releasing them.
type BackendResult struct {
	Services *Services
	Cleanup  CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
