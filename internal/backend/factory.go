package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetwise/internal/amqp"
	"budgetwise/internal/cache"
	"budgetwise/internal/log"
	"budgetwise/internal/services"
	"budgetwise/internal/storage"
	"budgetwise/internal/storage/memory"
)

const (
	defaultCacheTTL      = 30 * time.Second
	defaultCacheSize     = 256
	cacheCleanupInterval = time.Minute
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	repo, err := f.createRepository(config)
	if err != nil {
		return nil, err
	}

	svcs := f.wire(repo, config)
	cleanup := func() error {
		svcs.Caches.Stop()
		var errs []error
		if svcs.AMQP != nil {
			errs = append(errs, svcs.AMQP.Close())
		}
		errs = append(errs, repo.Close())
		return errors.Join(errs...)
	}

	if config.SeedDemo {
		if _, err := Seed(ctx, repo, config.PayDayPolicy, time.Now()); err != nil {
			_ = cleanup()
			return nil, fmt.Errorf("seed demo data: %w", err)
		}
	}

	f.logger.Info("Initialized backend",
		"type", config.Type,
		"amqp_enabled", svcs.AMQP != nil,
		"cache_size", config.CacheSize,
		"cache_ttl", config.CacheTTL.String())

	return &BackendResult{Services: svcs, Cleanup: cleanup}, nil
}

func (f *DefaultFactory) createRepository(config Config) (storage.Repository, error) {
	switch config.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(config.SQLiteDBPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", config.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) wire(repo storage.Repository, config Config) *Services {
	size, ttl := config.CacheSize, config.CacheTTL
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}

	dashCache := cache.NewLRUCache[services.Dashboard](size, ttl)
	caches := cache.NewManager(f.logger)
	caches.Register(dashCache)
	caches.StartCleanup(cacheCleanupInterval)

	dashboards := services.NewDashboardService(repo, dashCache, config.PayDayPolicy, f.logger)
	opts := []services.Option{
		services.WithInvalidator(dashboards),
		services.WithPayDayPolicy(config.PayDayPolicy),
		services.WithLogger(f.logger),
	}

	// AMQP is optional: a broker that is down must not keep the API from starting.
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		c, err := amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue, f.logger)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", log.FieldError, err)
		} else {
			amqpClient = c
			opts = append(opts, services.WithPublisher(c))
			f.logger.Info("Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	budget := services.NewBudgetService(repo, opts...)
	return &Services{
		Repo:        repo,
		Budget:      budget,
		Dashboards:  dashboards,
		Overspend:   services.NewOverspendMonitor(dashboards, f.logger),
		Automations: services.NewAutomationProcessor(repo, budget, f.logger),
		Caches:      caches,
		AMQP:        amqpClient,

		DashboardCache: dashCache,
	}
}
