package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetwise/internal/backend"
	"budgetwise/internal/cli"
	"budgetwise/internal/config"
	"budgetwise/internal/log"
	"budgetwise/internal/sheets"
	gsheet "budgetwise/internal/sheets/google"
	"budgetwise/internal/worker"
)

func main() {
	logger, cfg := cli.Bootstrap(log.ComponentWorker)
	logger.Info("Starting budget-worker")

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}
	if backendCfg.Type == backend.MemoryBackend {
		logger.Warn("Worker is running on a private in-memory store, it will not see the server's data")
	}

	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to create backend", log.FieldError, err)
		os.Exit(1)
	}
	svcs := res.Services

	ledger := newLedger(logger, cfg)
	eventWorker := worker.NewEventWorker(svcs.Budget, svcs.Overspend, ledger, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup error", log.FieldError, err)
		}
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return svcs.Automations.Run(gctx, cfg.AutomationInterval)
	})

	if svcs.AMQP != nil {
		g.Go(func() error {
			err := svcs.AMQP.Consume(gctx, eventWorker.HandleEvent)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
	} else {
		logger.Info("Skipping event consumption - no AMQP broker available")
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		_ = res.Cleanup()
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}

// newLedger returns the Google Sheets exporter, or nil when export is not
// configured or the client cannot be built.
func newLedger(logger *log.Logger, cfg *config.Config) sheets.LedgerWriter {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client, continuing without export", log.FieldError, err)
		return nil
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client
}
