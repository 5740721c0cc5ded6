package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"budgetwise/internal/backend"
	"budgetwise/internal/config"
	"budgetwise/internal/log"
	"budgetwise/internal/payperiod"
	"budgetwise/internal/sheets"
	gsheet "budgetwise/internal/sheets/google"
	"budgetwise/internal/sheets/memory"
	"budgetwise/internal/storage"
	"budgetwise/internal/worker"
)

// dbPathFlag registers --db, defaulting to SQLITE_DB_PATH.
func dbPathFlag(cmd *cobra.Command, dst *string) {
	cmd.Flags().StringVar(dst, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
}

func resolveDBPath(flag string) string {
	if flag != "" {
		return flag
	}
	return config.Load().SQLiteDBPath
}

func migrateCmd() *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resolveDBPath(dbPath)
			if err := storage.RunMigrations(path); err != nil {
				return fmt.Errorf("migrate %s: %w", path, err)
			}
			version, dirty, err := storage.MigrationVersion(path)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s at version %d (dirty=%t)\n", path, version, dirty)
			return nil
		},
	}
	dbPathFlag(cmd, &dbPath)
	return cmd
}

func seedCmd() *cobra.Command {
	var dbPath, policy string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the demo user and its data into the SQLite database",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := payperiod.ParsePayDayPolicy(policy)
			if err != nil {
				return err
			}
			path := resolveDBPath(dbPath)
			repo, err := storage.NewSQLiteRepository(path, commandLogger())
			if err != nil {
				return err
			}
			defer repo.Close()

			u, err := backend.Seed(cmd.Context(), repo, p, time.Now())
			if err != nil {
				return fmt.Errorf("seed demo data: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Demo user %s has id %d\n", u.Email, u.ID)
			return nil
		},
	}
	dbPathFlag(cmd, &dbPath)
	cmd.Flags().StringVar(&policy, "policy", "clamp", "pay day policy used for the demo automations")
	return cmd
}

func backfillCmd() *cobra.Command {
	var (
		dbPath string
		userID int64
		dryRun bool
	)

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Export every stored transaction of a user to the ledger spreadsheet",
		Long: `Backfill writes a user's transactions to the Google Sheets ledger, oldest
first. Rows already present are skipped. With --dry-run the rows are printed
instead of written.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger := commandLogger()
			cfg := config.Load()
			if dbPath != "" {
				cfg.SQLiteDBPath = dbPath
			}

			backendCfg, err := backend.FromAppConfig(cfg)
			if err != nil {
				return err
			}
			backendCfg.Type = backend.SQLiteBackend
			backendCfg.SeedDemo = false
			backendCfg.AMQPURL = ""

			res, err := backend.NewFactory(logger).CreateBackend(cmd.Context(), backendCfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := res.Cleanup(); err != nil {
					logger.Error("Backend cleanup error", log.FieldError, err)
				}
			}()

			var ledger sheets.LedgerWriter
			var dry *memory.Ledger
			if dryRun {
				dry = memory.New()
				ledger = dry
			} else {
				client, err := googleLedger(cmd.Context(), cfg, logger)
				if err != nil {
					return err
				}
				ledger = client
			}

			w := worker.NewEventWorker(res.Services.Budget, res.Services.Overspend, ledger, logger)
			n, err := w.Backfill(cmd.Context(), userID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if dry != nil {
				for _, row := range dry.Rows() {
					fmt.Fprintln(out, row...)
				}
			}
			fmt.Fprintf(out, "Exported %d transactions for user %d\n", n, userID)
			return nil
		},
	}

	dbPathFlag(cmd, &dbPath)
	cmd.Flags().Int64Var(&userID, "user", 0, "user id")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print rows instead of writing to the spreadsheet")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func googleLedger(ctx context.Context, cfg *config.Config, logger *log.Logger) (*gsheet.Client, error) {
	if !cfg.SheetsEnabled() {
		return nil, fmt.Errorf("GOOGLE_SPREADSHEET_ID is not set")
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
	}, logger)
}
