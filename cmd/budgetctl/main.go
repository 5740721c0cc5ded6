// Command budgetctl is the operator tool: pay period and allocation
// calculators, database migration, demo seeding and ledger backfill.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"budgetwise/internal/cli"
	"budgetwise/internal/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "budgetctl",
		Short:         "Operate a budgetwise installation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			cli.LoadEnvFile()
		},
	}

	root.AddCommand(periodCmd())
	root.AddCommand(allocateCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())
	root.AddCommand(backfillCmd())

	return root
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// commandLogger is the logger for commands that touch storage or the ledger.
func commandLogger() *log.Logger {
	return cli.SetupLogger(log.ComponentCLI)
}
