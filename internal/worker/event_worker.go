// Package worker handles domain events delivered over AMQP.
package worker

import (
	"context"
	"errors"
	"fmt"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/log"
	"budgetwise/internal/sheets"
	"budgetwise/internal/storage"
)

// Store is the read side the worker needs. *services.BudgetService implements it.
type Store interface {
	GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
	ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error)
	GetGoal(ctx context.Context, id int64) (core.Goal, error)
}

// OverspendChecker reports overspent categories for the period containing date.
type OverspendChecker interface {
	Check(ctx context.Context, userID int64, date core.Date) ([]finance.CategoryStatus, error)
}

// EventWorker reacts to budgeting events: it re-checks budget status and
// exports recorded transactions to the ledger when one is configured.
type EventWorker struct {
	store     Store
	overspend OverspendChecker
	ledger    sheets.LedgerWriter
	logger    *log.Logger
}

// NewEventWorker creates a worker. ledger may be nil when no export is configured.
func NewEventWorker(store Store, overspend OverspendChecker, ledger sheets.LedgerWriter, logger *log.Logger) *EventWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &EventWorker{
		store:     store,
		overspend: overspend,
		ledger:    ledger,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEvent processes one event. A returned error requeues the message, so
// entities that no longer exist are acknowledged without error.
func (w *EventWorker) HandleEvent(ctx context.Context, e amqp.Event) error {
	w.logger.InfoContext(ctx, "Processing event", log.NewFields().
		WithEvent(e.ID, string(e.Type)).
		WithUser(e.UserID).
		WithOperation(log.OpConsume).
		ToSlice()...)

	var err error
	switch e.Type {
	case amqp.EventTransactionRecorded:
		err = w.handleRecorded(ctx, e)
	case amqp.EventTransactionUpdated:
		err = w.handleUpdated(ctx, e)
	case amqp.EventTransactionDeleted, amqp.EventBudgetChanged:
		err = w.checkBudget(ctx, e.UserID, core.Today())
	case amqp.EventGoalContributed:
		err = w.handleContribution(ctx, e)
	default:
		w.logger.WarnContext(ctx, "Ignoring unknown event type",
			log.FieldEventID, e.ID, log.FieldEventType, e.Type)
		return nil
	}

	switch {
	case errors.Is(err, storage.ErrNotFound):
		w.logger.WarnContext(ctx, "Event refers to a missing entity, skipping",
			log.FieldEventID, e.ID,
			log.FieldEventType, e.Type,
			log.FieldError, err)
		return nil
	case permanent(err):
		w.logger.ErrorContext(ctx, "Event cannot be processed, dropping",
			log.FieldEventID, e.ID,
			log.FieldEventType, e.Type,
			log.FieldUserID, e.UserID,
			log.FieldError, err)
		return nil
	}
	return err
}

// permanent reports errors that a redelivery would hit again unchanged.
func permanent(err error) bool {
	return errors.Is(err, core.ErrInvalidInput) || errors.Is(err, core.ErrAmbiguousConfiguration)
}

func (w *EventWorker) handleRecorded(ctx context.Context, e amqp.Event) error {
	tx, err := w.store.GetTransaction(ctx, e.EntityID)
	if err != nil {
		return err
	}
	// A budget check that can never succeed still lets the row be exported.
	checkErr := w.checkBudget(ctx, tx.UserID, tx.Date)
	if checkErr != nil && !permanent(checkErr) {
		return checkErr
	}
	if err := w.export(ctx, tx); err != nil {
		return err
	}
	return checkErr
}

func (w *EventWorker) handleUpdated(ctx context.Context, e amqp.Event) error {
	tx, err := w.store.GetTransaction(ctx, e.EntityID)
	if err != nil {
		return err
	}
	return w.checkBudget(ctx, tx.UserID, tx.Date)
}

func (w *EventWorker) handleContribution(ctx context.Context, e amqp.Event) error {
	g, err := w.store.GetGoal(ctx, e.EntityID)
	if err != nil {
		return err
	}
	progress, err := finance.GoalProgress(g.CurrentAmount, g.TargetAmount)
	if err != nil {
		return fmt.Errorf("goal %d progress: %w", g.ID, err)
	}
	if finance.IsGoalComplete(progress) {
		w.logger.InfoContext(ctx, "Goal reached",
			log.FieldGoalID, g.ID,
			log.FieldUserID, g.UserID,
			"name", g.Name,
			log.FieldAmount, g.CurrentAmount.String())
	}
	return nil
}

func (w *EventWorker) checkBudget(ctx context.Context, userID int64, date core.Date) error {
	if w.overspend == nil {
		return nil
	}
	over, err := w.overspend.Check(ctx, userID, date)
	if err != nil {
		return fmt.Errorf("check budget for user %d: %w", userID, err)
	}
	if len(over) > 0 {
		w.logger.InfoContext(ctx, "Budget check found overspent categories",
			log.FieldUserID, userID, log.FieldCount, len(over))
	}
	return nil
}

func (w *EventWorker) export(ctx context.Context, tx core.Transaction) error {
	if w.ledger == nil {
		return nil
	}
	ref, err := w.ledger.AppendTransaction(ctx, tx)
	if err != nil {
		return fmt.Errorf("export transaction %d: %w", tx.ID, err)
	}
	w.logger.DebugContext(ctx, "Transaction exported",
		log.FieldTransactionID, tx.ID, "row_ref", ref)
	return nil
}

// Backfill exports every stored transaction of a user, oldest first. It
// recovers from missed events; already exported rows are skipped by the ledger.
func (w *EventWorker) Backfill(ctx context.Context, userID int64) (int, error) {
	if w.ledger == nil {
		return 0, errors.New("no ledger configured")
	}
	txs, err := w.store.ListTransactions(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}

	exported := 0
	for i := len(txs) - 1; i >= 0; i-- {
		if err := ctx.Err(); err != nil {
			return exported, err
		}
		if err := w.export(ctx, txs[i]); err != nil {
			w.logger.ErrorContext(ctx, "Failed to export transaction during backfill",
				log.FieldTransactionID, txs[i].ID, log.FieldError, err)
			continue
		}
		exported++
	}

	w.logger.InfoContext(ctx, "Backfill completed",
		log.FieldOperation, log.OpExport,
		log.FieldUserID, userID,
		"total", len(txs),
		"exported", exported)
	return exported, nil
}
