package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetwise/internal/core"
	"budgetwise/internal/log"
	"budgetwise/internal/storage"
)

// TransactionRecorder stores a transaction the way a user-entered one would be.
type TransactionRecorder interface {
	RecordTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
}

// AutomationProcessor turns due automations into transactions.
type AutomationProcessor struct {
	store    storage.AutomationStore
	recorder TransactionRecorder
	logger   *log.Logger
}

func NewAutomationProcessor(store storage.AutomationStore, recorder TransactionRecorder, logger *log.Logger) *AutomationProcessor {
	if logger == nil {
		logger = log.Discard()
	}
	return &AutomationProcessor{
		store:    store,
		recorder: recorder,
		logger:   logger.WithComponent(log.ComponentAutomation),
	}
}

// ProcessDue records one transfer for every active automation due at now and
// returns how many were recorded. Failures of single automations are logged
// and skipped.
func (p *AutomationProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.store == nil || p.recorder == nil {
		return 0, errors.New("automation processor not properly initialized")
	}

	automations, err := p.store.ListActiveAutomations(ctx)
	if err != nil {
		return 0, fmt.Errorf("list active automations: %w", err)
	}

	p.logger.DebugContext(ctx, "Processing automations",
		"total_active", len(automations),
		"processing_date", core.DateOf(now).String())

	processed := 0
	for _, a := range automations {
		if ctx.Err() != nil {
			return processed, ctx.Err()
		}

		due, err := IsAutomationDue(a, now)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to check automation dueness",
				log.FieldAutomationID, a.ID, log.FieldError, err)
			continue
		}
		if !due {
			continue
		}

		tx, err := p.recorder.RecordTransaction(ctx, core.Transaction{
			UserID:      a.UserID,
			Description: a.Name,
			Amount:      a.Amount.Neg(),
			Category:    a.Category,
			Date:        core.DateOf(now),
		})
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to record automation transfer",
				log.FieldAutomationID, a.ID,
				log.FieldUserID, a.UserID,
				log.FieldError, err)
			continue
		}

		if err := p.store.MarkAutomationRun(ctx, a.ID, now); err != nil {
			// the transfer exists; the next tick would record it again
			p.logger.ErrorContext(ctx, "Failed to mark automation run",
				log.FieldAutomationID, a.ID,
				log.FieldTransactionID, tx.ID,
				log.FieldError, err)
		}

		processed++
		p.logger.InfoContext(ctx, "Automation transfer recorded",
			log.FieldAutomationID, a.ID,
			log.FieldTransactionID, tx.ID,
			log.FieldAmount, a.Amount.String(),
			log.FieldCategory, a.Category,
			"frequency", a.Frequency)
	}

	if processed > 0 {
		p.logger.InfoContext(ctx, "Automation processing complete",
			"processed", processed,
			"total_checked", len(automations))
	}
	return processed, nil
}

// Run processes due automations immediately and then on every tick until
// ctx is cancelled.
func (p *AutomationProcessor) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Automation processor stopped")
			return nil
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *AutomationProcessor) tick(ctx context.Context) {
	if _, err := p.ProcessDue(ctx, time.Now()); err != nil && !errors.Is(err, context.Canceled) {
		p.logger.ErrorContext(ctx, "Automation processing failed", log.FieldError, err)
	}
}
