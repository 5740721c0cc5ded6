// Package services provides business logic and orchestration services.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"budgetwise/internal/amqp"
	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/log"
	"budgetwise/internal/payperiod"
	"budgetwise/internal/storage"
)

// ErrUnknownUser is returned when a write references a user that does not exist.
var ErrUnknownUser = fmt.Errorf("%w: unknown user", core.ErrInvalidInput)

// EventPublisher delivers domain events. *amqp.Client implements it.
type EventPublisher interface {
	Publish(ctx context.Context, e amqp.Event) error
}

// Invalidator drops cached views derived from one user's data.
type Invalidator interface {
	InvalidateUser(userID int64)
}

// BudgetService validates and persists budgeting data. After every write it
// invalidates cached dashboards and publishes an event on a best-effort basis.
type BudgetService struct {
	repo        storage.Repository
	publisher   EventPublisher
	invalidator Invalidator
	policy      payperiod.PayDayPolicy
	logger      *log.Logger
}

type Option func(*BudgetService)

// WithPublisher enables event publishing. Pass nothing rather than a nil client.
func WithPublisher(p EventPublisher) Option {
	return func(s *BudgetService) { s.publisher = p }
}

func WithInvalidator(i Invalidator) Option {
	return func(s *BudgetService) { s.invalidator = i }
}

func WithPayDayPolicy(p payperiod.PayDayPolicy) Option {
	return func(s *BudgetService) { s.policy = p }
}

func WithLogger(l *log.Logger) Option {
	return func(s *BudgetService) {
		if l != nil {
			s.logger = l.WithComponent(log.ComponentBudget)
		}
	}
}

func NewBudgetService(repo storage.Repository, opts ...Option) *BudgetService {
	s := &BudgetService{
		repo:   repo,
		policy: payperiod.PayDayClamp,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy is the pay-day policy used for every period this service computes.
func (s *BudgetService) Policy() payperiod.PayDayPolicy { return s.policy }

func (s *BudgetService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// PeriodFor computes the pay period of u that contains ref.
func (s *BudgetService) PeriodFor(u core.User, ref core.Date) (payperiod.Period, error) {
	return payperiod.Compute(u.PaySchedule, ref, payperiod.AnchorFor(u), payperiod.WithPayDayPolicy(s.policy))
}

// Users

func (s *BudgetService) GetUser(ctx context.Context, id int64) (core.User, error) {
	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *BudgetService) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Email = strings.TrimSpace(u.Email)
	if err := u.Validate(); err != nil {
		return core.User{}, err
	}
	created, err := s.repo.CreateUser(ctx, u)
	if err != nil {
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	s.logger.InfoContext(ctx, "User created",
		log.FieldUserID, created.ID,
		log.FieldSchedule, created.PaySchedule)
	return created, nil
}

func (s *BudgetService) UpdateUser(ctx context.Context, id int64, p core.UserPatch) (core.User, error) {
	current, err := s.GetUser(ctx, id)
	if err != nil {
		return core.User{}, err
	}
	p.Apply(&current)
	if err := current.Validate(); err != nil {
		return core.User{}, err
	}
	updated, err := s.repo.UpdateUser(ctx, id, p)
	if err != nil {
		return core.User{}, fmt.Errorf("update user %d: %w", id, err)
	}
	s.invalidate(id)
	return updated, nil
}

func (s *BudgetService) requireUser(ctx context.Context, id int64) (core.User, error) {
	if id <= 0 {
		return core.User{}, core.ErrMissingOwner
	}
	u, err := s.repo.GetUser(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return core.User{}, fmt.Errorf("%w: %d", ErrUnknownUser, id)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// Budgets

// GetBudget returns the active budget of a user.
func (s *BudgetService) GetBudget(ctx context.Context, userID int64) (core.Budget, error) {
	b, err := s.repo.GetBudgetByUserID(ctx, userID)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget for user %d: %w", userID, err)
	}
	return b, nil
}

func validateBudget(b core.Budget) error {
	if err := b.Validate(); err != nil {
		return err
	}
	return finance.ValidatePercentages(finance.PercentagesOf(b))
}

func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := validateBudget(b); err != nil {
		return core.Budget{}, err
	}
	if _, err := s.requireUser(ctx, b.UserID); err != nil {
		return core.Budget{}, err
	}
	created, err := s.repo.CreateBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	s.afterWrite(ctx, amqp.EventBudgetChanged, created.UserID, created.ID)
	return created, nil
}

// UpdateBudget applies a partial update. The merged split must still sum to 100.
func (s *BudgetService) UpdateBudget(ctx context.Context, id int64, p core.BudgetPatch) (core.Budget, error) {
	current, err := s.repo.GetBudget(ctx, id)
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	p.Apply(&current)
	if err := validateBudget(current); err != nil {
		return core.Budget{}, err
	}
	updated, err := s.repo.UpdateBudget(ctx, id, p)
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget %d: %w", id, err)
	}
	s.afterWrite(ctx, amqp.EventBudgetChanged, updated.UserID, updated.ID)
	return updated, nil
}

// Transactions

func (s *BudgetService) ListTransactions(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := s.repo.ListTransactionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}
	return txs, nil
}

// ListTransactionsByPayPeriod returns the transactions stored with exactly these period bounds.
func (s *BudgetService) ListTransactionsByPayPeriod(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error) {
	if start.IsZero() || end.IsZero() {
		return nil, fmt.Errorf("%w: start and end are required", core.ErrInvalidDate)
	}
	if start.After(end.Time) {
		return nil, core.ErrInvalidPeriodRange
	}
	txs, err := s.repo.ListTransactionsByPayPeriod(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %d in %s..%s: %w", userID, start, end, err)
	}
	return txs, nil
}

func (s *BudgetService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	t, err := s.repo.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, err)
	}
	return t, nil
}

// RecordTransaction stores a transaction. A missing date means today and
// missing period bounds are computed from the owner's pay schedule.
func (s *BudgetService) RecordTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if t.Date.IsZero() {
		t.Date = core.Today()
	}
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	user, err := s.requireUser(ctx, t.UserID)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := s.assignPeriod(user, &t); err != nil {
		return core.Transaction{}, err
	}

	created, err := s.repo.CreateTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}

	s.logger.InfoContext(ctx, "Transaction recorded", log.NewFields().
		WithTransaction(created.ID, created.UserID, created.Amount.String(), string(created.Category)).
		WithPeriod(created.PayPeriodStart.String(), created.PayPeriodEnd.String()).
		ToSlice()...)
	s.afterWrite(ctx, amqp.EventTransactionRecorded, created.UserID, created.ID)
	return created, nil
}

func (s *BudgetService) assignPeriod(u core.User, t *core.Transaction) error {
	hasStart, hasEnd := !t.PayPeriodStart.IsZero(), !t.PayPeriodEnd.IsZero()
	switch {
	case hasStart && hasEnd:
		return nil
	case hasStart != hasEnd:
		return fmt.Errorf("%w: pay period start and end must be given together", core.ErrInvalidInput)
	}
	p, err := s.PeriodFor(u, t.Date)
	if err != nil {
		return fmt.Errorf("pay period for %s: %w", t.Date, err)
	}
	t.PayPeriodStart, t.PayPeriodEnd = p.Start, p.End
	return nil
}

// UpdateTransaction applies a partial update. Moving the date without
// explicit bounds recomputes the pay period.
func (s *BudgetService) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	current, err := s.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		p.Description = &d
	}

	next := current
	p.Apply(&next)
	if p.Date != nil && p.PayPeriodStart == nil && p.PayPeriodEnd == nil {
		user, err := s.GetUser(ctx, current.UserID)
		if err != nil {
			return core.Transaction{}, err
		}
		period, err := s.PeriodFor(user, next.Date)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("pay period for %s: %w", next.Date, err)
		}
		start, end := period.Start, period.End
		p.PayPeriodStart, p.PayPeriodEnd = &start, &end
		next.PayPeriodStart, next.PayPeriodEnd = start, end
	}
	if err := next.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.repo.UpdateTransaction(ctx, id, p)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %d: %w", id, err)
	}
	s.afterWrite(ctx, amqp.EventTransactionUpdated, updated.UserID, updated.ID)
	return updated, nil
}

func (s *BudgetService) DeleteTransaction(ctx context.Context, id int64) error {
	current, err := s.GetTransaction(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	s.afterWrite(ctx, amqp.EventTransactionDeleted, current.UserID, id)
	return nil
}

// Goals

func (s *BudgetService) ListGoals(ctx context.Context, userID int64) ([]core.Goal, error) {
	goals, err := s.repo.ListGoalsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals for user %d: %w", userID, err)
	}
	return goals, nil
}

func (s *BudgetService) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	g, err := s.repo.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, fmt.Errorf("get goal %d: %w", id, err)
	}
	return g, nil
}

func (s *BudgetService) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	g.Name = strings.TrimSpace(g.Name)
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if _, err := s.requireUser(ctx, g.UserID); err != nil {
		return core.Goal{}, err
	}
	created, err := s.repo.CreateGoal(ctx, g)
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	s.invalidate(created.UserID)
	return created, nil
}

func (s *BudgetService) UpdateGoal(ctx context.Context, id int64, p core.GoalPatch) (core.Goal, error) {
	current, err := s.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, err
	}
	p.Apply(&current)
	if err := current.Validate(); err != nil {
		return core.Goal{}, err
	}
	updated, err := s.repo.UpdateGoal(ctx, id, p)
	if err != nil {
		return core.Goal{}, fmt.Errorf("update goal %d: %w", id, err)
	}
	s.invalidate(updated.UserID)
	return updated, nil
}

func (s *BudgetService) DeleteGoal(ctx context.Context, id int64) error {
	current, err := s.GetGoal(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteGoal(ctx, id); err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	s.invalidate(current.UserID)
	return nil
}

// Contribute adds a positive amount to a goal's current amount.
func (s *BudgetService) Contribute(ctx context.Context, id int64, amount decimal.Decimal) (core.Goal, error) {
	if !amount.IsPositive() {
		return core.Goal{}, fmt.Errorf("%w: contribution must be positive", core.ErrInvalidAmount)
	}
	updated, err := s.repo.AddGoalContribution(ctx, id, amount)
	if err != nil {
		return core.Goal{}, fmt.Errorf("contribute to goal %d: %w", id, err)
	}

	progress, _ := finance.GoalProgress(updated.CurrentAmount, updated.TargetAmount)
	s.logger.InfoContext(ctx, "Goal contribution added",
		log.FieldOperation, log.OpContribute,
		log.FieldGoalID, id,
		log.FieldUserID, updated.UserID,
		log.FieldAmount, amount.String(),
		"progress", progress.StringFixed(1))
	s.afterWrite(ctx, amqp.EventGoalContributed, updated.UserID, updated.ID)
	return updated, nil
}

// Automations

func (s *BudgetService) ListAutomations(ctx context.Context, userID int64) ([]core.Automation, error) {
	autos, err := s.repo.ListAutomationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list automations for user %d: %w", userID, err)
	}
	return autos, nil
}

func (s *BudgetService) CreateAutomation(ctx context.Context, a core.Automation) (core.Automation, error) {
	a.Name = strings.TrimSpace(a.Name)
	if err := a.Validate(); err != nil {
		return core.Automation{}, err
	}
	if _, err := s.requireUser(ctx, a.UserID); err != nil {
		return core.Automation{}, err
	}
	created, err := s.repo.CreateAutomation(ctx, a)
	if err != nil {
		return core.Automation{}, fmt.Errorf("create automation: %w", err)
	}
	s.invalidate(created.UserID)
	return created, nil
}

func (s *BudgetService) UpdateAutomation(ctx context.Context, id int64, p core.AutomationPatch) (core.Automation, error) {
	current, err := s.repo.GetAutomation(ctx, id)
	if err != nil {
		return core.Automation{}, fmt.Errorf("get automation %d: %w", id, err)
	}
	p.Apply(&current)
	if err := current.Validate(); err != nil {
		return core.Automation{}, err
	}
	updated, err := s.repo.UpdateAutomation(ctx, id, p)
	if err != nil {
		return core.Automation{}, fmt.Errorf("update automation %d: %w", id, err)
	}
	s.invalidate(updated.UserID)
	return updated, nil
}

func (s *BudgetService) DeleteAutomation(ctx context.Context, id int64) error {
	current, err := s.repo.GetAutomation(ctx, id)
	if err != nil {
		return fmt.Errorf("get automation %d: %w", id, err)
	}
	if err := s.repo.DeleteAutomation(ctx, id); err != nil {
		return fmt.Errorf("delete automation %d: %w", id, err)
	}
	s.invalidate(current.UserID)
	return nil
}

// Insights

func (s *BudgetService) ListInsights(ctx context.Context) ([]core.Insight, error) {
	insights, err := s.repo.ListActiveInsights(ctx)
	if err != nil {
		return nil, fmt.Errorf("list insights: %w", err)
	}
	return insights, nil
}

func (s *BudgetService) ListInsightsByAuthor(ctx context.Context, author string) ([]core.Insight, error) {
	a, err := core.ParseInsightAuthor(author)
	if err != nil {
		return nil, err
	}
	insights, err := s.repo.ListInsightsByAuthor(ctx, a)
	if err != nil {
		return nil, fmt.Errorf("list insights by %s: %w", a, err)
	}
	return insights, nil
}

func (s *BudgetService) invalidate(userID int64) {
	if s.invalidator != nil {
		s.invalidator.InvalidateUser(userID)
	}
}

func (s *BudgetService) afterWrite(ctx context.Context, eventType amqp.EventType, userID, entityID int64) {
	s.invalidate(userID)
	if s.publisher == nil {
		return
	}
	e := amqp.NewEvent(eventType, userID, entityID)
	if err := s.publisher.Publish(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish event",
			log.FieldOperation, log.OpPublish,
			log.FieldEventID, e.ID,
			log.FieldEventType, e.Type,
			log.FieldError, err)
	}
}
