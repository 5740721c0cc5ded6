// Package memory is an in-process Repository used for demos and tests.
// Nothing is persisted across restarts.
package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
	"budgetwise/internal/storage"
)

type Store struct {
	mu     sync.RWMutex
	nextID int64
	now    func() time.Time

	users        map[int64]core.User
	budgets      map[int64]core.Budget
	transactions map[int64]core.Transaction
	goals        map[int64]core.Goal
	automations  map[int64]core.Automation
	insights     map[int64]core.Insight
}

var _ storage.Repository = (*Store)(nil)

// New returns an empty store holding only the default insights.
func New() *Store {
	s := &Store{
		now:          time.Now,
		users:        map[int64]core.User{},
		budgets:      map[int64]core.Budget{},
		transactions: map[int64]core.Transaction{},
		goals:        map[int64]core.Goal{},
		automations:  map[int64]core.Automation{},
		insights:     map[int64]core.Insight{},
	}
	for _, i := range storage.DefaultInsights() {
		i.ID = s.id()
		s.insights[i.ID] = i
	}
	return s
}

// id hands out the next identifier. Callers hold mu.
func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func notFound(what string, id int64) error {
	return fmt.Errorf("%s %d: %w", what, id, storage.ErrNotFound)
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error               { return nil }

// Users

func (s *Store) CreateUser(_ context.Context, u core.User) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(u.Email, 0) {
		return core.User{}, fmt.Errorf("create user %q: %w", u.Email, storage.ErrDuplicateEmail)
	}
	u.ID = s.id()
	u.CreatedAt = s.now().UTC()
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) emailTaken(email string, except int64) bool {
	for id, u := range s.users {
		if id != except && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *Store) GetUser(_ context.Context, id int64) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, notFound("user", id)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (core.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return core.User{}, fmt.Errorf("user %q: %w", email, storage.ErrNotFound)
}

func (s *Store) UpdateUser(_ context.Context, id int64, p core.UserPatch) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return core.User{}, notFound("user", id)
	}
	p.Apply(&u)
	if s.emailTaken(u.Email, id) {
		return core.User{}, fmt.Errorf("update user %d: %w", id, storage.ErrDuplicateEmail)
	}
	s.users[id] = u
	return u, nil
}

// Budgets

func (s *Store) GetBudgetByUserID(_ context.Context, userID int64) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var (
		latest core.Budget
		found  bool
	)
	for _, b := range s.budgets {
		if b.UserID == userID && (!found || b.ID > latest.ID) {
			latest, found = b, true
		}
	}
	if !found {
		return core.Budget{}, fmt.Errorf("budget for user %d: %w", userID, storage.ErrNotFound)
	}
	return latest, nil
}

func (s *Store) GetBudget(_ context.Context, id int64) (core.Budget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, notFound("budget", id)
	}
	return b, nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b.ID = s.id()
	b.CreatedAt = s.now().UTC()
	s.budgets[b.ID] = b
	return b, nil
}

func (s *Store) UpdateBudget(_ context.Context, id int64, p core.BudgetPatch) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, notFound("budget", id)
	}
	p.Apply(&b)
	s.budgets[id] = b
	return b, nil
}

// Transactions

func (s *Store) transactionsWhere(keep func(core.Transaction) bool) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range s.transactions {
		if keep(t) {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b core.Transaction) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return out
}

func (s *Store) ListTransactionsByUser(_ context.Context, userID int64) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionsWhere(func(t core.Transaction) bool { return t.UserID == userID }), nil
}

func (s *Store) ListTransactionsByPayPeriod(_ context.Context, userID int64, start, end core.Date) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.transactionsWhere(func(t core.Transaction) bool {
		return t.UserID == userID && t.PayPeriodStart.Equal(start.Time) && t.PayPeriodEnd.Equal(end.Time)
	}), nil
}

func (s *Store) GetTransaction(_ context.Context, id int64) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, notFound("transaction", id)
	}
	return t, nil
}

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.id()
	t.CreatedAt = s.now().UTC()
	s.transactions[t.ID] = t
	return t, nil
}

func (s *Store) UpdateTransaction(_ context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transactions[id]
	if !ok {
		return core.Transaction{}, notFound("transaction", id)
	}
	p.Apply(&t)
	s.transactions[id] = t
	return t, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.transactions[id]; !ok {
		return notFound("transaction", id)
	}
	delete(s.transactions, id)
	return nil
}

// Goals

func (s *Store) ListGoalsByUser(_ context.Context, userID int64) ([]core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Goal, 0)
	for _, g := range s.goals {
		if g.UserID == userID {
			out = append(out, g)
		}
	}
	slices.SortFunc(out, func(a, b core.Goal) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (s *Store) GetGoal(_ context.Context, id int64) (core.Goal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, notFound("goal", id)
	}
	return g, nil
}

func (s *Store) CreateGoal(_ context.Context, g core.Goal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g.ID = s.id()
	g.CreatedAt = s.now().UTC()
	s.goals[g.ID] = g
	return g, nil
}

func (s *Store) UpdateGoal(_ context.Context, id int64, p core.GoalPatch) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, notFound("goal", id)
	}
	p.Apply(&g)
	s.goals[id] = g
	return g, nil
}

func (s *Store) DeleteGoal(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.goals[id]; !ok {
		return notFound("goal", id)
	}
	delete(s.goals, id)
	return nil
}

func (s *Store) AddGoalContribution(_ context.Context, id int64, amount decimal.Decimal) (core.Goal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.goals[id]
	if !ok {
		return core.Goal{}, notFound("goal", id)
	}
	g.CurrentAmount = g.CurrentAmount.Add(amount)
	s.goals[id] = g
	return g, nil
}

// Automations

func (s *Store) automationsWhere(keep func(core.Automation) bool) []core.Automation {
	out := make([]core.Automation, 0)
	for _, a := range s.automations {
		if keep(a) {
			out = append(out, a)
		}
	}
	slices.SortFunc(out, func(a, b core.Automation) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *Store) ListAutomationsByUser(_ context.Context, userID int64) ([]core.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.automationsWhere(func(a core.Automation) bool { return a.UserID == userID }), nil
}

func (s *Store) ListActiveAutomations(_ context.Context) ([]core.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.automationsWhere(func(a core.Automation) bool { return a.IsActive }), nil
}

func (s *Store) GetAutomation(_ context.Context, id int64) (core.Automation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.automations[id]
	if !ok {
		return core.Automation{}, notFound("automation", id)
	}
	return a, nil
}

func (s *Store) CreateAutomation(_ context.Context, a core.Automation) (core.Automation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = s.id()
	a.CreatedAt = s.now().UTC()
	a.LastRunAt = nil
	s.automations[a.ID] = a
	return a, nil
}

func (s *Store) UpdateAutomation(_ context.Context, id int64, p core.AutomationPatch) (core.Automation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.automations[id]
	if !ok {
		return core.Automation{}, notFound("automation", id)
	}
	p.Apply(&a)
	s.automations[id] = a
	return a, nil
}

func (s *Store) DeleteAutomation(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.automations[id]; !ok {
		return notFound("automation", id)
	}
	delete(s.automations, id)
	return nil
}

func (s *Store) MarkAutomationRun(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.automations[id]
	if !ok {
		return notFound("automation", id)
	}
	ran := at.UTC()
	a.LastRunAt = &ran
	s.automations[id] = a
	return nil
}

// Insights

func (s *Store) insightsWhere(keep func(core.Insight) bool) []core.Insight {
	out := make([]core.Insight, 0)
	for _, i := range s.insights {
		if keep(i) {
			out = append(out, i)
		}
	}
	slices.SortFunc(out, func(a, b core.Insight) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *Store) ListActiveInsights(_ context.Context) ([]core.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insightsWhere(func(i core.Insight) bool { return i.IsActive }), nil
}

func (s *Store) ListInsightsByAuthor(_ context.Context, author core.InsightAuthor) ([]core.Insight, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.insightsWhere(func(i core.Insight) bool { return i.IsActive && i.Author == author }), nil
}

func (s *Store) CreateInsight(_ context.Context, i core.Insight) (core.Insight, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i.ID = s.id()
	s.insights[i.ID] = i
	return i, nil
}
