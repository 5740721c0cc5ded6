package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"budgetwise/internal/cache"
	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/format"
	"budgetwise/internal/log"
	"budgetwise/internal/payperiod"
	"budgetwise/internal/storage"
)

const recentTransactions = 5

// GoalView is a goal with its derived progress.
type GoalView struct {
	core.Goal
	Progress decimal.Decimal `json:"progress"`
	Complete bool            `json:"complete"`
}

// PeriodView is the current pay period with the timeline figures shown next to it.
type PeriodView struct {
	payperiod.Period
	Label         string    `json:"label"`
	Days          int       `json:"days"`
	DaysRemaining int       `json:"daysRemaining"`
	Progress      float64   `json:"progress"`
	NextPayDate   core.Date `json:"nextPayDate"`
}

// Dashboard is everything the overview page shows for one user and day.
type Dashboard struct {
	User               core.User                `json:"user"`
	Period             PeriodView               `json:"period"`
	UsingDefaultBudget bool                     `json:"usingDefaultBudget"`
	Percentages        finance.Percentages      `json:"percentages"`
	Allocations        core.CategoryAmounts     `json:"allocations"`
	Spending           core.CategoryAmounts     `json:"spending"`
	Categories         []finance.CategoryStatus `json:"categories"`
	CashFlow           finance.CashFlow         `json:"cashFlow"`
	RecentTransactions []core.Transaction       `json:"recentTransactions"`
	Goals              []GoalView               `json:"goals"`
	Automations        []core.Automation        `json:"automations"`
	GeneratedAt        time.Time                `json:"generatedAt"`
}

// DashboardService builds dashboards and memoizes them per user and day.
// It implements Invalidator.
type DashboardService struct {
	repo   storage.Repository
	loader *cache.Loader[Dashboard]
	policy payperiod.PayDayPolicy
	logger *log.Logger
	now    func() time.Time

	mu          sync.Mutex
	generations map[int64]uint64
}

var _ Invalidator = (*DashboardService)(nil)

func NewDashboardService(repo storage.Repository, c cache.Cache[Dashboard], policy payperiod.PayDayPolicy, logger *log.Logger) *DashboardService {
	if logger == nil {
		logger = log.Discard()
	}
	return &DashboardService{
		repo:        repo,
		loader:      cache.NewLoader(c),
		policy:      policy,
		logger:      logger.WithComponent(log.ComponentDashboard),
		now:         time.Now,
		generations: make(map[int64]uint64),
	}
}

func userPrefix(userID int64) string {
	return fmt.Sprintf("dashboard:%d:", userID)
}

// key embeds the user's generation so that a build racing an invalidation
// lands under a key nobody reads any more.
func (d *DashboardService) key(userID int64, date core.Date) string {
	d.mu.Lock()
	gen := d.generations[userID]
	d.mu.Unlock()
	return fmt.Sprintf("%s%d:%s", userPrefix(userID), gen, date)
}

// Get returns the cached dashboard for userID on date, building it on a miss.
// A zero date means today.
func (d *DashboardService) Get(ctx context.Context, userID int64, date core.Date) (Dashboard, error) {
	if date.IsZero() {
		date = core.DateOf(d.now())
	}
	return d.loader.Get(ctx, d.key(userID, date), func(ctx context.Context) (Dashboard, error) {
		return d.Build(ctx, userID, date)
	})
}

// InvalidateUser drops every cached dashboard of userID.
func (d *DashboardService) InvalidateUser(userID int64) {
	d.mu.Lock()
	d.generations[userID]++
	d.mu.Unlock()
	if n := d.loader.ForgetPrefix(userPrefix(userID)); n > 0 {
		d.logger.Debug("Dashboard cache invalidated", log.FieldUserID, userID, log.FieldCount, n)
	}
}

// Build computes a dashboard without touching the cache. The repository
// reads run concurrently.
func (d *DashboardService) Build(ctx context.Context, userID int64, date core.Date) (Dashboard, error) {
	var (
		user        core.User
		budget      *core.Budget
		txs         []core.Transaction
		goals       []core.Goal
		automations []core.Automation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := d.repo.GetUser(gctx, userID)
		if err != nil {
			return fmt.Errorf("get user %d: %w", userID, err)
		}
		user = u
		return nil
	})
	g.Go(func() error {
		b, err := d.repo.GetBudgetByUserID(gctx, userID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return nil
		case err != nil:
			return fmt.Errorf("get budget for user %d: %w", userID, err)
		}
		budget = &b
		return nil
	})
	g.Go(func() error {
		var err error
		if txs, err = d.repo.ListTransactionsByUser(gctx, userID); err != nil {
			return fmt.Errorf("list transactions for user %d: %w", userID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if goals, err = d.repo.ListGoalsByUser(gctx, userID); err != nil {
			return fmt.Errorf("list goals for user %d: %w", userID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if automations, err = d.repo.ListAutomationsByUser(gctx, userID); err != nil {
			return fmt.Errorf("list automations for user %d: %w", userID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	period, err := payperiod.Compute(user.PaySchedule, date, payperiod.AnchorFor(user), payperiod.WithPayDayPolicy(d.policy))
	if err != nil {
		return Dashboard{}, fmt.Errorf("pay period for user %d: %w", userID, err)
	}

	inPeriod := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if period.Contains(tx.Date) {
			inPeriod = append(inPeriod, tx)
		}
	}

	pct := finance.DefaultPercentages()
	if budget != nil {
		pct = finance.PercentagesOf(*budget)
	}
	spending := finance.AggregateSpending(inPeriod)

	now := d.now()
	clock := date.Time
	if core.DateOf(now).Equal(date.Time) {
		clock = now
	}

	return Dashboard{
		User: user,
		Period: PeriodView{
			Period:        period,
			Label:         format.DateRange(period.Start, period.End),
			Days:          period.Days(),
			DaysRemaining: period.DaysRemaining(clock),
			Progress:      period.Progress(date),
			NextPayDate:   period.NextPayDate(),
		},
		UsingDefaultBudget: budget == nil,
		Percentages:        pct,
		Allocations:        finance.Allocate(user.AfterTaxIncome, pct),
		Spending:           spending,
		Categories:         finance.BudgetStatus(user.AfterTaxIncome, pct, spending),
		CashFlow:           finance.SummarizeCashFlow(user.AfterTaxIncome, inPeriod),
		RecentTransactions: txs[:min(recentTransactions, len(txs))],
		Goals:              d.goalViews(goals),
		Automations:        activeOnly(automations),
		GeneratedAt:        now.UTC(),
	}, nil
}

func (d *DashboardService) goalViews(goals []core.Goal) []GoalView {
	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		progress, err := finance.GoalProgress(g.CurrentAmount, g.TargetAmount)
		if err != nil {
			d.logger.Warn("Goal has invalid amounts", log.FieldGoalID, g.ID, log.FieldError, err)
		}
		views = append(views, GoalView{Goal: g, Progress: progress, Complete: finance.IsGoalComplete(progress)})
	}
	return views
}

func activeOnly(autos []core.Automation) []core.Automation {
	out := make([]core.Automation, 0, len(autos))
	for _, a := range autos {
		if a.IsActive {
			out = append(out, a)
		}
	}
	return out
}
