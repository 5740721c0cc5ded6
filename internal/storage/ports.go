package storage

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

var (
	// ErrNotFound is returned when no row matches the requested id.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateEmail is returned when a user with the same email exists.
	ErrDuplicateEmail = errors.New("email already registered")
)

// Ports implemented by every persistence backend. Stores do not validate
// entities; callers validate before writing. Updates are last-write-wins.
type (
	UserStore interface {
		CreateUser(ctx context.Context, u core.User) (core.User, error)
		GetUser(ctx context.Context, id int64) (core.User, error)
		GetUserByEmail(ctx context.Context, email string) (core.User, error)
		UpdateUser(ctx context.Context, id int64, p core.UserPatch) (core.User, error)
	}

	BudgetStore interface {
		// GetBudgetByUserID returns the most recently created budget of a user.
		GetBudgetByUserID(ctx context.Context, userID int64) (core.Budget, error)
		GetBudget(ctx context.Context, id int64) (core.Budget, error)
		CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error)
		UpdateBudget(ctx context.Context, id int64, p core.BudgetPatch) (core.Budget, error)
	}

	TransactionStore interface {
		// ListTransactionsByUser returns transactions newest first.
		ListTransactionsByUser(ctx context.Context, userID int64) ([]core.Transaction, error)
		// ListTransactionsByPayPeriod returns transactions whose stored period
		// bounds equal start and end exactly, newest first.
		ListTransactionsByPayPeriod(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id int64) (core.Transaction, error)
		CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id int64) error
	}

	GoalStore interface {
		ListGoalsByUser(ctx context.Context, userID int64) ([]core.Goal, error)
		GetGoal(ctx context.Context, id int64) (core.Goal, error)
		CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error)
		UpdateGoal(ctx context.Context, id int64, p core.GoalPatch) (core.Goal, error)
		DeleteGoal(ctx context.Context, id int64) error
		// AddGoalContribution adds amount to the goal's current amount.
		AddGoalContribution(ctx context.Context, id int64, amount decimal.Decimal) (core.Goal, error)
	}

	AutomationStore interface {
		ListAutomationsByUser(ctx context.Context, userID int64) ([]core.Automation, error)
		// ListActiveAutomations returns active automations of every user.
		ListActiveAutomations(ctx context.Context) ([]core.Automation, error)
		GetAutomation(ctx context.Context, id int64) (core.Automation, error)
		CreateAutomation(ctx context.Context, a core.Automation) (core.Automation, error)
		UpdateAutomation(ctx context.Context, id int64, p core.AutomationPatch) (core.Automation, error)
		DeleteAutomation(ctx context.Context, id int64) error
		MarkAutomationRun(ctx context.Context, id int64, at time.Time) error
	}

	InsightStore interface {
		ListActiveInsights(ctx context.Context) ([]core.Insight, error)
		ListInsightsByAuthor(ctx context.Context, author core.InsightAuthor) ([]core.Insight, error)
		CreateInsight(ctx context.Context, i core.Insight) (core.Insight, error)
	}

	Repository interface {
		UserStore
		BudgetStore
		TransactionStore
		GoalStore
		AutomationStore
		InsightStore
		Ping(ctx context.Context) error
		Close() error
	}
)

// DefaultInsights are the tips every fresh store starts with.
func DefaultInsights() []core.Insight {
	return []core.Insight{
		{
			Title:    "The Psychology of Money",
			Content:  "The hardest financial skill is getting the goalpost to stop moving. Your automated investments are building wealth without requiring daily decisions.",
			Author:   core.MorganHousel,
			Category: "psychology",
			IsActive: true,
		},
		{
			Title:    "Automation First",
			Content:  "Don't rely on willpower to save money. Set up automatic transfers and let your system work for you.",
			Author:   core.RamitSethi,
			Category: "automation",
			IsActive: true,
		},
		{
			Title:    "Rich Life Framework",
			Content:  "Money is a tool to live your Rich Life. Spend extravagantly on the things you love, and cut costs mercilessly on the things you don't.",
			Author:   core.RamitSethi,
			Category: "mindset",
			IsActive: true,
		},
	}
}
