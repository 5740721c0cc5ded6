package core

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Weekly      PaySchedule = "weekly"
	BiWeekly    PaySchedule = "bi-weekly"
	Monthly     PaySchedule = "monthly"
	SemiMonthly PaySchedule = "semi-monthly"
)

const (
	FixedCosts        Category = "fixed-costs"
	Investments       Category = "investments"
	Savings           Category = "savings"
	GuiltFreeSpending Category = "guilt-free-spending"
)

const (
	GoalEmergency GoalCategory = "emergency"
	GoalVacation  GoalCategory = "vacation"
	GoalHouse     GoalCategory = "house"
	GoalOther     GoalCategory = "other"
)

const (
	EveryWeek     AutomationFrequency = "weekly"
	EveryTwoWeeks AutomationFrequency = "bi-weekly"
	EveryMonth    AutomationFrequency = "monthly"
)

const (
	MorganHousel InsightAuthor = "morgan-housel"
	RamitSethi   InsightAuthor = "ramit-sethi"
)

const maxDescriptionLen = 200

type (
	PaySchedule         string
	Category            string
	GoalCategory        string
	AutomationFrequency string
	InsightAuthor       string

	User struct {
		ID             int64           `json:"id"`
		FirstName      string          `json:"firstName"`
		LastName       string          `json:"lastName"`
		Email          string          `json:"email"`
		PaySchedule    PaySchedule     `json:"paySchedule"`
		PayDay         *int            `json:"payDay"`
		LastPayDate    *Date           `json:"lastPayDate"`
		AfterTaxIncome decimal.Decimal `json:"afterTaxIncome"`
		IsOnboarded    bool            `json:"isOnboarded"`
		CreatedAt      time.Time       `json:"createdAt"`
	}

	Budget struct {
		ID                       int64           `json:"id"`
		UserID                   int64           `json:"userId"`
		FixedCostsPercent        decimal.Decimal `json:"fixedCostsPercent"`
		InvestmentsPercent       decimal.Decimal `json:"investmentsPercent"`
		SavingsPercent           decimal.Decimal `json:"savingsPercent"`
		GuiltFreeSpendingPercent decimal.Decimal `json:"guiltFreeSpendingPercent"`
		CreatedAt                time.Time       `json:"createdAt"`
	}

	Transaction struct {
		ID             int64           `json:"id"`
		UserID         int64           `json:"userId"`
		Description    string          `json:"description"`
		Amount         decimal.Decimal `json:"amount"` // negative = expense
		Category       Category        `json:"category"`
		Date           Date            `json:"date"`
		PayPeriodStart Date            `json:"payPeriodStart"`
		PayPeriodEnd   Date            `json:"payPeriodEnd"`
		CreatedAt      time.Time       `json:"createdAt"`
	}

	Goal struct {
		ID            int64           `json:"id"`
		UserID        int64           `json:"userId"`
		Name          string          `json:"name"`
		TargetAmount  decimal.Decimal `json:"targetAmount"`
		CurrentAmount decimal.Decimal `json:"currentAmount"`
		Category      GoalCategory    `json:"category"`
		IsActive      bool            `json:"isActive"`
		CreatedAt     time.Time       `json:"createdAt"`
	}

	Automation struct {
		ID        int64               `json:"id"`
		UserID    int64               `json:"userId"`
		Name      string              `json:"name"`
		Amount    decimal.Decimal     `json:"amount"`
		Category  Category            `json:"category"`
		Frequency AutomationFrequency `json:"frequency"`
		IsActive  bool                `json:"isActive"`
		LastRunAt *time.Time          `json:"lastRunAt,omitempty"`
		CreatedAt time.Time           `json:"createdAt"`
	}

	Insight struct {
		ID       int64         `json:"id"`
		Title    string        `json:"title"`
		Content  string        `json:"content"`
		Author   InsightAuthor `json:"author"`
		Category string        `json:"category"`
		IsActive bool          `json:"isActive"`
	}
)

var (
	ErrInvalidInput           = errors.New("invalid input")
	ErrAmbiguousConfiguration = errors.New("ambiguous configuration")

	ErrInvalidAmount      = fmt.Errorf("%w: invalid amount", ErrInvalidInput)
	ErrNegativeAmount     = fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	ErrEmptyDescription   = fmt.Errorf("%w: empty description", ErrInvalidInput)
	ErrInvalidCategory    = fmt.Errorf("%w: invalid category", ErrInvalidInput)
	ErrInvalidSchedule    = fmt.Errorf("%w: invalid pay schedule", ErrInvalidInput)
	ErrInvalidPayDay      = fmt.Errorf("%w: invalid pay day", ErrInvalidInput)
	ErrInvalidDate        = fmt.Errorf("%w: invalid date", ErrInvalidInput)
	ErrInvalidFrequency   = fmt.Errorf("%w: invalid automation frequency", ErrInvalidInput)
	ErrInvalidAuthor      = fmt.Errorf("%w: invalid insight author", ErrInvalidInput)
	ErrInvalidPercentage  = fmt.Errorf("%w: percentage must be between 0 and 100", ErrInvalidInput)
	ErrInvalidEmail       = fmt.Errorf("%w: invalid email", ErrInvalidInput)
	ErrEmptyName          = fmt.Errorf("%w: empty name", ErrInvalidInput)
	ErrMissingOwner       = fmt.Errorf("%w: missing user id", ErrInvalidInput)
	ErrInvalidPeriodRange = fmt.Errorf("%w: pay period start is after its end", ErrInvalidInput)
)

// Categories lists the budget buckets in display order.
func Categories() []Category {
	return []Category{FixedCosts, Investments, Savings, GuiltFreeSpending}
}

func (s PaySchedule) IsValid() bool {
	switch s {
	case Weekly, BiWeekly, Monthly, SemiMonthly:
		return true
	default:
		return false
	}
}

// NominalDays is the step size used for rolling periods. Monthly and
// semi-monthly periods follow the calendar and only report it for display.
func (s PaySchedule) NominalDays() int {
	switch s {
	case Weekly:
		return 7
	case BiWeekly:
		return 14
	case Monthly:
		return 30
	case SemiMonthly:
		return 15
	default:
		return 0
	}
}

// UsesDayOfWeek reports whether PayDay is a weekday (0-6) rather than a day of month.
func (s PaySchedule) UsesDayOfWeek() bool {
	switch s {
	case Weekly, BiWeekly:
		return true
	default:
		return false
	}
}

func (s PaySchedule) Label() string {
	switch s {
	case Weekly:
		return "Weekly"
	case BiWeekly:
		return "Bi-weekly"
	case Monthly:
		return "Monthly"
	case SemiMonthly:
		return "Semi-monthly"
	default:
		return string(s)
	}
}

func ParsePaySchedule(s string) (PaySchedule, error) {
	ps := PaySchedule(strings.TrimSpace(strings.ToLower(s)))
	if !ps.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidSchedule, s)
	}
	return ps, nil
}

func (c Category) IsValid() bool {
	switch c {
	case FixedCosts, Investments, Savings, GuiltFreeSpending:
		return true
	default:
		return false
	}
}

func (c Category) Label() string {
	switch c {
	case FixedCosts:
		return "Fixed Costs"
	case Investments:
		return "Investments"
	case Savings:
		return "Savings"
	case GuiltFreeSpending:
		return "Guilt-Free Spending"
	default:
		return string(c)
	}
}

func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(strings.ToLower(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (g GoalCategory) IsValid() bool {
	switch g {
	case GoalEmergency, GoalVacation, GoalHouse, GoalOther:
		return true
	default:
		return false
	}
}

func ParseGoalCategory(s string) (GoalCategory, error) {
	g := GoalCategory(strings.TrimSpace(strings.ToLower(s)))
	if !g.IsValid() {
		return "", fmt.Errorf("%w: goal category %q", ErrInvalidCategory, s)
	}
	return g, nil
}

func (f AutomationFrequency) IsValid() bool {
	switch f {
	case EveryWeek, EveryTwoWeeks, EveryMonth:
		return true
	default:
		return false
	}
}

func ParseAutomationFrequency(s string) (AutomationFrequency, error) {
	f := AutomationFrequency(strings.TrimSpace(strings.ToLower(s)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidFrequency, s)
	}
	return f, nil
}

func (a InsightAuthor) IsValid() bool {
	switch a {
	case MorganHousel, RamitSethi:
		return true
	default:
		return false
	}
}

func ParseInsightAuthor(s string) (InsightAuthor, error) {
	a := InsightAuthor(strings.TrimSpace(strings.ToLower(s)))
	if !a.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidAuthor, s)
	}
	return a, nil
}

// ValidatePayDay checks the pay day against the range its schedule allows.
func ValidatePayDay(s PaySchedule, day int) error {
	if s.UsesDayOfWeek() {
		if day < 0 || day > 6 {
			return fmt.Errorf("%w: %d is not a weekday (0-6)", ErrInvalidPayDay, day)
		}
		return nil
	}
	if day < 1 || day > 31 {
		return fmt.Errorf("%w: %d is not a day of month (1-31)", ErrInvalidPayDay, day)
	}
	return nil
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u User) Validate() error {
	if strings.TrimSpace(u.FirstName) == "" || strings.TrimSpace(u.LastName) == "" {
		return ErrEmptyName
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, u.Email)
	}
	if !u.PaySchedule.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidSchedule, u.PaySchedule)
	}
	if u.PayDay != nil {
		if err := ValidatePayDay(u.PaySchedule, *u.PayDay); err != nil {
			return err
		}
	}
	if u.AfterTaxIncome.IsNegative() {
		return fmt.Errorf("%w: after-tax income", ErrNegativeAmount)
	}
	return nil
}

// Percent returns the share assigned to a category.
func (b Budget) Percent(c Category) decimal.Decimal {
	switch c {
	case FixedCosts:
		return b.FixedCostsPercent
	case Investments:
		return b.InvestmentsPercent
	case Savings:
		return b.SavingsPercent
	case GuiltFreeSpending:
		return b.GuiltFreeSpendingPercent
	default:
		return decimal.Zero
	}
}

// Validate checks each percentage on its own. Whether they add up to 100
// is decided by the finance package.
func (b Budget) Validate() error {
	if b.UserID <= 0 {
		return ErrMissingOwner
	}
	hundred := decimal.NewFromInt(100)
	for _, c := range Categories() {
		p := b.Percent(c)
		if p.IsNegative() || p.GreaterThan(hundred) {
			return fmt.Errorf("%w: %s=%s", ErrInvalidPercentage, c, p)
		}
	}
	return nil
}

func (t Transaction) IsExpense() bool { return t.Amount.IsNegative() }

func (t Transaction) Validate() error {
	if t.UserID <= 0 {
		return ErrMissingOwner
	}
	if strings.TrimSpace(t.Description) == "" {
		return ErrEmptyDescription
	}
	if len(t.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description too long (max %d characters)", ErrInvalidInput, maxDescriptionLen)
	}
	if t.Amount.IsZero() {
		return ErrInvalidAmount
	}
	if !t.Category.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, t.Category)
	}
	if t.Date.IsZero() {
		return ErrInvalidDate
	}
	if !t.PayPeriodStart.IsZero() && !t.PayPeriodEnd.IsZero() && t.PayPeriodStart.After(t.PayPeriodEnd.Time) {
		return ErrInvalidPeriodRange
	}
	return nil
}

func (g Goal) Validate() error {
	if g.UserID <= 0 {
		return ErrMissingOwner
	}
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.TargetAmount.IsNegative() || g.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: goal amounts", ErrNegativeAmount)
	}
	if !g.Category.IsValid() {
		return fmt.Errorf("%w: goal category %q", ErrInvalidCategory, g.Category)
	}
	return nil
}

func (a Automation) Validate() error {
	if a.UserID <= 0 {
		return ErrMissingOwner
	}
	if strings.TrimSpace(a.Name) == "" {
		return ErrEmptyName
	}
	if !a.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	// Automations only move money into the wealth-building buckets.
	if a.Category != Investments && a.Category != Savings {
		return fmt.Errorf("%w: automation category %q", ErrInvalidCategory, a.Category)
	}
	if !a.Frequency.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidFrequency, a.Frequency)
	}
	return nil
}

func (i Insight) Validate() error {
	if strings.TrimSpace(i.Title) == "" || strings.TrimSpace(i.Content) == "" {
		return fmt.Errorf("%w: insight title and content are required", ErrInvalidInput)
	}
	if !i.Author.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidAuthor, i.Author)
	}
	return nil
}
