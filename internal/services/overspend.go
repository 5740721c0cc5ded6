package services

import (
	"context"

	"budgetwise/internal/core"
	"budgetwise/internal/finance"
	"budgetwise/internal/format"
	"budgetwise/internal/log"
)

// OverspendMonitor reports budget categories whose spending in the current
// pay period exceeds their allocation.
type OverspendMonitor struct {
	dashboards *DashboardService
	logger     *log.Logger
}

func NewOverspendMonitor(dashboards *DashboardService, logger *log.Logger) *OverspendMonitor {
	if logger == nil {
		logger = log.Discard()
	}
	return &OverspendMonitor{dashboards: dashboards, logger: logger.WithComponent(log.ComponentBudget)}
}

// Check rebuilds the user's figures for date, bypassing the cache, and logs
// a warning for every overspent category.
func (m *OverspendMonitor) Check(ctx context.Context, userID int64, date core.Date) ([]finance.CategoryStatus, error) {
	d, err := m.dashboards.Build(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	var over []finance.CategoryStatus
	for _, c := range d.Categories {
		if !c.OverBudget {
			continue
		}
		over = append(over, c)
		m.logger.WarnContext(ctx, "Category over budget",
			log.FieldUserID, userID,
			log.FieldCategory, c.Category,
			log.FieldPeriodStart, d.Period.Start.String(),
			log.FieldPeriodEnd, d.Period.End.String(),
			"allocated", format.Currency(c.Allocated),
			"spent", format.Currency(c.Spent))
	}
	return over, nil
}
