package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetwise/internal/core"
)

const budgetColumns = `id, user_id, fixed_costs_percent, investments_percent, savings_percent,
	guilt_free_spending_percent, created_at`

func scanBudget(s scanner) (core.Budget, error) {
	var (
		b                          core.Budget
		fixed, inv, sav, guiltFree string
		createdAt                  string
	)
	if err := s.Scan(&b.ID, &b.UserID, &fixed, &inv, &sav, &guiltFree, &createdAt); err != nil {
		return core.Budget{}, err
	}
	var err error
	if b.FixedCostsPercent, err = parseDecimal(fixed, "fixed_costs_percent"); err != nil {
		return core.Budget{}, err
	}
	if b.InvestmentsPercent, err = parseDecimal(inv, "investments_percent"); err != nil {
		return core.Budget{}, err
	}
	if b.SavingsPercent, err = parseDecimal(sav, "savings_percent"); err != nil {
		return core.Budget{}, err
	}
	if b.GuiltFreeSpendingPercent, err = parseDecimal(guiltFree, "guilt_free_spending_percent"); err != nil {
		return core.Budget{}, err
	}
	b.CreatedAt = parseTimestamp(createdAt)
	return b, nil
}

func (r *SQLiteRepository) GetBudgetByUserID(ctx context.Context, userID int64) (core.Budget, error) {
	b, err := scanBudget(r.db.QueryRowContext(ctx,
		`SELECT `+budgetColumns+` FROM budgets WHERE user_id = ? ORDER BY id DESC LIMIT 1`, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, fmt.Errorf("budget for user %d: %w", userID, ErrNotFound)
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget for user %d: %w", userID, err)
	}
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (user_id, fixed_costs_percent, investments_percent, savings_percent,
			guilt_free_spending_percent, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.UserID, b.FixedCostsPercent.String(), b.InvestmentsPercent.String(), b.SavingsPercent.String(),
		b.GuiltFreeSpendingPercent.String(), r.timestamp())
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Budget{}, fmt.Errorf("create budget id: %w", err)
	}
	return getBudget(ctx, r.db, id)
}

func (r *SQLiteRepository) GetBudget(ctx context.Context, id int64) (core.Budget, error) {
	return getBudget(ctx, r.db, id)
}

func getBudget(ctx context.Context, q querier, id int64) (core.Budget, error) {
	b, err := scanBudget(q.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id))
	if err != nil {
		return core.Budget{}, notFound(err, "budget", id)
	}
	return b, nil
}

func (r *SQLiteRepository) UpdateBudget(ctx context.Context, id int64, p core.BudgetPatch) (core.Budget, error) {
	var out core.Budget
	err := r.inTx(ctx, func(q querier) error {
		b, err := getBudget(ctx, q, id)
		if err != nil {
			return err
		}
		p.Apply(&b)
		if _, err := q.ExecContext(ctx, `
			UPDATE budgets SET fixed_costs_percent = ?, investments_percent = ?, savings_percent = ?,
				guilt_free_spending_percent = ?
			WHERE id = ?`,
			b.FixedCostsPercent.String(), b.InvestmentsPercent.String(), b.SavingsPercent.String(),
			b.GuiltFreeSpendingPercent.String(), id); err != nil {
			return fmt.Errorf("update budget %d: %w", id, err)
		}
		out = b
		return nil
	})
	return out, err
}
