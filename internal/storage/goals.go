package storage

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetwise/internal/core"
)

const goalColumns = `id, user_id, name, target_amount, current_amount, category, is_active, created_at`

func scanGoal(s scanner) (core.Goal, error) {
	var (
		g                        core.Goal
		target, current, created string
	)
	if err := s.Scan(&g.ID, &g.UserID, &g.Name, &target, &current, &g.Category, &g.IsActive, &created); err != nil {
		return core.Goal{}, err
	}
	var err error
	if g.TargetAmount, err = parseDecimal(target, "target_amount"); err != nil {
		return core.Goal{}, err
	}
	if g.CurrentAmount, err = parseDecimal(current, "current_amount"); err != nil {
		return core.Goal{}, err
	}
	g.CreatedAt = parseTimestamp(created)
	return g, nil
}

func (r *SQLiteRepository) ListGoalsByUser(ctx context.Context, userID int64) ([]core.Goal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list goals for user %d: %w", userID, err)
	}
	defer rows.Close()

	out := make([]core.Goal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) GetGoal(ctx context.Context, id int64) (core.Goal, error) {
	return getGoal(ctx, r.db, id)
}

func getGoal(ctx context.Context, q querier, id int64) (core.Goal, error) {
	g, err := scanGoal(q.QueryRowContext(ctx, `SELECT `+goalColumns+` FROM goals WHERE id = ?`, id))
	if err != nil {
		return core.Goal{}, notFound(err, "goal", id)
	}
	return g, nil
}

func (r *SQLiteRepository) CreateGoal(ctx context.Context, g core.Goal) (core.Goal, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO goals (user_id, name, target_amount, current_amount, category, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.UserID, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), string(g.Category),
		g.IsActive, r.timestamp())
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Goal{}, fmt.Errorf("create goal id: %w", err)
	}
	return r.GetGoal(ctx, id)
}

func (r *SQLiteRepository) saveGoal(ctx context.Context, q querier, g core.Goal) error {
	_, err := q.ExecContext(ctx, `
		UPDATE goals SET name = ?, target_amount = ?, current_amount = ?, category = ?, is_active = ?
		WHERE id = ?`,
		g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), string(g.Category), g.IsActive, g.ID)
	if err != nil {
		return fmt.Errorf("update goal %d: %w", g.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateGoal(ctx context.Context, id int64, p core.GoalPatch) (core.Goal, error) {
	var out core.Goal
	err := r.inTx(ctx, func(q querier) error {
		g, err := getGoal(ctx, q, id)
		if err != nil {
			return err
		}
		p.Apply(&g)
		if err := r.saveGoal(ctx, q, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) AddGoalContribution(ctx context.Context, id int64, amount decimal.Decimal) (core.Goal, error) {
	var out core.Goal
	err := r.inTx(ctx, func(q querier) error {
		g, err := getGoal(ctx, q, id)
		if err != nil {
			return err
		}
		g.CurrentAmount = g.CurrentAmount.Add(amount)
		if err := r.saveGoal(ctx, q, g); err != nil {
			return err
		}
		out = g
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteGoal(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal %d: %w", id, err)
	}
	return requireAffected(res, "goal", id)
}
