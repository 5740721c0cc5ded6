package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"budgetwise/internal/core"
)

const automationColumns = `id, user_id, name, amount, category, frequency, is_active, last_run_at, created_at`

func scanAutomation(s scanner) (core.Automation, error) {
	var (
		a               core.Automation
		amount, created string
		lastRun         sql.NullString
	)
	if err := s.Scan(&a.ID, &a.UserID, &a.Name, &amount, &a.Category, &a.Frequency,
		&a.IsActive, &lastRun, &created); err != nil {
		return core.Automation{}, err
	}
	var err error
	if a.Amount, err = parseDecimal(amount, "amount"); err != nil {
		return core.Automation{}, err
	}
	if lastRun.Valid {
		t := parseTimestamp(lastRun.String)
		a.LastRunAt = &t
	}
	a.CreatedAt = parseTimestamp(created)
	return a, nil
}

func (r *SQLiteRepository) listAutomations(ctx context.Context, query string, args ...any) ([]core.Automation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Automation, 0)
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListAutomationsByUser(ctx context.Context, userID int64) ([]core.Automation, error) {
	out, err := r.listAutomations(ctx,
		`SELECT `+automationColumns+` FROM automations WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list automations for user %d: %w", userID, err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListActiveAutomations(ctx context.Context) ([]core.Automation, error) {
	out, err := r.listAutomations(ctx,
		`SELECT `+automationColumns+` FROM automations WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active automations: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) GetAutomation(ctx context.Context, id int64) (core.Automation, error) {
	return getAutomation(ctx, r.db, id)
}

func getAutomation(ctx context.Context, q querier, id int64) (core.Automation, error) {
	a, err := scanAutomation(q.QueryRowContext(ctx, `SELECT `+automationColumns+` FROM automations WHERE id = ?`, id))
	if err != nil {
		return core.Automation{}, notFound(err, "automation", id)
	}
	return a, nil
}

func (r *SQLiteRepository) CreateAutomation(ctx context.Context, a core.Automation) (core.Automation, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO automations (user_id, name, amount, category, frequency, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.UserID, a.Name, a.Amount.String(), string(a.Category), string(a.Frequency), a.IsActive, r.timestamp())
	if err != nil {
		return core.Automation{}, fmt.Errorf("create automation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Automation{}, fmt.Errorf("create automation id: %w", err)
	}
	return r.GetAutomation(ctx, id)
}

func (r *SQLiteRepository) UpdateAutomation(ctx context.Context, id int64, p core.AutomationPatch) (core.Automation, error) {
	var out core.Automation
	err := r.inTx(ctx, func(q querier) error {
		a, err := getAutomation(ctx, q, id)
		if err != nil {
			return err
		}
		p.Apply(&a)
		if _, err := q.ExecContext(ctx, `
			UPDATE automations SET name = ?, amount = ?, category = ?, frequency = ?, is_active = ?
			WHERE id = ?`,
			a.Name, a.Amount.String(), string(a.Category), string(a.Frequency), a.IsActive, id); err != nil {
			return fmt.Errorf("update automation %d: %w", id, err)
		}
		out = a
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteAutomation(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM automations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete automation %d: %w", id, err)
	}
	return requireAffected(res, "automation", id)
}

func (r *SQLiteRepository) MarkAutomationRun(ctx context.Context, id int64, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE automations SET last_run_at = ? WHERE id = ?`,
		at.UTC().Format(timestampLayout), id)
	if err != nil {
		return fmt.Errorf("mark automation %d run: %w", id, err)
	}
	return requireAffected(res, "automation", id)
}
