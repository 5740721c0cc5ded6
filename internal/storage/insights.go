package storage

import (
	"context"
	"fmt"

	"budgetwise/internal/core"
)

const insightColumns = `id, title, content, author, category, is_active`

func (r *SQLiteRepository) listInsights(ctx context.Context, query string, args ...any) ([]core.Insight, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Insight, 0)
	for rows.Next() {
		var i core.Insight
		if err := rows.Scan(&i.ID, &i.Title, &i.Content, &i.Author, &i.Category, &i.IsActive); err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListActiveInsights(ctx context.Context) ([]core.Insight, error) {
	out, err := r.listInsights(ctx, `SELECT `+insightColumns+` FROM insights WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list active insights: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) ListInsightsByAuthor(ctx context.Context, author core.InsightAuthor) ([]core.Insight, error) {
	out, err := r.listInsights(ctx,
		`SELECT `+insightColumns+` FROM insights WHERE is_active = 1 AND author = ? ORDER BY id`, string(author))
	if err != nil {
		return nil, fmt.Errorf("list insights by %s: %w", author, err)
	}
	return out, nil
}

func (r *SQLiteRepository) CreateInsight(ctx context.Context, i core.Insight) (core.Insight, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO insights (title, content, author, category, is_active) VALUES (?, ?, ?, ?, ?)`,
		i.Title, i.Content, string(i.Author), i.Category, i.IsActive)
	if err != nil {
		return core.Insight{}, fmt.Errorf("create insight: %w", err)
	}
	if i.ID, err = res.LastInsertId(); err != nil {
		return core.Insight{}, fmt.Errorf("create insight id: %w", err)
	}
	return i, nil
}
