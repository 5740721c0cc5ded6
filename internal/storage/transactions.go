package storage

import (
	"context"
	"fmt"

	"budgetwise/internal/core"
)

const transactionColumns = `id, user_id, description, amount, category, occurred_on,
	pay_period_start, pay_period_end, created_at`

func scanTransaction(s scanner) (core.Transaction, error) {
	var (
		t                                     core.Transaction
		amount, occurred, start, end, created string
	)
	if err := s.Scan(&t.ID, &t.UserID, &t.Description, &amount, &t.Category,
		&occurred, &start, &end, &created); err != nil {
		return core.Transaction{}, err
	}
	var err error
	if t.Amount, err = parseDecimal(amount, "amount"); err != nil {
		return core.Transaction{}, err
	}
	if t.Date, err = parseStoredDate(occurred, "occurred_on"); err != nil {
		return core.Transaction{}, err
	}
	if t.PayPeriodStart, err = parseStoredDate(start, "pay_period_start"); err != nil {
		return core.Transaction{}, err
	}
	if t.PayPeriodEnd, err = parseStoredDate(end, "pay_period_end"); err != nil {
		return core.Transaction{}, err
	}
	t.CreatedAt = parseTimestamp(created)
	return t, nil
}

func (r *SQLiteRepository) listTransactions(ctx context.Context, query string, args ...any) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) ListTransactionsByUser(ctx context.Context, userID int64) ([]core.Transaction, error) {
	txs, err := r.listTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ?
		ORDER BY occurred_on DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %d: %w", userID, err)
	}
	return txs, nil
}

func (r *SQLiteRepository) ListTransactionsByPayPeriod(ctx context.Context, userID int64, start, end core.Date) ([]core.Transaction, error) {
	txs, err := r.listTransactions(ctx, `
		SELECT `+transactionColumns+` FROM transactions
		WHERE user_id = ? AND pay_period_start = ? AND pay_period_end = ?
		ORDER BY occurred_on DESC, id DESC`, userID, start.String(), end.String())
	if err != nil {
		return nil, fmt.Errorf("list transactions for user %d in %s..%s: %w", userID, start, end, err)
	}
	return txs, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return getTransaction(ctx, r.db, id)
}

func getTransaction(ctx context.Context, q querier, id int64) (core.Transaction, error) {
	t, err := scanTransaction(q.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE id = ?`, id))
	if err != nil {
		return core.Transaction{}, notFound(err, "transaction", id)
	}
	return t, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (user_id, description, amount, category, occurred_on,
			pay_period_start, pay_period_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.Description, t.Amount.String(), string(t.Category), t.Date.String(),
		t.PayPeriodStart.String(), t.PayPeriodEnd.String(), r.timestamp())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction id: %w", err)
	}
	return r.GetTransaction(ctx, id)
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, id int64, p core.TransactionPatch) (core.Transaction, error) {
	var out core.Transaction
	err := r.inTx(ctx, func(q querier) error {
		t, err := getTransaction(ctx, q, id)
		if err != nil {
			return err
		}
		p.Apply(&t)
		if _, err := q.ExecContext(ctx, `
			UPDATE transactions SET description = ?, amount = ?, category = ?, occurred_on = ?,
				pay_period_start = ?, pay_period_end = ?
			WHERE id = ?`,
			t.Description, t.Amount.String(), string(t.Category), t.Date.String(),
			t.PayPeriodStart.String(), t.PayPeriodEnd.String(), id); err != nil {
			return fmt.Errorf("update transaction %d: %w", id, err)
		}
		out = t
		return nil
	})
	return out, err
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return requireAffected(res, "transaction", id)
}
