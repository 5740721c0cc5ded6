package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"budgetwise/internal/core"
)

const userColumns = `id, first_name, last_name, email, pay_schedule, pay_day, last_pay_date,
	after_tax_income, is_onboarded, created_at`

func scanUser(s scanner) (core.User, error) {
	var (
		u         core.User
		payDay    sql.NullInt64
		lastPay   sql.NullString
		income    string
		createdAt string
	)
	if err := s.Scan(&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PaySchedule,
		&payDay, &lastPay, &income, &u.IsOnboarded, &createdAt); err != nil {
		return core.User{}, err
	}
	if payDay.Valid {
		day := int(payDay.Int64)
		u.PayDay = &day
	}
	if lastPay.Valid {
		d, err := parseStoredDate(lastPay.String, "last_pay_date")
		if err != nil {
			return core.User{}, err
		}
		u.LastPayDate = &d
	}
	var err error
	if u.AfterTaxIncome, err = parseDecimal(income, "after_tax_income"); err != nil {
		return core.User{}, err
	}
	u.CreatedAt = parseTimestamp(createdAt)
	return u, nil
}

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	created := r.timestamp()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO users (first_name, last_name, email, pay_schedule, pay_day, last_pay_date,
			after_tax_income, is_onboarded, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.FirstName, u.LastName, u.Email, string(u.PaySchedule), nullableInt(u.PayDay),
		nullableDate(u.LastPayDate), u.AfterTaxIncome.String(), u.IsOnboarded, created)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, fmt.Errorf("create user %q: %w", u.Email, ErrDuplicateEmail)
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.User{}, fmt.Errorf("create user id: %w", err)
	}
	return r.GetUser(ctx, id)
}

func (r *SQLiteRepository) GetUser(ctx context.Context, id int64) (core.User, error) {
	return getUser(ctx, r.db, id)
}

func getUser(ctx context.Context, q querier, id int64) (core.User, error) {
	u, err := scanUser(q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return core.User{}, notFound(err, "user", id)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? COLLATE NOCASE`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, fmt.Errorf("user %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, id int64, p core.UserPatch) (core.User, error) {
	var out core.User
	err := r.inTx(ctx, func(q querier) error {
		u, err := getUser(ctx, q, id)
		if err != nil {
			return err
		}
		p.Apply(&u)
		_, err = q.ExecContext(ctx, `
			UPDATE users SET first_name = ?, last_name = ?, email = ?, pay_schedule = ?, pay_day = ?,
				last_pay_date = ?, after_tax_income = ?, is_onboarded = ?
			WHERE id = ?`,
			u.FirstName, u.LastName, u.Email, string(u.PaySchedule), nullableInt(u.PayDay),
			nullableDate(u.LastPayDate), u.AfterTaxIncome.String(), u.IsOnboarded, id)
		if err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("update user %d: %w", id, ErrDuplicateEmail)
			}
			return fmt.Errorf("update user %d: %w", id, err)
		}
		out = u
		return nil
	})
	return out, err
}
