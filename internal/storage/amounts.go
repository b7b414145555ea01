package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"budget/internal/core"
)

const amountSelect = `
	SELECT a.id, a.category_id, c.name, a.amount, a.note, a.created_at, a.updated_at
	FROM amounts a
	JOIN categories c ON c.id = a.category_id`

func scanAmount(row rowScanner) (core.Amount, error) {
	var (
		a    core.Amount
		note sql.NullString
	)
	if err := row.Scan(&a.ID, &a.CategoryID, &a.CategoryName, &a.Amount, &note, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return core.Amount{}, err
	}
	if note.Valid {
		a.Note = &note.String
	}
	return a, nil
}

func (r *SQLRepository) CreateAmount(ctx context.Context, a core.Amount) (core.Amount, error) {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO amounts (category_id, amount, note, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id`,
		a.CategoryID, a.Amount, nullableString(a.Note), a.CreatedAt.UTC(), a.UpdatedAt.UTC(),
	).Scan(&a.ID)
	if err != nil {
		return core.Amount{}, fmt.Errorf("insert amount: %w", r.db.classify(err))
	}

	slog.DebugContext(ctx, "Amount saved", "id", a.ID, "category_id", a.CategoryID, "amount", a.Amount.String())
	return a, nil
}

func (r *SQLRepository) GetAmount(ctx context.Context, id int64) (core.Amount, error) {
	a, err := scanAmount(r.db.QueryRowContext(ctx, amountSelect+` WHERE a.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return core.Amount{}, ErrNotFound
	}
	if err != nil {
		return core.Amount{}, fmt.Errorf("get amount %d: %w", id, err)
	}
	return a, nil
}

func (r *SQLRepository) ListAmounts(ctx context.Context, categoryID *int64) ([]core.Amount, error) {
	query := amountSelect
	var args []any
	if categoryID != nil {
		query += ` WHERE a.category_id = ?`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY a.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list amounts: %w", err)
	}
	defer rows.Close()

	amounts := make([]core.Amount, 0)
	for rows.Next() {
		a, err := scanAmount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan amount: %w", err)
		}
		amounts = append(amounts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate amounts: %w", err)
	}
	return amounts, nil
}

func (r *SQLRepository) UpdateAmount(ctx context.Context, a core.Amount) (core.Amount, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE amounts SET category_id = ?, amount = ?, note = ?, updated_at = ?
		WHERE id = ?`,
		a.CategoryID, a.Amount, nullableString(a.Note), a.UpdatedAt.UTC(), a.ID,
	)
	if err != nil {
		return core.Amount{}, fmt.Errorf("update amount %d: %w", a.ID, r.db.classify(err))
	}
	if err := requireAffected(res); err != nil {
		return core.Amount{}, err
	}
	return r.GetAmount(ctx, a.ID)
}

func (r *SQLRepository) DeleteAmount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM amounts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete amount %d: %w", id, err)
	}
	return requireAffected(res)
}

func (r *SQLRepository) SummaryEntries(ctx context.Context, start, end core.Date) ([]core.SummaryEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.name, c.category_type, a.amount
		FROM amounts a
		JOIN categories c ON c.id = a.category_id
		WHERE c.effective_date IS NOT NULL
		  AND c.effective_date <= ?
		  AND (c.end_date IS NULL OR c.end_date >= ?)
		ORDER BY a.id`,
		end, start,
	)
	if err != nil {
		return nil, fmt.Errorf("query summary entries: %w", err)
	}
	defer rows.Close()

	var entries []core.SummaryEntry
	for rows.Next() {
		var e core.SummaryEntry
		if err := rows.Scan(&e.CategoryName, &e.CategoryType, &e.Amount); err != nil {
			return nil, fmt.Errorf("scan summary entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate summary entries: %w", err)
	}
	return entries, nil
}
