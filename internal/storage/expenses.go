package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"kopilka/internal/core"
)

// InsertExpense appends one immutable row with a server-assigned local
// timestamp and returns its row reference. An unknown owner or category
// codename fails the whole insert with core.ErrIntegrity; nothing is
// written in that case.
func (s *Store) InsertExpense(ctx context.Context, ownerID int64, amount float64, codename string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO expense (id, amount, created, category_codename)
		 VALUES (?, ?, datetime('now', 'localtime'), ?)`,
		ownerID, amount, codename,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", mapConstraint(err))
	}

	ref, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense recorded",
		"ref", ref,
		"user_id", ownerID,
		"amount", amount,
		"codename", codename)

	return ref, nil
}

// ExpenseByRef loads a single recorded expense by its row reference,
// core.ErrNotFound when no such row exists.
func (s *Store) ExpenseByRef(ctx context.Context, ref int64) (core.Expense, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT rowid, id, amount, created, category_codename
		 FROM expense WHERE rowid = ?`, ref)

	var (
		e       core.Expense
		created string
	)
	if err := row.Scan(&e.Ref, &e.OwnerID, &e.Amount, &created, &e.Category); err != nil {
		return core.Expense{}, fmt.Errorf("get expense %d: %w", ref, mapNotFound(err))
	}
	if t, err := time.ParseInLocation(timeFormat, created, time.Local); err == nil {
		e.Created = t
	}
	return e, nil
}

// SumInWindow computes the server-side sum of one owner+category pair
// over the given window. A pair with no matching rows yields an invalid
// (NULL) sum, which callers distinguish from a literal zero.
func (s *Store) SumInWindow(ctx context.Context, ownerID int64, codename string, w core.Window) (sql.NullFloat64, error) {
	var (
		sum sql.NullFloat64
		err error
	)

	if from, to, bounded := w.Bounds(time.Now()); bounded {
		err = s.db.QueryRowContext(ctx,
			`SELECT SUM(amount) FROM expense
			 WHERE id = ? AND category_codename = ? AND created BETWEEN ? AND ?`,
			ownerID, codename, from.Format(timeFormat), to.Format(timeFormat),
		).Scan(&sum)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT SUM(amount) FROM expense
			 WHERE id = ? AND category_codename = ?`,
			ownerID, codename,
		).Scan(&sum)
	}

	if err != nil {
		return sql.NullFloat64{}, fmt.Errorf("sum expenses (%d, %q, %s): %w", ownerID, codename, w, err)
	}
	return sum, nil
}
