package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"kopilka/internal/core"
)

// CreateUser inserts a new account with a server-assigned last_active
// timestamp. A taken id or username comes back as core.ErrAlreadyExists;
// either way at most one row is written.
func (s *Store) CreateUser(ctx context.Context, u core.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, is_admin, is_active, username, password, last_active)
		 VALUES (?, ?, ?, ?, ?, datetime('now', 'localtime'))`,
		u.ID, u.IsAdmin, u.IsActive, nullString(u.Username), u.Password,
	)
	if err != nil {
		return fmt.Errorf("create user %d: %w", u.ID, mapConstraint(err))
	}

	slog.InfoContext(ctx, "User registered", "user_id", u.ID, "is_admin", u.IsAdmin)
	return nil
}

// UserExists reports whether an account with the given id exists.
func (s *Store) UserExists(ctx context.Context, id int64) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user %d: %w", id, err)
	}
	return true, nil
}

// UserExistsByName reports whether an account with the given username
// exists. The match is case-sensitive and exact.
func (s *Store) UserExistsByName(ctx context.Context, username string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM users WHERE username = ?", username).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check username %q: %w", username, err)
	}
	return true, nil
}

// UserByUsername loads a full account row, core.ErrNotFound when the
// username is unknown.
func (s *Store) UserByUsername(ctx context.Context, username string) (core.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, is_admin, is_active, username, password, last_active
		 FROM users WHERE username = ?`, username)

	var (
		u          core.User
		name       sql.NullString
		lastActive string
	)
	if err := row.Scan(&u.ID, &u.IsAdmin, &u.IsActive, &name, &u.Password, &lastActive); err != nil {
		return core.User{}, fmt.Errorf("get user %q: %w", username, mapNotFound(err))
	}
	u.Username = name.String
	if t, err := time.ParseInLocation(timeFormat, lastActive, time.Local); err == nil {
		u.LastActive = t
	}
	return u, nil
}

// UserIDByUsername resolves a username to the stable account id,
// core.ErrNotFound when no such username exists.
func (s *Store) UserIDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, "SELECT id FROM users WHERE username = ?", username).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("resolve username %q: %w", username, mapNotFound(err))
	}
	return id, nil
}

// TouchActivity stamps last_active with the current local time. It is
// a no-op reporting false when the user does not exist.
func (s *Store) TouchActivity(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET last_active = datetime('now', 'localtime') WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("touch user %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("touch user %d: %w", id, err)
	}
	return n > 0, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
