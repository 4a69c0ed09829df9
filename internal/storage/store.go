// Package storage is the SQLite persistence layer of the ledger:
// user accounts, the seeded category catalog, recorded expenses and
// the windowed sum queries behind reports.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// timeFormat matches SQLite's datetime() output; all timestamps are
// stored as local time text in this layout.
const timeFormat = "2006-01-02 15:04:05"

// Store owns the single database handle. It is opened once at startup,
// shared by every caller and closed once at shutdown.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at dbPath and applies
// pending migrations. Foreign keys are enforced on the connection.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// One shared connection; SQLite serializes writers anyway and this
	// keeps the foreign_keys pragma pinned to every statement.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Destroy removes the database file. Administrative wipe only; a
// subsequent Open recreates the schema and the seeded catalog.
func Destroy(dbPath string) error {
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("remove database file: %w", err)
	}
	return nil
}

func dsn(dbPath string) string {
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)", dbPath)
}
