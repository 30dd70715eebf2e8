// Package sqlite is the relational storage backend: the same repository
// contracts as the JSON file stores, backed by per-user SQLite tables.
// This is the multi-user variant; user scoping happens in SQL rather
// than in per-user JSON buckets.
package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and migrates the schema.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL mode for concurrent readers while the server writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping() error {
	return s.db.Ping()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		id          TEXT NOT NULL,
		user_id     TEXT NOT NULL,
		name        TEXT NOT NULL,
		start_date  TEXT NOT NULL,
		program     TEXT NOT NULL,
		goal        TEXT NOT NULL DEFAULT '',
		notes       TEXT NOT NULL DEFAULT '',
		created_at  DATETIME NOT NULL,
		updated_at  DATETIME NOT NULL,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS rules (
		id            TEXT NOT NULL,
		user_id       TEXT NOT NULL,
		kind          TEXT NOT NULL,
		title         TEXT NOT NULL,
		weekday       INTEGER NOT NULL DEFAULT 0,
		week          INTEGER NOT NULL DEFAULT 0,
		cadence_every INTEGER NOT NULL DEFAULT 0,
		cadence_start INTEGER NOT NULL DEFAULT 0,
		position      INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, id)
	);

	CREATE TABLE IF NOT EXISTS rule_seeds (
		user_id TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS completions (
		user_id    TEXT NOT NULL,
		date       TEXT NOT NULL,
		client_id  TEXT NOT NULL,
		task_id    TEXT NOT NULL,
		done       INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (user_id, date, client_id, task_id)
	);

	CREATE INDEX IF NOT EXISTS idx_completions_user_date
		ON completions (user_id, date);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Clients returns the roster repository scoped to one user.
func (s *Store) Clients(userID string) *ClientRepo {
	return &ClientRepo{db: s.db, userID: orDefault(userID)}
}

// Rules returns the rule repository scoped to one user.
func (s *Store) Rules(userID string) *RuleRepo {
	return &RuleRepo{db: s.db, userID: orDefault(userID)}
}

// Ledger returns the completion repository scoped to one user.
func (s *Store) Ledger(userID string) *LedgerRepo {
	return &LedgerRepo{db: s.db, userID: orDefault(userID)}
}

func orDefault(userID string) string {
	if userID == "" {
		return "default"
	}
	return userID
}
