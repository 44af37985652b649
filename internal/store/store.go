package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const currentVersion = 1

type Store struct {
	db *sql.DB
}

// New opens (or creates) the SQLite database at dbPath and runs migrations.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// Configure pragmas.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// NewMemory creates an in-memory store for testing.
func NewMemory() (*Store, error) {
	return New(":memory:")
}

// Open opens the database at dbPath. When that fails it logs a warning and
// falls back to an in-memory database, so preferences and tasks still work
// for the session but are not persisted. Persistent reports whether the
// file database is in use.
func Open(dbPath string, logger *slog.Logger) (s *Store, persistent bool, err error) {
	s, err = New(dbPath)
	if err == nil {
		return s, true, nil
	}
	if logger != nil {
		logger.Warn("storage unavailable, using in-memory database", "path", dbPath, "err", err)
	}
	s, err = NewMemory()
	if err != nil {
		return nil, false, err
	}
	return s, false, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	_, err = s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))
	return err
}

func (s *Store) migrateV1() error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS sub_tasks (
		id           TEXT PRIMARY KEY,
		action_id    TEXT NOT NULL,
		description  TEXT NOT NULL,
		responsible  TEXT NOT NULL,
		sector       TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'Não Iniciado',
		start_date   TEXT NOT NULL,
		end_date     TEXT NOT NULL,
		sort_order   INTEGER NOT NULL DEFAULT 0,
		follow_up    TEXT NOT NULL DEFAULT '',
		created_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now')),
		updated_at   TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
	);

	CREATE INDEX IF NOT EXISTS idx_sub_tasks_action ON sub_tasks(action_id, sort_order);

	INSERT OR IGNORE INTO settings (key, value) VALUES
		('theme',            'light'),
		('sidebar_expanded', 'true'),
		('ai_provider',      'gemini'),
		('ai_api_key',       '');
	`
	_, err := s.db.Exec(ddl)
	return err
}
