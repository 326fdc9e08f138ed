package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/gridstate/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on saves.saved_at
const currentSchemaVersion = 1

// DefaultIDProperty is the row key used as primary key unless configured.
const DefaultIDProperty = "id"

// Store is a SQLite-backed grid.DataSource.
type Store struct {
	db         *sql.DB
	idProperty string
	now        func() time.Time
	compiler   *querysql.SQLCompiler

	mu    sync.Mutex
	total int
}

// Option configures a Store.
type Option func(*Store)

// WithIDProperty names the row key holding the primary key.
func WithIDProperty(key string) Option {
	return func(s *Store) {
		s.idProperty = key
	}
}

// WithNow sets the time source for audit records.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens the grid database at path, creating it when missing, and
// brings its schema to the current version. ":memory:" gives a private
// in-memory database.
func Open(path string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open grid database %s: %w", path, err)
	}

	// One connection: a single writer, and every query sees the same
	// in-memory database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := prepare(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("open grid database %s: %w", path, err)
	}

	s := &Store{
		db:         db,
		idProperty: DefaultIDProperty,
		now:        func() time.Time { return time.Now().UTC() },
		compiler:   querysql.NewSQLCompiler("grid_rows", "payload", "seq"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.idProperty == "" {
		s.idProperty = DefaultIDProperty
	}
	return s, nil
}

func prepare(db *sql.DB) error {
	if err := db.Ping(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := applyPragmas(db); err != nil {
		return fmt.Errorf("apply pragmas: %w", err)
	}
	if err := applySchema(db); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// IDProperty returns the row key holding the primary key.
func (s *Store) IDProperty() string {
	return s.idProperty
}

// TotalCount returns the number of rows matching the filter of the last
// Load.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// migrateToV1 indexes the audit table by time for recent-saves listings.
func migrateToV1(db *sql.DB) error {
	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at)`)
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	return nil
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
