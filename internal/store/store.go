// Package store persists call records in a local SQLite cache file.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// Store wraps the SQL database connection with call-cache specific methods.
// The backing file is disposable: losing it only forces a refetch from the
// remote API, so schema creation is idempotent and never migrates data.
type Store struct {
	*sql.DB
	path string
}

// New opens (or creates) the cache database at path and ensures the schema
// exists. Existing rows are never touched.
func New(path string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	// Open database connection
	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	// Test connection
	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	s := &Store{
		DB:   sqlDB,
		path: path,
	}

	// Configure database
	if err := s.configure(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to configure cache database: %w", err)
	}

	// Create schema
	if err := s.createSchema(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("failed to create cache schema: %w", err)
	}

	return s, nil
}

// Path returns the cache database file path.
func (s *Store) Path() string {
	return s.path
}

// configure sets up database pragmas for optimal performance.
func (s *Store) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := s.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (s *Store) createSchema() error {
	// "end" is quoted because it is a SQL keyword.
	query := `
	CREATE TABLE IF NOT EXISTS calls (
		id TEXT PRIMARY KEY,
		caller TEXT,
		transcript TEXT,
		summary TEXT,
		start TEXT,
		"end" TEXT,
		cost REAL,
		cost_breakdown TEXT,
		ended_reason TEXT,
		cached_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_calls_cached_at ON calls(cached_at);
	CREATE INDEX IF NOT EXISTS idx_calls_start ON calls(start);
	`
	_, err := s.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (s *Store) Close() error {
	// Checkpoint WAL before closing
	_, _ = s.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return s.DB.Close()
}

// Vacuum performs database maintenance to reclaim space.
func (s *Store) Vacuum() error {
	_, err := s.ExecContext(context.Background(), "VACUUM")
	return err
}

// Remove deletes the cache file at path along with its WAL siblings. A
// missing file is not an error.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return nil
}
