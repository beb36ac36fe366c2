package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DefaultIntegration keys the marker when StateConfig.Integration is empty.
const DefaultIntegration = "humio"

// StateConfig configures the SQLite store.
type StateConfig struct {
	// Path is the filesystem path to the SQLite database file.
	// Default: ~/.local/share/humio-connector/state.db
	Path string

	// Integration names the instance whose marker is stored, so several
	// configurations can share one database file.
	Integration string
}

// DefaultPath returns ~/.local/share/humio-connector/state.db.
func DefaultPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".local", "share", "humio-connector", "state.db"), nil
}

// SQLiteStore keeps the marker in a SQLite table.
type SQLiteStore struct {
	db          *sql.DB
	integration string
}

// NewSQLiteStore opens (creating if needed) the database at cfg.Path.
func NewSQLiteStore(cfg StateConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfg.Path = p
	}
	if cfg.Integration == "" {
		cfg.Integration = DefaultIntegration
	}

	memory := cfg.Path == ":memory:"
	connStr := cfg.Path
	if !memory {
		dir := filepath.Dir(cfg.Path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		connStr += "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	if memory {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := &SQLiteStore{db: db, integration: cfg.Integration}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS last_run (
		integration TEXT PRIMARY KEY,
		time INTEGER NOT NULL,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// GetLastRun returns ErrNoLastRun when nothing has been stored.
func (s *SQLiteStore) GetLastRun(ctx context.Context) (LastRun, error) {
	var lr LastRun
	err := s.db.QueryRowContext(ctx,
		`SELECT time FROM last_run WHERE integration = ?`, s.integration,
	).Scan(&lr.Time)
	if errors.Is(err, sql.ErrNoRows) {
		return LastRun{}, ErrNoLastRun
	}
	if err != nil {
		return LastRun{}, fmt.Errorf("failed to get last run: %w", err)
	}
	return lr, nil
}

// SetLastRun upserts the marker.
func (s *SQLiteStore) SetLastRun(ctx context.Context, lr LastRun) error {
	query := `
	INSERT INTO last_run (integration, time, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(integration) DO UPDATE SET
		time = excluded.time,
		updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, s.integration, lr.Time, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to save last run: %w", err)
	}
	return nil
}

// Reset deletes the marker so the next fetch uses the configured start time.
func (s *SQLiteStore) Reset(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM last_run WHERE integration = ?`, s.integration); err != nil {
		return fmt.Errorf("failed to reset last run: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
