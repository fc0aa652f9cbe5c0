package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore keeps documents in a single-table SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the database and initializes the schema
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	// Remove sqlite3:// prefix if present
	cleanPath := strings.TrimPrefix(dbPath, "sqlite3://")
	if cleanPath == "" {
		cleanPath = "./data/prompt-keeper.db"
	}
	if !strings.HasPrefix(cleanPath, ":memory:") && !strings.HasPrefix(cleanPath, "file:") {
		dir := filepath.Dir(cleanPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create data directory", "error", err, "path", dir)
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", cleanPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", dbPath)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared across calls
	db.SetMaxOpenConns(1)

	store := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "engine", EngineSQLite, "path", cleanPath)
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name       TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		s.logger.Error("failed to initialize schema", "error", err)
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := checkName(name); err != nil {
		return nil, false, err
	}
	start := time.Now()

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("failed to load document", "error", err, "name", name)
		return nil, false, fmt.Errorf("failed to load document: %w", err)
	}

	s.logger.Debug("kv operation",
		"operation", "Load",
		"engine", EngineSQLite,
		"name", name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, true, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	start := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, name, data)
	if err != nil {
		s.logger.Error("failed to save document", "error", err, "name", name)
		return fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Debug("kv operation",
		"operation", "Save",
		"engine", EngineSQLite,
		"name", name,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.logger.Info("database closed", "engine", EngineSQLite)
	return nil
}
