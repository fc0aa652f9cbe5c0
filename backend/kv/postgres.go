package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore keeps documents in a Postgres table
type PostgresStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewPostgresStore(ctx context.Context, dsn string, logger *slog.Logger) (*PostgresStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dsn == "" {
		return nil, errors.New("postgres engine requires DATABASE_URL")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		logger.Error("failed to reach database", "error", err)
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	store := &PostgresStore{db: db, logger: logger}
	if err := store.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("database initialized", "engine", EnginePostgres)
	return store, nil
}

func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name       TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		s.logger.Error("failed to initialize schema", "error", err)
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := checkName(name); err != nil {
		return nil, false, err
	}
	start := time.Now()

	var data []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE name = $1`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		s.logger.Error("failed to load document", "error", err, "name", name)
		return nil, false, fmt.Errorf("failed to load document: %w", err)
	}

	s.logger.Debug("kv operation",
		"operation", "Load",
		"engine", EnginePostgres,
		"name", name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, true, nil
}

func (s *PostgresStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	start := time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (name, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, name, data)
	if err != nil {
		s.logger.Error("failed to save document", "error", err, "name", name)
		return fmt.Errorf("failed to save document: %w", err)
	}

	s.logger.Debug("kv operation",
		"operation", "Save",
		"engine", EnginePostgres,
		"name", name,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (s *PostgresStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.logger.Info("database closed", "engine", EnginePostgres)
	return nil
}
