// Package kv persists whole JSON documents under a name. Each engine keeps
// exactly one value per name and returns it byte-for-byte on Load.
package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Document names used by the application
const (
	DocPrompts      = "prompt-keeper-storage"
	DocGamification = "prompt-keeper-gamification"
	DocSettings     = "prompt-keeper-settings"
)

// Engine names accepted by Open
const (
	EngineMemory   = "memory"
	EngineFile     = "file"
	EngineSQLite   = "sqlite"
	EnginePostgres = "postgres"
	EngineRedis    = "redis"
)

// Store loads and saves named documents
type Store interface {
	// Load returns the document stored under name. ok is false when nothing was saved yet.
	Load(ctx context.Context, name string) (data []byte, ok bool, err error)
	Save(ctx context.Context, name string, data []byte) error
	Close() error
}

// ErrEmptyName is returned when a document name is blank
var ErrEmptyName = errors.New("document name cannot be empty")

// Options selects and configures an engine
type Options struct {
	Engine string
	// Path is the directory for the file engine and the database file for sqlite.
	Path string
	// DSN is the Postgres connection string.
	DSN           string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// Prefix namespaces redis keys.
	Prefix string
	Logger *slog.Logger
}

// Open builds the store selected by opts.Engine
func Open(ctx context.Context, opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case EngineMemory:
		return NewMemoryStore(), nil
	case "", EngineFile:
		return NewFileStore(opts.Path, logger)
	case EngineSQLite:
		return NewSQLiteStore(opts.Path, logger)
	case EnginePostgres:
		return NewPostgresStore(ctx, opts.DSN, logger)
	case EngineRedis:
		return NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
			Prefix:   opts.Prefix,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported storage engine: %s", opts.Engine)
	}
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	return nil
}
