package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore writes each document to <dir>/<name>.json
type FileStore struct {
	dir    string
	mu     sync.Mutex
	logger *slog.Logger
}

func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("file store initialized", "dir", dir)
	return &FileStore{dir: dir, logger: logger}, nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, filepath.Base(name)+".json")
}

func (f *FileStore) Load(_ context.Context, name string) ([]byte, bool, error) {
	if err := checkName(name); err != nil {
		return nil, false, err
	}
	start := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		f.logger.Error("failed to read document", "error", err, "name", name)
		return nil, false, fmt.Errorf("failed to read document: %w", err)
	}

	f.logger.Debug("kv operation",
		"operation", "Load",
		"name", name,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, true, nil
}

// Save replaces the document atomically through a temp file and rename.
func (f *FileStore) Save(_ context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	start := time.Now()
	f.mu.Lock()
	defer f.mu.Unlock()

	target := f.path(name)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		f.logger.Error("failed to write document", "error", err, "name", name)
		return fmt.Errorf("failed to write document: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		f.logger.Error("failed to replace document", "error", err, "name", name)
		return fmt.Errorf("failed to replace document: %w", err)
	}

	f.logger.Debug("kv operation",
		"operation", "Save",
		"name", name,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (f *FileStore) Close() error { return nil }
