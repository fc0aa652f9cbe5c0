package kv

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis engine
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps each document as a plain string key
type RedisStore struct {
	rdb    *goredis.Client
	prefix string
	logger *slog.Logger
}

func NewRedisStore(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		return nil, errors.New("redis engine requires REDIS_ADDR")
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = "prompt-keeper:"
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	logger.Info("redis store initialized", "addr", addr, "prefix", prefix)
	return &RedisStore{rdb: rdb, prefix: prefix, logger: logger}, nil
}

func (r *RedisStore) key(name string) string {
	return r.prefix + name
}

func (r *RedisStore) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := checkName(name); err != nil {
		return nil, false, err
	}
	start := time.Now()

	data, err := r.rdb.Get(ctx, r.key(name)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("failed to load document", "error", err, "name", name)
		return nil, false, fmt.Errorf("failed to load document: %w", err)
	}

	r.logger.Debug("kv operation",
		"operation", "Load",
		"engine", EngineRedis,
		"name", name,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, true, nil
}

func (r *RedisStore) Save(ctx context.Context, name string, data []byte) error {
	if err := checkName(name); err != nil {
		return err
	}
	start := time.Now()

	if err := r.rdb.Set(ctx, r.key(name), data, 0).Err(); err != nil {
		r.logger.Error("failed to save document", "error", err, "name", name)
		return fmt.Errorf("failed to save document: %w", err)
	}

	r.logger.Debug("kv operation",
		"operation", "Save",
		"engine", EngineRedis,
		"name", name,
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return nil
}

func (r *RedisStore) Close() error {
	return r.rdb.Close()
}
