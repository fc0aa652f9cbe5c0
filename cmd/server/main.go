package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/TH33ORACL3/prompt-keeper/backend/aigateway"
	"github.com/TH33ORACL3/prompt-keeper/backend/config"
	"github.com/TH33ORACL3/prompt-keeper/backend/gamification"
	"github.com/TH33ORACL3/prompt-keeper/backend/handlers"
	"github.com/TH33ORACL3/prompt-keeper/backend/kv"
	"github.com/TH33ORACL3/prompt-keeper/backend/service"
	"github.com/TH33ORACL3/prompt-keeper/backend/settings"
	"github.com/TH33ORACL3/prompt-keeper/backend/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	var logHandler slog.Handler

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		logHandler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting prompt keeper server",
		"port", cfg.Port,
		"storage", cfg.Storage.Engine,
		"base_url", cfg.BaseURL,
		"log_format", cfg.LogFormat,
		"log_level", cfg.LogLevel,
	)

	ctx := context.Background()

	// Initialize storage
	kvOpts := cfg.KVOptions()
	kvOpts.Logger = logger
	backend, err := kv.Open(ctx, kvOpts)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err, "engine", cfg.Storage.Engine)
		os.Exit(1)
	}
	defer backend.Close()

	aiSettings, err := settings.New(ctx, backend, cfg.AI, logger)
	if err != nil {
		logger.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	prompts, err := store.New(ctx, backend, store.Options{Logger: logger, Seed: cfg.SeedDefaults})
	if err != nil {
		logger.Error("failed to load prompts", "error", err)
		os.Exit(1)
	}

	engine, err := gamification.New(ctx, backend, gamification.Options{Logger: logger})
	if err != nil {
		logger.Error("failed to load gamification state", "error", err)
		os.Exit(1)
	}

	gateway := aigateway.New(aiSettings, aigateway.Options{Logger: logger})

	// Initialize handlers
	h := handlers.New(service.New(prompts, engine, gateway, logger), aiSettings, backend, logger)
	handler := h.Routes()

	// Create HTTP server; AI calls can take a while, so writes get a longer timeout
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		backend.Close()
		os.Exit(1)
	case sig := <-quit:
		logger.Info("received shutdown signal", "signal", sig.String())
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	logger.Info("shutting down server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		backend.Close()
		os.Exit(1)
	}

	logger.Info("server stopped gracefully")
}
