// Package main is the entry point for the FAQ chatbot server.
//
// MAIN PACKAGE IN GO:
// The main package should be kept minimal — its job is to:
// 1. Read configuration (internal/config, from env vars)
// 2. Create dependencies (logger, data directory)
// 3. Start the application
//
// All actual logic lives in imported packages (internal/server, internal/handler, etc.).
//
// WHY cmd/server/?
// The cmd/ directory is a Go convention for executable entry points.
// This project has two: cmd/server (the HTTP API) and cmd/chatbotctl (the admin CLI).
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/sakif/faq-chatbot/internal/config"
	"github.com/sakif/faq-chatbot/internal/server"
)

func main() {
	// === 1. READ CONFIGURATION ===
	// Config errors are reported with a default logger since LOG_LEVEL itself may be
	// the bad value.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// === 2. SET UP LOGGING ===
	// Log levels (from least to most severe): Debug → Info → Warn → Error.
	// LOG_LEVEL picks the minimum; the default is info.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	// === 3. DATABASE DIRECTORY ===
	// os.MkdirAll creates all parent directories if needed (like `mkdir -p`).
	if cfg.DBPath != ":memory:" {
		dbDir := filepath.Dir(cfg.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	// === 4. CREATE AND START THE SERVER ===
	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start() blocks until the server is shut down (via Ctrl+C or SIGTERM)
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
