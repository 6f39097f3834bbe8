// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/scaffold/internal/api"
	"github.com/starford/scaffold/internal/archive"
	"github.com/starford/scaffold/internal/journalservice"
	"github.com/starford/scaffold/internal/mcpserver"
	"github.com/starford/scaffold/internal/models"
	"github.com/starford/scaffold/internal/sse"
	"github.com/starford/scaffold/internal/vault"
)

var errConfigRequired = errors.New("config is required")

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return logger
}

// openStores opens the vault document and, when enabled, the archive.
// The returned close function is never nil.
func openStores(cfg *Config, logger *slog.Logger) (*vault.Vault, *archive.DB, func(), error) {
	store, err := vault.Open(cfg.Vault.Path)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("init vault: %w", err)
	}
	if !cfg.Archive.Enabled {
		return store, nil, func() {}, nil
	}

	db, err := archive.Open(cfg.Archive.Path)
	if err != nil {
		return nil, nil, func() {}, fmt.Errorf("init archive: %w", err)
	}
	if err := archive.Sync(db, store, logger); err != nil {
		logger.Warn("initial sync failed", slog.String("error", err.Error()))
	}
	attrs := make([]any, 0, len(models.Collections))
	for _, c := range models.Collections {
		if n, err := db.Count(c); err == nil {
			attrs = append(attrs, slog.Int(string(c), n))
		}
	}
	logger.Info("Archive opened", append(attrs, slog.String("archive_path", cfg.Archive.Path))...)
	return store, db, func() { db.Close() }, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("vault_path", cfg.Vault.Path),
		slog.Bool("archive_enabled", cfg.Archive.Enabled),
		slog.String("archive_path", cfg.Archive.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, db, closeStores, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	svc := journalservice.NewService(store, func(c models.Collection) {
		broker.PublishAppend(string(c))
	}, logger)
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.Snapshot(req.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Watch the vault document for changes made outside this process.
	g.Go(func() error {
		err := archive.Watch(gCtx, db, store, logger, func(kind string) {
			svc.Reload()
			broker.PublishFileChange()
		})
		if err != nil {
			logger.Error("watcher failed", slog.String("error", err.Error()))
		}
		return nil
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the journal tools over MCP stdio. Logs go to stderr since
// stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)

	store, db, closeStores, err := openStores(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStores()

	var notify journalservice.ChangeFunc
	if db != nil {
		notify = func(models.Collection) {
			if err := archive.Sync(db, store, logger); err != nil {
				logger.Warn("archive sync failed", slog.String("error", err.Error()))
			}
		}
	}
	svc := journalservice.NewService(store, notify, logger)

	logger.Info("MCP server starting", slog.String("vault_path", cfg.Vault.Path))
	return mcpserver.New(svc, app.version).ServeStdio()
}
