// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/linkhub/internal/api"
	"github.com/starford/linkhub/internal/assets"
	"github.com/starford/linkhub/internal/authn"
	"github.com/starford/linkhub/internal/directory"
	"github.com/starford/linkhub/internal/dirsync"
	"github.com/starford/linkhub/internal/sse"
	"github.com/starford/linkhub/internal/store"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured JSON logger.
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.Bool("lark_sso", cfg.Auth.Lark.Enabled()),
		slog.Bool("dir_sync", cfg.Sync.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Initialize SQLite store.
	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// Initialize asset store.
	assetStore, err := assets.NewFS(cfg.Assets.Dir)
	if err != nil {
		return fmt.Errorf("init assets: %w", err)
	}

	// Run initial department sync.
	if cfg.Sync.Enabled() {
		if _, err := dirsync.SyncFile(db, cfg.Sync.Path, logger); err != nil {
			logger.Warn("initial department sync failed", slog.String("error", err.Error()))
		}
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Build domain services and router.
	svc := directory.NewService(db)
	sessions := authn.NewSessions(cfg.Auth.JWTSecret, cfg.Auth.SessionTTL)
	var lark *authn.LarkClient
	if cfg.Auth.Lark.Enabled() {
		lark = authn.NewLarkClient(cfg.Auth.Lark.ClientID, cfg.Auth.Lark.ClientSecret, cfg.Auth.Lark.RedirectURL)
	}
	auth := authn.NewService(db, sessions, lark)
	apiRouter := api.NewRouter(svc, auth, broker, assetStore)

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
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api, stored assets under /assets.
	r.Mount("/api", apiRouter)
	r.Mount("/assets", api.NewAssetRouter(assetStore, svc))

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Re-sync departments when the HR export changes.
	if cfg.Sync.Enabled() && cfg.Sync.Watch {
		g.Go(func() error {
			if err := dirsync.Watch(gCtx, db, cfg.Sync.Path, logger, nil); err != nil {
				logger.Warn("department watcher failed", slog.String("error", err.Error()))
			}
			return nil
		})
	}

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
