// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/archive"
	"github.com/starford/folio/internal/auth"
	"github.com/starford/folio/internal/ratelimit"
	"github.com/starford/folio/internal/sse"
	"github.com/starford/folio/internal/uploads"
	"github.com/starford/folio/internal/watcher"
)

// Run starts the HTTP server, file watcher and housekeeping scheduler and
// blocks until ctx is cancelled or SIGINT/SIGTERM arrives.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Storage.DataDir),
		slog.String("assets_dir", cfg.Storage.AssetsDir),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("mail_provider", cfg.Mail.Provider),
		slog.String("log_level", cfg.App.LogLevel.String()))

	notifier, err := newNotifier(cfg, logger)
	if err != nil {
		return err
	}

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	c, err := openContent(cfg, notifier, broker)
	if err != nil {
		return err
	}

	// Backfill legacy message fields before serving.
	if n, err := c.messages.Migrate(ctx); err != nil {
		logger.Warn("message migration failed", slog.String("error", err.Error()))
	} else if n > 0 {
		logger.Info("messages migrated", slog.Int("count", n))
	}

	db, err := openAccounts(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	authSvc := auth.NewService(db, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), notifier,
		auth.WithResetTTL(cfg.Auth.ResetTTL),
		auth.WithPublicURL(cfg.App.PublicURL),
	)
	created, err := authSvc.EnsureSeed(ctx, auth.SeedAccount{
		Username: cfg.Auth.Seed.Username,
		Email:    cfg.Auth.Seed.Email,
		Password: cfg.Auth.Seed.Password,
	})
	if err != nil {
		return fmt.Errorf("seed account: %w", err)
	}
	if created {
		logger.Info("seed account created", slog.String("username", cfg.Auth.Seed.Username))
	}

	limiter := ratelimit.New(cfg.Contact.RatePerMinute, cfg.Contact.Burst)

	sched := archive.NewScheduler()
	archiver := archive.NewArchiver(c.store, cfg.Archive.MaxAge)
	if err := sched.Add(cfg.Archive.DailySchedule, "archive-messages", archive.Sweep(archiver)); err != nil {
		return err
	}
	if err := sched.Add(cfg.Archive.WeeklySchedule, "cleanup", func(ctx context.Context) error {
		n, err := db.ClearExpiredResetTokens(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		logger.Info("cleanup finished",
			slog.Int64("reset_tokens_cleared", n),
			slog.Int("limiter_entries_pruned", limiter.Prune(cfg.Contact.IdleTTL)))
		return nil
	}); err != nil {
		return err
	}

	apiRouter := api.NewRouter(api.Services{
		Auth:         authSvc,
		Projects:     c.projects,
		Education:    c.education,
		Skills:       c.skills,
		Technologies: c.technologies,
		Messages:     c.messages,
		Stats:        c.stats,
		PersonalInfo: c.personalInfo,
		Files:        c.files,
		ContactLimit: limiter,
		Events:       broker,
	})

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

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	// Uploaded assets.
	r.Handle(uploads.URLPrefix+"*", http.StripPrefix(uploads.URLPrefix, http.FileServer(http.Dir(c.files.Root()))))

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	g, gCtx := errgroup.WithContext(sigCtx)

	// Start file watcher with SSE callback.
	g.Go(func() error {
		return watcher.Watch(gCtx, cfg.Storage.DataDir, logger, broker.PublishChange)
	})

	// Start housekeeping jobs.
	g.Go(func() error {
		return sched.Run(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown.
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("Shutting down server...")

		// End open event streams so Shutdown does not wait on them.
		broker.Close()

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
