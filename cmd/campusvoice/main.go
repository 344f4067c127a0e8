// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command campusvoice serves the CampusVoice site, its admin area, and the
// contact intake endpoint.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/campusvoice/internal/auth"
	"github.com/olegiv/campusvoice/internal/cache"
	"github.com/olegiv/campusvoice/internal/config"
	"github.com/olegiv/campusvoice/internal/editor"
	"github.com/olegiv/campusvoice/internal/imaging"
	"github.com/olegiv/campusvoice/internal/logging"
	"github.com/olegiv/campusvoice/internal/mail"
	"github.com/olegiv/campusvoice/internal/middleware"
	"github.com/olegiv/campusvoice/internal/render"
	"github.com/olegiv/campusvoice/internal/service"
	"github.com/olegiv/campusvoice/internal/session"
	"github.com/olegiv/campusvoice/internal/store"
	"github.com/olegiv/campusvoice/internal/version"
	"github.com/olegiv/campusvoice/web"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "CampusVoice - student newspaper server\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_SESSION_SECRET        Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_DB_PATH               SQLite database path (default: ./data/campusvoice.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_SERVER_PORT           Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_IMAGE_STRATEGY        inline|filesystem|s3 (default: inline)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_REDIS_URL             Redis URL for the shared cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_CORS_ALLOWED_ORIGINS  Origins allowed to post contact messages\n")
		_, _ = fmt.Fprintf(os.Stderr, "  CV_MAIL_API_KEY          Resend API key; messages are only logged without it\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Println("campusvoice " + version.Get().String())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Warnings and errors also land in the event log from here on.
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	appCache, err := cache.New(context.Background(), cache.Config{
		RedisURL:        cfg.RedisURL,
		Prefix:          cfg.CachePrefix,
		DefaultTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:         cfg.CacheMaxSize,
		CleanupInterval: time.Minute,
	})
	if err != nil {
		return fmt.Errorf("initializing cache: %w", err)
	}
	defer func() { _ = appCache.Close() }()
	slog.Info("cache initialized", "backend", cache.Backend(appCache), "url", cache.SanitizeRedisURL(cfg.RedisURL))

	ctx := context.Background()
	images, err := newIngestor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	slog.Info("image ingestion ready", "strategy", images.PrimaryName())

	// Delete confirmations stay out of the size-limited memory cache. Redis
	// shares them across instances and never evicts live keys on its own.
	var confirmations cache.Cache = appCache
	if cache.Backend(appCache) == "memory" {
		local := service.NewConfirmationCache()
		defer func() { _ = local.Close() }()
		confirmations = local
	}

	posts := service.NewPostService(store.NewPostRepository(db), service.PostServiceOptions{
		Cache:         appCache,
		CacheTTL:      time.Duration(cfg.CacheTTL) * time.Second,
		Confirmations: confirmations,
		Logger:        logger,
	})
	contactService := service.NewContactService(store.NewContactRepository(db), newNotifier(cfg, logger), confirmations, logger).
		WithRateLimit(middleware.NewContactRateLimiter(cfg.ContactRateLimit, cfg.ContactRateBurst))
	events := service.NewEventService(db, logger)

	sessionManager := session.New(db, cfg.IsDevelopment())
	sessions := auth.NewSessions(sessionManager, db, logger)

	editors := editor.NewManager(posts, images, editor.Options{
		IdleTimeout: cfg.EditorIdleTimeout,
		Logger:      logger,
	})
	detach := editors.Attach(sessions)
	defer detach()

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS:    templatesFS,
		SessionManager: sessionManager,
		IsDev:          cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	r := newRouter(app{
		cfg:      cfg,
		db:       db,
		cache:    appCache,
		sm:       sessionManager,
		sessions: sessions,
		renderer: renderer,
		posts:    posts,
		contact:  contactService,
		events:   events,
		editors:  editors,
		images:   images,
		logger:   logger,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newIngestor builds the image pipeline for the configured strategy. An
// unavailable primary strategy falls back to inline storage per upload.
func newIngestor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*imaging.Ingestor, error) {
	var primary imaging.Strategy
	switch cfg.ImageStrategy {
	case imaging.StrategyFilesystem:
		primary = imaging.NewFilesystemStrategy(cfg.UploadsDir, uploadsPrefix(cfg.PublicBaseURL))
	case imaging.StrategyS3:
		s3, err := imaging.NewS3Strategy(ctx, imaging.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			PublicURL: cfg.S3PublicURL,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing S3 storage: %w", err)
		}
		primary = s3
	}

	if primary != nil {
		if err := primary.Available(ctx); err != nil {
			logger.Warn("image storage unavailable, images will be stored inline until it recovers",
				"category", "media", "strategy", primary.Name(), "error", err)
		}
	}
	return imaging.NewIngestor(primary, logger), nil
}

// uploadsPrefix returns the public prefix of filesystem uploads.
func uploadsPrefix(publicBaseURL string) string {
	if publicBaseURL == "" {
		return uploadsPath
	}
	u, err := url.JoinPath(publicBaseURL, uploadsPath)
	if err != nil {
		return uploadsPath
	}
	return u
}

func newNotifier(cfg *config.Config, logger *slog.Logger) mail.Notifier {
	if !cfg.MailEnabled() {
		slog.Info("mail delivery disabled, contact notifications are logged only")
		return mail.NewLogNotifier(logger)
	}
	return mail.NewResendNotifier(mail.ResendConfig{
		APIKey: cfg.MailAPIKey,
		APIURL: cfg.MailAPIURL,
		From:   cfg.MailFrom,
		To:     cfg.AdminEmail,
	}, nil)
}
