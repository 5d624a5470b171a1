package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	v1 "github.com/vmunix/kinocat/internal/api/v1"
	"github.com/vmunix/kinocat/internal/auth"
	"github.com/vmunix/kinocat/internal/catalog"
	"github.com/vmunix/kinocat/internal/config"
	"github.com/vmunix/kinocat/internal/counter"
	"github.com/vmunix/kinocat/internal/events"
	"github.com/vmunix/kinocat/internal/metrics"
	"github.com/vmunix/kinocat/internal/migrations"
	"github.com/vmunix/kinocat/internal/scrape"
	"github.com/vmunix/kinocat/internal/server"
)

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
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

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 200 { // Only capture first WriteHeader call
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

// logRequests logs every request and records it in the API metrics.
// r.Pattern is filled in by the mux, so it is read after the handler ran.
func logRequests(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusRecorder{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		elapsed := time.Since(start)
		metrics.ObserveRequest(r.Method, r.Pattern, wrapped.status, elapsed)
		log.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}

// openDB opens the SQLite file with foreign keys on and applies the schema.
func openDB(ctx context.Context, path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer; serialising here avoids SQLITE_BUSY under load.
	db.SetMaxOpenConns(1)

	if err := migrations.Apply(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func runServer(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Server.LogLevel),
	}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	// === Stores ===
	catalogStore := catalog.NewStore(db)
	userStore := auth.NewUserStore(db)
	eventLog := events.NewEventLog(db)
	bus := events.NewBus(eventLog, logger)
	defer func() { _ = bus.Close() }()

	if cfg.Auth.AdminUser != "" {
		if err := userStore.SetAdmin(ctx, cfg.Auth.AdminUser, true); err != nil {
			if !errors.Is(err, auth.ErrUserNotFound) {
				return fmt.Errorf("promote admin: %w", err)
			}
			logger.Warn("admin user not registered yet", "username", cfg.Auth.AdminUser)
		}
	}

	// === Auth ===
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL.Duration)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	authn := auth.NewAuthenticator(tokens, userStore, logger)

	// === Hit counter ===
	hits, err := counter.Open(counter.Options{
		Path:       cfg.Counter.Path,
		Retries:    cfg.Counter.Retries,
		RetryDelay: cfg.Counter.RetryDelay.Duration,
	}, logger)
	if err != nil {
		return fmt.Errorf("counter: %w", err)
	}
	defer func() { _ = hits.Close() }()

	// === Scraper ===
	fetcher := scrape.NewHTTPFetcher(
		scrape.WithTimeout(cfg.Scraper.Timeout.Duration),
		scrape.WithUserAgent(cfg.Scraper.UserAgent),
		scrape.WithRateLimit(cfg.Scraper.RateLimit),
		scrape.WithBreakerFailures(uint32(cfg.Scraper.BreakerFailures)),
		scrape.WithFetcherLogger(logger),
	)
	orchestrator, err := scrape.NewOrchestrator(scrape.Config{
		BaseURL:     cfg.Scraper.BaseURL,
		ListingPath: cfg.Scraper.ListingPath,
		PoolSize:    cfg.Scraper.PoolSize,
	}, fetcher, catalogStore, bus, logger)
	if err != nil {
		return fmt.Errorf("scraper: %w", err)
	}

	// === HTTP Setup ===
	apiV1, err := v1.New(v1.ServerDeps{
		Catalog:   catalogStore,
		Users:     userStore,
		Auth:      authn,
		Populator: orchestrator,
		Counter:   hits,
		EventLog:  eventLog,
		Logger:    logger,
	}, v1.Config{Version: version})
	if err != nil {
		return fmt.Errorf("api: %w", err)
	}
	mux := http.NewServeMux()
	apiV1.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           logRequests(mux, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("server starting",
		"addr", cfg.Addr(),
		"database", cfg.Database.Path,
		"listing", orchestrator.ListingURL(),
		"pool_size", cfg.Scraper.PoolSize,
		"log_level", cfg.Server.LogLevel,
	)

	runner := server.NewRunner(server.Components{
		Server:   srv,
		Counter:  hits,
		Bus:      bus,
		EventLog: eventLog,
	}, server.Config{
		GCInterval:     10 * time.Minute,
		EventRetention: 30 * 24 * time.Hour,
	}, logger)

	if err := runner.Run(ctx); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
