// Package server runs the daemon's long-lived components under one
// lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vmunix/kinocat/internal/events"
)

// Config for the runner.
type Config struct {
	GCInterval      time.Duration // badger value log GC; 0 disables
	EventRetention  time.Duration // events older than this are pruned; 0 keeps all
	PruneInterval   time.Duration
	ShutdownTimeout time.Duration
}

// GarbageCollector is implemented by counter.Counter.
type GarbageCollector interface {
	RunGC(ctx context.Context, interval time.Duration) error
}

// Components are the pieces the runner supervises. Only Server is required.
type Components struct {
	Server   *http.Server
	Listener net.Listener // optional; Server.Addr is used when nil
	Counter  GarbageCollector
	Bus      *events.Bus
	EventLog *events.EventLog
}

// Runner manages the daemon components.
type Runner struct {
	comp   Components
	config Config
	logger *slog.Logger
}

// NewRunner creates a new runner.
func NewRunner(comp Components, cfg Config, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = time.Hour
	}
	return &Runner{
		comp:   comp,
		config: cfg,
		logger: logger.With("component", "runner"),
	}
}

// Run starts every component and blocks until ctx is canceled or one of
// them fails. Cancellation is a clean shutdown and returns nil.
func (r *Runner) Run(ctx context.Context) error {
	if r.comp.Server == nil {
		return errors.New("runner needs an http server")
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		if r.comp.Listener != nil {
			r.logger.Info("http listening", "addr", r.comp.Listener.Addr().String())
			err = r.comp.Server.Serve(r.comp.Listener)
		} else {
			r.logger.Info("http listening", "addr", r.comp.Server.Addr)
			err = r.comp.Server.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.config.ShutdownTimeout)
		defer cancel()
		r.logger.Info("shutting down http server")
		if err := r.comp.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if r.comp.Counter != nil && r.config.GCInterval > 0 {
		g.Go(func() error {
			return r.comp.Counter.RunGC(ctx, r.config.GCInterval)
		})
	}

	if r.comp.Bus != nil {
		ch := r.comp.Bus.SubscribeAll(64)
		g.Go(func() error {
			defer r.comp.Bus.Unsubscribe(ch)
			return events.Drain(ctx, ch, r.logger.With("component", "events"))
		})
	}

	if r.comp.EventLog != nil && r.config.EventRetention > 0 {
		g.Go(func() error {
			r.pruneLoop(ctx)
			return nil
		})
	}

	return g.Wait()
}

func (r *Runner) pruneLoop(ctx context.Context) {
	ticker := time.NewTicker(r.config.PruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := r.comp.EventLog.Prune(ctx, r.config.EventRetention)
			if err != nil {
				r.logger.Warn("prune events failed", "error", err)
				continue
			}
			if n > 0 {
				r.logger.Info("pruned events", "count", n)
			}
		}
	}
}
