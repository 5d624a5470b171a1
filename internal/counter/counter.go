// Package counter keeps named hit counters in an embedded badger store.
package counter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/vmunix/kinocat/internal/metrics"
)

const keyPrefix = "hits:"

// Counter increments integer values stored under string keys.
type Counter struct {
	db      *badger.DB
	update  func(func(*badger.Txn) error) error
	retries int
	delay   time.Duration
	logger  *slog.Logger
}

// Options configure Open.
type Options struct {
	Path       string // empty keeps the store in memory
	Retries    int
	RetryDelay time.Duration
}

// Open opens (or creates) the badger directory at opts.Path.
func Open(opts Options, logger *slog.Logger) (*Counter, error) {
	bopts := badger.DefaultOptions(opts.Path).WithLogger(nil)
	if opts.Path == "" {
		bopts = bopts.WithInMemory(true)
	}
	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open counter store: %w", err)
	}
	return New(db, opts.Retries, opts.RetryDelay, logger), nil
}

// New wraps an open badger database.
func New(db *badger.DB, retries int, delay time.Duration, logger *slog.Logger) *Counter {
	if retries < 0 {
		retries = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Counter{
		db:      db,
		update:  db.Update,
		retries: retries,
		delay:   delay,
		logger:  logger.With("component", "counter"),
	}
}

// Close closes the underlying store.
func (c *Counter) Close() error {
	return c.db.Close()
}

func retryable(err error) bool {
	return errors.Is(err, badger.ErrConflict) || errors.Is(err, badger.ErrBlockedWrites)
}

// Incr adds one to key and returns the new value. Write conflicts are
// retried up to the configured number of times, waiting between attempts.
func (c *Counter) Incr(ctx context.Context, key string) (int64, error) {
	var value int64
	incr := func(txn *badger.Txn) error {
		cur, err := read(txn, key)
		if err != nil {
			return err
		}
		value = cur + 1
		return txn.Set([]byte(keyPrefix+key), []byte(strconv.FormatInt(value, 10)))
	}

	var err error
	for attempt := 0; ; attempt++ {
		if err = c.update(incr); err == nil {
			return value, nil
		}
		if !retryable(err) || attempt >= c.retries {
			break
		}
		metrics.CounterRetries.Inc()
		c.logger.Debug("retrying increment", "key", key, "attempt", attempt+1, "error", err)
		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(c.delay):
		}
	}
	return 0, fmt.Errorf("increment %s: %w", key, err)
}

// Get returns the value of key, zero when it was never incremented.
func (c *Counter) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	err := c.db.View(func(txn *badger.Txn) error {
		v, err := read(txn, key)
		value = v
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func read(txn *badger.Txn, key string) (int64, error) {
	item, err := txn.Get([]byte(keyPrefix + key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var value int64
	err = item.Value(func(val []byte) error {
		v, err := strconv.ParseInt(string(val), 10, 64)
		if err != nil {
			return fmt.Errorf("corrupt counter value %q: %w", val, err)
		}
		value = v
		return nil
	})
	return value, err
}

// RunGC reclaims value log space every interval until ctx is done.
func (c *Counter) RunGC(ctx context.Context, interval time.Duration) error {
	if c.db.Opts().InMemory {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			for {
				err := c.db.RunValueLogGC(0.5)
				if err == nil {
					continue
				}
				if !errors.Is(err, badger.ErrNoRewrite) {
					c.logger.Warn("value log gc failed", "error", err)
				}
				break
			}
		}
	}
}
