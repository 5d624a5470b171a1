package counter

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCounter(t *testing.T, retries int) *Counter {
	t.Helper()
	c, err := Open(Options{Retries: retries, RetryDelay: time.Millisecond}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestCounter_IncrGet(t *testing.T) {
	ctx := context.Background()
	c := newTestCounter(t, 5)

	v, err := c.Get(ctx, "hits")
	require.NoError(t, err)
	assert.Zero(t, v)

	for want := int64(1); want <= 3; want++ {
		got, err := c.Incr(ctx, "hits")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	v, err = c.Get(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	other, err := c.Get(ctx, "other")
	require.NoError(t, err)
	assert.Zero(t, other)
}

func TestCounter_ConcurrentIncr(t *testing.T) {
	ctx := context.Background()
	c := newTestCounter(t, 50)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := c.Incr(ctx, "hits")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := c.Get(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(20), v)
}

func TestCounter_RetriesConflicts(t *testing.T) {
	ctx := context.Background()
	c := newTestCounter(t, 5)

	orig := c.update
	calls := 0
	c.update = func(fn func(*badger.Txn) error) error {
		calls++
		if calls <= 2 {
			return badger.ErrConflict
		}
		return orig(fn)
	}

	v, err := c.Incr(ctx, "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, 3, calls)
}

func TestCounter_GivesUp(t *testing.T) {
	ctx := context.Background()
	c := newTestCounter(t, 2)

	calls := 0
	c.update = func(func(*badger.Txn) error) error {
		calls++
		return badger.ErrConflict
	}

	_, err := c.Incr(ctx, "hits")
	assert.ErrorIs(t, err, badger.ErrConflict)
	assert.Equal(t, 3, calls)
}

func TestCounter_NoRetryOnOtherErrors(t *testing.T) {
	c := newTestCounter(t, 5)
	boom := errors.New("disk full")
	calls := 0
	c.update = func(func(*badger.Txn) error) error {
		calls++
		return boom
	}

	_, err := c.Incr(context.Background(), "hits")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestCounter_RetryHonoursContext(t *testing.T) {
	c := newTestCounter(t, 5)
	c.delay = time.Hour
	c.update = func(func(*badger.Txn) error) error { return badger.ErrConflict }

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Incr(ctx, "hits")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCounter_RunGCStops(t *testing.T) {
	c := newTestCounter(t, 0)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.RunGC(ctx, time.Millisecond) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("RunGC did not stop")
	}
}

func TestCounter_OnDisk(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	c, err := Open(Options{Path: dir, Retries: 1}, logger)
	require.NoError(t, err)
	_, err = c.Incr(context.Background(), "hits")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c, err = Open(Options{Path: dir, Retries: 1}, logger)
	require.NoError(t, err)
	defer c.Close()
	v, err := c.Get(context.Background(), "hits")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}
