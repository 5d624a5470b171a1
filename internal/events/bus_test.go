package events

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_LogsComponentOnce(t *testing.T) {
	var buf bytes.Buffer
	bus := NewBus(nil, slog.New(slog.NewTextHandler(&buf, nil)))
	defer bus.Close()

	// An unbuffered subscriber with no reader forces a drop warning.
	ch := bus.SubscribeAll(0)
	defer bus.Unsubscribe(ch)
	require.NoError(t, bus.Publish(context.Background(), &PopulateStarted{
		BaseEvent: NewBaseEvent(EventPopulateStarted, EntityPopulate, 1),
	}))

	out := buf.String()
	require.Contains(t, out, "subscriber full")
	assert.Equal(t, 1, strings.Count(out, "component="))
}

func TestBus_PublishSubscribe(t *testing.T) {
	ctx := context.Background()
	log := NewEventLog(setupTestDB(t))
	bus := NewBus(log, nil)
	defer bus.Close()

	ch := bus.Subscribe(EventPopulateStarted, 10)

	err := bus.Publish(ctx, &PopulateStarted{
		BaseEvent: NewBaseEvent(EventPopulateStarted, EntityPopulate, 1),
		Strategy:  "executor",
		Found:     10,
	})
	require.NoError(t, err)

	select {
	case got := <-ch:
		started, ok := got.(*PopulateStarted)
		require.True(t, ok)
		assert.Equal(t, 10, started.Found)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	stored, err := log.ForEntity(ctx, EntityPopulate, 1)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestBus_SubscribeOtherTypeGetsNothing(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.Subscribe(EventScrapeJobFailed, 1)
	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.other", "test", 1)}))

	select {
	case e := <-ch:
		t.Fatalf("unexpected event %s", e.EventType())
	default:
	}
}

func TestBus_Unsubscribe(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.Subscribe("test.event", 10)
	bus.Unsubscribe(ch)

	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.event", "test", 1)}))

	_, ok := <-ch
	assert.False(t, ok, "channel should be closed")
}

func TestBus_FullSubscriberDrops(t *testing.T) {
	bus := NewBus(nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer bus.Close()

	ch := bus.SubscribeAll(1)
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.event", "test", int64(i))}))
	}
	assert.Len(t, ch, 1)
}

func TestBus_ConcurrentPublish(t *testing.T) {
	bus := NewBus(nil, nil)
	defer bus.Close()

	ch := bus.SubscribeAll(100)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.concurrent", "test", int64(n))})
		}(i)
	}
	wg.Wait()

	assert.Len(t, ch, 10)
}

func TestBus_CloseIgnoresPublish(t *testing.T) {
	bus := NewBus(nil, nil)
	ch := bus.SubscribeAll(1)
	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close())

	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.event", "test", 1)}))
	_, ok := <-ch
	assert.False(t, ok)
}

func TestDrain_StopsOnClose(t *testing.T) {
	bus := NewBus(nil, nil)
	ch := bus.SubscribeAll(4)
	require.NoError(t, bus.Publish(context.Background(), &testEvent{BaseEvent: NewBaseEvent("test.event", "test", 1)}))

	done := make(chan error, 1)
	go func() { done <- Drain(context.Background(), ch, slog.New(slog.NewTextHandler(io.Discard, nil))) }()
	require.NoError(t, bus.Close())

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Drain did not return after Close")
	}
}
