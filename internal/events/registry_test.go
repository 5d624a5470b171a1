package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Unmarshal(t *testing.T) {
	r := DefaultRegistry()

	raw := RawEvent{
		EventType: EventPopulateCompleted,
		Payload:   `{"type":"populate.completed","entity_type":"populate","entity_id":2,"occurred_at":"2024-01-01T00:00:00Z","strategy":"threaded","found":10,"created":9,"failed":1,"elapsed_ms":1500,"elapsed_seconds":1.5}`,
	}

	event, err := r.Unmarshal(raw)
	require.NoError(t, err)

	done, ok := event.(*PopulateCompleted)
	require.True(t, ok)
	assert.Equal(t, "threaded", done.Strategy)
	assert.Equal(t, 9, done.Created)
	assert.Equal(t, 1, done.Failed)
	assert.Equal(t, int64(2), done.EntityID())
}

func TestRegistry_UnmarshalUnknownType(t *testing.T) {
	_, err := NewRegistry().Unmarshal(RawEvent{EventType: "unknown.event", Payload: `{}`})
	assert.ErrorContains(t, err, "unknown event type")
}

func TestRegistry_UnmarshalBadPayload(t *testing.T) {
	_, err := DefaultRegistry().Unmarshal(RawEvent{EventType: EventScrapeJobFailed, Payload: `{not json`})
	assert.ErrorContains(t, err, "unmarshal event payload")
}
