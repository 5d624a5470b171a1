package events

import (
	"encoding/json"
	"fmt"
)

// EventFactory returns a zero value of a concrete event type.
type EventFactory func() Event

// Registry maps event type names to factories so stored payloads can be
// decoded back into their concrete types.
type Registry struct {
	factories map[string]EventFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]EventFactory)}
}

func (r *Registry) Register(eventType string, factory EventFactory) {
	r.factories[eventType] = factory
}

// Unmarshal decodes raw into the type registered for raw.EventType.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	factory, ok := r.factories[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}

	event := factory()
	if err := json.Unmarshal([]byte(raw.Payload), event); err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}
	return event, nil
}

// DefaultRegistry knows every event type this package defines.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(EventPopulateStarted, func() Event { return &PopulateStarted{} })
	r.Register(EventPopulateCompleted, func() Event { return &PopulateCompleted{} })
	r.Register(EventScrapeJobFailed, func() Event { return &ScrapeJobFailed{} })
	return r
}
