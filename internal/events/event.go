// Package events records what the populate pipeline did, both in memory for
// live subscribers and in the SQLite events table for later inspection.
package events

import "time"

// Event is implemented by every event published on the Bus.
type Event interface {
	EventType() string
	EntityType() string // "populate", "film_page"
	EntityID() int64
	OccurredAt() time.Time
}

// BaseEvent carries the envelope shared by all events.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        int64     `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() int64       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a BaseEvent with the current UTC time.
func NewBaseEvent(eventType, entityType string, entityID int64) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Entity:    entityType,
		ID:        entityID,
		Timestamp: time.Now().UTC(),
	}
}
