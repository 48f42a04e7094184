// Package telemetry provides windowed particle statistics, event logging,
// bookmarks and CSV output.
package telemetry

import "fmt"

// EventType identifies telemetry events.
type EventType uint8

const (
	EventEmitterCreated EventType = iota
	EventEmitterExpired
	EventEmitterRespawned
	EventLimitHit
)

var eventTypeNames = [...]string{
	EventEmitterCreated:   "emitter_created",
	EventEmitterExpired:   "emitter_expired",
	EventEmitterRespawned: "emitter_respawned",
	EventLimitHit:         "limit_hit",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// MarshalCSV writes the event type by name.
func (t EventType) MarshalCSV() (string, error) {
	return t.String(), nil
}

// Event represents a single emitter lifecycle event.
type Event struct {
	Type     EventType `csv:"type"`
	Tick     int32     `csv:"tick"`
	EntityID uint32    `csv:"entity"`
	Emitter  string    `csv:"emitter"`

	// Optional fields depending on event type
	PreviousID uint32 `csv:"previous"` // entity replaced by a respawn
	Detail     string `csv:"detail"`   // limit error text
}

// NewEmitterCreatedEvent creates an event for a newly spawned emitter entity.
func NewEmitterCreatedEvent(tick int32, entityID uint32, emitter string) Event {
	return Event{
		Type:     EventEmitterCreated,
		Tick:     tick,
		EntityID: entityID,
		Emitter:  emitter,
	}
}

// NewEmitterExpiredEvent creates an event for an emitter whose lifespan ended.
func NewEmitterExpiredEvent(tick int32, entityID uint32, emitter string) Event {
	return Event{
		Type:     EventEmitterExpired,
		Tick:     tick,
		EntityID: entityID,
		Emitter:  emitter,
	}
}

// NewEmitterRespawnedEvent creates an event for an emitter that replaced an expired one.
func NewEmitterRespawnedEvent(tick int32, entityID, previousID uint32, emitter string) Event {
	return Event{
		Type:       EventEmitterRespawned,
		Tick:       tick,
		EntityID:   entityID,
		Emitter:    emitter,
		PreviousID: previousID,
	}
}

// NewLimitHitEvent creates an event for a tripped particle limit.
func NewLimitHitEvent(tick int32, err error) Event {
	return Event{
		Type:   EventLimitHit,
		Tick:   tick,
		Detail: err.Error(),
	}
}
