package core

import (
	"time"

	"github.com/google/uuid"
)

// AbonentRegisteredEventType is the event type identifier.
const AbonentRegisteredEventType = "AbonentRegistered"

// AbonentRegistered represents when a new library member is registered.
type AbonentRegistered struct {
	AbonentID  AbonentIDString
	OccurredAt OccurredAtTS
}

// BuildAbonentRegistered creates a new AbonentRegistered event.
func BuildAbonentRegistered(abonentID uuid.UUID, occurredAt time.Time) AbonentRegistered {
	event := AbonentRegistered{
		AbonentID:  abonentID.String(),
		OccurredAt: ToOccurredAt(occurredAt),
	}

	return event
}

// EventType returns the event type identifier.
func (e AbonentRegistered) EventType() string {
	return AbonentRegisteredEventType
}

// HasOccurredAt returns when this event occurred.
func (e AbonentRegistered) HasOccurredAt() time.Time {
	return e.OccurredAt
}
