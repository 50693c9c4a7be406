package core

import (
	"time"
)

// DomainEvents is a slice of DomainEvent instances.
type DomainEvents = []DomainEvent

// DomainEvent represents a business event that has occurred in the domain.
// The event set is closed: KnownEventTypes enumerates every kind, and the
// dispatcher refuses handlers registered for anything else.
type DomainEvent interface {
	// EventType returns the string identifier for this event type.
	EventType() string

	// HasOccurredAt returns when this event occurred.
	HasOccurredAt() time.Time
}

// KnownEventTypes returns the closed set of domain event type identifiers.
func KnownEventTypes() []string {
	return []string{
		BookAddedEventType,
		BookBorrowedEventType,
		BookReturnedEventType,
		AbonentRegisteredEventType,
	}
}
