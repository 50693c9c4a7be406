package core

// EventRecorder accumulates domain events raised during one unit of work.
// It is owned alongside the aggregates (composition, not a base-entity field)
// and passed into every mutating aggregate method. The orchestrating use case
// drains it exactly once at commit time.
//
// The zero value is ready to use. EventRecorder is not safe for concurrent
// use; a unit of work is scoped to a single request.
type EventRecorder struct {
	events DomainEvents
}

// Record appends an event to the pending list.
func (r *EventRecorder) Record(event DomainEvent) {
	r.events = append(r.events, event)
}

// Pending returns the number of recorded, not yet drained events.
func (r *EventRecorder) Pending() int {
	return len(r.events)
}

// Drain returns all recorded events in recording order and clears the recorder.
func (r *EventRecorder) Drain() DomainEvents {
	drained := r.events
	r.events = nil

	return drained
}
