package shell

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/bookwyrm/lending-core-go/core"
	"github.com/bookwyrm/lending-core-go/projection"
)

// ErrUnknownEventType is returned when a binding names an event type outside
// the closed domain set.
var ErrUnknownEventType = errors.New("binding references an unknown event type")

// EventHandler reacts to one reduced domain event within the dispatching
// transaction. Handlers must not block on unrelated I/O: slow work belongs in
// the asynchronous projector, not here.
type EventHandler interface {
	HandleEvent(ctx context.Context, tx TxRepositories, event core.DomainEvent) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(ctx context.Context, tx TxRepositories, event core.DomainEvent) error

// HandleEvent calls the wrapped function.
func (f EventHandlerFunc) HandleEvent(ctx context.Context, tx TxRepositories, event core.DomainEvent) error {
	return f(ctx, tx, event)
}

// Binding attaches an ordered handler list to one event type.
type Binding struct {
	EventType string
	Handlers  []EventHandler
}

// Dispatcher delivers reduced domain events to their handlers, synchronously
// and in the reducer's output order. The kind-to-handler mapping is closed and
// fixed at construction; there is no runtime subscription or type scanning.
type Dispatcher struct {
	handlers map[string][]EventHandler
}

// NewDispatcher builds a dispatcher from explicit bindings. Every binding must
// name a known domain event type, making the mapping checkable by a test that
// enumerates the closed set.
func NewDispatcher(bindings ...Binding) (*Dispatcher, error) {
	known := core.KnownEventTypes()
	handlers := make(map[string][]EventHandler, len(bindings))

	for _, binding := range bindings {
		if !slices.Contains(known, binding.EventType) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEventType, binding.EventType)
		}

		handlers[binding.EventType] = append(handlers[binding.EventType], binding.Handlers...)
	}

	return &Dispatcher{handlers: handlers}, nil
}

// NewDefaultDispatcher builds the standard production dispatcher: every
// statistics-relevant event feeds the delta queue.
func NewDefaultDispatcher() (*Dispatcher, error) {
	deltaHandler := StatisticsDeltaHandler()

	return NewDispatcher(
		Binding{EventType: core.BookAddedEventType, Handlers: []EventHandler{deltaHandler}},
		Binding{EventType: core.BookBorrowedEventType, Handlers: []EventHandler{deltaHandler}},
		Binding{EventType: core.BookReturnedEventType, Handlers: []EventHandler{deltaHandler}},
	)
}

// Dispatch delivers each event to its handler list, in event order, stopping
// at the first handler error. Events without bindings are skipped.
func (d *Dispatcher) Dispatch(ctx context.Context, tx TxRepositories, events core.DomainEvents) error {
	for _, event := range events {
		for _, handler := range d.handlers[event.EventType()] {
			if err := handler.HandleEvent(ctx, tx, event); err != nil {
				return err
			}
		}
	}

	return nil
}

// HandlerCount returns how many handlers are bound to the given event type.
func (d *Dispatcher) HandlerCount(eventType string) int {
	return len(d.handlers[eventType])
}

// StatisticsDeltaHandler enqueues the statistics delta implied by an event on
// the transaction-scoped delta queue, so the delta commits atomically with the
// aggregate mutation that caused it.
func StatisticsDeltaHandler() EventHandler {
	return EventHandlerFunc(func(ctx context.Context, tx TxRepositories, event core.DomainEvent) error {
		delta, ok := projection.DeltaFromEvent(event)
		if !ok {
			return nil
		}

		return tx.Deltas().Enqueue(ctx, delta)
	})
}
