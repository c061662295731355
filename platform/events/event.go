// Package events provides the in-process event bus the funnel modules
// use to react to each other without importing each other.
// This is part of the platform layer and contains no business logic.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event published on the bus.
type Event interface {
	// EventName returns the routing key handlers subscribe under.
	EventName() string
	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by all events; concrete events
// embed it and add their own payload fields.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler processes events of a specific type.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus is what services and modules depend on: fire-and-forget publish
// plus subscription. Synchronous dispatch is an implementation detail of
// the concrete bus, not part of the contract.
type Bus interface {
	// Publish sends an event to all handlers registered under its name.
	// Delivery is asynchronous; handler failures never reach the caller.
	Publish(ctx context.Context, event Event)

	// Subscribe registers a handler under the name returned by
	// Event.EventName().
	Subscribe(eventName string, handler Handler)
}
