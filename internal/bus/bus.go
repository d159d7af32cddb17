// Package bus provides the event fan-out for the coordination engine. Every
// successful mutation publishes at most one event; Dispatch delivers each
// event to every subscriber with no per-topic scoping.
package bus

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType names a state-change notification.
type EventType string

const (
	EventAgentConnected    EventType = "agent:connected"
	EventAgentDisconnected EventType = "agent:disconnected"
	EventTaskCreated       EventType = "task:created"
	EventTaskAssigned      EventType = "task:assigned"
	EventTaskCompleted     EventType = "task:completed"
	EventMessagePosted     EventType = "message:new"
	EventInnovationCreated EventType = "innovation:created"
)

// Event is a single state-change notification. Payload is exactly the
// enriched record returned by the coordinator operation that produced it.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Payload   any       `json:"payload"`
	Timestamp time.Time `json:"timestamp"`
}

// Bus decouples the coordinators from whatever transport broadcasts their
// events.
type Bus struct {
	events chan *Event
	subs   []func(*Event)
	mu     sync.RWMutex
}

// New creates a new bus.
func New() *Bus {
	return &Bus{
		events: make(chan *Event, 100),
	}
}

// Publish enqueues an event for fan-out. Publishing never blocks a mutation:
// when the queue is full the event is dropped and logged.
func (b *Bus) Publish(evtType EventType, payload any) {
	evt := &Event{
		ID:        uuid.NewString(),
		Type:      evtType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
	select {
	case b.events <- evt:
	default:
		slog.Warn("bus: queue full, event dropped", "type", evtType, "id", evt.ID)
	}
}

// Subscribe registers a callback that receives every published event.
func (b *Bus) Subscribe(callback func(*Event)) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.subs = append(b.subs, callback)
}

// Dispatch runs the fan-out loop until the context is cancelled. Every
// subscriber receives every event regardless of what it pertains to.
// This should be run as a goroutine.
func (b *Bus) Dispatch(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt := <-b.events:
			b.mu.RLock()
			subs := b.subs
			b.mu.RUnlock()

			for _, cb := range subs {
				cb(evt)
			}
		}
	}
}

// Pending returns the number of undelivered events.
func (b *Bus) Pending() int {
	return len(b.events)
}
