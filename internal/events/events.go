package events

import (
	"time"

	"github.com/AIoTwin-Adaptive-FL-Orch/fl-client-agent/internal/model"
	"github.com/google/uuid"
)

// Event represents a generic event structure
type Event struct {
	Type      string
	Timestamp time.Time
	Data      interface{}
}

// TrainingLifecycleEvent represents the event structure for a training
// entering or leaving its lifecycle on this client
type TrainingLifecycleEvent struct {
	Phase      string
	TrainingID uuid.UUID
	ModelID    uuid.UUID
}

// RunStateChangeEvent represents the event structure for external runs that
// finished since the previous sweep
type RunStateChangeEvent struct {
	Finished []*model.RunOutcome
}

// EventBus represents the event bus that handles event subscription and dispatching
type EventBus struct {
	subscribers map[string][]chan<- Event
}

// NewEventBus creates a new instance of the event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan<- Event),
	}
}

// Subscribe adds a new subscriber for a given event type. Subscriptions are
// made at startup, before any publisher runs.
func (eb *EventBus) Subscribe(eventType string, subscriber chan<- Event) {
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
}

// Publish sends an event to all subscribers of a given event type
func (eb *EventBus) Publish(event Event) {
	subscribers := eb.subscribers[event.Type]
	for _, subscriber := range subscribers {
		subscriber <- event
	}
}
