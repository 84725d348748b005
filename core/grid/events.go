package grid

import (
	"context"
	"sync"
	"time"

	"github.com/asaidimu/go-events"
	"github.com/google/uuid"
)

// EventType identifies a grid lifecycle event.
type EventType string

const (
	QueryBuildStart     EventType = "grid.query.build.start"
	QueryBuildSuccess   EventType = "grid.query.build.success"
	QueryBuildFailed    EventType = "grid.query.build.failed"
	QueryExecuteStart   EventType = "grid.query.execute.start"
	QueryExecuteSuccess EventType = "grid.query.execute.success"
	QueryExecuteFailed  EventType = "grid.query.execute.failed"
)

// Event carries telemetry about one query build or execution pass.
type Event struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp int64          `json:"timestamp"`
	SQL       string         `json:"sql,omitempty"`
	Params    map[string]any `json:"params,omitempty"`
	Rows      int            `json:"rows,omitempty"`
	Error     *string        `json:"error,omitempty"`
	Duration  *int64         `json:"duration,omitempty"`
}

// EventCallback handles a grid event delivered through a subscription.
type EventCallback func(ctx context.Context, event Event) error

// newEvent assembles an Event with a fresh id and, when a start time is
// known, the elapsed duration in milliseconds.
func newEvent(eventType EventType, q *Query, rows int, err *string, startTime time.Time) Event {
	var duration *int64
	if !startTime.IsZero() {
		d := time.Since(startTime).Milliseconds()
		duration = &d
	}

	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UnixMilli(),
		Rows:      rows,
		Error:     err,
		Duration:  duration,
	}
	if q != nil {
		event.SQL = q.SQL
		event.Params = q.Params
	}
	return event
}

// subscriptions tracks active event subscriptions by id so callers can
// unregister them individually.
type subscriptions struct {
	bus     *events.TypedEventBus[Event]
	entries map[string]func()
	mu      sync.Mutex
}

func newSubscriptions(bus *events.TypedEventBus[Event]) *subscriptions {
	return &subscriptions{
		bus:     bus,
		entries: map[string]func(){},
	}
}

func (s *subscriptions) emit(event Event) {
	if s.bus != nil {
		s.bus.Emit(string(event.Type), event)
	}
}

func (s *subscriptions) subscribe(eventType EventType, cb EventCallback) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	unsubscribe := s.bus.Subscribe(string(eventType), cb)
	id := uuid.New().String()
	s.entries[id] = unsubscribe
	return id
}

func (s *subscriptions) unsubscribe(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if unsubscribe, ok := s.entries[id]; ok {
		unsubscribe()
		delete(s.entries, id)
	}
}
