package domain

import (
	"context"
	"encoding/json"
	"time"
)

// EventType identifies the kind of event being published.
type EventType string

const (
	EventDrawingChanged  EventType = "drawing.changed"
	EventPolygonFinished EventType = "polygon.finished"
	EventCursorMoved     EventType = "cursor.moved"
	EventHistoryUndone   EventType = "history.undone"
	EventHistoryRedone   EventType = "history.redone"
	EventHistoryReset    EventType = "history.reset"
)

// Event is the envelope published on the event bus.
type Event struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	SessionID string          `json:"session_id,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// DrawingSnapshot is the payload of drawing events: a summary of the
// history after the message was applied.
type DrawingSnapshot struct {
	Message    MessageKind `json:"message"`
	Finished   int         `json:"finished"`
	CurrentLen int         `json:"current_len"`
	Cursor     *Coord      `json:"cursor,omitempty"`
	UndoDepth  int         `json:"undo_depth"`
	RedoDepth  int         `json:"redo_depth"`
	Recorded   bool        `json:"recorded"`
}

// EventHandler is a callback invoked when an event is received.
type EventHandler func(ctx context.Context, event Event)

// EventBus provides a publish/subscribe mechanism for domain events.
type EventBus interface {
	// Publish sends an event to all matching subscribers.
	Publish(ctx context.Context, event Event)
	// Subscribe registers a handler for a specific event type.
	// Returns an unsubscribe function.
	Subscribe(eventType EventType, handler EventHandler) func()
	// SubscribeAll registers a handler that receives every event.
	// Returns an unsubscribe function.
	SubscribeAll(handler EventHandler) func()
	// Close drains in-flight handlers and prevents new publishes.
	Close()
}
