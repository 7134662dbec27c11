// Package integration holds end-to-end tests that run the dispatcher with a
// real event bus, the script adapter and the MCP tools together.
package integration

import (
	"context"
	"sync"
	"testing"
	"time"

	"polydraw/internal/domain"
	"polydraw/internal/infra/logger"
	"polydraw/internal/usecase/dispatch"
	"polydraw/internal/usecase/eventbus"
)

// Start is the clock origin shared by every stack in these tests.
var Start = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

// SkipIfShort skips integration tests in short mode
func SkipIfShort(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
}

// NewTestContext creates a context with timeout for integration tests
func NewTestContext(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Journal records every event delivered by a bus.
type Journal struct {
	mu     sync.Mutex
	events []domain.Event
}

func (j *Journal) handle(_ context.Context, e domain.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, e)
}

// Types returns the recorded event types in delivery order.
func (j *Journal) Types() []domain.EventType {
	j.mu.Lock()
	defer j.mu.Unlock()
	types := make([]domain.EventType, len(j.events))
	for i, e := range j.events {
		types[i] = e.Type
	}
	return types
}

// Stack is a dispatcher wired to a live bus with a journal subscriber.
type Stack struct {
	Bus        *eventbus.Bus
	Dispatcher *dispatch.Dispatcher
	Journal    *Journal
}

// NewStack builds a Stack on a fixed clock. The bus is closed on cleanup.
func NewStack(t *testing.T) *Stack {
	t.Helper()
	log := logger.Discard()
	bus := eventbus.New(log)
	j := &Journal{}
	bus.SubscribeAll(j.handle)
	t.Cleanup(bus.Close)

	d := dispatch.New(log, bus, dispatch.WithClock(func() time.Time { return Start }))
	return &Stack{Bus: bus, Dispatcher: d, Journal: j}
}

// Drain closes the bus so every queued event has been delivered.
func (s *Stack) Drain() { s.Bus.Close() }
