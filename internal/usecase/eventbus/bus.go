package eventbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"polydraw/internal/domain"
)

const defaultBuffer = 64

type subscription struct {
	id      uint64
	handler domain.EventHandler
}

type delivery struct {
	ctx   context.Context
	event domain.Event
}

// Bus is an in-process, goroutine-safe event bus. Events are delivered by a
// single worker in the order they were published.
//
// Handlers must not call Publish on the same bus: a full queue would
// deadlock the worker.
type Bus struct {
	mu      sync.RWMutex
	typed   map[domain.EventType][]subscription
	allSubs []subscription
	nextID  atomic.Uint64
	logger  *slog.Logger

	// sendMu guards queue against sends after close; mu guards the
	// subscriber lists and is never held while blocking on the queue.
	sendMu sync.RWMutex
	queue  chan delivery
	done   chan struct{}
	closed bool
}

// Option configures a Bus.
type Option func(*busOptions)

type busOptions struct {
	buffer int
}

// WithBuffer sets the queue capacity. Publish blocks while the queue is full.
func WithBuffer(n int) Option {
	return func(o *busOptions) {
		if n >= 0 {
			o.buffer = n
		}
	}
}

// New creates an event bus and starts its delivery worker.
func New(logger *slog.Logger, opts ...Option) *Bus {
	o := busOptions{buffer: defaultBuffer}
	for _, opt := range opts {
		opt(&o)
	}
	b := &Bus{
		typed:  make(map[domain.EventType][]subscription),
		logger: logger,
		queue:  make(chan delivery, o.buffer),
		done:   make(chan struct{}),
	}
	go b.run()
	return b
}

// Publish queues an event for matching typed subscribers and all-event
// subscribers. It is a no-op after Close.
func (b *Bus) Publish(ctx context.Context, event domain.Event) {
	b.sendMu.RLock()
	defer b.sendMu.RUnlock()
	if b.closed {
		return
	}
	b.queue <- delivery{ctx: ctx, event: event}
}

func (b *Bus) run() {
	defer close(b.done)
	for d := range b.queue {
		for _, sub := range b.subscribers(d.event.Type) {
			b.deliver(d, sub)
		}
	}
}

func (b *Bus) subscribers(t domain.EventType) []subscription {
	b.mu.RLock()
	defer b.mu.RUnlock()
	subs := make([]subscription, 0, len(b.typed[t])+len(b.allSubs))
	subs = append(subs, b.typed[t]...)
	return append(subs, b.allSubs...)
}

func (b *Bus) deliver(d delivery, sub subscription) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				"event", string(d.event.Type),
				"panic", r,
			)
		}
	}()
	sub.handler(d.ctx, d.event)
}

// Subscribe registers a handler for a specific event type.
// Returns an unsubscribe function.
func (b *Bus) Subscribe(eventType domain.EventType, handler domain.EventHandler) func() {
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.typed[eventType] = append(b.typed[eventType], subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.typed[eventType] = remove(b.typed[eventType], id)
	}
}

// SubscribeAll registers a handler that receives every event.
// Returns an unsubscribe function.
func (b *Bus) SubscribeAll(handler domain.EventHandler) func() {
	id := b.nextID.Add(1)

	b.mu.Lock()
	b.allSubs = append(b.allSubs, subscription{id: id, handler: handler})
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.allSubs = remove(b.allSubs, id)
	}
}

// remove returns subs without id. It never writes into the old backing
// array, which the worker may still be reading from a snapshot.
func remove(subs []subscription, id uint64) []subscription {
	out := make([]subscription, 0, len(subs))
	for _, s := range subs {
		if s.id != id {
			out = append(out, s)
		}
	}
	return out
}

// Close stops accepting events and waits until every queued event has been
// delivered. It is idempotent.
func (b *Bus) Close() {
	b.sendMu.Lock()
	if !b.closed {
		b.closed = true
		close(b.queue)
	}
	b.sendMu.Unlock()
	<-b.done
}
