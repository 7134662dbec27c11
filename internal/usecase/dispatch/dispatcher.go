// Package dispatch serialises editor messages for hosts. A Dispatcher owns
// the current history, feeds each message through app.Update and reports
// every transition through logs, spans and bus events.
package dispatch

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/time/rate"

	"polydraw/internal/domain"
	"polydraw/internal/infra/tracer"
	"polydraw/internal/usecase/app"
)

// EventPublisher is the subset of domain.EventBus the dispatcher needs.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.Event)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithClock sets the clock used for event timestamps and the session id.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// WithCursorLogInterval sets how often cursor moves are logged. Other
// messages are always logged.
func WithCursorLogInterval(interval time.Duration) Option {
	return func(d *Dispatcher) {
		d.cursorLog = &rate.Sometimes{First: 1, Interval: interval}
	}
}

// WithInitial starts the dispatcher from h instead of app.Init().
func WithInitial(h app.State) Option {
	return func(d *Dispatcher) {
		d.state.Store(&h)
	}
}

// Dispatcher applies messages one at a time. Events are published while the
// dispatch lock is held, so they reach the bus in application order. Bus
// handlers may call State but must not call Dispatch or Reset.
type Dispatcher struct {
	mu        sync.Mutex // serialises Dispatch and Reset
	state     atomic.Pointer[app.State]
	session   string
	bus       EventPublisher
	logger    *slog.Logger
	now       func() time.Time
	cursorLog *rate.Sometimes
}

// New creates a Dispatcher. bus may be nil.
func New(logger *slog.Logger, bus EventPublisher, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		bus:       bus,
		logger:    logger,
		now:       time.Now,
		cursorLog: &rate.Sometimes{First: 1, Interval: time.Second},
	}
	initial := app.Init()
	d.state.Store(&initial)
	for _, opt := range opts {
		opt(d)
	}
	d.session = newSessionID(d.now())
	return d
}

// SessionID identifies this dispatcher in logs and events.
func (d *Dispatcher) SessionID() string { return d.session }

// State returns the current history. It never blocks.
func (d *Dispatcher) State() app.State {
	return *d.state.Load()
}

// Dispatch applies msg and returns the resulting history. When ctx is
// already cancelled the state is left untouched and the current history is
// returned with the context error.
func (d *Dispatcher) Dispatch(ctx context.Context, msg domain.Message) (app.State, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return d.State(), domain.WrapOp("dispatch", err)
	}
	if msg == nil {
		return d.State(), domain.NewDomainError("dispatch", domain.ErrUnknownMessage, "nil message")
	}

	kind := msg.Kind()
	ctx, span := tracer.StartSpan(ctx, "dispatch."+string(kind))
	defer span.End()

	prev := d.State()
	next := app.Update(msg, prev)
	d.state.Store(&next)

	span.SetAttributes(
		tracer.StringAttr("session", d.session),
		tracer.StringAttr("kind", string(kind)),
		tracer.BoolAttr("recorded", domain.CreatesHistory(msg)),
		tracer.IntAttr("past", next.PastLen()),
		tracer.IntAttr("future", next.FutureLen()),
		tracer.IntAttr("finished", next.Present.FinishedPolygons.Len()),
	)
	tracer.SetOK(span)

	snap := Snapshot(msg, next)
	d.log(ctx, kind, snap)
	d.emit(ctx, eventType(msg, prev, next), snap)

	return next, nil
}

// Reset discards all history and starts a fresh drawing.
func (d *Dispatcher) Reset(ctx context.Context) app.State {
	d.mu.Lock()
	defer d.mu.Unlock()

	h := app.Init()
	d.state.Store(&h)
	d.logger.Info("history reset", "session", d.session)
	d.emit(ctx, domain.EventHistoryReset, Snapshot(nil, h))
	return h
}

// Snapshot summarises h after msg was applied. msg may be nil.
func Snapshot(msg domain.Message, h app.State) domain.DrawingSnapshot {
	snap := domain.DrawingSnapshot{
		Finished:  h.Present.FinishedPolygons.Len(),
		UndoDepth: h.PastLen(),
		RedoDepth: h.FutureLen(),
	}
	if msg != nil {
		snap.Message = msg.Kind()
		snap.Recorded = domain.CreatesHistory(msg)
	}
	if cur, ok := h.Present.CurrentPolygon.Get(); ok {
		snap.CurrentLen = cur.Len()
	}
	if pos, ok := h.Present.MousePos.Get(); ok {
		snap.Cursor = &pos
	}
	return snap
}

func eventType(msg domain.Message, prev, next app.State) domain.EventType {
	switch msg.(type) {
	case domain.SetCursorPos:
		return domain.EventCursorMoved
	case domain.Undo:
		return domain.EventHistoryUndone
	case domain.Redo:
		return domain.EventHistoryRedone
	}
	if next.Present.FinishedPolygons.Len() > prev.Present.FinishedPolygons.Len() {
		return domain.EventPolygonFinished
	}
	return domain.EventDrawingChanged
}

func (d *Dispatcher) log(ctx context.Context, kind domain.MessageKind, snap domain.DrawingSnapshot) {
	write := func() {
		d.logger.DebugContext(ctx, "message dispatched",
			"session", d.session,
			"kind", string(kind),
			"finished", snap.Finished,
			"current_len", snap.CurrentLen,
			"undo_depth", snap.UndoDepth,
			"redo_depth", snap.RedoDepth,
		)
	}
	if kind == domain.KindSetCursorPos {
		d.cursorLog.Do(write)
		return
	}
	write()
}

func (d *Dispatcher) emit(ctx context.Context, eventType domain.EventType, snap domain.DrawingSnapshot) {
	if d.bus == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		d.logger.Warn("marshal event payload", "event", string(eventType), "error", err)
		return
	}
	d.bus.Publish(ctx, domain.Event{
		Type:      eventType,
		Timestamp: d.now(),
		SessionID: d.session,
		Payload:   data,
	})
}

func newSessionID(t time.Time) string {
	entropy := ulid.Monotonic(rand.New(rand.NewSource(t.UnixNano())), 0)
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}
