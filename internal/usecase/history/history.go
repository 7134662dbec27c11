// Package history provides an immutable undo/redo container for any state type.
package history

import "polydraw/internal/domain"

// History tracks a present state together with the states before it (Past)
// and the states that were undone (Future). Both timelines are stacks with
// the nearest state first. A History is a value: every operation returns a
// new one and leaves the receiver untouched.
type History[T any] struct {
	Past    domain.List[T]
	Present T
	Future  domain.List[T]
}

// Init starts a history at initial with empty timelines.
func Init[T any](initial T) History[T] {
	return History[T]{Present: initial}
}

// Apply computes the next state with step and records the current present
// in Past. Future is always discarded, even when step returns a state equal
// to the current one.
func Apply[T, M any](h History[T], step func(M, T) T, msg M) History[T] {
	next := step(msg, h.Present)
	return History[T]{
		Past:    h.Past.Cons(h.Present),
		Present: next,
	}
}

// Undo moves the most recent past state into Present. With an empty Past it
// returns h unchanged.
func (h History[T]) Undo() History[T] {
	prev, ok := h.Past.Head()
	if !ok {
		return h
	}
	return History[T]{
		Past:    h.Past.Tail(),
		Present: prev,
		Future:  h.Future.Cons(h.Present),
	}
}

// Redo moves the most recently undone state back into Present. With an
// empty Future it returns h unchanged.
func (h History[T]) Redo() History[T] {
	next, ok := h.Future.Head()
	if !ok {
		return h
	}
	return History[T]{
		Past:    h.Past.Cons(h.Present),
		Present: next,
		Future:  h.Future.Tail(),
	}
}

// WithPresent replaces Present without touching either timeline.
func (h History[T]) WithPresent(p T) History[T] {
	h.Present = p
	return h
}

// CanUndo reports whether Past is non-empty.
func (h History[T]) CanUndo() bool { return !h.Past.IsEmpty() }

// CanRedo reports whether Future is non-empty.
func (h History[T]) CanRedo() bool { return !h.Future.IsEmpty() }

// PastLen returns the number of undoable steps.
func (h History[T]) PastLen() int { return h.Past.Len() }

// FutureLen returns the number of redoable steps.
func (h History[T]) FutureLen() int { return h.Future.Len() }
