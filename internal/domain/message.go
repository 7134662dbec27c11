package domain

import "time"

// MessageKind names a Message variant in logs, traces and scripts.
type MessageKind string

const (
	KindAddPoint      MessageKind = "add_point"
	KindSetCursorPos  MessageKind = "cursor"
	KindFinishPolygon MessageKind = "finish"
	KindUndo          MessageKind = "undo"
	KindRedo          MessageKind = "redo"
)

// Message is a user intent delivered to the reducers. The set of variants is
// closed: only the types in this file implement it.
type Message interface {
	Kind() MessageKind
	isMessage()
}

// AddPoint is a click on the drawing surface at Timestamp.
type AddPoint struct {
	Point     Coord
	Timestamp time.Time
}

// SetCursorPos reports pointer movement. An absent Position means the
// pointer left the surface.
type SetCursorPos struct {
	Position Option[Coord]
}

// FinishPolygon closes the shape under construction.
type FinishPolygon struct{}

// Undo steps back one history entry.
type Undo struct{}

// Redo re-applies the most recently undone entry.
type Redo struct{}

func (AddPoint) Kind() MessageKind      { return KindAddPoint }
func (SetCursorPos) Kind() MessageKind  { return KindSetCursorPos }
func (FinishPolygon) Kind() MessageKind { return KindFinishPolygon }
func (Undo) Kind() MessageKind          { return KindUndo }
func (Redo) Kind() MessageKind          { return KindRedo }

func (AddPoint) isMessage()      {}
func (SetCursorPos) isMessage()  {}
func (FinishPolygon) isMessage() {}
func (Undo) isMessage()          {}
func (Redo) isMessage()          {}

// CreatesHistory reports whether applying msg should be recorded as an
// undoable step. Cursor movement and the history controls themselves are not.
func CreatesHistory(msg Message) bool {
	switch msg.(type) {
	case SetCursorPos, Undo, Redo:
		return false
	case nil:
		return false
	default:
		return true
	}
}
