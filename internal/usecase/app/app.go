// Package app composes the drawing reducer with the history container.
package app

import (
	"polydraw/internal/domain"
	"polydraw/internal/usecase/drawing"
	"polydraw/internal/usecase/history"
)

// State is the externally observable state of the editor.
type State = history.History[domain.DrawingModel]

// Init returns an empty drawing with no history.
func Init() State {
	return history.Init(domain.EmptyModel())
}

// Update routes msg either to a history control operation or through the
// drawing reducer. Cursor movement replaces the present model without
// creating an undo step.
func Update(msg domain.Message, h State) State {
	switch msg.(type) {
	case domain.Undo:
		return h.Undo()
	case domain.Redo:
		return h.Redo()
	case domain.SetCursorPos:
		return h.WithPresent(drawing.Update(msg, h.Present))
	}
	if domain.CreatesHistory(msg) {
		return history.Apply(h, drawing.Update, msg)
	}
	return h
}
