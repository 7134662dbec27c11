// Package drawing implements the pure reducer over domain.DrawingModel.
package drawing

import (
	"time"

	"polydraw/internal/domain"
)

// DoubleClickThreshold is the largest gap between two vertex clicks for the
// second one to close the shape instead of adding a vertex. The comparison
// is strict: a gap of exactly DoubleClickThreshold adds a vertex.
const DoubleClickThreshold = 300 * time.Millisecond

// Update returns the model that results from applying msg to model. It has
// no side effects and never modifies model. Undo and Redo are identities
// here; the history layer handles them.
func Update(msg domain.Message, model domain.DrawingModel) domain.DrawingModel {
	switch m := msg.(type) {
	case domain.AddPoint:
		return addPoint(m.Point, m.Timestamp, model)
	case domain.SetCursorPos:
		return model.WithMousePos(m.Position)
	case domain.FinishPolygon:
		return finishPolygon(model)
	case domain.Undo, domain.Redo:
		return model
	default:
		return model
	}
}

// IsDoubleClick reports whether a click at ts closes the current shape given
// the previous vertex click. Timestamps are trusted as given, so a click that
// claims to precede the last one also counts.
func IsDoubleClick(last domain.Option[time.Time], ts time.Time) bool {
	prev, ok := last.Get()
	if !ok {
		return false
	}
	return ts.Sub(prev) < DoubleClickThreshold
}

func addPoint(point domain.Coord, ts time.Time, model domain.DrawingModel) domain.DrawingModel {
	if IsDoubleClick(model.LastClickTime, ts) {
		return finishPolygon(model)
	}

	poly := domain.NewPolyLine(point)
	if current, ok := model.CurrentPolygon.Get(); ok {
		poly = current.Prepend(point)
	}
	return model.
		WithCurrentPolygon(domain.Some(poly)).
		WithLastClickTime(domain.Some(ts))
}

func finishPolygon(model domain.DrawingModel) domain.DrawingModel {
	current, ok := model.CurrentPolygon.Get()
	if !ok {
		return model
	}
	return model.
		WithFinishedPolygons(model.FinishedPolygons.Cons(current)).
		WithCurrentPolygon(domain.None[domain.PolyLine]())
}
