package domain

import "time"

// DrawingModel is the editor state shown to the user.
type DrawingModel struct {
	// FinishedPolygons holds closed shapes, most recently finished first.
	FinishedPolygons List[PolyLine]
	// CurrentPolygon is the shape under construction, if any.
	CurrentPolygon Option[PolyLine]
	// MousePos is the last known cursor location, used for previews.
	MousePos Option[Coord]
	// LastClickTime is the time of the most recent vertex-adding click.
	LastClickTime Option[time.Time]
}

// EmptyModel returns a model with no shapes, no cursor and no click history.
func EmptyModel() DrawingModel {
	return DrawingModel{}
}

// WithFinishedPolygons returns a copy of m with FinishedPolygons replaced.
func (m DrawingModel) WithFinishedPolygons(l List[PolyLine]) DrawingModel {
	m.FinishedPolygons = l
	return m
}

// WithCurrentPolygon returns a copy of m with CurrentPolygon replaced.
func (m DrawingModel) WithCurrentPolygon(p Option[PolyLine]) DrawingModel {
	m.CurrentPolygon = p
	return m
}

// WithMousePos returns a copy of m with MousePos replaced.
func (m DrawingModel) WithMousePos(c Option[Coord]) DrawingModel {
	m.MousePos = c
	return m
}

// WithLastClickTime returns a copy of m with LastClickTime replaced.
func (m DrawingModel) WithLastClickTime(t Option[time.Time]) DrawingModel {
	m.LastClickTime = t
	return m
}

// Equal reports value equality. Timestamps are compared with time.Time.Equal.
func (m DrawingModel) Equal(other DrawingModel) bool {
	return m.FinishedPolygons.EqualFunc(other.FinishedPolygons, PolyLine.Equal) &&
		OptionEqual(m.CurrentPolygon, other.CurrentPolygon, PolyLine.Equal) &&
		OptionEqual(m.MousePos, other.MousePos, func(a, b Coord) bool { return a == b }) &&
		OptionEqual(m.LastClickTime, other.LastClickTime, time.Time.Equal)
}
