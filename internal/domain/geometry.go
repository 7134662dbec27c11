package domain

import "fmt"

// Coord is a point on the drawing surface.
type Coord struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (c Coord) String() string {
	return fmt.Sprintf("(%g, %g)", c.X, c.Y)
}

// PolyLine holds the vertices of one polygon, most recently added first.
// It is only created through NewPolyLine, so it always has at least one point.
type PolyLine struct {
	points List[Coord]
}

// NewPolyLine starts a polygon at first.
func NewPolyLine(first Coord) PolyLine {
	return PolyLine{points: List[Coord]{}.Cons(first)}
}

// Prepend returns a new PolyLine with c as its leading point. p is unchanged.
func (p PolyLine) Prepend(c Coord) PolyLine {
	return PolyLine{points: p.points.Cons(c)}
}

// Points returns the vertices in storage order (newest first).
func (p PolyLine) Points() List[Coord] { return p.points }

// VisualOrder returns the vertices in the order they were added.
func (p PolyLine) VisualOrder() []Coord {
	return p.points.Reverse().Slice()
}

// Len returns the number of vertices.
func (p PolyLine) Len() int { return p.points.Len() }

// Equal reports whether both polylines have the same vertices in the same order.
func (p PolyLine) Equal(other PolyLine) bool {
	return p.points.EqualFunc(other.points, func(a, b Coord) bool { return a == b })
}
