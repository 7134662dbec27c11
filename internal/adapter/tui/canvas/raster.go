package canvas

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"polydraw/internal/adapter/tui/theme"
	"polydraw/internal/domain"
)

// layer orders what wins when two shapes cover the same cell.
type layer uint8

const (
	layerEmpty layer = iota
	layerRubber
	layerFinishedEdge
	layerCurrentEdge
	layerFinishedVertex
	layerCurrentVertex
	layerCursor
)

type cell struct {
	r     rune
	layer layer
}

// raster is a cell grid for one frame of the drawing surface. Drawing model
// coordinates map to cells by rounding; anything outside the grid is clipped.
type raster struct {
	w, h  int
	cells []cell
}

func newRaster(w, h int) *raster {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return &raster{w: w, h: h, cells: make([]cell, w*h)}
}

func (g *raster) set(x, y int, r rune, l layer) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	c := &g.cells[y*g.w+x]
	if l >= c.layer {
		c.r = r
		c.layer = l
	}
}

func (g *raster) at(x, y int) cell {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return cell{}
	}
	return g.cells[y*g.w+x]
}

func cellOf(c domain.Coord) (int, int, bool) {
	if math.IsNaN(c.X) || math.IsNaN(c.Y) || math.IsInf(c.X, 0) || math.IsInf(c.Y, 0) {
		return 0, 0, false
	}
	// Values far outside the grid are clipped anyway; cap them so the int
	// conversion and the line walk stay bounded.
	const limit = 1 << 16
	return int(math.Round(math.Max(-limit, math.Min(limit, c.X)))),
		int(math.Round(math.Max(-limit, math.Min(limit, c.Y)))), true
}

// line plots a Bresenham segment from a to b.
func (g *raster) line(a, b domain.Coord, r rune, l layer) {
	x0, y0, ok0 := cellOf(a)
	x1, y1, ok1 := cellOf(b)
	if !ok0 || !ok1 {
		return
	}
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		g.set(x0, y0, r, l)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func (g *raster) point(c domain.Coord, r rune, l layer) {
	if x, y, ok := cellOf(c); ok {
		g.set(x, y, r, l)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// drawModel rasterises finished polygons as closed outlines, the current
// polygon as an open path and, while a cursor is present, the rubber band
// from the newest vertex to the cursor.
func drawModel(g *raster, m domain.DrawingModel) {
	sym := theme.Symbols

	for poly := range m.FinishedPolygons.All() {
		pts := poly.VisualOrder()
		for i := range pts {
			g.line(pts[i], pts[(i+1)%len(pts)], sym.Edge, layerFinishedEdge)
		}
		for _, p := range pts {
			g.point(p, sym.Vertex, layerFinishedVertex)
		}
	}

	cur, hasCur := m.CurrentPolygon.Get()
	if hasCur {
		pts := cur.VisualOrder()
		for i := 1; i < len(pts); i++ {
			g.line(pts[i-1], pts[i], sym.Edge, layerCurrentEdge)
		}
		for _, p := range pts {
			g.point(p, sym.Vertex, layerCurrentVertex)
		}
		if newest, ok := cur.Points().Head(); ok {
			g.point(newest, sym.Active, layerCurrentVertex)
		}
	}

	if pos, ok := m.MousePos.Get(); ok {
		if hasCur {
			if newest, ok := cur.Points().Head(); ok {
				g.line(newest, pos, sym.Rubber, layerRubber)
			}
		}
		g.point(pos, sym.Cursor, layerCursor)
	}
}

func styleOf(l layer) lipgloss.Style {
	switch l {
	case layerRubber:
		return theme.RubberBand
	case layerFinishedEdge:
		return theme.FinishedEdge
	case layerFinishedVertex:
		return theme.FinishedVertex
	case layerCurrentEdge:
		return theme.CurrentEdge
	case layerCurrentVertex:
		return theme.CurrentVertex
	case layerCursor:
		return theme.Cursor
	default:
		return lipgloss.NewStyle()
	}
}

// render styles runs of same-layer cells together.
func (g *raster) render() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < g.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		runLayer := layerEmpty
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if runLayer == layerEmpty {
				b.WriteString(run.String())
			} else {
				b.WriteString(styleOf(runLayer).Render(run.String()))
			}
			run.Reset()
		}
		for x := 0; x < g.w; x++ {
			c := g.at(x, y)
			if c.layer != runLayer {
				flush()
				runLayer = c.layer
			}
			if c.layer == layerEmpty {
				run.WriteByte(' ')
			} else {
				run.WriteRune(c.r)
			}
		}
		flush()
	}
	return b.String()
}
