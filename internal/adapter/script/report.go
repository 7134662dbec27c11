package script

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"polydraw/internal/domain"
	"polydraw/internal/usecase/app"
)

// Report renders h as a Markdown summary. Finished polygons are listed
// oldest first; every vertex list is in the order it was clicked.
func Report(name string, h app.State) string {
	if name == "" {
		name = "untitled"
	}
	m := h.Present

	var b strings.Builder
	fmt.Fprintf(&b, "# Replay: %s\n\n", name)

	fmt.Fprintf(&b, "## Finished polygons (%d)\n\n", m.FinishedPolygons.Len())
	if m.FinishedPolygons.IsEmpty() {
		b.WriteString("_none_\n")
	}
	i := 1
	for poly := range m.FinishedPolygons.Reverse().All() {
		fmt.Fprintf(&b, "%d. %s\n", i, formatPoints(poly.VisualOrder()))
		i++
	}

	b.WriteString("\n## Current polygon\n\n")
	if cur, ok := m.CurrentPolygon.Get(); ok {
		fmt.Fprintf(&b, "%s (%d points)\n", formatPoints(cur.VisualOrder()), cur.Len())
	} else {
		b.WriteString("_none_\n")
	}

	b.WriteString("\n## Cursor\n\n")
	if pos, ok := m.MousePos.Get(); ok {
		fmt.Fprintf(&b, "`%s`\n", pos)
	} else {
		b.WriteString("_outside_\n")
	}

	b.WriteString("\n## History\n\n")
	b.WriteString("| Undo depth | Redo depth |\n")
	b.WriteString("|---|---|\n")
	fmt.Fprintf(&b, "| %d | %d |\n", h.PastLen(), h.FutureLen())

	return b.String()
}

func formatPoints(points []domain.Coord) string {
	parts := make([]string, len(points))
	for i, p := range points {
		parts[i] = "`" + p.String() + "`"
	}
	return strings.Join(parts, " → ")
}

// Render formats Markdown for a terminal of the given width.
func Render(md string, width int) (string, error) {
	if width <= 0 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(md)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
