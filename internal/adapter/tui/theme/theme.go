// Package theme holds the colors, styles and glyphs of the terminal editor.
// All colors are adaptive so the canvas reads on light and dark terminals.
//
// NO_COLOR (https://no-color.org/) is respected automatically by lipgloss via
// its color profile detection.
package theme

import (
	"github.com/charmbracelet/lipgloss"
)

// --- Adaptive Color Palette ---

var (
	ColorFinished = lipgloss.AdaptiveColor{Light: "#2e7d32", Dark: "#66bb6a"}
	ColorCurrent  = lipgloss.AdaptiveColor{Light: "#0277bd", Dark: "#4fc3f7"}
	ColorCursor   = lipgloss.AdaptiveColor{Light: "#e65100", Dark: "#ffa726"}
	ColorAccent   = lipgloss.AdaptiveColor{Light: "#6a1b9a", Dark: "#ce93d8"}
	ColorMuted    = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#9e9e9e"}
	ColorError    = lipgloss.AdaptiveColor{Light: "#c62828", Dark: "#ef5350"}

	ColorBorder = lipgloss.AdaptiveColor{Light: "#bdbdbd", Dark: "#616161"}
	ColorBgAlt  = lipgloss.AdaptiveColor{Light: "#f5f5f5", Dark: "#2d2d2d"}
	ColorFgDim  = lipgloss.AdaptiveColor{Light: "#9e9e9e", Dark: "#757575"}
)

// --- Canvas layers ---

var (
	FinishedEdge   = lipgloss.NewStyle().Foreground(ColorFinished)
	FinishedVertex = lipgloss.NewStyle().Foreground(ColorFinished).Bold(true)
	CurrentEdge    = lipgloss.NewStyle().Foreground(ColorCurrent)
	CurrentVertex  = lipgloss.NewStyle().Foreground(ColorCurrent).Bold(true)
	RubberBand     = lipgloss.NewStyle().Foreground(ColorMuted).Faint(true)
	Cursor         = lipgloss.NewStyle().Foreground(ColorCursor).Bold(true)
)

// --- Panes ---

var (
	Bold      = lipgloss.NewStyle().Bold(true)
	TextMuted = lipgloss.NewStyle().Foreground(ColorMuted)
	TextError = lipgloss.NewStyle().Foreground(ColorError).Bold(true)
	Title     = lipgloss.NewStyle().Foreground(ColorAccent).Bold(true)

	CanvasBorder    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(ColorBorder)
	InspectorBorder = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).BorderForeground(ColorBorder).Padding(0, 1)

	StatusBar = lipgloss.NewStyle().Foreground(ColorFgDim).Background(ColorBgAlt).Padding(0, 1)
)

// InspectorWidth is the outer width of the inspector pane, borders included.
const InspectorWidth = 32

// MinCanvasWidth is the narrowest canvas that still shows the inspector.
const MinCanvasWidth = 20

// Clamp returns v clamped to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
