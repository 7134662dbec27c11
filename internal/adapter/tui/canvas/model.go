// Package canvas is the interactive terminal host: it turns mouse and key
// input into editor messages and draws the resulting model.
package canvas

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/time/rate"

	"polydraw/internal/adapter/tui/theme"
	"polydraw/internal/domain"
	"polydraw/internal/infra/config"
	"polydraw/internal/usecase/app"
	"polydraw/internal/usecase/dispatch"
)

// The drawing surface starts below the title line and inside the canvas
// border.
const (
	originX = 1
	originY = 2
)

// QuitMsg asks the model to exit.
type QuitMsg struct{}

// EventMsg carries a bus event into the program for the status line.
type EventMsg struct {
	Event domain.Event
}

// cursorFlushMsg delivers the last cursor position the limiter dropped.
type cursorFlushMsg struct{}

// Deps are dependencies injected into the canvas model.
type Deps struct {
	Dispatcher *dispatch.Dispatcher
	Keys       config.KeysConfig
	// CursorRate caps cursor updates per second; 0 disables throttling.
	CursorRate float64
	Clock      func() time.Time
	Logger     *slog.Logger
}

// Model is the root Bubble Tea model of the editor.
type Model struct {
	deps    Deps
	keys    KeyMap
	help    help.Model
	limiter *rate.Limiter

	// pending is the newest motion the limiter dropped; flushing marks a
	// cursorFlushMsg as scheduled.
	pending  domain.Option[domain.Coord]
	flushing bool

	state     app.State
	lastEvent domain.EventType
	err       error

	width    int
	height   int
	canvasW  int
	canvasH  int
	inspect  bool
	quitting bool
}

// New creates the canvas model.
func New(deps Deps) Model {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	m := Model{
		deps:  deps,
		keys:  NewKeyMap(deps.Keys),
		help:  help.New(),
		state: deps.Dispatcher.State(),
	}
	if deps.CursorRate > 0 {
		burst := int(deps.CursorRate)
		if burst < 1 {
			burst = 1
		}
		m.limiter = rate.NewLimiter(rate.Limit(deps.CursorRate), burst)
	}
	return m
}

// State returns the history last reported by the dispatcher.
func (m Model) State() app.State { return m.state }

// Init implements tea.Model.
func (m Model) Init() tea.Cmd { return nil }

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case EventMsg:
		m.lastEvent = msg.Event.Type
		return m, nil

	case cursorFlushMsg:
		m.flushing = false
		pos, ok := m.pending.Get()
		if !ok {
			return m, nil
		}
		m.pending = domain.None[domain.Coord]()
		if cur, ok := m.state.Present.MousePos.Get(); ok && cur == pos {
			return m, nil
		}
		return m.dispatch(domain.SetCursorPos{Position: domain.Some(pos)})

	case QuitMsg:
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) layout() {
	statusH := 1
	if m.help.ShowAll {
		statusH = len(m.keys.FullHelp()[0])
	}
	m.help.Width = max(m.width-2, 0)

	m.inspect = m.width >= theme.InspectorWidth+theme.MinCanvasWidth+2
	w := m.width - 2
	if m.inspect {
		w -= theme.InspectorWidth
	}
	m.canvasW = max(w, 0)
	m.canvasH = max(m.height-originY-1-statusH, 0)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if isMouseEscapeLeak(msg.String()) {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.Finish):
		return m.dispatch(domain.FinishPolygon{})
	case key.Matches(msg, m.keys.Undo):
		return m.dispatch(domain.Undo{})
	case key.Matches(msg, m.keys.Redo):
		return m.dispatch(domain.Redo{})
	case key.Matches(msg, m.keys.ClearCursor):
		return m.dispatch(domain.SetCursorPos{Position: domain.None[domain.Coord]()})
	}
	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	x, y := msg.X-originX, msg.Y-originY
	inside := x >= 0 && y >= 0 && x < m.canvasW && y < m.canvasH
	pos := domain.Coord{X: float64(x), Y: float64(y)}

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !inside {
			return m, nil
		}
		return m.dispatch(domain.AddPoint{Point: pos, Timestamp: m.deps.Clock()})

	case tea.MouseActionMotion:
		m.pending = domain.None[domain.Coord]()
		if !inside {
			// Leaving the surface is never throttled.
			if m.state.Present.MousePos.IsSome() {
				return m.dispatch(domain.SetCursorPos{Position: domain.None[domain.Coord]()})
			}
			return m, nil
		}
		if cur, ok := m.state.Present.MousePos.Get(); ok && cur == pos {
			return m, nil
		}
		if m.limiter != nil && !m.limiter.Allow() {
			m.pending = domain.Some(pos)
			if m.flushing {
				return m, nil
			}
			m.flushing = true
			return m, tea.Tick(m.flushDelay(), func(time.Time) tea.Msg { return cursorFlushMsg{} })
		}
		return m.dispatch(domain.SetCursorPos{Position: domain.Some(pos)})
	}
	return m, nil
}

// flushDelay is one limiter interval.
func (m Model) flushDelay() time.Duration {
	return time.Duration(float64(time.Second) / float64(m.limiter.Limit()))
}

func (m Model) dispatch(msg domain.Message) (tea.Model, tea.Cmd) {
	h, err := m.deps.Dispatcher.Dispatch(context.Background(), msg)
	m.state = h
	m.err = err
	if err != nil && m.deps.Logger != nil {
		m.deps.Logger.Warn("dispatch failed",
			"kind", string(msg.Kind()),
			"code", string(domain.ErrorCodeOf(err)),
			"error", err,
		)
	}
	return m, nil
}

// View renders the editor.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "  Initializing..."
	}

	title := theme.Title.Render("polydraw") + " " +
		theme.TextMuted.Render(m.deps.Dispatcher.SessionID())

	g := newRaster(m.canvasW, m.canvasH)
	drawModel(g, m.state.Present)
	body := theme.CanvasBorder.Width(m.canvasW).Height(m.canvasH).Render(g.render())
	if m.inspect {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.inspectorView())
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, body, m.statusView())
}

func (m Model) inspectorView() string {
	p := m.state.Present
	inner := theme.InspectorWidth - 4 // border and padding

	var lines []string
	row := func(label, value string) {
		lines = append(lines, fmt.Sprintf("  %-9s %s", label, value))
	}

	lines = append(lines, theme.Bold.Render("Shapes"))
	row("finished", fmt.Sprint(p.FinishedPolygons.Len()))
	if cur, ok := p.CurrentPolygon.Get(); ok {
		row("current", fmt.Sprintf("%d pts", cur.Len()))
	} else {
		row("current", theme.TextMuted.Render("none"))
	}
	if pos, ok := p.MousePos.Get(); ok {
		row("cursor", pos.String())
	} else {
		row("cursor", theme.TextMuted.Render("outside"))
	}

	lines = append(lines, "", theme.Bold.Render("History"))
	row("undo", fmt.Sprint(m.state.PastLen()))
	row("redo", fmt.Sprint(m.state.FutureLen()))

	if !p.FinishedPolygons.IsEmpty() {
		lines = append(lines, "", theme.Bold.Render("Finished"))
		polys := p.FinishedPolygons.Reverse().Slice()
		room := theme.Clamp(m.canvasH-len(lines), 1, len(polys))
		for i, poly := range polys {
			if i >= room-1 && i < len(polys)-1 {
				lines = append(lines, "  "+theme.Symbols.Ellipsis)
				break
			}
			lines = append(lines, fmt.Sprintf("  %s #%d  %d pts", theme.Symbols.Bullet, i+1, poly.Len()))
		}
	}

	clip := lipgloss.NewStyle().MaxWidth(inner)
	for i, l := range lines {
		lines[i] = clip.Render(l)
	}
	return theme.InspectorBorder.Width(theme.InspectorWidth - 2).Height(m.canvasH).Render(strings.Join(lines, "\n"))
}

func (m Model) statusView() string {
	var left string
	switch {
	case m.err != nil:
		left = theme.TextError.Render(m.err.Error())
	case m.lastEvent != "":
		left = theme.TextMuted.Render(string(m.lastEvent))
	}
	helpView := m.help.View(m.keys)
	if left == "" {
		return theme.StatusBar.Width(m.width).Render(helpView)
	}
	return theme.StatusBar.Width(m.width).Render(left + "  " + helpView)
}
