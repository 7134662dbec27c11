package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace/noop"

	"polydraw/internal/domain"
	"polydraw/internal/infra/logger"
	"polydraw/internal/usecase/dispatch"
)

func loadScript(t *testing.T, name string) *Script {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	s, err := Parse(data)
	require.NoError(t, err)
	return s
}

func TestParseSquare(t *testing.T) {
	s := loadScript(t, "square.yaml")

	assert.Equal(t, "square", s.Name)
	assert.True(t, s.Start.Equal(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)))
	require.Len(t, s.Events, 8)
	assert.Equal(t, domain.KindAddPoint, s.Events[0].Kind)
	assert.Equal(t, domain.KindUndo, s.Events[7].Kind)
}

func TestParseDefaultStart(t *testing.T) {
	s := loadScript(t, "open_shape.yaml")
	assert.True(t, s.Start.Equal(DefaultStart))
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty document", ""},
		{"malformed yaml", "events: [\n"},
		{"not a mapping", "- 1\n- 2\n"},
		{"missing events", "name: x\n"},
		{"unknown kind", "events:\n  - {kind: erase}\n"},
		{"add_point without at", "events:\n  - {kind: add_point, x: 1, y: 2}\n"},
		{"add_point without y", "events:\n  - {kind: add_point, x: 1, at: 0s}\n"},
		{"cursor with x only", "events:\n  - {kind: cursor, x: 1}\n"},
		{"string coordinate", "events:\n  - {kind: cursor, x: one, y: 2}\n"},
		{"unknown event field", "events:\n  - {kind: finish, button: left}\n"},
		{"unknown top-level field", "events: []\ncolor: red\n"},
		{"bad start", "start: yesterday\nevents: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrInvalidScript), "got %v", err)
			assert.Equal(t, domain.CodeInvalidScript, domain.ErrorCodeOf(err))
		})
	}
}

func TestMessages(t *testing.T) {
	s := loadScript(t, "open_shape.yaml")

	msgs, err := s.Messages()
	require.NoError(t, err)
	require.Len(t, msgs, 4)

	first, ok := msgs[0].(domain.AddPoint)
	require.True(t, ok)
	assert.Equal(t, domain.Coord{X: 1.5, Y: 2}, first.Point)
	assert.True(t, first.Timestamp.Equal(DefaultStart))

	second := msgs[1].(domain.AddPoint)
	assert.Equal(t, 500*time.Millisecond, second.Timestamp.Sub(first.Timestamp))

	cursor := msgs[2].(domain.SetCursorPos)
	pos, ok := cursor.Position.Get()
	require.True(t, ok)
	assert.Equal(t, domain.Coord{X: 3, Y: 5}, pos)

	left := msgs[3].(domain.SetCursorPos)
	assert.True(t, left.Position.IsNone())
}

func TestMessagesBadDuration(t *testing.T) {
	s, err := Parse([]byte("events:\n  - {kind: add_point, x: 1, y: 2, at: soon}\n"))
	require.NoError(t, err)

	_, err = s.Messages()
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidScript))
	assert.Contains(t, err.Error(), "event 0")
}

func TestMessagesAllKinds(t *testing.T) {
	s, err := Parse([]byte(`events:
  - {kind: add_point, x: 0, y: 0, at: -1s}
  - {kind: finish}
  - {kind: undo}
  - {kind: redo}
`))
	require.NoError(t, err)

	msgs, err := s.Messages()
	require.NoError(t, err)
	kinds := make([]domain.MessageKind, len(msgs))
	for i, m := range msgs {
		kinds[i] = m.Kind()
	}
	assert.Equal(t, []domain.MessageKind{
		domain.KindAddPoint, domain.KindFinishPolygon, domain.KindUndo, domain.KindRedo,
	}, kinds)
	assert.True(t, msgs[0].(domain.AddPoint).Timestamp.Equal(DefaultStart.Add(-time.Second)))
}

func replayFile(t *testing.T, name string) (*Script, *dispatch.Dispatcher) {
	t.Helper()
	s := loadScript(t, name)
	msgs, err := s.Messages()
	require.NoError(t, err)

	d := dispatch.New(logger.Discard(), nil)
	_, err = Replay(context.Background(), d, msgs)
	require.NoError(t, err)
	return s, d
}

func TestReplaySquare(t *testing.T) {
	_, d := replayFile(t, "square.yaml")
	h := d.State()

	require.Equal(t, 1, h.Present.FinishedPolygons.Len())
	square, _ := h.Present.FinishedPolygons.Head()
	assert.Equal(t, []domain.Coord{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}, square.VisualOrder())
	assert.True(t, h.Present.CurrentPolygon.IsNone())
	assert.Equal(t, domain.Some(domain.Coord{X: 5, Y: 5}), h.Present.MousePos)
	assert.Equal(t, 5, h.PastLen())
	assert.Equal(t, 1, h.FutureLen())
}

func TestReplayStopsOnCancel(t *testing.T) {
	s := loadScript(t, "square.yaml")
	msgs, err := s.Messages()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := dispatch.New(logger.Discard(), nil)
	h, err := Replay(ctx, d, msgs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Contains(t, err.Error(), "replay event 0")
	assert.Equal(t, 0, h.PastLen())
}

func TestReport(t *testing.T) {
	s, d := replayFile(t, "square.yaml")
	md := Report(s.Name, d.State())

	assert.Contains(t, md, "# Replay: square")
	assert.Contains(t, md, "## Finished polygons (1)")
	assert.Contains(t, md, "1. `(0, 0)` → `(10, 0)` → `(10, 10)` → `(0, 10)`")
	assert.Contains(t, md, "## Current polygon\n\n_none_")
	assert.Contains(t, md, "`(5, 5)`")
	assert.Contains(t, md, "| 5 | 1 |")
}

func TestReportOpenShape(t *testing.T) {
	s, d := replayFile(t, "open_shape.yaml")
	md := Report(s.Name, d.State())

	assert.Contains(t, md, "## Finished polygons (0)\n\n_none_")
	assert.Contains(t, md, "`(1.5, 2)` → `(3, 4)` (2 points)")
	assert.Contains(t, md, "## Cursor\n\n_outside_")
}

func TestReportUntitled(t *testing.T) {
	d := dispatch.New(logger.Discard(), nil)
	assert.True(t, strings.HasPrefix(Report("", d.State()), "# Replay: untitled"))
}

func TestRender(t *testing.T) {
	out, err := Render("# Replay: square\n\nhello", 60)
	require.NoError(t, err)
	assert.Contains(t, out, "square")
	assert.Contains(t, out, "hello")
}

func TestReplayRecordsSpan(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	otel.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr)))
	t.Cleanup(func() { otel.SetTracerProvider(noop.NewTracerProvider()) })

	d := dispatch.New(logger.Discard(), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Replay(ctx, d, []domain.Message{domain.Undo{}})
	require.Error(t, err)

	ended := sr.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "script.replay", ended[0].Name())
	assert.Equal(t, codes.Error, ended[0].Status().Code)
}
