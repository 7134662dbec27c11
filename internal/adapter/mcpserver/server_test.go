package mcpserver

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"polydraw/internal/domain"
	"polydraw/internal/usecase/dispatch"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestServer(t *testing.T) (*Server, *dispatch.Dispatcher, *fakeClock) {
	t.Helper()
	clock := &fakeClock{t: time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := dispatch.New(logger, nil, dispatch.WithClock(clock.now))
	return New(d, "agent", clock.now, logger), d, clock
}

func call(t *testing.T, s *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	for _, tool := range s.Tools() {
		if tool.Tool.Name != name {
			continue
		}
		req := mcp.CallToolRequest{}
		req.Params.Name = name
		req.Params.Arguments = args
		res, err := tool.Handler(context.Background(), req)
		require.NoError(t, err)
		require.NotNil(t, res)
		return res
	}
	t.Fatalf("tool %q not registered", name)
	return nil
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "content is %T", res.Content[0])
	return tc.Text
}

func snapshot(t *testing.T, res *mcp.CallToolResult) domain.DrawingSnapshot {
	t.Helper()
	var snap domain.DrawingSnapshot
	require.NoError(t, json.Unmarshal([]byte(text(t, res)), &snap))
	return snap
}

func TestToolsRegistered(t *testing.T) {
	s, _, _ := newTestServer(t)

	var names []string
	for _, tool := range s.Tools() {
		names = append(names, tool.Tool.Name)
		assert.NotEmpty(t, tool.Tool.Description, tool.Tool.Name)
	}
	assert.Equal(t, []string{ToolAddPoint, ToolMoveCursor, ToolFinish, ToolUndo, ToolRedo, ToolDrawing}, names)
	assert.NotNil(t, s.MCPServer("test"))
}

func TestAddPointUsesClock(t *testing.T) {
	s, d, clock := newTestServer(t)

	snap := snapshot(t, call(t, s, ToolAddPoint, map[string]any{"x": 1.0, "y": 2.0}))
	assert.Equal(t, domain.KindAddPoint, snap.Message)
	assert.Equal(t, 1, snap.CurrentLen)
	assert.Equal(t, 1, snap.UndoDepth)

	// A wall-clock click well after the first one appends.
	clock.t = clock.t.Add(time.Second)
	snap = snapshot(t, call(t, s, ToolAddPoint, map[string]any{"x": 3.0, "y": 4.0}))
	assert.Equal(t, 2, snap.CurrentLen)

	last, ok := d.State().Present.LastClickTime.Get()
	require.True(t, ok)
	assert.True(t, last.Equal(clock.t))
}

func TestAddPointGapClosesPolygon(t *testing.T) {
	s, _, _ := newTestServer(t)

	call(t, s, ToolAddPoint, map[string]any{"x": 0.0, "y": 0.0})
	call(t, s, ToolAddPoint, map[string]any{"x": 4.0, "y": 0.0, "gap_ms": 500.0})
	call(t, s, ToolAddPoint, map[string]any{"x": 4.0, "y": 3.0, "gap_ms": 500.0})
	snap := snapshot(t, call(t, s, ToolAddPoint, map[string]any{"x": 4.0, "y": 3.0, "gap_ms": 100.0}))

	assert.Equal(t, 1, snap.Finished)
	assert.Zero(t, snap.CurrentLen)
	assert.Equal(t, 4, snap.UndoDepth)
}

func TestAddPointMissingCoordinate(t *testing.T) {
	s, d, _ := newTestServer(t)

	res := call(t, s, ToolAddPoint, map[string]any{"x": 1.0})
	assert.True(t, res.IsError)
	assert.False(t, d.State().CanUndo())
}

func TestMoveCursor(t *testing.T) {
	s, d, _ := newTestServer(t)

	snap := snapshot(t, call(t, s, ToolMoveCursor, map[string]any{"x": 7.0, "y": 8.0}))
	require.NotNil(t, snap.Cursor)
	assert.Equal(t, domain.Coord{X: 7, Y: 8}, *snap.Cursor)
	assert.Zero(t, snap.UndoDepth)

	snap = snapshot(t, call(t, s, ToolMoveCursor, nil))
	assert.Nil(t, snap.Cursor)
	assert.True(t, d.State().Present.MousePos.IsNone())

	res := call(t, s, ToolMoveCursor, map[string]any{"y": 1.0})
	assert.True(t, res.IsError)
}

func TestFinishUndoRedo(t *testing.T) {
	s, _, _ := newTestServer(t)

	call(t, s, ToolAddPoint, map[string]any{"x": 1.0, "y": 1.0})
	snap := snapshot(t, call(t, s, ToolFinish, nil))
	assert.Equal(t, 1, snap.Finished)

	snap = snapshot(t, call(t, s, ToolUndo, nil))
	assert.Zero(t, snap.Finished)
	assert.Equal(t, 1, snap.RedoDepth)

	snap = snapshot(t, call(t, s, ToolRedo, nil))
	assert.Equal(t, 1, snap.Finished)
	assert.Zero(t, snap.RedoDepth)
}

func TestGetDrawing(t *testing.T) {
	s, _, _ := newTestServer(t)

	call(t, s, ToolAddPoint, map[string]any{"x": 2.0, "y": 3.0})
	md := text(t, call(t, s, ToolDrawing, nil))

	assert.Contains(t, md, "# Replay: agent")
	assert.Contains(t, md, "`(2, 3)`")
}

func TestDispatchFailureLogsErrorCode(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	d := dispatch.New(logger, nil)
	s := New(d, "agent", nil, logger)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := s.dispatch(ctx, domain.FinishPolygon{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, buf.String(), "kind=finish")
	assert.Contains(t, buf.String(), "code="+string(domain.CodeCancelled))
}

// steppingClock advances by step on every reading.
type steppingClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *steppingClock) next() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

func TestStdioAppliesPipelinedCallsInOrder(t *testing.T) {
	const calls = 400
	start := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	d := dispatch.New(logger, nil, dispatch.WithClock(func() time.Time { return start }))
	// Every click lands a full second after the previous one, so none of
	// them may close the polygon.
	s := New(d, "agent", (&steppingClock{t: start, step: time.Second}).next, logger)

	inR, inW := io.Pipe()
	outR, outW := io.Pipe()
	ctx, cancel := context.WithCancel(context.Background())

	served := make(chan error, 1)
	go func() { served <- s.ServeStdio(ctx, "test", inR, outW) }()
	t.Cleanup(func() {
		cancel()
		inW.Close()
		outR.Close()
		select {
		case <-served:
		case <-time.After(5 * time.Second):
		}
	})

	go func() {
		enc := json.NewEncoder(inW)
		_ = enc.Encode(rpcRequest{JSONRPC: "2.0", ID: 1, Method: "initialize", Params: map[string]any{
			"protocolVersion": "2024-11-05",
			"capabilities":    map[string]any{},
			"clientInfo":      map[string]any{"name": "test", "version": "1"},
		}})
		_ = enc.Encode(rpcRequest{JSONRPC: "2.0", Method: "notifications/initialized"})
		for i := range calls {
			_ = enc.Encode(rpcRequest{JSONRPC: "2.0", ID: i + 2, Method: "tools/call", Params: map[string]any{
				"name":      ToolAddPoint,
				"arguments": map[string]any{"x": float64(i), "y": 0.0},
			}})
		}
	}()

	answered := make(chan int, 1)
	go func() {
		scanner := bufio.NewScanner(outR)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
		n := 0
		for n < calls+1 && scanner.Scan() {
			var resp struct {
				ID    *int            `json:"id"`
				Error json.RawMessage `json:"error"`
			}
			if json.Unmarshal(scanner.Bytes(), &resp) != nil || resp.ID == nil {
				continue
			}
			if len(resp.Error) > 0 {
				t.Errorf("request %d failed: %s", *resp.ID, resp.Error)
			}
			n++
		}
		answered <- n
	}()

	select {
	case n := <-answered:
		require.Equal(t, calls+1, n)
	case <-time.After(20 * time.Second):
		t.Fatal("timed out waiting for tool call responses")
	}

	h := d.State()
	assert.True(t, h.Present.FinishedPolygons.IsEmpty())
	assert.Equal(t, calls, h.PastLen())

	cur, ok := h.Present.CurrentPolygon.Get()
	require.True(t, ok)
	points := cur.VisualOrder()
	require.Len(t, points, calls)
	for i, p := range points {
		if p.X != float64(i) {
			t.Fatalf("vertex %d is %v, want x=%d", i, p, i)
		}
	}
}
