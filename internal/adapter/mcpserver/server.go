// Package mcpserver exposes the editor as Model Context Protocol tools, so an
// agent can draw through the same dispatcher the terminal host uses.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"polydraw/internal/adapter/script"
	"polydraw/internal/domain"
	"polydraw/internal/usecase/app"
	"polydraw/internal/usecase/dispatch"
)

// Tool names.
const (
	ToolAddPoint   = "add_point"
	ToolMoveCursor = "move_cursor"
	ToolFinish     = "finish_polygon"
	ToolUndo       = "undo"
	ToolRedo       = "redo"
	ToolDrawing    = "get_drawing"
)

// stdioQueueSize bounds how many tool calls may wait for the single worker
// before the transport starts handling them on its reader goroutine.
const stdioQueueSize = 4096

// Server maps MCP tool calls onto dispatcher messages.
type Server struct {
	d      *dispatch.Dispatcher
	name   string
	now    func() time.Time
	logger *slog.Logger

	// mu is held from reading the clock until the message is applied, so
	// calls reach the dispatcher in the order they were stamped.
	mu        sync.Mutex
	lastClick time.Time
	hasClick  bool
}

// New creates a Server. now may be nil.
func New(d *dispatch.Dispatcher, name string, now func() time.Time, logger *slog.Logger) *Server {
	if now == nil {
		now = time.Now
	}
	return &Server{d: d, name: name, now: now, logger: logger}
}

// MCPServer builds the protocol server with every tool registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer("polydraw", version, server.WithToolCapabilities(false))
	for _, t := range s.Tools() {
		srv.AddTool(t.Tool, t.Handler)
	}
	return srv
}

// Stdio builds a stdio transport that handles tool calls one at a time, in
// arrival order.
func (s *Server) Stdio(version string) *server.StdioServer {
	stdio := server.NewStdioServer(s.MCPServer(version))
	server.WithWorkerPoolSize(1)(stdio)
	server.WithQueueSize(stdioQueueSize)(stdio)
	return stdio
}

// ServeStdio serves MCP over in and out until the client disconnects or ctx
// is cancelled.
func (s *Server) ServeStdio(ctx context.Context, version string, in io.Reader, out io.Writer) error {
	return s.Stdio(version).Listen(ctx, in, out)
}

// Tools returns the tool definitions paired with their handlers.
func (s *Server) Tools() []server.ServerTool {
	return []server.ServerTool{
		{
			Tool: mcp.NewTool(ToolAddPoint,
				mcp.WithDescription("Click at (x, y). A click less than 300ms after the previous one closes the current polygon instead of adding a vertex."),
				mcp.WithNumber("x", mcp.Required(), mcp.Description("Column of the click")),
				mcp.WithNumber("y", mcp.Required(), mcp.Description("Row of the click")),
				mcp.WithNumber("gap_ms", mcp.Description("Milliseconds since the previous click; defaults to the wall clock")),
			),
			Handler: s.handleAddPoint,
		},
		{
			Tool: mcp.NewTool(ToolMoveCursor,
				mcp.WithDescription("Move the cursor to (x, y). Omit both to hide it."),
				mcp.WithNumber("x", mcp.Description("Cursor column")),
				mcp.WithNumber("y", mcp.Description("Cursor row")),
			),
			Handler: s.handleMoveCursor,
		},
		{
			Tool:    mcp.NewTool(ToolFinish, mcp.WithDescription("Close the polygon being drawn.")),
			Handler: s.simple(domain.FinishPolygon{}),
		},
		{
			Tool:    mcp.NewTool(ToolUndo, mcp.WithDescription("Undo the last drawing change.")),
			Handler: s.simple(domain.Undo{}),
		},
		{
			Tool:    mcp.NewTool(ToolRedo, mcp.WithDescription("Redo the last undone change.")),
			Handler: s.simple(domain.Redo{}),
		},
		{
			Tool:    mcp.NewTool(ToolDrawing, mcp.WithDescription("Describe the drawing as Markdown.")),
			Handler: s.handleDrawing,
		},
	}
}

func (s *Server) handleAddPoint(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	x, err := req.RequireFloat("x")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	y, err := req.RequireFloat("y")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	at := s.now()
	if gap, ok := req.GetArguments()["gap_ms"].(float64); ok && s.hasClick {
		at = s.lastClick.Add(time.Duration(gap * float64(time.Millisecond)))
	}
	s.lastClick, s.hasClick = at, true

	return s.dispatchLocked(ctx, domain.AddPoint{Point: domain.Coord{X: x, Y: y}, Timestamp: at})
}

func (s *Server) handleMoveCursor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	x, hasX := args["x"].(float64)
	y, hasY := args["y"].(float64)
	if hasX != hasY {
		err := domain.NewDomainError(ToolMoveCursor, domain.ErrInvalidInput, "x and y must be given together")
		return mcp.NewToolResultError(err.Error()), nil
	}
	pos := domain.None[domain.Coord]()
	if hasX {
		pos = domain.Some(domain.Coord{X: x, Y: y})
	}
	return s.dispatch(ctx, domain.SetCursorPos{Position: pos})
}

func (s *Server) simple(msg domain.Message) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return s.dispatch(ctx, msg)
	}
}

func (s *Server) handleDrawing(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(script.Report(s.name, s.d.State())), nil
}

func (s *Server) dispatch(ctx context.Context, msg domain.Message) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(ctx, msg)
}

func (s *Server) dispatchLocked(ctx context.Context, msg domain.Message) (*mcp.CallToolResult, error) {
	h, err := s.d.Dispatch(ctx, msg)
	if err != nil {
		s.logger.Warn("mcp dispatch failed",
			"kind", string(msg.Kind()),
			"code", string(domain.ErrorCodeOf(err)),
			"error", err,
		)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return snapshotResult(msg, h)
}

func snapshotResult(msg domain.Message, h app.State) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(dispatch.Snapshot(msg, h))
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
