package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"polydraw/internal/adapter/tui/canvas"
	"polydraw/internal/adapter/tui/theme"
	"polydraw/internal/adapter/tui/uxerror"
	"polydraw/internal/domain"
	"polydraw/internal/infra/config"
	"polydraw/internal/infra/logger"
	"polydraw/internal/infra/tracer"
	"polydraw/internal/usecase/dispatch"
	"polydraw/internal/usecase/eventbus"
)

func main() {
	args := os.Args[1:]

	if len(args) >= 1 {
		switch args[0] {
		case "--help", "-h", "help":
			showUsage()
			return
		}
	}

	if len(args) < 1 || strings.HasPrefix(args[0], "-") {
		exitOn("polydraw", run(args))
		return
	}

	switch args[0] {
	case "replay":
		exitOn("replay", runReplay(args[1:], os.Stdout))
	case "mcp":
		exitOn("mcp", runMCP(args[1:]))
	case "doctor":
		if err := runDoctor(args[1:], os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "doctor: %v\n", err)
			os.Exit(1)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\nRun 'polydraw --help' for usage information.\n", args[0])
		os.Exit(1)
	}
}

func showUsage() {
	fmt.Println(`polydraw - draw polygons in the terminal

USAGE:
    polydraw [COMMAND] [FLAGS]

COMMANDS:
    replay      Replay a YAML event script and print the resulting drawing
                Flags: --plain (skip Markdown rendering)
    mcp         Serve the editor as MCP tools over stdio
    doctor      Check config, terminal and output paths

    (no command) - Open the interactive editor

FLAGS:
    -h, --help         Show this help message
    --config PATH      Specify config file path (default: ./polydraw.yaml)

EDITOR:
    left click         add a vertex; a second click within 300ms closes the shape
    enter / f          finish the current shape
    u / ctrl+z         undo
    r / ctrl+y         redo
    esc                hide the cursor
    ?                  show all keys
    q / ctrl+c         quit

CONFIGURATION:
    Config file: ./polydraw.yaml
    Environment: POLYDRAW_* variables override config

EXAMPLES:
    polydraw                                  # Open the editor
    polydraw --config ~/.config/polydraw.yaml
    polydraw replay square.yaml               # Render a report
    polydraw replay --plain square.yaml       # Raw Markdown
    polydraw mcp                              # Let an agent draw`)
}

// exitOn prints a friendly rendering of err and exits 1. It returns when err
// is nil.
func exitOn(command string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s: %s\n", command, uxerror.Humanize(err).Render())
	os.Exit(1)
}

// configPath returns the --config flag value, then POLYDRAW_CONFIG, then
// the default path.
func configPath(args []string) string {
	for i, arg := range args {
		if arg == "--config" && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(arg, "--config=") {
			return strings.TrimPrefix(arg, "--config=")
		}
	}
	if p := os.Getenv("POLYDRAW_CONFIG"); p != "" {
		return p
	}
	return config.DefaultPath
}

// infra holds what every command sets up from config.
type infra struct {
	log     *slog.Logger
	bus     *eventbus.Bus
	cleanup func()
}

func setupInfra(ctx context.Context, cfg *config.Config) (*infra, error) {
	log, logCloser, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	tracerShutdown, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		logCloser()
		return nil, fmt.Errorf("tracer: %w", err)
	}

	bus := eventbus.New(log)
	bus.SubscribeAll(func(_ context.Context, e domain.Event) {
		if e.Type == domain.EventCursorMoved {
			return
		}
		log.Debug("event", "type", string(e.Type), "session", e.SessionID, "payload", string(e.Payload))
	})

	return &infra{
		log: log,
		bus: bus,
		cleanup: func() {
			bus.Close()
			if err := tracerShutdown(context.Background()); err != nil {
				log.Warn("tracer shutdown", "error", err)
			}
			logCloser()
		},
	}, nil
}

func run(args []string) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	in, err := setupInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer in.cleanup()

	theme.InitSymbols(cfg.Editor.ASCIISymbols)

	d := dispatch.New(in.log, in.bus)
	in.log.Info("editor started", "session", d.SessionID())

	err = canvas.Run(ctx, canvas.Deps{
		Dispatcher: d,
		Keys:       cfg.Keys,
		CursorRate: cfg.Editor.CursorRate,
		Logger:     in.log,
	}, cfg.Editor, in.bus)

	h := d.State()
	in.log.Info("editor stopped",
		"session", d.SessionID(),
		"finished", h.Present.FinishedPolygons.Len(),
		"undo_depth", h.PastLen(),
	)
	return err
}
