package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"polydraw/internal/adapter/mcpserver"
	"polydraw/internal/infra/config"
	"polydraw/internal/usecase/dispatch"
)

const version = "0.1.0"

// runMCP serves the editor as MCP tools over stdio. Logs must not go to
// stdout, which carries the protocol.
func runMCP(args []string) error {
	cfg, err := config.Load(configPath(args))
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.Logger.Output == "stdout" {
		return fmt.Errorf("logger.output must not be stdout when serving MCP over stdio")
	}
	if cfg.Tracer.Enabled && cfg.Tracer.Exporter == "stdout" && (cfg.Tracer.Output == "" || cfg.Tracer.Output == "stdout") {
		return fmt.Errorf("tracer.output must not be stdout when serving MCP over stdio")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	in, err := setupInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer in.cleanup()

	d := dispatch.New(in.log, in.bus)
	in.log.Info("mcp server started", "session", d.SessionID())

	srv := mcpserver.New(d, "mcp-"+d.SessionID(), nil, in.log)
	if err := srv.ServeStdio(ctx, version, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
