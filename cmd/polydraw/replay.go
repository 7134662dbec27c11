package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"polydraw/internal/adapter/script"
	"polydraw/internal/infra/config"
	"polydraw/internal/usecase/dispatch"
)

type replayFlags struct {
	Plain      bool
	ConfigPath string
	Script     string
	Width      int
}

func parseReplayArgs(args []string) (replayFlags, error) {
	flags := replayFlags{Width: 80}
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--plain":
			flags.Plain = true
		case arg == "--config" && i+1 < len(args):
			flags.ConfigPath = args[i+1]
			i++
		case strings.HasPrefix(arg, "--config="):
			flags.ConfigPath = strings.TrimPrefix(arg, "--config=")
		case strings.HasPrefix(arg, "-"):
			return flags, fmt.Errorf("unknown flag: %s", arg)
		case flags.Script == "":
			flags.Script = arg
		default:
			return flags, fmt.Errorf("unexpected argument: %s", arg)
		}
	}
	if flags.Script == "" {
		return flags, fmt.Errorf("usage: polydraw replay [--plain] [--config PATH] SCRIPT.yaml")
	}
	if flags.ConfigPath == "" {
		flags.ConfigPath = configPath(nil)
	}
	return flags, nil
}

// runReplay parses a script, feeds it through a dispatcher and writes the
// Markdown report to out.
func runReplay(args []string, out io.Writer) error {
	flags, err := parseReplayArgs(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(flags.ConfigPath)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	data, err := os.ReadFile(flags.Script)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	s, err := script.Parse(data)
	if err != nil {
		return err
	}
	msgs, err := s.Messages()
	if err != nil {
		return err
	}

	ctx := context.Background()
	in, err := setupInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer in.cleanup()

	d := dispatch.New(in.log, in.bus)
	in.log.Info("replay started", "script", flags.Script, "events", len(msgs), "session", d.SessionID())

	h, err := script.Replay(ctx, d, msgs)
	if err != nil {
		return err
	}

	md := script.Report(s.Name, h)
	if !flags.Plain {
		rendered, err := script.Render(md, flags.Width)
		if err != nil {
			return err
		}
		md = rendered
	}
	_, err = io.WriteString(out, md)
	return err
}
