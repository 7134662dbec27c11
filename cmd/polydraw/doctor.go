package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"polydraw/internal/adapter/tui/theme"
	"polydraw/internal/infra/config"
)

// CheckStatus represents the result of a health check.
type CheckStatus string

const (
	StatusPass CheckStatus = "PASS"
	StatusWarn CheckStatus = "WARN"
	StatusFail CheckStatus = "FAIL"
)

// CheckResult holds the outcome of a single health check.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Fix     string // optional fix suggestion
}

// Check is a named health check function.
type Check struct {
	Name string
	Fn   func(cfg *config.Config) CheckResult
}

// runDoctor executes all health checks and reports results.
func runDoctor(args []string, w io.Writer) error {
	cfgPath := configPath(args)
	cfg, cfgErr := config.Load(cfgPath)

	checks := []Check{
		{Name: "Config file", Fn: checkConfigFile(cfgPath, cfgErr)},
		{Name: "Terminal", Fn: checkTerminal},
		{Name: "Symbols", Fn: checkSymbols},
		{Name: "Log output", Fn: checkLogOutput},
		{Name: "Trace output", Fn: checkTraceOutput},
	}

	fmt.Fprintln(w, "polydraw doctor")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w)

	var pass, warn, fail int
	for _, check := range checks {
		result := check.Fn(cfg)
		result.Name = check.Name

		fmt.Fprintf(w, "  %s %s: %s\n", statusIcon(result.Status), result.Name, result.Message)
		if result.Fix != "" {
			fmt.Fprintf(w, "      Fix: %s\n", result.Fix)
		}

		switch result.Status {
		case StatusPass:
			pass++
		case StatusWarn:
			warn++
		case StatusFail:
			fail++
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("-", 50))
	fmt.Fprintf(w, "Results: %d passed, %d warnings, %d failed\n", pass, warn, fail)

	if fail > 0 {
		return fmt.Errorf("%d check(s) failed", fail)
	}
	return nil
}

func statusIcon(s CheckStatus) string {
	switch s {
	case StatusPass:
		return "[PASS]"
	case StatusWarn:
		return "[WARN]"
	case StatusFail:
		return "[FAIL]"
	default:
		return "[????]"
	}
}

// checkConfigFile reports whether the config file exists and loads. A
// missing file only warns: the editor runs on defaults.
func checkConfigFile(cfgPath string, cfgErr error) func(*config.Config) CheckResult {
	return func(_ *config.Config) CheckResult {
		if cfgErr != nil {
			return CheckResult{
				Status:  StatusFail,
				Message: fmt.Sprintf("config error: %v", cfgErr),
				Fix:     fmt.Sprintf("Fix %s or remove it to use defaults", cfgPath),
			}
		}
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			return CheckResult{
				Status:  StatusWarn,
				Message: fmt.Sprintf("no config at %s, using defaults", cfgPath),
			}
		}
		return CheckResult{
			Status:  StatusPass,
			Message: fmt.Sprintf("config loaded from %s", cfgPath),
		}
	}
}

func checkTerminal(_ *config.Config) CheckResult {
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return CheckResult{
			Status:  StatusWarn,
			Message: fmt.Sprintf("TERM=%q does not report mouse input", term),
			Fix:     "Run the editor in a terminal emulator with mouse support (e.g. TERM=xterm-256color)",
		}
	}
	return CheckResult{Status: StatusPass, Message: "TERM=" + term}
}

func checkSymbols(cfg *config.Config) CheckResult {
	if cfg != nil && cfg.Editor.ASCIISymbols {
		return CheckResult{Status: StatusPass, Message: "ASCII symbols forced by config"}
	}
	if !theme.DetectUnicodeSupport() {
		return CheckResult{
			Status:  StatusWarn,
			Message: "locale is not UTF-8, falling back to ASCII symbols",
			Fix:     "Set LANG to a UTF-8 locale or editor.ascii_symbols: true",
		}
	}
	return CheckResult{Status: StatusPass, Message: "Unicode symbols"}
}

func checkLogOutput(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusWarn, Message: "skipped (no config)"}
	}
	return checkOutput(cfg.Logger.Output, "logger.output")
}

func checkTraceOutput(cfg *config.Config) CheckResult {
	if cfg == nil {
		return CheckResult{Status: StatusWarn, Message: "skipped (no config)"}
	}
	if !cfg.Tracer.Enabled || cfg.Tracer.Exporter != "stdout" {
		return CheckResult{Status: StatusPass, Message: "tracing disabled"}
	}
	out := cfg.Tracer.Output
	if out == "" {
		out = "stdout"
	}
	return checkOutput(out, "tracer.output")
}

// checkOutput warns about terminal outputs, which draw over the editor, and
// fails on files that cannot be opened for append.
func checkOutput(output, field string) CheckResult {
	switch strings.ToLower(output) {
	case "none", "discard":
		return CheckResult{Status: StatusPass, Message: "discarded"}
	case "stdout", "stderr", "":
		return CheckResult{
			Status:  StatusWarn,
			Message: "writes to the terminal and will draw over the editor",
			Fix:     fmt.Sprintf("Set %s to a file path or none", field),
		}
	}
	f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return CheckResult{
			Status:  StatusFail,
			Message: fmt.Sprintf("cannot open %s: %v", output, err),
			Fix:     fmt.Sprintf("Point %s at a writable location", field),
		}
	}
	f.Close()
	return CheckResult{Status: StatusPass, Message: "writing to " + output}
}
