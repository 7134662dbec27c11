package config

import (
	"fmt"
	"strings"
)

// ValidationError accumulates config validation errors.
type ValidationError struct {
	Errors []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Errors, "\n  - ")
}

// HasErrors reports whether any validation errors have been recorded.
func (v *ValidationError) HasErrors() bool {
	return len(v.Errors) > 0
}

// Add records a formatted validation error.
func (v *ValidationError) Add(format string, args ...interface{}) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural correctness. It returns a *ValidationError
// when one or more problems are found, allowing callers to inspect all issues.
func Validate(cfg *Config) error {
	ve := &ValidationError{}
	validateLogger(cfg, ve)
	validateTracer(cfg, ve)
	validateEditor(cfg, ve)
	validateKeys(cfg, ve)
	if ve.HasErrors() {
		return ve
	}
	return nil
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}

func validateLogger(cfg *Config, ve *ValidationError) {
	if !validLevels[strings.ToLower(cfg.Logger.Level)] {
		ve.Add("logger.level %q is invalid (valid: debug, info, warn, error)", cfg.Logger.Level)
	}
	switch strings.ToLower(cfg.Logger.Format) {
	case "text", "json":
	default:
		ve.Add("logger.format %q is invalid (valid: text, json)", cfg.Logger.Format)
	}
	if cfg.Logger.Output == "" {
		ve.Add("logger.output must not be empty (use stdout, stderr, none, or a file path)")
	}
}

func validateTracer(cfg *Config, ve *ValidationError) {
	if !cfg.Tracer.Enabled {
		return
	}
	switch cfg.Tracer.Exporter {
	case "stdout", "noop", "":
	default:
		ve.Add("tracer.exporter %q is invalid (valid: stdout, noop)", cfg.Tracer.Exporter)
	}
}

func validateEditor(cfg *Config, ve *ValidationError) {
	if cfg.Editor.CursorRate < 0 {
		ve.Add("editor.cursor_rate must be >= 0")
	}
}

func validateKeys(cfg *Config, ve *ValidationError) {
	actions := []struct {
		name string
		keys []string
	}{
		{"finish", cfg.Keys.Finish},
		{"undo", cfg.Keys.Undo},
		{"redo", cfg.Keys.Redo},
		{"clear_cursor", cfg.Keys.ClearCursor},
		{"help", cfg.Keys.Help},
		{"quit", cfg.Keys.Quit},
	}

	owner := make(map[string]string)
	for _, a := range actions {
		if len(a.keys) == 0 {
			ve.Add("keys.%s must have at least one key", a.name)
			continue
		}
		for _, k := range a.keys {
			if strings.TrimSpace(k) == "" {
				ve.Add("keys.%s contains an empty key", a.name)
				continue
			}
			if prev, ok := owner[k]; ok {
				ve.Add("key %q is bound to both keys.%s and keys.%s", k, prev, a.name)
				continue
			}
			owner[k] = a.name
		}
	}
}
