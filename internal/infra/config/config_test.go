package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"polydraw/internal/domain"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "info")
	}
	if cfg.Logger.Output != "none" {
		t.Errorf("Logger.Output = %q, want %q", cfg.Logger.Output, "none")
	}
	if !cfg.Editor.AltScreen {
		t.Error("Editor.AltScreen should default to true")
	}
	if cfg.Editor.CursorRate != 30 {
		t.Errorf("Editor.CursorRate = %v, want 30", cfg.Editor.CursorRate)
	}
	if len(cfg.Keys.Undo) == 0 || cfg.Keys.Undo[0] != "u" {
		t.Errorf("Keys.Undo = %v", cfg.Keys.Undo)
	}
}

func TestLoadNonExistentReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tracer.Exporter != "noop" {
		t.Errorf("expected defaults, got Tracer.Exporter=%q", cfg.Tracer.Exporter)
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "polydraw.yaml")
	content := `
logger:
  level: "debug"
  format: "json"
  output: "stderr"
editor:
  alt_screen: false
  cursor_rate: 0
keys:
  undo: ["z"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Logger.Level != "debug" || cfg.Logger.Format != "json" {
		t.Errorf("Logger = %+v", cfg.Logger)
	}
	if cfg.Editor.AltScreen {
		t.Error("AltScreen should be false")
	}
	if cfg.Editor.CursorRate != 0 {
		t.Errorf("CursorRate = %v, want 0", cfg.Editor.CursorRate)
	}
	if len(cfg.Keys.Undo) != 1 || cfg.Keys.Undo[0] != "z" {
		t.Errorf("Keys.Undo = %v, want [z]", cfg.Keys.Undo)
	}
	if len(cfg.Keys.Redo) != 2 {
		t.Errorf("Keys.Redo should keep defaults, got %v", cfg.Keys.Redo)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("logger: [unclosed"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.Is(err, domain.ErrConfigLoad) {
		t.Errorf("err = %v, want ErrConfigLoad", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "polydraw.yaml")
	if err := os.WriteFile(path, []byte("logger:\n  format: xml\n"), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("err = %T, want *ValidationError", err)
	}
}

func TestLoadPermissions(t *testing.T) {
	tests := []struct {
		mode    os.FileMode
		wantErr bool
	}{
		{0600, false},
		{0644, false},
		{0640, false},
		{0400, false},
		{0666, true},
		{0622, true},
		{0602, true},
		{0620, true},
		{0660, true},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "polydraw.yaml")
			if err := os.WriteFile(path, []byte("logger:\n  level: info\n"), 0600); err != nil {
				t.Fatal(err)
			}
			if err := os.Chmod(path, tt.mode); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("mode %o: expected permission error", tt.mode)
				}
				if !errors.Is(err, domain.ErrConfigLoad) {
					t.Errorf("mode %o: err = %v, want ErrConfigLoad", tt.mode, err)
				}
				return
			}
			if err != nil {
				t.Errorf("mode %o: Load: %v", tt.mode, err)
			}
		})
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("POLYDRAW_LOGGER_LEVEL", "debug")
	t.Setenv("POLYDRAW_LOGGER_OUTPUT", "stderr")
	t.Setenv("POLYDRAW_TRACER_ENABLED", "true")
	t.Setenv("POLYDRAW_TRACER_EXPORTER", "stdout")
	t.Setenv("POLYDRAW_EDITOR_ALT_SCREEN", "false")
	t.Setenv("POLYDRAW_EDITOR_CURSOR_RATE", "12.5")
	t.Setenv("POLYDRAW_ASCII_SYMBOLS", "1")

	cfg := Defaults()
	ApplyEnvOverrides(cfg)

	if cfg.Logger.Level != "debug" || cfg.Logger.Output != "stderr" {
		t.Errorf("Logger = %+v", cfg.Logger)
	}
	if !cfg.Tracer.Enabled || cfg.Tracer.Exporter != "stdout" {
		t.Errorf("Tracer = %+v", cfg.Tracer)
	}
	if cfg.Editor.AltScreen {
		t.Error("AltScreen should be false")
	}
	if cfg.Editor.CursorRate != 12.5 {
		t.Errorf("CursorRate = %v, want 12.5", cfg.Editor.CursorRate)
	}
	if !cfg.Editor.ASCIISymbols {
		t.Error("ASCIISymbols should be true")
	}
}

func TestEnvOverridesIgnoresBadCursorRate(t *testing.T) {
	t.Setenv("POLYDRAW_EDITOR_CURSOR_RATE", "-3")
	cfg := Defaults()
	ApplyEnvOverrides(cfg)
	if cfg.Editor.CursorRate != 30 {
		t.Errorf("CursorRate = %v, want default 30", cfg.Editor.CursorRate)
	}
}
