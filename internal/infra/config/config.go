package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"polydraw/internal/domain"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "polydraw.yaml"

// Config is the top-level application configuration.
type Config struct {
	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
	Editor EditorConfig `yaml:"editor"`
	Keys   KeysConfig   `yaml:"keys"`
}

// LoggerConfig holds logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"` // stdout, stderr, none, or a file path
}

// TracerConfig holds tracing settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Output   string `yaml:"output"` // file for the stdout exporter; empty means stdout
}

// EditorConfig holds terminal host settings.
// AllMotion reports pointer movement even when no button is held; some
// terminals only support motion with a button pressed. CursorRate caps
// cursor updates per second, 0 disables throttling.
type EditorConfig struct {
	AltScreen    bool    `yaml:"alt_screen"`
	AllMotion    bool    `yaml:"all_motion"`
	CursorRate   float64 `yaml:"cursor_rate"`
	ASCIISymbols bool    `yaml:"ascii_symbols"`
}

// KeysConfig maps editor actions to key names as reported by Bubble Tea
// (e.g. "ctrl+z", "enter", "u").
type KeysConfig struct {
	Finish      []string `yaml:"finish"`
	Undo        []string `yaml:"undo"`
	Redo        []string `yaml:"redo"`
	ClearCursor []string `yaml:"clear_cursor"`
	Help        []string `yaml:"help"`
	Quit        []string `yaml:"quit"`
}

// Defaults returns a Config with sensible defaults.
func Defaults() *Config {
	return &Config{
		Logger: LoggerConfig{
			Level:  "info",
			Format: "text",
			Output: "none",
		},
		Tracer: TracerConfig{
			Enabled:  false,
			Exporter: "noop",
		},
		Editor: EditorConfig{
			AltScreen:  true,
			AllMotion:  true,
			CursorRate: 30,
		},
		Keys: KeysConfig{
			Finish:      []string{"enter", "f"},
			Undo:        []string{"u", "ctrl+z"},
			Redo:        []string{"r", "ctrl+y"},
			ClearCursor: []string{"esc"},
			Help:        []string{"?"},
			Quit:        []string{"q", "ctrl+c"},
		},
	}
}

// Load reads a YAML config file and applies env var overrides. A missing
// file is not an error: defaults are used.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			ApplyEnvOverrides(cfg)
			if err := Validate(cfg); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrConfigLoad, path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	if err := validatePermissions(absPath); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrConfigLoad, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", domain.ErrConfigLoad, path, err)
	}

	ApplyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyEnvOverrides maps POLYDRAW_* env vars to config fields.
func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("POLYDRAW_LOGGER_LEVEL"); v != "" {
		cfg.Logger.Level = v
	}
	if v := os.Getenv("POLYDRAW_LOGGER_FORMAT"); v != "" {
		cfg.Logger.Format = v
	}
	if v := os.Getenv("POLYDRAW_LOGGER_OUTPUT"); v != "" {
		cfg.Logger.Output = v
	}
	if v := os.Getenv("POLYDRAW_TRACER_ENABLED"); v == "true" {
		cfg.Tracer.Enabled = true
	}
	if v := os.Getenv("POLYDRAW_TRACER_EXPORTER"); v != "" {
		cfg.Tracer.Exporter = v
	}
	if v := os.Getenv("POLYDRAW_TRACER_OUTPUT"); v != "" {
		cfg.Tracer.Output = v
	}
	if v := os.Getenv("POLYDRAW_EDITOR_ALT_SCREEN"); v == "false" {
		cfg.Editor.AltScreen = false
	}
	if v := os.Getenv("POLYDRAW_EDITOR_CURSOR_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.Editor.CursorRate = f
		}
	}
	if v := os.Getenv("POLYDRAW_ASCII_SYMBOLS"); v == "1" || strings.EqualFold(v, "true") {
		cfg.Editor.ASCIISymbols = true
	}
}

// validatePermissions checks the config file has restrictive permissions.
func validatePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat config: %w", err)
	}
	mode := info.Mode().Perm()
	// Others may read but never write.
	if mode&0o022 != 0 {
		return fmt.Errorf("config file %s has insecure permissions %o (want 0600 or 0644)", path, mode)
	}
	return nil
}
