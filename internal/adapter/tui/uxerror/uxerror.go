// Package uxerror translates raw errors into user-friendly messages with
// recovery hints for the command line.
package uxerror

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"polydraw/internal/adapter/tui/theme"
	"polydraw/internal/domain"
	"polydraw/internal/infra/config"
)

// FriendlyError is a user-facing error with suggestions for recovery.
type FriendlyError struct {
	Title   string   // short heading, e.g. "Invalid Event Script"
	Message string   // one-liner explanation
	Hints   []string // actionable recovery suggestions
	Raw     string   // original error text (for debug)
}

// Render formats the FriendlyError for stderr.
func (fe FriendlyError) Render() string {
	var sb strings.Builder
	sb.WriteString(fe.Title)
	if fe.Message != "" {
		sb.WriteString("\n  ")
		sb.WriteString(fe.Message)
	}
	if len(fe.Hints) > 0 {
		sb.WriteString("\n  Suggestions:")
		for _, h := range fe.Hints {
			sb.WriteString(fmt.Sprintf("\n    %s %s", theme.Symbols.Bullet, h))
		}
	}
	return sb.String()
}

type errorPattern struct {
	match   func(err error) bool
	produce func(err error) FriendlyError
}

var patterns = []errorPattern{
	// Sentinels first so errors.Is works through wrapping.
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrInvalidScript) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Invalid Event Script",
				Message: err.Error(),
				Hints: []string{
					"Every event needs a kind: add_point, cursor, finish, undo or redo",
					"add_point needs x, y and at (a duration such as 250ms)",
				},
				Raw: err.Error(),
			}
		},
	},
	{
		match: func(err error) bool {
			var ve *config.ValidationError
			return errors.As(err, &ve)
		},
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Invalid Configuration",
				Message: err.Error(),
				Hints:   []string{"Run 'polydraw doctor' to check every setting", "Remove the config file to use defaults"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match: matchAll(func(err error) bool { return errors.Is(err, domain.ErrConfigLoad) }, containsAny("insecure permissions")),
		produce: constantError("Config File Too Open", "The config file is writable by other users.", []string{"chmod 600 polydraw.yaml"}),
	},
	{
		match: func(err error) bool { return errors.Is(err, domain.ErrConfigLoad) },
		produce: func(err error) FriendlyError {
			return FriendlyError{
				Title:   "Config Not Loaded",
				Message: err.Error(),
				Hints:   []string{"Check the YAML syntax", "Pass another file with --config or POLYDRAW_CONFIG"},
				Raw:     err.Error(),
			}
		},
	},
	{
		match:   func(err error) bool { return errors.Is(err, os.ErrNotExist) },
		produce: constantError("File Not Found", "A file named on the command line does not exist.", []string{"Check the path and try again"}),
	},
	{
		match:   func(err error) bool { return errors.Is(err, context.Canceled) },
		produce: constantError("Interrupted", "The command was cancelled before it finished.", nil),
	},

	// Terminal problems surfaced by the editor.
	{
		match:   containsAny("/dev/tty", "inappropriate ioctl", "not a terminal"),
		produce: constantError("No Terminal", "The editor needs an interactive terminal.", []string{"Run polydraw directly in a terminal emulator", "Use 'polydraw replay' for scripted input"}),
	},
}

// Humanize converts a raw error into a FriendlyError with recovery hints.
func Humanize(err error) FriendlyError {
	if err == nil {
		return FriendlyError{Title: "Unknown Error", Raw: "nil"}
	}

	for _, p := range patterns {
		if p.match(err) {
			return p.produce(err)
		}
	}

	return FriendlyError{
		Title:   "Unexpected Error",
		Message: err.Error(),
		Hints:   []string{"Try again", "Set POLYDRAW_LOGGER_LEVEL=debug and POLYDRAW_LOGGER_OUTPUT to a file for details"},
		Raw:     err.Error(),
	}
}

// containsAny returns a match func that checks if the error string contains
// any of the given substrings (case-insensitive).
func containsAny(substrs ...string) func(error) bool {
	return func(err error) bool {
		lower := strings.ToLower(err.Error())
		for _, s := range substrs {
			if strings.Contains(lower, s) {
				return true
			}
		}
		return false
	}
}

func matchAll(fns ...func(error) bool) func(error) bool {
	return func(err error) bool {
		for _, fn := range fns {
			if !fn(err) {
				return false
			}
		}
		return true
	}
}

// constantError returns a produce func that always returns the same FriendlyError.
func constantError(title, message string, hints []string) func(error) FriendlyError {
	return func(err error) FriendlyError {
		return FriendlyError{
			Title:   title,
			Message: message,
			Hints:   hints,
			Raw:     err.Error(),
		}
	}
}
