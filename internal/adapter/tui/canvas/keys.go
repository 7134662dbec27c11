package canvas

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"polydraw/internal/infra/config"
)

// KeyMap binds editor actions to keys. It implements help.KeyMap.
type KeyMap struct {
	Finish      key.Binding
	Undo        key.Binding
	Redo        key.Binding
	ClearCursor key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// NewKeyMap builds bindings from the keys section of the config.
func NewKeyMap(cfg config.KeysConfig) KeyMap {
	return KeyMap{
		Finish:      binding(cfg.Finish, "finish shape"),
		Undo:        binding(cfg.Undo, "undo"),
		Redo:        binding(cfg.Redo, "redo"),
		ClearCursor: binding(cfg.ClearCursor, "hide cursor"),
		Help:        binding(cfg.Help, "more keys"),
		Quit:        binding(cfg.Quit, "quit"),
	}
}

func binding(keys []string, desc string) key.Binding {
	return key.NewBinding(
		key.WithKeys(keys...),
		key.WithHelp(strings.Join(keys, "/"), desc),
	)
}

// ShortHelp is shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Finish, k.Undo, k.Redo, k.Help, k.Quit}
}

// FullHelp is shown when help is expanded.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Finish, k.ClearCursor},
		{k.Undo, k.Redo},
		{k.Help, k.Quit},
	}
}

// isMouseEscapeLeak detects mouse escape sequences that reach the program as
// key input instead of tea.MouseMsg. Some terminals do this under heavy
// motion reporting. Covers SGR, X11 basic and URXVT formats.
func isMouseEscapeLeak(s string) bool {
	if len(s) >= 5 && s[0] == '<' && (s[len(s)-1] == 'M' || s[len(s)-1] == 'm') {
		return digitsAndSemicolons(s[1 : len(s)-1])
	}
	if len(s) >= 2 && s[0] == '[' && (s[1] == 'M' || s[1] == 'm') {
		return true
	}
	if len(s) >= 5 && s[0] == '[' && s[len(s)-1] == 'M' {
		return digitsAndSemicolons(s[1 : len(s)-1])
	}
	return false
}

func digitsAndSemicolons(s string) bool {
	for _, r := range s {
		if r != ';' && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
