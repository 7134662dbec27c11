package theme

import (
	"os"
	"strings"
)

// SymbolSet holds the canvas glyphs, allowing runtime switching between
// Unicode and ASCII fallback sets.
type SymbolSet struct {
	Vertex   rune
	Active   rune // most recent vertex of the polygon being drawn
	Edge     rune
	Rubber   rune
	Cursor   rune
	Arrow    string
	Bullet   string
	Ellipsis string
}

var unicodeSymbols = SymbolSet{
	Vertex:   '\u25CF', // ●
	Active:   '\u25C6', // ◆
	Edge:     '\u2022', // •
	Rubber:   '\u00B7', // ·
	Cursor:   '\u271B', // ✛
	Arrow:    "\u2192", // →
	Bullet:   "\u2022", // •
	Ellipsis: "\u2026", // …
}

var asciiSymbols = SymbolSet{
	Vertex:   'o',
	Active:   '@',
	Edge:     '*',
	Rubber:   '.',
	Cursor:   '+',
	Arrow:    "->",
	Bullet:   "*",
	Ellipsis: "...",
}

// Symbols is the active set, chosen by InitSymbols.
var Symbols = unicodeSymbols

// DetectUnicodeSupport checks whether the terminal likely supports Unicode.
// A locale that names a non-UTF-8 charset turns it off; anything else,
// including no locale at all, keeps Unicode.
func DetectUnicodeSupport() bool {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		val := strings.ToLower(os.Getenv(key))
		if val == "" {
			continue
		}
		return strings.Contains(val, "utf-8") || strings.Contains(val, "utf8")
	}
	return true
}

// InitSymbols selects the glyph set. forceASCII comes from the editor
// config; otherwise the locale decides.
func InitSymbols(forceASCII bool) {
	if forceASCII || !DetectUnicodeSupport() {
		Symbols = asciiSymbols
		return
	}
	Symbols = unicodeSymbols
}
