package render

import (
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
)

// Glamour built-in style names
const (
	StyleDark       = "dark"
	StyleLight      = "light"
	StyleDracula    = "dracula"
	StyleTokyoNight = "tokyo-night"
	StylePink       = "pink"
	StyleNoTTY      = "notty"
	StyleASCII      = "ascii"
)

// ThemeInfo contains information about a theme for display purposes.
type ThemeInfo struct {
	Name        string
	Description string
}

// AvailableThemes returns the markdown styles glamour ships with.
func AvailableThemes() []ThemeInfo {
	return []ThemeInfo{
		{Name: StyleDark, Description: "Dark theme (default)"},
		{Name: StyleLight, Description: "Light theme for bright terminals"},
		{Name: StyleDracula, Description: "Dracula color scheme"},
		{Name: StyleTokyoNight, Description: "Tokyo Night color scheme"},
		{Name: StylePink, Description: "Pink accents"},
		{Name: StyleNoTTY, Description: "Plain text (no styling)"},
		{Name: StyleASCII, Description: "ASCII-only output"},
	}
}

// IsBuiltinStyle returns true if style names one of glamour's styles.
// Anything else is treated as a path to a JSON style file.
func IsBuiltinStyle(style string) bool {
	for _, t := range AvailableThemes() {
		if t.Name == style {
			return true
		}
	}
	return false
}

// ThemeNames returns just the theme names for selection.
func ThemeNames() []string {
	themes := AvailableThemes()
	names := make([]string, len(themes))
	for i, t := range themes {
		names[i] = t.Name
	}
	return names
}

// IsCodeStyle reports whether chroma knows the named style.
func IsCodeStyle(name string) bool {
	_, ok := chromaStyles.Registry[name]
	return ok
}

// CodeStyleNames returns every chroma style name.
func CodeStyleNames() []string {
	return chromaStyles.Names()
}
