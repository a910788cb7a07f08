package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// Literal returns s with every terminal escape and control sequence
// removed, so text from a remote party cannot restyle or drive the
// terminal. Newlines and tabs survive.
func Literal(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}
