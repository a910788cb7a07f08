package render

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"
)

// Highlight applies chroma syntax highlighting to code. The language may be
// empty, in which case it is guessed from the content. Returns the input
// unchanged if highlighting fails.
func Highlight(code, language, style string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	s := chromaStyles.Get(style)
	if s == nil {
		s = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, s, iterator); err != nil {
		return code
	}
	return buf.String()
}

// DetectLanguage guesses the language of code, or returns "".
func DetectLanguage(code string) string {
	if lexer := lexers.Analyse(code); lexer != nil {
		return lexer.Config().Name
	}
	return ""
}

var (
	codeLabelStyle = lipgloss.NewStyle().Faint(true).PaddingLeft(2)
	codeBodyStyle  = lipgloss.NewStyle().PaddingLeft(2)
)

// renderCodeBlock highlights one fenced region and indents it to sit with
// glamour's prose margins.
func renderCodeBlock(b block, opts Options) string {
	code := strings.TrimRight(b.text, "\n")
	if code == "" {
		return ""
	}

	highlighted := strings.TrimRight(Highlight(code, b.lang, opts.CodeStyle), "\n")

	var sb strings.Builder
	if b.lang != "" {
		sb.WriteString(codeLabelStyle.Render(b.lang))
		sb.WriteString("\n")
	}
	sb.WriteString(codeBodyStyle.Render(highlighted))
	return sb.String()
}
