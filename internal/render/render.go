package render

import (
	"strings"
	"sync"
)

// Renderer converts reply text to display markup.
type Renderer interface {
	Render(text string) (string, error)
}

// RendererFunc adapts a plain function to Renderer.
type RendererFunc func(text string) (string, error)

// Render calls f(text).
func (f RendererFunc) Render(text string) (string, error) {
	return f(text)
}

// TermRenderer is the terminal Renderer: glamour for prose plus a chroma
// pass over fenced code regions.
type TermRenderer struct {
	mu   sync.RWMutex
	opts Options
}

// NewTermRenderer creates a TermRenderer with opts.
func NewTermRenderer(opts Options) *TermRenderer {
	return &TermRenderer{opts: opts}
}

// Options returns the current options.
func (r *TermRenderer) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts
}

// SetWidth changes the wrap width used by later renders.
func (r *TermRenderer) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	r.mu.Lock()
	r.opts.Width = width
	r.mu.Unlock()
}

// Render implements Renderer.
func (r *TermRenderer) Render(text string) (string, error) {
	return Reply(text, r.Options())
}

// Markdown renders markdown content for terminal display with a pooled
// glamour renderer.
func Markdown(content string, opts Options) (string, error) {
	opts = opts.normalized()
	r, err := pools.acquire(opts)
	if err != nil {
		return "", err
	}
	defer pools.release(opts, r)

	return r.Render(content)
}

// Reply renders a full assistant reply. Prose regions go through glamour;
// fenced code regions are re-highlighted with chroma afterwards.
func Reply(content string, opts Options) (string, error) {
	opts = opts.normalized()
	blocks := splitFences(content)

	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.code {
			if out := renderCodeBlock(b, opts); out != "" {
				parts = append(parts, out)
			}
			continue
		}
		if strings.TrimSpace(b.text) == "" {
			continue
		}
		out, err := Markdown(b.text, opts)
		if err != nil {
			return "", err
		}
		parts = append(parts, strings.Trim(out, "\n"))
	}

	return strings.Join(parts, "\n\n"), nil
}

// block is a contiguous prose or fenced-code region of a reply.
type block struct {
	code bool
	lang string
	text string
}

// splitFences cuts markdown into prose and fenced code regions. A fence is
// three or more backticks or tildes indented at most three spaces; an
// unclosed fence runs to the end of the input.
func splitFences(content string) []block {
	var (
		blocks    []block
		cur       strings.Builder
		inCode    bool
		fenceChar byte
		fenceLen  int
		lang      string
	)

	flush := func(code bool) {
		if cur.Len() == 0 && !code {
			return
		}
		blocks = append(blocks, block{code: code, lang: lang, text: cur.String()})
		cur.Reset()
	}

	for _, line := range strings.SplitAfter(content, "\n") {
		trimmed := strings.TrimRight(line, "\r\n")
		ch, n, info, ok := parseFence(trimmed)

		switch {
		case !inCode && ok:
			flush(false)
			inCode, fenceChar, fenceLen = true, ch, n
			if fields := strings.Fields(info); len(fields) > 0 {
				lang = fields[0]
			}
		case inCode && ok && ch == fenceChar && n >= fenceLen && info == "":
			flush(true)
			inCode, lang = false, ""
		default:
			cur.WriteString(line)
		}
	}

	flush(inCode)
	return blocks
}

// parseFence reports whether line opens or closes a code fence.
func parseFence(line string) (ch byte, n int, info string, ok bool) {
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return 0, 0, "", false
	}
	rest := line[indent:]
	if len(rest) < 3 || (rest[0] != '`' && rest[0] != '~') {
		return 0, 0, "", false
	}
	ch = rest[0]
	for n < len(rest) && rest[n] == ch {
		n++
	}
	if n < 3 {
		return 0, 0, "", false
	}
	info = strings.TrimSpace(rest[n:])
	if ch == '`' && strings.Contains(info, "`") {
		return 0, 0, "", false
	}
	return ch, n, info, true
}
