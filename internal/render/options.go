// Package render turns reply text into terminal markup.
package render

// Options configures reply rendering.
type Options struct {
	// Width is the wrap column for prose and code regions.
	Width int
	// Style is a glamour style name or a path to a JSON style file.
	Style string
	// CodeStyle is the chroma style used for fenced code regions.
	CodeStyle string

	EnableEmoji      bool
	PreserveNewLines bool
	TableWrap        bool
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Width:            80,
		Style:            StyleDark,
		CodeStyle:        "monokai",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// WithWidth returns a copy of o wrapping at width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns a copy of o using the glamour style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithCodeStyle returns a copy of o using the chroma style for code.
func (o Options) WithCodeStyle(style string) Options {
	o.CodeStyle = style
	return o
}

// normalized fills the zero values a caller may leave behind
func (o Options) normalized() Options {
	def := DefaultOptions()
	if o.Width <= 0 {
		o.Width = def.Width
	}
	if o.Style == "" {
		o.Style = def.Style
	}
	if o.CodeStyle == "" {
		o.CodeStyle = def.CodeStyle
	}
	return o
}
