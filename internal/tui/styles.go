// Package tui provides the terminal user interface for chatfront.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatfront/internal/errors"
	"github.com/diogo/chatfront/internal/render"
)

// styleSet holds every style the chat and config views draw with. It is
// rebuilt from the active theme by UpdateTheme.
type styleSet struct {
	header   lipgloss.Style
	title    lipgloss.Style
	subtitle lipgloss.Style
	hint     lipgloss.Style

	messagesArea lipgloss.Style

	userBubble      lipgloss.Style
	userLabel       lipgloss.Style
	assistantBubble lipgloss.Style
	assistantLabel  lipgloss.Style
	errorBubble     lipgloss.Style

	// pending placeholder and its countdown line
	pending   lipgloss.Style
	countdown lipgloss.Style

	inputPanel lipgloss.Style
	inputLabel lipgloss.Style
	loading    lipgloss.Style
	mic        lipgloss.Style

	statusBar  lipgloss.Style
	statusKey  lipgloss.Style
	statusDesc lipgloss.Style
	notice     lipgloss.Style
	errText    lipgloss.Style

	welcome      lipgloss.Style
	welcomeTitle lipgloss.Style
	welcomeIcon  lipgloss.Style
}

var (
	theme render.TUITheme
	st    styleSet
)

func init() {
	UpdateTheme()
}

// UpdateTheme rebuilds the styles from the current TUI theme
func UpdateTheme() {
	theme = render.GetTUITheme()
	st = newStyleSet(theme)
}

func bordered(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c)
}

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

func newStyleSet(t render.TUITheme) styleSet {
	return styleSet{
		header:   bordered(t.Border).Padding(0, 2).MarginBottom(1),
		title:    fg(t.Primary).Bold(true),
		subtitle: fg(t.TextDim),
		hint:     fg(t.TextMute).Italic(true),

		messagesArea: bordered(t.Border).Padding(1),

		userBubble:      bordered(t.Secondary).Padding(0, 1).MarginLeft(4),
		userLabel:       fg(t.Secondary).Bold(true).MarginLeft(4),
		assistantBubble: bordered(t.Primary).Foreground(t.Text).Padding(0, 1).MarginRight(4),
		assistantLabel:  fg(t.Primary).Bold(true),
		errorBubble:     bordered(t.Error).Padding(0, 1).MarginRight(4),

		pending:   bordered(t.TextDim).Padding(0, 1).MarginRight(4),
		countdown: fg(t.Warning).Italic(true),

		inputPanel: bordered(t.Border).Padding(0, 1).MarginTop(1),
		inputLabel: fg(t.Primary).Bold(true).MarginRight(1),
		loading:    fg(t.Accent).Bold(true),
		mic:        fg(t.Error).Bold(true),

		statusBar:  fg(t.TextMute).MarginTop(1),
		statusKey:  fg(t.TextDim).Bold(true),
		statusDesc: fg(t.TextMute),
		notice:     fg(t.Accent).Italic(true),
		errText:    fg(t.Error).Bold(true),

		welcome:      fg(t.TextDim).Align(lipgloss.Center),
		welcomeTitle: fg(t.Primary).Bold(true).Align(lipgloss.Center),
		welcomeIcon:  fg(t.Accent).Align(lipgloss.Center),
	}
}

// FormatError renders err for the terminal with whatever context the
// structured error types carry.
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	dim := fg(theme.TextDim)
	lines := []string{fg(theme.Error).Render("✗ " + render.Literal(errors.UserMessage(err)))}

	if status := errors.GetHTTPStatus(err); status > 0 {
		lines = append(lines, dim.Render(fmt.Sprintf("  HTTP Status: %d", status)))
	}
	if endpoint := errors.GetEndpoint(err); endpoint != "" {
		lines = append(lines, dim.Render("  Endpoint: "+endpoint))
	}

	var hint string
	switch {
	case errors.IsRateLimitError(err):
		hint = "The service is throttling requests. Wait a little and try again"
	case errors.IsNetworkError(err):
		hint = "Check that the chat service is running and the endpoint is correct"
	case errors.IsParseError(err):
		hint = "The service answered with an unexpected body"
	}
	if hint != "" {
		lines = append(lines, dim.Render("  Hint: "+hint))
	}

	return strings.Join(lines, "\n")
}
