package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatfront/internal/config"
	"github.com/diogo/chatfront/internal/render"
)

// feedbackClearMsg is sent to clear feedback messages
type feedbackClearMsg struct{}

// menuItem is one row of the settings menu. Items with choices open a
// picker; items without are boolean toggles.
type menuItem struct {
	label   string
	key     string
	choices func() []string
}

var menuItems = []menuItem{
	{label: "Copy to Clipboard", key: "copy_to_clipboard"},
	{label: "Emoji", key: "markdown.enable_emoji"},
	{label: "Markdown Theme", key: "markdown.style", choices: render.ThemeNames},
	{label: "Code Style", key: "markdown.code_style", choices: render.CodeStyleNames},
	{label: "TUI Theme", key: "tui_theme", choices: render.TUIThemeNames},
	{label: "Log Level", key: "log_level", choices: func() []string {
		return []string{"debug", "info", "warn", "error"}
	}},
}

// visibleChoices bounds the picker height
const visibleChoices = 10

// ConfigModel is the interactive settings menu
type ConfigModel struct {
	config     config.Config
	configPath string
	save       func(config.Config) error

	// Navigation; picking is -1 on the main menu
	cursor       int
	picking      int
	choiceCursor int

	// Feedback
	feedback        string
	feedbackTimeout time.Duration

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewConfigModel creates a settings menu for cfg. save persists every change.
func NewConfigModel(cfg config.Config, configPath string, save func(config.Config) error) ConfigModel {
	if save == nil {
		save = config.SaveConfig
	}
	return ConfigModel{
		config:          cfg,
		configPath:      configPath,
		save:            save,
		picking:         -1,
		feedbackTimeout: 2 * time.Second,
	}
}

// Config returns the settings as edited so far
func (m ConfigModel) Config() config.Config {
	return m.config
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

// clearFeedback returns a command that clears the feedback message after a delay
func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc", "q":
			if m.picking >= 0 {
				m.picking = -1
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			m.move(-1)

		case "down", "j":
			m.move(1)

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

// move steps the active cursor, wrapping at both ends. The main menu has
// one extra row for Exit.
func (m *ConfigModel) move(delta int) {
	if m.picking >= 0 {
		n := len(menuItems[m.picking].choices())
		m.choiceCursor = (m.choiceCursor + delta + n) % n
		return
	}
	n := len(menuItems) + 1
	m.cursor = (m.cursor + delta + n) % n
}

// handleSelect handles menu item selection
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	if m.picking >= 0 {
		item := menuItems[m.picking]
		m.picking = -1
		return m.apply(item, item.choices()[m.choiceCursor])
	}

	if m.cursor == len(menuItems) {
		return m, tea.Quit
	}

	item := menuItems[m.cursor]
	current, _ := config.Get(m.config, item.key)

	if item.choices == nil {
		b, _ := strconv.ParseBool(current)
		return m.apply(item, strconv.FormatBool(!b))
	}

	m.picking = m.cursor
	m.choiceCursor = 0
	for i, c := range item.choices() {
		if c == current {
			m.choiceCursor = i
			break
		}
	}
	return m, nil
}

// apply sets key to value, saves, and reports the outcome
func (m ConfigModel) apply(item menuItem, value string) (tea.Model, tea.Cmd) {
	updated := m.config
	if err := config.Set(&updated, item.key, value); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
		return m, clearFeedback(m.feedbackTimeout)
	}
	if err := m.save(updated); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
		return m, clearFeedback(m.feedbackTimeout)
	}
	m.config = updated

	if item.key == "tui_theme" {
		// Apply the new TUI theme immediately
		render.SetTUITheme(value)
		UpdateTheme()
	}

	m.feedback = fmt.Sprintf("%s set to %s", item.label, displayValue(value))
	return m, clearFeedback(m.feedbackTimeout)
}

func displayValue(v string) string {
	switch v {
	case "true":
		return "enabled"
	case "false":
		return "disabled"
	}
	return v
}

// View renders the TUI
func (m ConfigModel) View() string {
	if !m.ready {
		return st.loading.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections = append(sections, st.header.Width(contentWidth).Render(st.title.Render("✦ Configuration")))

	pathsContent := lipgloss.JoinVertical(lipgloss.Left,
		st.assistantLabel.Render("Paths"),
		fmt.Sprintf("   Config:   %s", st.subtitle.Render(m.configPath)),
		fmt.Sprintf("   Endpoint: %s", st.subtitle.Render(m.config.Endpoint)),
	)
	sections = append(sections, st.messagesArea.Width(contentWidth).Render(pathsContent))

	var settingsContent string
	if m.picking >= 0 {
		settingsContent = m.renderPicker()
	} else {
		settingsContent = m.renderMainMenu()
	}
	sections = append(sections, st.messagesArea.Width(contentWidth).Render(settingsContent))

	if m.feedback != "" {
		style := st.notice
		if strings.HasPrefix(m.feedback, "Error") {
			style = st.errText
		}
		sections = append(sections, style.Render("  "+m.feedback))
	}

	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderMainMenu renders the main settings menu
func (m ConfigModel) renderMainMenu() string {
	width := 0
	for _, item := range menuItems {
		if len(item.label) > width {
			width = len(item.label)
		}
	}

	items := []string{st.assistantLabel.Render("Settings"), ""}
	for i, item := range menuItems {
		value, _ := config.Get(m.config, item.key)
		var rendered string
		if item.choices == nil {
			b, _ := strconv.ParseBool(value)
			rendered = renderBoolValue(b)
		} else {
			rendered = st.subtitle.Render(value)
		}
		label := item.label + strings.Repeat(" ", width-len(item.label)+3)
		items = append(items, m.cursorPrefix(m.cursor == i)+rowStyle(m.cursor == i).Render(label)+rendered)
	}

	items = append(items, "", m.cursorPrefix(m.cursor == len(menuItems))+rowStyle(m.cursor == len(menuItems)).Render("Exit"))
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

// renderPicker renders the choice list for the item being edited, windowed
// around the cursor
func (m ConfigModel) renderPicker() string {
	item := menuItems[m.picking]
	choices := item.choices()
	current, _ := config.Get(m.config, item.key)

	start := 0
	if m.choiceCursor >= visibleChoices {
		start = m.choiceCursor - visibleChoices + 1
	}
	end := start + visibleChoices
	if end > len(choices) {
		end = len(choices)
	}

	items := []string{st.assistantLabel.Render("Select " + item.label), ""}
	for i := start; i < end; i++ {
		line := m.cursorPrefix(m.choiceCursor == i) + rowStyle(m.choiceCursor == i).Render(choices[i])
		if choices[i] == current {
			line += st.userLabel.UnsetMarginLeft().Render(" (current)")
		}
		items = append(items, line)
	}
	if len(choices) > visibleChoices {
		items = append(items, st.hint.Render(fmt.Sprintf("  %d/%d", m.choiceCursor+1, len(choices))))
	}
	return lipgloss.JoinVertical(lipgloss.Left, items...)
}

func (m ConfigModel) cursorPrefix(selected bool) string {
	if selected {
		return st.loading.Render("▸ ")
	}
	return "  "
}

func rowStyle(selected bool) lipgloss.Style {
	if selected {
		return st.title
	}
	return lipgloss.NewStyle().Foreground(theme.Text)
}

// renderBoolValue renders a boolean value with appropriate styling
func renderBoolValue(value bool) string {
	if value {
		return st.userLabel.UnsetMarginLeft().Render("enabled")
	}
	return st.hint.Render("disabled")
}

// renderStatusBar renders the bottom status bar
func (m ConfigModel) renderStatusBar(width int) string {
	back := "Exit"
	if m.picking >= 0 {
		back = "Back"
	}
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"↑↓", "Navigate"},
		{"Enter", "Select"},
		{"Esc", back},
	}

	var items []string
	for _, s := range shortcuts {
		item := lipgloss.JoinHorizontal(
			lipgloss.Center,
			st.statusKey.Render(s.key),
			st.statusDesc.Render(" "+s.desc),
		)
		items = append(items, item)
	}

	bar := lipgloss.JoinHorizontal(lipgloss.Center, strings.Join(items, "  │  "))
	return st.statusBar.Width(width).Align(lipgloss.Center).Render(bar)
}

// RunConfig starts the settings menu
func RunConfig(cfg config.Config, configPath string) error {
	m := NewConfigModel(cfg, configPath, config.SaveConfig)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
