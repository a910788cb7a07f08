package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatfront/internal/dispatch"
	"github.com/diogo/chatfront/internal/input"
	"github.com/diogo/chatfront/internal/models"
	"github.com/diogo/chatfront/internal/render"
	"github.com/diogo/chatfront/internal/transcript"
	"github.com/diogo/chatfront/internal/voice"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI. Store, buffer and voice messages carry no
// payload: the model re-reads the current state when it receives them.
type (
	storeChangedMsg  struct{}
	bufferChangedMsg struct{}
	voiceChangedMsg  struct{}
	settledMsg       struct {
		result dispatch.Result
		err    error
	}
	voiceToggledMsg struct {
		err error
	}
	clipboardMsg struct {
		err error
	}
)

var scrollKeys = map[string]bool{"pgup": true, "pgdown": true}

// Dispatcher sends one message through the retry loop
type Dispatcher interface {
	Send(ctx context.Context, text string) (dispatch.Result, error)
}

// Deps are the components the chat model observes and drives
type Deps struct {
	Store      *transcript.Store
	Buffer     *input.Buffer
	Dispatcher Dispatcher
	Voice      *voice.Adapter // nil hides the voice control
	Renderer   *render.TermRenderer
	Endpoint   string

	// Copy writes text to the system clipboard. Defaults to clipboard.WriteAll.
	Copy func(text string) error
	// AutoCopy copies every successful reply.
	AutoCopy bool
}

// Model represents the TUI state
type Model struct {
	ctx    context.Context
	cancel context.CancelFunc
	deps   Deps

	// UI components
	viewport viewport.Model
	textarea textarea.Model

	// State
	messages       []models.Message
	busy           bool
	ready          bool
	err            error
	notice         string
	animationFrame int

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(ctx context.Context, deps Deps) Model {
	if deps.Copy == nil {
		deps.Copy = clipboard.WriteAll
	}
	if deps.Store == nil {
		deps.Store = transcript.NewStore()
	}
	if deps.Buffer == nil {
		deps.Buffer = input.NewBuffer(nil)
	}
	ctx, cancel := context.WithCancel(ctx)

	// Create textarea for input
	ta := textarea.New()
	ta.Placeholder = deps.Voice.Status()
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	// Style the textarea
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(theme.Text)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(theme.TextDim)
	ta.BlurredStyle = ta.FocusedStyle

	// Enter sends; alt+enter and ctrl+j insert a newline
	ta.KeyMap.InsertNewline.SetKeys("alt+enter", "ctrl+j")

	return Model{
		ctx:      ctx,
		cancel:   cancel,
		deps:     deps,
		textarea: ta,
		messages: deps.Store.Messages(),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		// Calculate component heights
		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		// Initialize viewport on first size message
		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		if m.deps.Renderer != nil {
			// Bubble borders and padding take 10 columns
			m.deps.Renderer.SetWidth(contentWidth - 10)
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.cancel()
			return m, tea.Quit

		case "enter":
			return m.submit()

		case "ctrl+t":
			if m.deps.Voice.Available() {
				return m, m.toggleVoice()
			}
			return m, nil

		case "ctrl+y":
			return m, m.copyLastReply()
		}

		// Only KeyMsg reaches the textarea to prevent escape sequence leaks
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
		if m.textarea.Value() != m.deps.Buffer.Text() {
			m.deps.Buffer.SetText(m.textarea.Value())
		}
		m.notice = ""

	case storeChangedMsg:
		m.messages = m.deps.Store.Messages()
		m.updateViewport()
		m.viewport.GotoBottom()

	case bufferChangedMsg:
		// Voice results land in the buffer; mirror them into the textarea
		if text := m.deps.Buffer.Text(); text != m.textarea.Value() {
			m.textarea.SetValue(text)
		}

	case voiceChangedMsg:
		m.textarea.Placeholder = m.deps.Voice.Status()

	case voiceToggledMsg:
		m.textarea.Placeholder = m.deps.Voice.Status()
		if msg.err != nil {
			m.notice = "Voice: " + msg.err.Error()
		}

	case settledMsg:
		m.busy = false
		m.err = msg.err
		m.messages = m.deps.Store.Messages()
		m.updateViewport()
		m.viewport.GotoBottom()
		m.textarea.Focus()
		if msg.err == nil && msg.result.OK() && m.deps.AutoCopy {
			cmds = append(cmds, m.copyText(msg.result.Reply.Content))
		}

	case clipboardMsg:
		if msg.err != nil {
			m.notice = "Copy failed: " + msg.err.Error()
		} else {
			m.notice = "Reply copied to clipboard"
		}

	case animationTickMsg:
		if m.busy {
			m.animationFrame++
			m.updateViewport()
			cmds = append(cmds, animationTick())
		}
	}

	// Letters belong to the textarea; only page keys scroll the transcript
	if k, ok := msg.(tea.KeyMsg); !ok || scrollKeys[k.String()] {
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// submit takes the buffer contents and starts a dispatch
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.busy || !m.deps.Buffer.IsSubmissionAllowed() {
		return m, nil
	}

	// Check for exit commands
	switch strings.TrimSpace(m.deps.Buffer.Text()) {
	case "exit", "quit", "/exit", "/quit":
		m.cancel()
		return m, tea.Quit
	}

	text := m.deps.Buffer.Take()
	if text == "" {
		return m, nil
	}

	m.busy = true
	m.err = nil
	m.notice = ""
	m.animationFrame = 0
	m.textarea.Reset()

	return m, tea.Batch(m.send(text), animationTick())
}

// send creates a command that runs one dispatch to completion
func (m Model) send(text string) tea.Cmd {
	ctx := m.ctx
	d := m.deps.Dispatcher
	return func() tea.Msg {
		res, err := d.Send(ctx, text)
		return settledMsg{result: res, err: err}
	}
}

func (m Model) toggleVoice() tea.Cmd {
	v := m.deps.Voice
	return func() tea.Msg {
		return voiceToggledMsg{err: v.Toggle()}
	}
}

func (m Model) copyLastReply() tea.Cmd {
	reply, ok := m.deps.Store.LastReply()
	if !ok {
		return nil
	}
	return m.copyText(reply.Content)
}

func (m Model) copyText(text string) tea.Cmd {
	copyFn := m.deps.Copy
	return func() tea.Msg {
		return clipboardMsg{err: copyFn(text)}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return st.loading.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{
		st.title.Render("✦ chatfront"),
		st.hint.Render("  •  "),
		st.subtitle.Render(m.deps.Endpoint),
	}
	if m.deps.Voice.Listening() {
		headerParts = append(headerParts,
			st.hint.Render("  •  "),
			st.mic.Render("● REC"),
		)
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, st.header.Width(contentWidth).Render(headerContent))

	// Messages area
	var messagesContent string
	if len(m.messages) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := st.messagesArea.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent)
	sections = append(sections, messagesPanel)

	// Input area stays editable while a reply is in flight
	label := st.inputLabel.Render("You")
	if m.deps.Voice.Listening() {
		label += st.mic.Render("🎙")
	}
	inputContent := lipgloss.JoinVertical(lipgloss.Left, label, m.textarea.View())
	sections = append(sections, st.inputPanel.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, st.notice.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	icon := st.welcomeIcon.Width(width).Render("✦")
	title := st.welcomeTitle.Width(width).Render("Welcome to chatfront")
	subtitle := st.welcome.Width(width).Render("Start a conversation by typing a message below")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		icon,
		"",
		title,
		"",
		subtitle,
		"",
	)

	// Center vertically
	contentHeight := lipgloss.Height(content)
	topPadding := (height - contentHeight) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderLoadingAnimation renders a colorful animated indicator for the
// pending reply, followed by its status line if any
func (m Model) renderLoadingAnimation(status string) string {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	frame := m.animationFrame

	spinColor := render.Gradient[frame%len(render.Gradient)]
	spin := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[frame%len(chars)])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + frame) % len(render.Gradient)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(render.Gradient[colorIdx]).Render(barChars[charIdx]))
	}

	line := fmt.Sprintf("%s %s %s", spin, bar.String(), st.loading.Render("Waiting for reply"))
	if status != "" {
		line += "\n" + st.countdown.Render(status)
	}
	return line
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
	}
	if m.deps.Voice.Available() {
		shortcuts = append(shortcuts, struct {
			key  string
			desc string
		}{"Ctrl+T", "Voice"})
	}
	shortcuts = append(shortcuts, []struct {
		key  string
		desc string
	}{
		{"Ctrl+Y", "Copy"},
		{"PgUp/PgDn", "Scroll"},
		{"Esc", "Quit"},
	}...)

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

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6

	for i, msg := range m.messages {
		if i > 0 {
			content.WriteString("\n")
		}

		switch {
		case msg.Role == models.RoleUser:
			label := st.userLabel.Render("⬤ You")
			bubble := st.userBubble.Width(bubbleWidth).Render(msg.Content)
			content.WriteString(label + "\n" + bubble)

		case msg.IsPending():
			label := st.assistantLabel.Render("✦ Assistant")
			bubble := st.pending.Width(bubbleWidth).Render(m.renderLoadingAnimation(msg.Content))
			content.WriteString(label + "\n" + bubble)

		case msg.IsError:
			// Error text is literal; it is never passed through the renderer
			label := st.assistantLabel.Render("✦ Assistant")
			bubble := st.errorBubble.Width(bubbleWidth).Render(st.errText.Render(msg.Content))
			content.WriteString(label + "\n" + bubble)

		default:
			label := st.assistantLabel.Render("✦ Assistant")
			rendered := strings.TrimRight(msg.Display(), "\n")
			bubble := st.assistantBubble.Width(bubbleWidth).Render(rendered)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// ChatOptions configures RunChat
type ChatOptions struct {
	Endpoint     string
	Dispatch     dispatch.Config
	Render       render.Options
	VoiceCommand string
	AutoCopy     bool
	Logger       *slog.Logger
}

// RunChat starts the chat TUI against client
func RunChat(ctx context.Context, client dispatch.Chatter, opts ChatOptions) error {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var p *tea.Program
	// Hooks fire from dispatch and recognizer goroutines, and some of them
	// from inside Update; a blocking Send there would deadlock the loop.
	notify := func(msg tea.Msg) {
		if p != nil {
			go p.Send(msg)
		}
	}

	store := transcript.NewStore()
	buffer := input.NewBuffer(nil)
	renderer := render.NewTermRenderer(opts.Render)

	ctrl := dispatch.New(store, client, renderer,
		dispatch.WithConfig(opts.Dispatch),
		dispatch.WithBuffer(buffer),
		dispatch.WithLogger(logger),
	)

	var adapter *voice.Adapter
	if opts.VoiceCommand != "" {
		rec, err := voice.NewExecRecognizer(opts.VoiceCommand)
		if err != nil {
			logger.Warn("voice input disabled", "error", err)
		} else {
			adapter = voice.NewAdapter(rec, buffer,
				voice.WithLogger(logger),
				voice.WithStatusHook(func(string, bool) { notify(voiceChangedMsg{}) }),
			)
		}
	}

	m := NewChatModel(ctx, Deps{
		Store:      store,
		Buffer:     buffer,
		Dispatcher: ctrl,
		Voice:      adapter,
		Renderer:   renderer,
		Endpoint:   opts.Endpoint,
		AutoCopy:   opts.AutoCopy,
	})

	p = tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	unsubscribe := store.Subscribe(func(transcript.Event) { notify(storeChangedMsg{}) })
	defer unsubscribe()
	buffer.OnChange(func(bool) { notify(bufferChangedMsg{}) })

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
