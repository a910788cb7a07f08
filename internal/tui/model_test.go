package tui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/diogo/chatfront/internal/dispatch"
	apierrors "github.com/diogo/chatfront/internal/errors"
	"github.com/diogo/chatfront/internal/input"
	"github.com/diogo/chatfront/internal/models"
	"github.com/diogo/chatfront/internal/transcript"
)

// fakeDispatcher appends a user message and a reply like the controller would
type fakeDispatcher struct {
	mu    sync.Mutex
	store *transcript.Store
	reply string
	fail  bool
	texts []string
}

func (f *fakeDispatcher) Send(_ context.Context, text string) (dispatch.Result, error) {
	f.mu.Lock()
	f.texts = append(f.texts, text)
	f.mu.Unlock()

	user := f.store.Append(models.RoleUser, text)
	if f.fail {
		reply := f.store.AppendFinal(models.Message{
			Role:    models.RoleAssistant,
			Content: models.ErrorPrefix + "boom",
			IsError: true,
		})
		return dispatch.Result{User: user, Reply: reply, Err: apierrors.NewTerminalError(3, errors.New("boom"))}, nil
	}
	reply := f.store.AppendFinal(models.Message{
		Role:     models.RoleAssistant,
		Content:  f.reply,
		Rendered: f.reply,
	})
	return dispatch.Result{User: user, Reply: reply}, nil
}

func (f *fakeDispatcher) sent() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.texts...)
}

type copyRecorder struct {
	mu     sync.Mutex
	copied []string
	err    error
}

func (c *copyRecorder) copy(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.copied = append(c.copied, text)
	return c.err
}

func newTestModel(t *testing.T) (Model, *fakeDispatcher, *copyRecorder) {
	t.Helper()
	store := transcript.NewStore()
	d := &fakeDispatcher{store: store, reply: "hi there"}
	cr := &copyRecorder{}
	m := NewChatModel(context.Background(), Deps{
		Store:      store,
		Buffer:     input.NewBuffer(nil),
		Dispatcher: d,
		Endpoint:   "http://localhost:8000",
		Copy:       cr.copy,
	})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, d, cr
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	typed, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T, want Model", next)
	}
	return typed
}

func typeText(t *testing.T, m Model, text string) Model {
	t.Helper()
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

// runCmd executes cmd and any batched commands, skipping animation ticks
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	batch, ok := msg.(tea.BatchMsg)
	if !ok {
		return []tea.Msg{msg}
	}
	var out []tea.Msg
	for _, c := range batch {
		out = append(out, runCmd(c)...)
	}
	return out
}

func findSettled(msgs []tea.Msg) (settledMsg, bool) {
	for _, msg := range msgs {
		if s, ok := msg.(settledMsg); ok {
			return s, true
		}
	}
	return settledMsg{}, false
}

func TestModel_Update_WindowSize(t *testing.T) {
	m, _, _ := newTestModel(t)

	if !m.ready {
		t.Error("Model should be ready after WindowSizeMsg")
	}
	if m.width != 100 || m.height != 40 {
		t.Errorf("dimensions = %dx%d, want 100x40", m.width, m.height)
	}
	if m.viewport.Width != 96 {
		t.Errorf("viewport width = %d, want 96", m.viewport.Width)
	}
}

func TestModel_TypingUpdatesBuffer(t *testing.T) {
	m, _, _ := newTestModel(t)
	m = typeText(t, m, "hello")

	if got := m.deps.Buffer.Text(); got != "hello" {
		t.Errorf("buffer = %q, want %q", got, "hello")
	}
	if !m.deps.Buffer.IsSubmissionAllowed() {
		t.Error("non-empty buffer should allow submission")
	}
}

func TestModel_EnterSubmits(t *testing.T) {
	m, d, _ := newTestModel(t)
	m = typeText(t, m, "  hello  ")

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)

	if !m.busy {
		t.Error("model should be busy after submit")
	}
	if m.textarea.Value() != "" || m.deps.Buffer.Text() != "" {
		t.Errorf("input not cleared: textarea=%q buffer=%q", m.textarea.Value(), m.deps.Buffer.Text())
	}

	settled, ok := findSettled(runCmd(cmd))
	if !ok {
		t.Fatal("submit did not produce a settledMsg")
	}
	if got := d.sent(); len(got) != 1 || got[0] != "hello" {
		t.Errorf("sent = %v, want [hello]", got)
	}

	m = update(t, m, settled)
	if m.busy {
		t.Error("model should be idle after settle")
	}
	if len(m.messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(m.messages))
	}
	if !strings.Contains(m.View(), "hi there") {
		t.Error("View() should contain the reply")
	}
}

func TestModel_EnterIgnored(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m Model) Model
	}{
		{
			name:  "empty buffer",
			setup: func(m Model) Model { return m },
		},
		{
			name: "whitespace only",
			setup: func(m Model) Model {
				m.deps.Buffer.SetText("   ")
				return m
			},
		},
		{
			name: "dispatch in flight",
			setup: func(m Model) Model {
				m.deps.Buffer.SetText("second")
				m.busy = true
				return m
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, d, _ := newTestModel(t)
			m = tt.setup(m)
			before := m.deps.Buffer.Text()

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd != nil {
				runCmd(cmd)
			}
			if len(d.sent()) != 0 {
				t.Errorf("sent = %v, want nothing", d.sent())
			}
			if m.deps.Buffer.Text() != before {
				t.Errorf("buffer changed to %q", m.deps.Buffer.Text())
			}
		})
	}
}

func TestModel_ExitCommands(t *testing.T) {
	for _, word := range []string{"exit", "quit", "/exit", "/quit"} {
		t.Run(word, func(t *testing.T) {
			m, d, _ := newTestModel(t)
			m.deps.Buffer.SetText(word)

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("exit command should quit")
			}
			if len(d.sent()) != 0 {
				t.Error("exit command must not be sent")
			}
		})
	}
}

func TestModel_Update_CtrlC(t *testing.T) {
	m, _, _ := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("Expected quit command for Ctrl+C")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("Ctrl+C should quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel in-flight dispatches")
	}
}

func TestModel_ErrorReplyIsShownLiterally(t *testing.T) {
	m, d, _ := newTestModel(t)
	d.fail = true
	m.deps.Buffer.SetText("hello")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	settled, ok := findSettled(runCmd(cmd))
	if !ok {
		t.Fatal("no settledMsg")
	}
	m = update(t, m, settled)

	if settled.result.OK() {
		t.Error("failed dispatch should not be OK")
	}
	if m.err != nil {
		t.Errorf("terminal failures belong in the transcript, got m.err = %v", m.err)
	}
	if !strings.Contains(m.View(), "Error: boom") {
		t.Error("View() should contain the error reply")
	}
}

func TestModel_PendingShowsCountdown(t *testing.T) {
	m, _, _ := newTestModel(t)
	store := m.deps.Store
	store.Append(models.RoleUser, "hello")
	if _, err := store.AppendPending(""); err != nil {
		t.Fatal(err)
	}
	if err := store.UpdatePending("Rate limit hit. Retrying in 5s..."); err != nil {
		t.Fatal(err)
	}

	m.busy = true
	m = update(t, m, storeChangedMsg{})

	view := m.View()
	if !strings.Contains(view, "Rate limit hit. Retrying in 5s...") {
		t.Error("View() should show the countdown")
	}
	if !strings.Contains(view, "Waiting for reply") {
		t.Error("View() should show the pending indicator")
	}
}

func TestModel_Update_AnimationTick(t *testing.T) {
	m, _, _ := newTestModel(t)

	m.busy = true
	next, cmd := m.Update(animationTickMsg(time.Now()))
	if next.(Model).animationFrame != 1 {
		t.Error("Animation frame should increment while busy")
	}
	if cmd == nil {
		t.Error("animation should keep ticking while busy")
	}

	m.busy = false
	next, _ = m.Update(animationTickMsg(time.Now()))
	if next.(Model).animationFrame != 0 {
		t.Error("Animation frame should not move when idle")
	}
}

func TestModel_BufferChangeSyncsTextarea(t *testing.T) {
	m, _, _ := newTestModel(t)

	// what a voice result does
	m.deps.Buffer.SetText("turn on the lights")
	m = update(t, m, bufferChangedMsg{})

	if m.textarea.Value() != "turn on the lights" {
		t.Errorf("textarea = %q", m.textarea.Value())
	}
}

func TestModel_CopyLastReply(t *testing.T) {
	m, _, cr := newTestModel(t)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	if cmd != nil {
		t.Error("nothing to copy on an empty transcript")
	}

	m.deps.Store.Append(models.RoleUser, "q")
	m.deps.Store.AppendFinal(models.Message{Role: models.RoleAssistant, Content: "**raw** answer", Rendered: "raw answer"})

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	msgs := runCmd(cmd)
	if len(cr.copied) != 1 || cr.copied[0] != "**raw** answer" {
		t.Errorf("copied = %v", cr.copied)
	}

	m = update(t, m, msgs[0])
	if m.notice != "Reply copied to clipboard" {
		t.Errorf("notice = %q", m.notice)
	}

	m = update(t, m, clipboardMsg{err: errors.New("no clipboard")})
	if !strings.HasPrefix(m.notice, "Copy failed") {
		t.Errorf("notice = %q", m.notice)
	}
}

func TestModel_AutoCopy(t *testing.T) {
	m, _, cr := newTestModel(t)
	m.deps.AutoCopy = true

	ok := settledMsg{result: dispatch.Result{Reply: models.Message{Content: "answer"}}}
	_, cmd := m.Update(ok)
	runCmd(cmd)
	if len(cr.copied) != 1 || cr.copied[0] != "answer" {
		t.Errorf("copied = %v", cr.copied)
	}

	failed := settledMsg{result: dispatch.Result{Err: errors.New("boom")}}
	_, cmd = m.Update(failed)
	runCmd(cmd)
	if len(cr.copied) != 1 {
		t.Error("failed replies must not be copied")
	}
}

func TestModel_View(t *testing.T) {
	var notReady Model
	if !strings.Contains(notReady.View(), "Initializing") {
		t.Error("unready model should show Initializing")
	}

	m, _, _ := newTestModel(t)
	view := m.View()
	for _, want := range []string{"chatfront", "http://localhost:8000", "Welcome to chatfront", "Enter", "Esc"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
	if strings.Contains(view, "Ctrl+T") {
		t.Error("voice shortcut should be hidden without a recognizer")
	}
}

func TestModel_PlaceholderWithoutVoice(t *testing.T) {
	m, _, _ := newTestModel(t)
	if m.textarea.Placeholder != models.PlaceholderTyping {
		t.Errorf("Placeholder = %q", m.textarea.Placeholder)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlT})
	if cmd != nil {
		t.Error("Ctrl+T without voice should do nothing")
	}
}
