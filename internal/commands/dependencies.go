package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/chatfront/internal/api"
	"github.com/diogo/chatfront/internal/config"
	"github.com/diogo/chatfront/internal/dispatch"
	"github.com/diogo/chatfront/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, client dispatch.Chatter, opts tui.ChatOptions) error
	RunConfig(cfg config.Config, configPath string) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the chat client for a loaded configuration.
	NewClient func(cfg config.Config, logger *slog.Logger) (api.ChatClientInterface, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	// Clipboard writes text to the system clipboard.
	Clipboard func(text string) error

	// Sleeper waits between attempts; nil uses real timers.
	Sleeper dispatch.Sleeper

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether stdin carries input rather than a terminal.
	StdinPiped func() bool
	// StdoutTTY reports whether decorated output should be used.
	StdoutTTY func() bool
	// TerminalWidth returns the stdout width in columns.
	TerminalWidth func() int
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, client dispatch.Chatter, opts tui.ChatOptions) error {
	return tui.RunChat(ctx, client, opts)
}

func (d *DefaultTUI) RunConfig(cfg config.Config, configPath string) error {
	return tui.RunConfig(cfg, configPath)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:     newClient,
		TUI:           &DefaultTUI{},
		Clipboard:     clipboard.WriteAll,
		Stdin:         os.Stdin,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		StdinPiped:    stdinPiped,
		StdoutTTY:     isStdoutTTY,
		TerminalWidth: getTerminalWidth,
	}
}

// withDefaults fills any nil field so tests only set what they need
func (d *Dependencies) withDefaults() *Dependencies {
	out := *d
	def := NewDependencies()
	if out.NewClient == nil {
		out.NewClient = def.NewClient
	}
	if out.TUI == nil {
		out.TUI = def.TUI
	}
	if out.Clipboard == nil {
		out.Clipboard = def.Clipboard
	}
	if out.Stdin == nil {
		out.Stdin = def.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = def.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = def.Stderr
	}
	if out.StdinPiped == nil {
		out.StdinPiped = func() bool { return false }
	}
	if out.StdoutTTY == nil {
		out.StdoutTTY = func() bool { return false }
	}
	if out.TerminalWidth == nil {
		out.TerminalWidth = func() int { return 80 }
	}
	return &out
}

func newClient(cfg config.Config, logger *slog.Logger) (api.ChatClientInterface, error) {
	return api.NewClient(cfg.Endpoint,
		api.WithTimeout(cfg.Timeout()),
		api.WithLogger(logger),
	)
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
