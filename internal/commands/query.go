package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/chatfront/internal/config"
	"github.com/diogo/chatfront/internal/dispatch"
	"github.com/diogo/chatfront/internal/render"
	"github.com/diogo/chatfront/internal/transcript"
)

// outputStyles decorate one-shot replies on a terminal
type outputStyles struct {
	label   lipgloss.Style
	bubble  lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	text    lipgloss.Style
	mute    lipgloss.Style
}

func newOutputStyles(t render.TUITheme) outputStyles {
	return outputStyles{
		label: lipgloss.NewStyle().Foreground(t.Primary).Bold(true),
		bubble: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(t.Primary).
			Foreground(t.Text).
			Padding(0, 1).
			MarginTop(1).
			MarginBottom(1),
		success: lipgloss.NewStyle().Foreground(t.Secondary),
		warning: lipgloss.NewStyle().Foreground(t.Warning),
		text:    lipgloss.NewStyle().Foreground(t.Text),
		mute:    lipgloss.NewStyle().Foreground(t.TextMute),
	}
}

var outStyle = newOutputStyles(render.GetTUITheme())

// spinner handles the animated loading indicator. A nil spinner is valid
// and draws nothing.
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool // Flag to prevent double-close
}

// newSpinner creates a new animated spinner drawing on out
func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	if s == nil {
		return
	}
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// setMessage replaces the text next to the animation
func (s *spinner) setMessage(message string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "█", "█", "█", "▓", "▒", "░"}

	spinIdx := s.frame % len(chars)
	spinColor := render.Gradient[s.frame%len(render.Gradient)]
	spinnerChar := lipgloss.NewStyle().Foreground(spinColor).Bold(true).Render(chars[spinIdx])

	barWidth := 16
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		colorIdx := (i + s.frame) % len(render.Gradient)
		charIdx := (i + s.frame/2) % len(barChars)
		style := lipgloss.NewStyle().Foreground(render.Gradient[colorIdx])
		bar.WriteString(style.Render(barChars[charIdx]))
	}

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dotColor := render.Gradient[(s.frame+i)%len(render.Gradient)]
			dots.WriteString(lipgloss.NewStyle().Foreground(dotColor).Render("●"))
		} else {
			dots.WriteString(outStyle.mute.Render("○"))
		}
	}

	msg := outStyle.text.Render(s.message)

	fmt.Fprintf(s.out, "\r\033[K%s %s %s %s", spinnerChar, bar.String(), msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows success message
func (s *spinner) stopWithSuccess(message string) {
	if s == nil {
		return
	}
	s.stopOnce()
	<-s.done

	checkmark := outStyle.success.Bold(true).Render("✓")
	fmt.Fprintf(s.out, "%s %s\n", checkmark, outStyle.success.Render(message))
}

// stopWithError stops the spinner without a message
func (s *spinner) stopWithError() {
	if s == nil {
		return
	}
	s.stopOnce()
	<-s.done
}

// runQuery sends one message through the dispatch controller and prints
// the reply. In raw mode only the reply text is written to stdout.
func runQuery(ctx context.Context, deps *Dependencies, cfg config.Config, prompt string, opts *rootOptions) error {
	logOut, closeLog := io.Writer(deps.Stderr), func() {}
	if !opts.verbose {
		logOut, closeLog = openLogFile()
	}
	defer closeLog()
	logger := setupLogging(cfg.LogLevel, logOut)

	client, err := deps.NewClient(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	if cfg.TUITheme != "" && render.SetTUITheme(cfg.TUITheme) {
		outStyle = newOutputStyles(render.GetTUITheme())
	}

	decorated := !opts.raw && opts.output == "" && deps.StdoutTTY()

	// Get terminal width for proper formatting
	bubbleWidth := deps.TerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	store := transcript.NewStore()
	renderer := render.NewTermRenderer(render.OptionsFromConfig(cfg).WithWidth(contentWidth))

	dopts := []dispatch.Option{
		dispatch.WithConfig(dispatch.ConfigFrom(cfg)),
		dispatch.WithLogger(logger),
	}
	if deps.Sleeper != nil {
		dopts = append(dopts, dispatch.WithSleeper(deps.Sleeper))
	}
	ctrl := dispatch.New(store, client, renderer, dopts...)

	var spin *spinner
	if decorated {
		spin = newSpinner(deps.Stderr, "Waiting for reply")
		// Mirror the rate-limit countdown into the spinner
		unsubscribe := store.Subscribe(func(ev transcript.Event) {
			if ev.Message.IsPending() && ev.Message.Content != "" {
				spin.setMessage(ev.Message.Content)
			}
		})
		defer unsubscribe()
		spin.start()
	}

	res, err := ctrl.Send(ctx, prompt)
	if err != nil {
		spin.stopWithError()
		return err
	}
	if !res.OK() {
		spin.stopWithError()
		return res.Err
	}
	spin.stopWithSuccess("Done")

	text := res.Reply.Content

	if opts.copy || cfg.CopyToClipboard {
		if err := deps.Clipboard(text); err != nil {
			// Warn but don't fail
			fmt.Fprintln(deps.Stderr, outStyle.warning.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else if decorated {
			fmt.Fprintln(deps.Stderr, outStyle.success.Render("✓ Copied to clipboard"))
		}
	}

	if opts.output != "" {
		if err := writeOutput(opts.output, text); err != nil {
			return err
		}
		if !opts.raw {
			fmt.Fprintln(deps.Stderr, outStyle.success.Render(fmt.Sprintf("✓ Reply saved to %s", opts.output)))
		}
		return nil
	}

	// Raw output mode: output only the raw text
	if !decorated {
		fmt.Fprint(deps.Stdout, text)
		return nil
	}

	fmt.Fprintln(deps.Stdout, outStyle.label.Render("✦ Assistant"))
	rendered := strings.TrimRight(res.Reply.Display(), "\n")
	fmt.Fprintln(deps.Stdout, outStyle.bubble.Width(bubbleWidth).Render(rendered))

	return nil
}

func writeOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
