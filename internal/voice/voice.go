// Package voice turns a speech recognizer into text for the input buffer.
package voice

import (
	"log/slog"
	"sync"

	"github.com/diogo/chatfront/internal/input"
	"github.com/diogo/chatfront/internal/models"
)

// Recognizer is a speech-to-text capability with four events. Handlers may
// be invoked from any goroutine.
type Recognizer interface {
	Start() error
	Stop() error
	OnStart(fn func())
	OnEnd(fn func())
	OnResult(fn func(transcript string))
	OnError(fn func(reason string))
}

// Adapter feeds recognizer results into the input buffer. It never sends.
// A nil *Adapter means voice input is unavailable; its methods are safe to
// call and do nothing.
type Adapter struct {
	mu        sync.Mutex
	rec       Recognizer
	buffer    *input.Buffer
	listening bool
	failed    bool
	status    string
	onStatus  func(status string, listening bool)
	logger    *slog.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithStatusHook registers fn to observe status changes, e.g. to update a
// placeholder or a mic indicator
func WithStatusHook(fn func(status string, listening bool)) Option {
	return func(a *Adapter) {
		a.onStatus = fn
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// NewAdapter wires rec to buf. It returns nil when rec is nil so callers can
// hide the voice control.
func NewAdapter(rec Recognizer, buf *input.Buffer, opts ...Option) *Adapter {
	if rec == nil {
		return nil
	}

	a := &Adapter{
		rec:    rec,
		buffer: buf,
		status: models.PlaceholderIdle,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	rec.OnStart(a.handleStart)
	rec.OnEnd(a.handleEnd)
	rec.OnResult(a.handleResult)
	rec.OnError(a.handleError)

	return a
}

// Available reports whether voice input exists
func (a *Adapter) Available() bool {
	return a != nil
}

// Toggle starts listening when idle and stops when listening
func (a *Adapter) Toggle() error {
	if a == nil {
		return nil
	}

	a.mu.Lock()
	listening := a.listening
	a.mu.Unlock()

	if listening {
		a.logger.Debug("voice stop requested")
		return a.rec.Stop()
	}

	a.logger.Debug("voice start requested")
	if err := a.rec.Start(); err != nil {
		a.handleError(err.Error())
		return err
	}
	return nil
}

// Listening reports whether the recognizer is capturing
func (a *Adapter) Listening() bool {
	if a == nil {
		return false
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.listening
}

// Status returns the placeholder text for the current voice state
func (a *Adapter) Status() string {
	if a == nil {
		return models.PlaceholderTyping
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.status
}

func (a *Adapter) handleStart() {
	a.set(true, false, models.PlaceholderListening)
}

// handleEnd keeps an error status visible until the next start
func (a *Adapter) handleEnd() {
	a.mu.Lock()
	failed := a.failed
	a.mu.Unlock()

	if failed {
		a.set(false, true, models.PlaceholderVoiceErr)
		return
	}
	a.set(false, false, models.PlaceholderIdle)
}

func (a *Adapter) handleResult(transcript string) {
	a.logger.Debug("voice result", "chars", len(transcript))
	if a.buffer != nil {
		a.buffer.SetText(transcript)
	}
}

func (a *Adapter) handleError(reason string) {
	a.logger.Warn("voice recognition failed", "reason", reason)
	a.set(false, true, models.PlaceholderVoiceErr)
}

func (a *Adapter) set(listening, failed bool, status string) {
	a.mu.Lock()
	a.listening = listening
	a.failed = failed
	a.status = status
	hook := a.onStatus
	a.mu.Unlock()

	if hook != nil {
		hook(status, listening)
	}
}
