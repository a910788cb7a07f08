// Package input holds the outbound text waiting to be sent.
package input

import (
	"strings"
	"sync"
)

// Gate reports whether a new dispatch may start.
type Gate interface {
	Idle() bool
}

type alwaysOpen struct{}

func (alwaysOpen) Idle() bool { return true }

// Buffer is the single mutable outbound text plus its derived
// submission-allowed flag. Writes are last-write-wins.
type Buffer struct {
	mu       sync.Mutex
	text     string
	allowed  bool
	gate     Gate
	onChange []func(allowed bool)
}

// NewBuffer creates an empty buffer. A nil gate is treated as always idle.
func NewBuffer(gate Gate) *Buffer {
	if gate == nil {
		gate = alwaysOpen{}
	}
	return &Buffer{gate: gate}
}

// SetGate replaces the gate consulted by the submission flag
func (b *Buffer) SetGate(gate Gate) {
	if gate == nil {
		gate = alwaysOpen{}
	}
	b.mu.Lock()
	b.gate = gate
	b.mu.Unlock()
	b.Recompute()
}

// OnChange registers fn to be called whenever the submission flag is
// recomputed.
func (b *Buffer) OnChange(fn func(allowed bool)) {
	b.mu.Lock()
	b.onChange = append(b.onChange, fn)
	b.mu.Unlock()
}

// SetText replaces the buffer contents and recomputes the flag
func (b *Buffer) SetText(t string) {
	b.mu.Lock()
	b.text = t
	b.mu.Unlock()
	b.Recompute()
}

// Text returns the current contents
func (b *Buffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.text
}

// Clear empties the buffer
func (b *Buffer) Clear() {
	b.SetText("")
}

// Take returns the trimmed contents and clears the buffer in one step. It
// returns "" without clearing when submission is not allowed.
func (b *Buffer) Take() string {
	b.mu.Lock()
	text := strings.TrimSpace(b.text)
	if text == "" || !b.gate.Idle() {
		b.mu.Unlock()
		return ""
	}
	b.text = ""
	b.mu.Unlock()
	b.Recompute()
	return text
}

// IsSubmissionAllowed reports the flag as of the last recompute
func (b *Buffer) IsSubmissionAllowed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allowed
}

// Recompute re-evaluates the submission flag. Call it when the gate's
// state changes.
func (b *Buffer) Recompute() {
	b.mu.Lock()
	b.allowed = strings.TrimSpace(b.text) != "" && b.gate.Idle()
	allowed := b.allowed
	listeners := make([]func(bool), len(b.onChange))
	copy(listeners, b.onChange)
	b.mu.Unlock()

	for _, fn := range listeners {
		fn(allowed)
	}
}
