package models

import "time"

// Role identifies who authored a transcript message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Lifecycle tracks whether a message can still change
type Lifecycle string

const (
	// LifecycleFinal messages are immutable once stored.
	LifecycleFinal Lifecycle = "final"
	// LifecyclePending marks the placeholder shown while a reply is in flight.
	LifecyclePending Lifecycle = "pending"
)

// Message represents a chat message for TUI display
type Message struct {
	ID        string
	Role      Role
	Content   string // raw text; for pending messages, the status line
	Rendered  string // display markup, set only on successful replies
	Lifecycle Lifecycle
	IsError   bool
	CreatedAt time.Time
}

// IsPending reports whether the message is the in-flight placeholder
func (m Message) IsPending() bool {
	return m.Lifecycle == LifecyclePending
}

// Display returns the text the presentation layer should show
func (m Message) Display() string {
	if m.Rendered != "" {
		return m.Rendered
	}
	return m.Content
}
