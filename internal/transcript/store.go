// Package transcript holds the ordered conversation shown to the user.
package transcript

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/diogo/chatfront/internal/models"
)

var (
	// ErrPendingExists is returned when a second pending placeholder is appended.
	ErrPendingExists = errors.New("a pending message already exists")
	// ErrNoPending is returned when there is no pending message to change.
	ErrNoPending = errors.New("no pending message")
	// ErrNotPending is returned when a final message is appended where a
	// pending one was expected, or vice versa.
	ErrNotPending = errors.New("replacement must be a final message")
)

// EventKind describes a transcript mutation
type EventKind string

const (
	EventAppended EventKind = "appended"
	EventUpdated  EventKind = "updated"
	EventReplaced EventKind = "replaced"
	EventRemoved  EventKind = "removed"
)

// Event is delivered to subscribers after every mutation
type Event struct {
	Kind    EventKind
	Index   int
	Message models.Message
}

// Store is an ordered, append-only sequence of messages. The only in-place
// mutations allowed target the single pending placeholder.
type Store struct {
	mu          sync.RWMutex
	messages    []models.Message
	pending     int // index of the pending message, -1 if none
	subscribers map[int]func(Event)
	nextSubID   int
	now         func() time.Time
}

// NewStore creates an empty transcript
func NewStore() *Store {
	return &Store{
		pending:     -1,
		subscribers: make(map[int]func(Event)),
		now:         time.Now,
	}
}

// Subscribe registers fn to receive every mutation event. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Append adds a final message to the end of the transcript
func (s *Store) Append(role models.Role, content string) models.Message {
	msg := s.newMessage(role, content, models.LifecycleFinal)

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	ev := Event{Kind: EventAppended, Index: len(s.messages) - 1, Message: msg}
	s.mu.Unlock()

	s.emit(ev)
	return msg
}

// AppendFinal appends a fully built final message such as a rendered reply
func (s *Store) AppendFinal(msg models.Message) models.Message {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now()
	}
	msg.Lifecycle = models.LifecycleFinal

	s.mu.Lock()
	s.messages = append(s.messages, msg)
	ev := Event{Kind: EventAppended, Index: len(s.messages) - 1, Message: msg}
	s.mu.Unlock()

	s.emit(ev)
	return msg
}

// AppendPending adds the pending assistant placeholder. At most one pending
// message may exist at a time.
func (s *Store) AppendPending(status string) (models.Message, error) {
	msg := s.newMessage(models.RoleAssistant, status, models.LifecyclePending)

	s.mu.Lock()
	if s.pending >= 0 {
		s.mu.Unlock()
		return models.Message{}, ErrPendingExists
	}
	s.messages = append(s.messages, msg)
	s.pending = len(s.messages) - 1
	ev := Event{Kind: EventAppended, Index: s.pending, Message: msg}
	s.mu.Unlock()

	s.emit(ev)
	return msg, nil
}

// UpdatePending changes the status text of the pending placeholder
func (s *Store) UpdatePending(status string) error {
	s.mu.Lock()
	if s.pending < 0 {
		s.mu.Unlock()
		return ErrNoPending
	}
	s.messages[s.pending].Content = status
	ev := Event{Kind: EventUpdated, Index: s.pending, Message: s.messages[s.pending]}
	s.mu.Unlock()

	s.emit(ev)
	return nil
}

// ReplacePending removes the pending placeholder and appends final in its
// place at the end of the transcript. Exactly one message leaves and one
// arrives.
func (s *Store) ReplacePending(final models.Message) (models.Message, error) {
	if final.Lifecycle == models.LifecyclePending {
		return models.Message{}, ErrNotPending
	}
	if final.ID == "" {
		final.ID = uuid.New().String()
	}
	if final.CreatedAt.IsZero() {
		final.CreatedAt = s.now()
	}
	final.Lifecycle = models.LifecycleFinal

	s.mu.Lock()
	if s.pending < 0 {
		s.mu.Unlock()
		return models.Message{}, ErrNoPending
	}
	s.messages = append(s.messages[:s.pending], s.messages[s.pending+1:]...)
	s.messages = append(s.messages, final)
	s.pending = -1
	ev := Event{Kind: EventReplaced, Index: len(s.messages) - 1, Message: final}
	s.mu.Unlock()

	s.emit(ev)
	return final, nil
}

// RemovePending drops the pending placeholder without a replacement
func (s *Store) RemovePending() error {
	s.mu.Lock()
	if s.pending < 0 {
		s.mu.Unlock()
		return ErrNoPending
	}
	removed := s.messages[s.pending]
	idx := s.pending
	s.messages = append(s.messages[:idx], s.messages[idx+1:]...)
	s.pending = -1
	s.mu.Unlock()

	s.emit(Event{Kind: EventRemoved, Index: idx, Message: removed})
	return nil
}

// Messages returns a snapshot of the transcript in conversation order
func (s *Store) Messages() []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Len returns the number of messages
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Pending returns the pending placeholder, if any
func (s *Store) Pending() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.pending < 0 {
		return models.Message{}, false
	}
	return s.messages[s.pending], true
}

// Last returns the most recent message, if any
func (s *Store) Last() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return models.Message{}, false
	}
	return s.messages[len(s.messages)-1], true
}

// LastReply returns the most recent successful assistant reply
func (s *Store) LastReply() (models.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.messages) - 1; i >= 0; i-- {
		m := s.messages[i]
		if m.Role == models.RoleAssistant && !m.IsPending() && !m.IsError {
			return m, true
		}
	}
	return models.Message{}, false
}

func (s *Store) newMessage(role models.Role, content string, lc models.Lifecycle) models.Message {
	return models.Message{
		ID:        uuid.New().String(),
		Role:      role,
		Content:   content,
		Lifecycle: lc,
		CreatedAt: s.now(),
	}
}

// emit delivers ev outside the lock so subscribers may read the store.
func (s *Store) emit(ev Event) {
	s.mu.RLock()
	subs := make([]func(Event), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(ev)
	}
}
