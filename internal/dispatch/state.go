// Package dispatch sends user messages to the chat service, retrying
// transient failures and reconciling the pending placeholder into exactly
// one final transcript entry.
package dispatch

import (
	"context"
	"time"

	"github.com/diogo/chatfront/internal/config"
	"github.com/diogo/chatfront/internal/models"
)

// State is the controller's position in the send cycle
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateRetryWait
	StateReconciling
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateRetryWait:
		return "retry_wait"
	case StateReconciling:
		return "reconciling"
	default:
		return "unknown"
	}
}

// Outcome classifies a single attempt
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeRateLimit Outcome = "rate_limited"
	OutcomeRetryable Outcome = "retryable_failure"
	OutcomeTerminal  Outcome = "terminal_failure"
)

// Attempt records one request to the chat service
type Attempt struct {
	Index   int // 1-based
	Wait    time.Duration
	Outcome Outcome
	Err     error
}

// Result describes a finished dispatch
type Result struct {
	User     models.Message
	Reply    models.Message
	Attempts []Attempt
	// Err is the terminal failure, nil on success.
	Err error
}

// OK reports whether the dispatch ended with a reply
func (r Result) OK() bool {
	return r.Err == nil
}

// Config is the retry schedule
type Config struct {
	MaxAttempts   int
	RateLimitStep time.Duration
	RetryBackoff  time.Duration
	Dwell         time.Duration
}

// DefaultConfig returns the stock schedule: 3 attempts, i×5s after a rate
// limit, 2s after other failures, 400ms dwell.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:   models.DefaultMaxAttempts,
		RateLimitStep: models.DefaultRateLimitStep,
		RetryBackoff:  models.DefaultRetryBackoff,
		Dwell:         models.DefaultDwell,
	}
}

// ConfigFrom builds a schedule from user settings
func ConfigFrom(cfg config.Config) Config {
	out := Config{
		MaxAttempts:   cfg.Retry.MaxAttempts,
		RateLimitStep: cfg.Retry.RateLimitStep(),
		RetryBackoff:  cfg.Retry.Backoff(),
		Dwell:         cfg.Retry.Dwell(),
	}
	if out.MaxAttempts < 1 {
		out.MaxAttempts = models.DefaultMaxAttempts
	}
	return out
}

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the real-clock Sleeper
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
