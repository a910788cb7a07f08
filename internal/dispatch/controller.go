package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	apierrors "github.com/diogo/chatfront/internal/errors"
	"github.com/diogo/chatfront/internal/input"
	"github.com/diogo/chatfront/internal/models"
	"github.com/diogo/chatfront/internal/render"
	"github.com/diogo/chatfront/internal/transcript"
)

// Chatter is the remote endpoint as seen by the controller
type Chatter interface {
	Chat(ctx context.Context, message string) (*models.ChatResponse, error)
}

// Controller owns the single-flight send cycle
type Controller struct {
	mu    sync.Mutex
	state State

	cfg       Config
	store     *transcript.Store
	client    Chatter
	renderer  render.Renderer
	buffer    *input.Buffer
	sleep     Sleeper
	logger    *slog.Logger
	onSettled func(Result)
	onState   func(State)
}

// Option configures a Controller
type Option func(*Controller)

// WithConfig sets the retry schedule
func WithConfig(cfg Config) Option {
	return func(c *Controller) {
		if cfg.MaxAttempts < 1 {
			cfg.MaxAttempts = models.DefaultMaxAttempts
		}
		c.cfg = cfg
	}
}

// WithSleeper replaces the clock used for backoff and dwell
func WithSleeper(s Sleeper) Option {
	return func(c *Controller) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithBuffer attaches the input buffer. The controller becomes its gate.
func WithBuffer(b *input.Buffer) Option {
	return func(c *Controller) {
		c.buffer = b
	}
}

// WithOnSettled registers a hook run after every settled dispatch
func WithOnSettled(fn func(Result)) Option {
	return func(c *Controller) {
		c.onSettled = fn
	}
}

// WithOnStateChange registers a hook run on every state transition
func WithOnStateChange(fn func(State)) Option {
	return func(c *Controller) {
		c.onState = fn
	}
}

// New creates an idle controller
func New(store *transcript.Store, client Chatter, renderer render.Renderer, opts ...Option) *Controller {
	c := &Controller{
		state:    StateIdle,
		cfg:      DefaultConfig(),
		store:    store,
		client:   client,
		renderer: renderer,
		sleep:    Sleep,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.buffer != nil {
		c.buffer.SetGate(c)
	}
	return c
}

// Idle reports whether a new dispatch may start
func (c *Controller) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == StateIdle
}

// State returns the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit takes the buffer contents and sends them. The buffer is cleared on
// hand-off regardless of the dispatch outcome.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	if c.buffer == nil {
		return Result{}, apierrors.ErrEmptyInput
	}
	text := c.buffer.Take()
	if text == "" {
		if !c.Idle() {
			return Result{}, apierrors.ErrDispatchInFlight
		}
		return Result{}, apierrors.ErrEmptyInput
	}
	return c.Send(ctx, text)
}

// Send appends text as a user message, runs the retry protocol and replaces
// the pending placeholder with one final reply.
//
// The returned error is non-nil only when the send was refused: empty text
// or a dispatch already in flight. Neither case touches the transcript.
// Delivery failures are reported in Result.Err.
func (c *Controller) Send(ctx context.Context, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, apierrors.ErrEmptyInput
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		c.logger.Debug("send refused", "state", c.State().String())
		return Result{}, apierrors.ErrDispatchInFlight
	}
	c.state = StateSubmitting
	c.mu.Unlock()
	c.stateChanged(StateSubmitting)

	var res Result
	defer func() {
		c.setState(StateIdle)
		if c.onSettled != nil {
			c.onSettled(res)
		}
	}()

	res.User = c.store.Append(models.RoleUser, text)
	if _, err := c.store.AppendPending(""); err != nil {
		// Another writer left a placeholder behind; reconcile it as ours.
		c.logger.Warn("pending placeholder already present", "error", err)
	}

	reply, attempts, err := c.attempt(ctx, text)
	res.Attempts = attempts

	c.setState(StateReconciling)
	if dwellErr := c.sleep(ctx, c.cfg.Dwell); dwellErr != nil {
		c.logger.Debug("dwell interrupted", "error", dwellErr)
	}

	if err != nil {
		res.Err = apierrors.NewTerminalError(len(attempts), err)
		res.Reply = c.reconcileFailure(res.Err)
		c.logger.Warn("dispatch failed", "attempts", len(attempts), "error", err)
	} else {
		res.Reply = c.reconcileSuccess(reply)
		c.logger.Info("dispatch succeeded", "attempts", len(attempts), "bytes", len(reply))
	}

	return res, nil
}

// attempt runs the retry protocol. Rate limits and other failures share one
// budget of MaxAttempts requests.
func (c *Controller) attempt(ctx context.Context, text string) (string, []Attempt, error) {
	var attempts []Attempt
	limit := c.cfg.MaxAttempts

	for i := 1; i <= limit; i++ {
		c.setState(StateSubmitting)
		c.logger.Debug("attempt", "index", i, "max", limit)

		resp, err := c.client.Chat(ctx, text)
		if err == nil {
			attempts = append(attempts, Attempt{Index: i, Outcome: OutcomeSuccess})
			return resp.Text(), attempts, nil
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			attempts = append(attempts, Attempt{Index: i, Outcome: OutcomeTerminal, Err: err})
			return "", attempts, err
		}

		// A rate limit on the last attempt is a plain terminal failure.
		if i == limit {
			attempts = append(attempts, Attempt{Index: i, Outcome: OutcomeTerminal, Err: err})
			return "", attempts, err
		}

		var wait time.Duration
		outcome := OutcomeRetryable
		if apierrors.IsRateLimitError(err) {
			outcome = OutcomeRateLimit
			wait = time.Duration(i) * c.cfg.RateLimitStep
			status := fmt.Sprintf(models.RateLimitCountdown, int(wait.Round(time.Second)/time.Second))
			if uerr := c.store.UpdatePending(status); uerr != nil {
				c.logger.Warn("update placeholder", "error", uerr)
			}
		} else {
			wait = c.cfg.RetryBackoff
		}
		attempts = append(attempts, Attempt{Index: i, Wait: wait, Outcome: outcome, Err: err})

		c.logger.Info("attempt failed, retrying",
			"index", i,
			"outcome", string(outcome),
			"wait", wait,
			"error", err,
		)

		c.setState(StateRetryWait)
		if serr := c.sleep(ctx, wait); serr != nil {
			attempts[len(attempts)-1].Outcome = OutcomeTerminal
			return "", attempts, serr
		}
	}

	// Only reachable with a zero budget, which WithConfig prevents.
	return "", attempts, apierrors.ErrNoContent
}

func (c *Controller) reconcileSuccess(reply string) models.Message {
	msg := models.Message{
		Role:    models.RoleAssistant,
		Content: reply,
	}

	if c.renderer != nil {
		rendered, err := c.renderer.Render(reply)
		if err != nil {
			c.logger.Warn("render failed, showing raw reply", "error", err)
			msg.Rendered = render.Literal(reply)
		} else {
			msg.Rendered = rendered
		}
	} else {
		msg.Rendered = render.Literal(reply)
	}

	return c.replace(msg)
}

func (c *Controller) reconcileFailure(err error) models.Message {
	text := apierrors.UserMessage(err)
	if text == "" {
		text = "request failed"
	}

	return c.replace(models.Message{
		Role:    models.RoleAssistant,
		Content: models.ErrorPrefix + render.Literal(text),
		IsError: true,
	})
}

// replace swaps the placeholder for msg, appending if the placeholder is
// already gone so the user always sees one outcome.
func (c *Controller) replace(msg models.Message) models.Message {
	final, err := c.store.ReplacePending(msg)
	if err == nil {
		return final
	}
	c.logger.Warn("no placeholder to replace", "error", err)

	return c.store.AppendFinal(msg)
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.stateChanged(s)
}

func (c *Controller) stateChanged(s State) {
	c.logger.Debug("dispatch state", "state", s.String())
	if s == StateIdle || s == StateSubmitting {
		if c.buffer != nil {
			c.buffer.Recompute()
		}
	}
	if c.onState != nil {
		c.onState(s)
	}
}
