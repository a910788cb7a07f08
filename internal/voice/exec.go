package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	apierrors "github.com/diogo/chatfront/internal/errors"
)

// maxTranscript caps how much recognizer output is kept
const maxTranscript = 64 << 10

// ExecRecognizer runs a speech-to-text command and treats its stdout as the
// transcript. Stop kills the command.
type ExecRecognizer struct {
	command string
	shell   string

	mu      sync.Mutex
	running bool
	stopped bool
	cancel  context.CancelFunc

	onStart  []func()
	onEnd    []func()
	onResult []func(string)
	onError  []func(string)
}

// ExecOption configures an ExecRecognizer
type ExecOption func(*ExecRecognizer)

// WithShell sets the shell used to run the command
func WithShell(shell string) ExecOption {
	return func(r *ExecRecognizer) {
		if shell != "" {
			r.shell = shell
		}
	}
}

var _ Recognizer = (*ExecRecognizer)(nil)

// Available reports whether the program named by commandLine can be found
func Available(commandLine string) bool {
	fields := strings.Fields(commandLine)
	if len(fields) == 0 {
		return false
	}
	_, err := exec.LookPath(fields[0])
	return err == nil
}

// NewExecRecognizer creates a recognizer for commandLine. It fails with
// ErrVoiceUnavailable when the command is empty or not installed.
func NewExecRecognizer(commandLine string, opts ...ExecOption) (*ExecRecognizer, error) {
	commandLine = strings.TrimSpace(commandLine)
	if commandLine == "" {
		return nil, apierrors.ErrVoiceUnavailable
	}
	if !Available(commandLine) {
		return nil, fmt.Errorf("%w: %s not found in PATH", apierrors.ErrVoiceUnavailable, strings.Fields(commandLine)[0])
	}

	r := &ExecRecognizer{command: commandLine, shell: "sh"}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r, nil
}

// OnStart registers a handler for capture start
func (r *ExecRecognizer) OnStart(fn func()) {
	r.mu.Lock()
	r.onStart = append(r.onStart, fn)
	r.mu.Unlock()
}

// OnEnd registers a handler run after every capture, successful or not
func (r *ExecRecognizer) OnEnd(fn func()) {
	r.mu.Lock()
	r.onEnd = append(r.onEnd, fn)
	r.mu.Unlock()
}

// OnResult registers a handler for the transcript
func (r *ExecRecognizer) OnResult(fn func(string)) {
	r.mu.Lock()
	r.onResult = append(r.onResult, fn)
	r.mu.Unlock()
}

// OnError registers a handler for failures
func (r *ExecRecognizer) OnError(fn func(string)) {
	r.mu.Lock()
	r.onError = append(r.onError, fn)
	r.mu.Unlock()
}

// Start launches the command. Starting while already running is a no-op.
func (r *ExecRecognizer) Start() error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, r.shell, "-c", r.command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Start(); err != nil {
		r.mu.Unlock()
		cancel()
		return fmt.Errorf("failed to start %s: %w", r.command, err)
	}

	r.running = true
	r.stopped = false
	r.cancel = cancel
	r.mu.Unlock()

	r.fire(r.startHandlers())

	go r.wait(cmd, cancel, &stdout, &stderr)
	return nil
}

// Stop kills a running command. No result is reported for it.
func (r *ExecRecognizer) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.running {
		return nil
	}
	r.stopped = true
	r.cancel()
	return nil
}

func (r *ExecRecognizer) wait(cmd *exec.Cmd, cancel context.CancelFunc, stdout, stderr *bytes.Buffer) {
	err := cmd.Wait()
	cancel()

	r.mu.Lock()
	stopped := r.stopped
	r.running = false
	r.cancel = nil
	onResult := append([]func(string){}, r.onResult...)
	onError := append([]func(string){}, r.onError...)
	onEnd := append([]func(){}, r.onEnd...)
	r.mu.Unlock()

	switch {
	case stopped:
	case err != nil:
		reason := strings.TrimSpace(stderr.String())
		if reason == "" {
			reason = err.Error()
		}
		for _, fn := range onError {
			fn(reason)
		}
	default:
		out := stdout.String()
		if len(out) > maxTranscript {
			out = out[:maxTranscript]
		}
		transcript := strings.TrimSpace(out)
		if transcript == "" {
			for _, fn := range onError {
				fn("no speech detected")
			}
			break
		}
		for _, fn := range onResult {
			fn(transcript)
		}
	}

	r.fire(onEnd)
}

func (r *ExecRecognizer) startHandlers() []func() {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]func(){}, r.onStart...)
}

func (r *ExecRecognizer) fire(fns []func()) {
	for _, fn := range fns {
		fn()
	}
}
