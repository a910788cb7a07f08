// Package errors provides custom error types for the chat dispatch client.
package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrEmptyInput       = errors.New("message cannot be empty")
	ErrDispatchInFlight = errors.New("a message is already being sent")
	ErrInvalidResponse  = errors.New("invalid response format")
	ErrNoContent        = errors.New("no content in response")
	ErrVoiceUnavailable = errors.New("speech recognition is not available")
	ErrRateLimited      = errors.New("rate limited")
)

// APIError represents a non-success HTTP response from the chat endpoint
type APIError struct {
	StatusCode int
	Status     string // transport status text, e.g. "500 Internal Server Error"
	Endpoint   string
	Detail     string // server-supplied "detail" field, if any
	Body       string
}

func (e *APIError) Error() string {
	msg := e.Detail
	if msg == "" {
		msg = e.statusText()
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, msg)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, msg)
}

func (e *APIError) statusText() string {
	if e.Status != "" {
		return e.Status
	}
	if text := http.StatusText(e.StatusCode); text != "" {
		return fmt.Sprintf("%d %s", e.StatusCode, text)
	}
	return "request failed"
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, status, detail string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Status:     status,
		Endpoint:   endpoint,
		Detail:     detail,
	}
}

// NewAPIErrorWithBody creates a new APIError that keeps the raw response body
// for diagnostics.
func NewAPIErrorWithBody(statusCode int, endpoint, status, detail, body string) *APIError {
	e := NewAPIError(statusCode, endpoint, status, detail)
	e.Body = body
	return e
}

// RateLimitError represents a throttled request (HTTP 429)
type RateLimitError struct {
	APIError
}

func (e *RateLimitError) Error() string {
	if e.Detail == "" {
		return "rate limited: " + e.statusText()
	}
	return fmt.Sprintf("rate limited: %s", e.Detail)
}

// Is allows comparison with sentinel errors
func (e *RateLimitError) Is(target error) bool {
	if target == ErrRateLimited {
		return true
	}
	_, ok := target.(*RateLimitError)
	return ok
}

// NewRateLimitError creates a new RateLimitError
func NewRateLimitError(endpoint, status, detail string) *RateLimitError {
	return &RateLimitError{APIError: APIError{
		StatusCode: http.StatusTooManyRequests,
		Status:     status,
		Endpoint:   endpoint,
		Detail:     detail,
	}}
}

// NetworkError represents a transport failure before any response arrived
type NetworkError struct {
	Operation string
	Endpoint  string
	Err       error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Err)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(operation, endpoint string, err error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Err: err}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Message)
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// TerminalError is the failure a dispatch settles on once no attempts remain.
type TerminalError struct {
	Attempts int
	Cause    error
}

func (e *TerminalError) Error() string {
	return fmt.Sprintf("giving up after %d attempt(s): %v", e.Attempts, e.Cause)
}

func (e *TerminalError) Unwrap() error {
	return e.Cause
}

// NewTerminalError creates a new TerminalError
func NewTerminalError(attempts int, cause error) *TerminalError {
	return &TerminalError{Attempts: attempts, Cause: cause}
}

// IsRateLimitError reports whether err is or wraps a RateLimitError
func IsRateLimitError(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}

// IsNetworkError reports whether err is or wraps a NetworkError
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}

// IsParseError reports whether err is or wraps a ParseError
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// GetHTTPStatus extracts the HTTP status code from err, or 0.
func GetHTTPStatus(err error) int {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.StatusCode
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.StatusCode
	}
	return 0
}

// GetEndpoint extracts the endpoint from err, or "".
func GetEndpoint(err error) string {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Endpoint
	}
	var ae *APIError
	if errors.As(err, &ae) {
		return ae.Endpoint
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return ne.Endpoint
	}
	return ""
}

// UserMessage returns the best human-readable description of err: the
// server-supplied detail, then the transport status text, then the error
// text itself.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var rl *RateLimitError
	if errors.As(err, &rl) {
		if rl.Detail != "" {
			return rl.Detail
		}
		return rl.statusText()
	}

	var ae *APIError
	if errors.As(err, &ae) {
		if ae.Detail != "" {
			return ae.Detail
		}
		return ae.statusText()
	}

	switch {
	case errors.Is(err, context.Canceled):
		return "request cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}

	var ne *NetworkError
	if errors.As(err, &ne) && ne.Err != nil {
		return ne.Err.Error()
	}

	var te *TerminalError
	if errors.As(err, &te) && te.Cause != nil {
		return UserMessage(te.Cause)
	}

	return strings.TrimSpace(err.Error())
}
