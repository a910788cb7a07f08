package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestAPIError(t *testing.T) {
	err := NewAPIError(500, "/chat", "500 Internal Server Error", "")

	expected := "API error [500] at /chat: 500 Internal Server Error"
	if err.Error() != expected {
		t.Errorf("Error() = %s, want %s", err.Error(), expected)
	}

	withDetail := NewAPIError(400, "/chat", "400 Bad Request", "message too long")
	expected = "API error [400] at /chat: message too long"
	if withDetail.Error() != expected {
		t.Errorf("Error() = %s, want %s", withDetail.Error(), expected)
	}
}

func TestAPIErrorStatusFallback(t *testing.T) {
	err := NewAPIError(503, "/chat", "", "")
	if got := UserMessage(err); got != "503 Service Unavailable" {
		t.Errorf("UserMessage() = %q, want %q", got, "503 Service Unavailable")
	}
}

func TestRateLimitError(t *testing.T) {
	err := NewRateLimitError("/chat", "429 Too Many Requests", "AI Service is currently busy.")

	if err.StatusCode != 429 {
		t.Errorf("StatusCode = %d, want 429", err.StatusCode)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Error("Expected RateLimitError to match ErrRateLimited")
	}
	if !IsRateLimitError(fmt.Errorf("wrapped: %w", err)) {
		t.Error("Expected wrapped RateLimitError to be detected")
	}
	if IsRateLimitError(NewAPIError(500, "/chat", "", "")) {
		t.Error("Expected APIError not to be a rate limit error")
	}
}

func TestNetworkError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewNetworkError("chat", "http://localhost:8000/chat", cause)

	if !errors.Is(err, cause) {
		t.Error("Expected NetworkError to unwrap to its cause")
	}
	if !IsNetworkError(err) {
		t.Error("Expected IsNetworkError to be true")
	}
	if got := UserMessage(err); got != "connection refused" {
		t.Errorf("UserMessage() = %q, want %q", got, "connection refused")
	}
}

func TestParseError(t *testing.T) {
	err := NewParseError("missing response field", "response")

	if !errors.Is(err, ErrInvalidResponse) {
		t.Error("Expected ParseError to match ErrInvalidResponse")
	}
	if !IsParseError(err) {
		t.Error("Expected IsParseError to be true")
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"plain", errors.New("x"), 0},
		{"api", NewAPIError(502, "/chat", "", ""), 502},
		{"rate limit", NewRateLimitError("/chat", "", ""), 429},
		{"wrapped", NewTerminalError(3, NewAPIError(500, "/chat", "", "")), 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetHTTPStatus(tt.err); got != tt.want {
				t.Errorf("GetHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"detail preferred", NewAPIError(500, "/chat", "500 Internal Server Error", "model crashed"), "model crashed"},
		{"status text", NewAPIError(500, "/chat", "500 Internal Server Error", ""), "500 Internal Server Error"},
		{"rate limit detail", NewRateLimitError("/chat", "429 Too Many Requests", "busy"), "busy"},
		{"terminal unwraps", NewTerminalError(3, NewAPIError(500, "/chat", "500 Internal Server Error", "")), "500 Internal Server Error"},
		{"cancelled", fmt.Errorf("waiting: %w", context.Canceled), "request cancelled"},
		{"plain", errors.New("  boom "), "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTerminalError(t *testing.T) {
	cause := NewAPIError(500, "/chat", "500 Internal Server Error", "")
	err := NewTerminalError(3, cause)

	if !errors.Is(err, cause) {
		t.Error("Expected TerminalError to unwrap to its cause")
	}
	want := "giving up after 3 attempt(s): " + cause.Error()
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
