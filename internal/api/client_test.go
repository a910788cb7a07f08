package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/chatfront/internal/errors"
)

// fakeDoer answers every request with a canned response
type fakeDoer struct {
	mu       sync.Mutex
	status   int
	body     string
	err      error
	requests []*http.Request
	bodies   []string
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests = append(f.requests, req)
	if req.Body != nil {
		b, _ := io.ReadAll(req.Body)
		f.bodies = append(f.bodies, string(b))
	}
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Status:     fmt.Sprintf("%d %s", f.status, http.StatusText(f.status)),
		Body:       io.NopCloser(strings.NewReader(f.body)),
		Header:     make(http.Header),
	}, nil
}

func newTestClient(t *testing.T, doer *fakeDoer) *Client {
	t.Helper()
	c, err := NewClient("http://chat.test/", WithHTTPDoer(doer))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return c
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		want     string
		wantErr  bool
	}{
		{"trailing slash trimmed", "http://localhost:8000/", "http://localhost:8000", false},
		{"empty uses default", "", "http://localhost:8000", false},
		{"https", "https://chat.example.com", "https://chat.example.com", false},
		{"bad scheme", "ftp://x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.endpoint, WithHTTPDoer(&fakeDoer{}))
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && c.Endpoint() != tt.want {
				t.Errorf("Endpoint() = %q, want %q", c.Endpoint(), tt.want)
			}
		})
	}
}

func TestChatSuccess(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"response":"Hello **there**"}`}
	c := newTestClient(t, doer)

	resp, err := c.Chat(context.Background(), "hi")
	if err != nil {
		t.Fatalf("Chat() error = %v", err)
	}
	if resp.Text() != "Hello **there**" {
		t.Errorf("Text() = %q", resp.Text())
	}

	if len(doer.requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(doer.requests))
	}
	req := doer.requests[0]
	if req.Method != http.MethodPost {
		t.Errorf("method = %s, want POST", req.Method)
	}
	if req.URL.String() != "http://chat.test/chat" {
		t.Errorf("url = %s", req.URL.String())
	}
	if req.Header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", req.Header.Get("Content-Type"))
	}
	if doer.bodies[0] != `{"message":"hi"}` {
		t.Errorf("body = %s", doer.bodies[0])
	}
}

func TestChatEmptyMessage(t *testing.T) {
	doer := &fakeDoer{status: 200}
	c := newTestClient(t, doer)

	if _, err := c.Chat(context.Background(), "  \n"); !errors.Is(err, apierrors.ErrEmptyInput) {
		t.Errorf("Chat() error = %v, want ErrEmptyInput", err)
	}
	if len(doer.requests) != 0 {
		t.Error("empty message must not hit the network")
	}
}

func TestChatErrors(t *testing.T) {
	tests := []struct {
		name        string
		doer        *fakeDoer
		check       func(error) bool
		wantMessage string
	}{
		{
			name:        "rate limited with detail",
			doer:        &fakeDoer{status: 429, body: `{"detail":"slow down"}`},
			check:       apierrors.IsRateLimitError,
			wantMessage: "slow down",
		},
		{
			name:        "rate limited without body",
			doer:        &fakeDoer{status: 429},
			check:       func(err error) bool { return errors.Is(err, apierrors.ErrRateLimited) },
			wantMessage: "429 Too Many Requests",
		},
		{
			name:        "server error with detail",
			doer:        &fakeDoer{status: 500, body: `{"detail":"model exploded"}`},
			check:       func(err error) bool { return apierrors.GetHTTPStatus(err) == 500 },
			wantMessage: "model exploded",
		},
		{
			name:        "server error html body",
			doer:        &fakeDoer{status: 502, body: `<html>bad gateway</html>`},
			check:       func(err error) bool { return apierrors.GetHTTPStatus(err) == 502 && !apierrors.IsRateLimitError(err) },
			wantMessage: "502 Bad Gateway",
		},
		{
			name:        "network failure",
			doer:        &fakeDoer{err: errors.New("connection refused")},
			check:       apierrors.IsNetworkError,
			wantMessage: "connection refused",
		},
		{
			name:        "missing response field",
			doer:        &fakeDoer{status: 200, body: `{"other":1}`},
			check:       apierrors.IsParseError,
			wantMessage: "",
		},
		{
			name:        "null response field",
			doer:        &fakeDoer{status: 200, body: `{"response":null}`},
			check:       apierrors.IsParseError,
			wantMessage: "",
		},
		{
			name:        "invalid json",
			doer:        &fakeDoer{status: 200, body: `not json`},
			check:       func(err error) bool { return errors.Is(err, apierrors.ErrInvalidResponse) },
			wantMessage: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.doer)
			resp, err := c.Chat(context.Background(), "hi")
			if err == nil {
				t.Fatalf("Chat() = %+v, want error", resp)
			}
			if !tt.check(err) {
				t.Errorf("Chat() error %T %v did not match", err, err)
			}
			if tt.wantMessage != "" {
				if got := apierrors.UserMessage(err); got != tt.wantMessage {
					t.Errorf("UserMessage() = %q, want %q", got, tt.wantMessage)
				}
			}
		})
	}
}

func TestChatErrorBodyIsCapped(t *testing.T) {
	doer := &fakeDoer{status: 500, body: strings.Repeat("x", 10000)}
	c := newTestClient(t, doer)

	_, err := c.Chat(context.Background(), "hi")
	var ae *apierrors.APIError
	if !errors.As(err, &ae) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if len(ae.Body) != maxErrorBody {
		t.Errorf("body length = %d, want %d", len(ae.Body), maxErrorBody)
	}
}

func TestChatCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doer := &fakeDoer{err: errors.New("net/http: request canceled")}
	c := newTestClient(t, doer)

	_, err := c.Chat(ctx, "hi")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Chat() error = %v, want context.Canceled", err)
	}
	if apierrors.UserMessage(err) != "request cancelled" {
		t.Errorf("UserMessage() = %q", apierrors.UserMessage(err))
	}
}

func TestHealth(t *testing.T) {
	doer := &fakeDoer{status: 200, body: `{"status":"ok"}`}
	c := newTestClient(t, doer)

	resp, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("Status = %q", resp.Status)
	}
	if doer.requests[0].Method != http.MethodGet || doer.requests[0].URL.Path != "/health" {
		t.Errorf("unexpected request %s %s", doer.requests[0].Method, doer.requests[0].URL)
	}
}

func TestHealthFailure(t *testing.T) {
	c := newTestClient(t, &fakeDoer{status: 503})
	if _, err := c.Health(context.Background()); apierrors.GetHTTPStatus(err) != 503 {
		t.Errorf("Health() error = %v, want 503", err)
	}

	c = newTestClient(t, &fakeDoer{status: 200, body: `{}`})
	if _, err := c.Health(context.Background()); !apierrors.IsParseError(err) {
		t.Errorf("Health() error = %v, want parse error", err)
	}
}
