package api

import (
	"context"
	"errors"
	"testing"

	"github.com/diogo/chatfront/internal/models"
)

func TestMockClientScript(t *testing.T) {
	boom := errors.New("boom")
	m := &MockClient{Responses: []MockResponse{{Err: boom}, {Text: "second"}}}

	if _, err := m.Chat(context.Background(), "a"); !errors.Is(err, boom) {
		t.Errorf("first call error = %v, want boom", err)
	}
	for i := 0; i < 2; i++ {
		resp, err := m.Chat(context.Background(), "b")
		if err != nil || resp.Text() != "second" {
			t.Errorf("call %d = %v, %v; want last response repeated", i+2, resp, err)
		}
	}

	if m.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", m.Calls())
	}
	if len(m.Prompts) != 3 || m.Prompts[0] != "a" {
		t.Errorf("Prompts = %v", m.Prompts)
	}
}

func TestMockClientChatFunc(t *testing.T) {
	m := &MockClient{
		Responses: []MockResponse{{Text: "ignored"}},
		ChatFunc: func(_ context.Context, msg string) (*models.ChatResponse, error) {
			return &models.ChatResponse{Response: "echo " + msg}, nil
		},
	}

	resp, _ := m.Chat(context.Background(), "x")
	if resp.Text() != "echo x" {
		t.Errorf("Text() = %q", resp.Text())
	}
}

func TestMockClientHealth(t *testing.T) {
	m := &MockClient{}
	resp, err := m.Health(context.Background())
	if err != nil || resp.Status != "ok" {
		t.Errorf("Health() = %v, %v", resp, err)
	}
	if m.Endpoint() != models.DefaultEndpoint {
		t.Errorf("Endpoint() = %q", m.Endpoint())
	}

	m.HealthErr = errors.New("down")
	if _, err := m.Health(context.Background()); err == nil {
		t.Error("expected HealthErr")
	}
	if m.HealthCalls != 2 {
		t.Errorf("HealthCalls = %d", m.HealthCalls)
	}
}
