package api

import (
	"context"
	"sync"

	"github.com/diogo/chatfront/internal/models"
)

// MockResponse is one scripted outcome of MockClient.Chat
type MockResponse struct {
	Text string
	Err  error
}

// MockClient is a scripted implementation of ChatClientInterface for testing.
// Responses are consumed in order and the last one repeats.
type MockClient struct {
	mu sync.Mutex

	// Mock return values
	Responses   []MockResponse
	HealthVal   *models.HealthResponse
	HealthErr   error
	EndpointVal string

	// ChatFunc, when set, overrides Responses
	ChatFunc func(ctx context.Context, message string) (*models.ChatResponse, error)

	// Call recorders
	ChatCalls   int
	HealthCalls int
	Prompts     []string
}

var _ ChatClientInterface = (*MockClient)(nil)

func (m *MockClient) Chat(ctx context.Context, message string) (*models.ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls++
	m.Prompts = append(m.Prompts, message)
	fn := m.ChatFunc
	var next MockResponse
	if len(m.Responses) > 0 {
		idx := m.ChatCalls - 1
		if idx >= len(m.Responses) {
			idx = len(m.Responses) - 1
		}
		next = m.Responses[idx]
	}
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, message)
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return &models.ChatResponse{Response: next.Text}, nil
}

func (m *MockClient) Health(ctx context.Context) (*models.HealthResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.HealthCalls++
	if m.HealthErr != nil {
		return nil, m.HealthErr
	}
	if m.HealthVal != nil {
		return m.HealthVal, nil
	}
	return &models.HealthResponse{Status: "ok"}, nil
}

func (m *MockClient) Endpoint() string {
	if m.EndpointVal == "" {
		return models.DefaultEndpoint
	}
	return m.EndpointVal
}

// Calls returns the number of Chat invocations so far
func (m *MockClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ChatCalls
}
