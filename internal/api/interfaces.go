package api

import (
	"context"

	"github.com/diogo/chatfront/internal/models"
)

// ChatClientInterface is the surface of Client used by the dispatch
// controller and the commands
type ChatClientInterface interface {
	Chat(ctx context.Context, message string) (*models.ChatResponse, error)
	Health(ctx context.Context) (*models.HealthResponse, error)
	Endpoint() string
}

var _ ChatClientInterface = (*Client)(nil)
