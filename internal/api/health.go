package api

import (
	"context"
	"fmt"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatfront/internal/errors"
	"github.com/diogo/chatfront/internal/models"
)

// Health queries the service health endpoint
func (c *Client) Health(ctx context.Context) (*models.HealthResponse, error) {
	endpoint := c.url(models.PathHealth)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, apierrors.NewNetworkError("health check", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readBody(resp, maxErrorBody)
		return nil, statusError(resp, endpoint, body)
	}

	body, err := readBody(resp, maxErrorBody)
	if err != nil {
		return nil, apierrors.NewNetworkError("read health response", endpoint, err)
	}

	status := gjson.GetBytes(body, PathStatus)
	if !status.Exists() {
		return nil, apierrors.NewParseError("missing status", PathStatus)
	}

	return &models.HealthResponse{Status: status.String()}, nil
}
