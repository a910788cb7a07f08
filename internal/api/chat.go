package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/chatfront/internal/errors"
	"github.com/diogo/chatfront/internal/models"
)

// GJSON paths into service responses
const (
	PathResponse = "response"
	PathDetail   = "detail"
	PathStatus   = "status"
)

// Chat posts message to the chat endpoint and returns the reply.
//
// A 429 yields *errors.RateLimitError, any other non-2xx status yields
// *errors.APIError carrying the "detail" field when the body has one, and
// a transport failure yields *errors.NetworkError.
func (c *Client) Chat(ctx context.Context, message string) (*models.ChatResponse, error) {
	if strings.TrimSpace(message) == "" {
		return nil, apierrors.ErrEmptyInput
	}

	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	endpoint := c.url(models.PathChat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	setHeaders(req)

	c.logger.Debug("chat request", "endpoint", endpoint, "bytes", len(payload))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return nil, apierrors.NewNetworkError("chat", endpoint, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := readBody(resp, maxErrorBody)
		return nil, statusError(resp, endpoint, body)
	}

	body, err := readBody(resp, maxSuccessBody)
	if err != nil {
		return nil, apierrors.NewNetworkError("read chat response", endpoint, err)
	}

	c.logger.Debug("chat response", "status", resp.StatusCode, "bytes", len(body))

	return parseChatResponse(body)
}

// parseChatResponse extracts the reply from a success body
func parseChatResponse(body []byte) (*models.ChatResponse, error) {
	if !gjson.ValidBytes(body) {
		return nil, apierrors.NewParseError("response is not valid JSON", "")
	}

	result := gjson.GetBytes(body, PathResponse)
	if !result.Exists() || result.Type == gjson.Null {
		return nil, apierrors.NewParseError("missing reply text", PathResponse)
	}

	return &models.ChatResponse{Response: result.String()}, nil
}

// statusError maps a non-2xx response onto the error taxonomy
func statusError(resp *http.Response, endpoint string, body []byte) error {
	detail := ""
	if gjson.ValidBytes(body) {
		detail = strings.TrimSpace(gjson.GetBytes(body, PathDetail).String())
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		rl := apierrors.NewRateLimitError(endpoint, resp.Status, detail)
		rl.Body = string(body)
		return rl
	}
	return apierrors.NewAPIErrorWithBody(resp.StatusCode, endpoint, resp.Status, detail, string(body))
}
