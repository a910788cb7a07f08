package models

// ChatRequest is the body posted to the chat endpoint
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the successful reply from the chat endpoint
type ChatResponse struct {
	Response string `json:"response"`
}

// Text returns the reply text
func (r *ChatResponse) Text() string {
	if r == nil {
		return ""
	}
	return r.Response
}

// ErrorResponse is the optional body returned with a non-success status
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status string `json:"status"`
}
