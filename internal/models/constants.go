// Package models contains data types shared across chatfront packages.
package models

import "time"

// Endpoint paths relative to the configured base URL
const (
	PathChat   = "/chat"
	PathHealth = "/health"
)

// DefaultEndpoint is the base URL used when none is configured
const DefaultEndpoint = "http://localhost:8000"

// Retry schedule defaults
const (
	DefaultMaxAttempts   = 3
	DefaultRateLimitStep = 5 * time.Second
	DefaultRetryBackoff  = 2 * time.Second
	DefaultDwell         = 400 * time.Millisecond
)

// User-visible status strings
const (
	ErrorPrefix          = "Error: "
	RateLimitCountdown   = "Rate limit hit. Retrying in %ds..."
	PlaceholderIdle      = "Type or speak..."
	PlaceholderTyping    = "Type your message here..."
	PlaceholderListening = "Listening..."
	PlaceholderVoiceErr  = "Error listening. Try again."
)

// DefaultHeaders returns the headers sent with every chat request
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
		"User-Agent":   "chatfront/0.1",
	}
}
