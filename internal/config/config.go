// Package config handles configuration for chatfront.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`             // "dark", "light", or path to JSON theme
	CodeStyle        string `json:"code_style"`        // chroma style for code regions
	EnableEmoji      bool   `json:"enable_emoji"`      // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"` // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`        // Enable word wrap in table cells
}

// RetryConfig controls the dispatch retry schedule. Durations are stored in
// milliseconds.
type RetryConfig struct {
	MaxAttempts     int `json:"max_attempts"`
	RateLimitStepMs int `json:"rate_limit_step_ms"` // wait after a 429 on attempt i is i × step
	BackoffMs       int `json:"backoff_ms"`         // wait after any other failure
	DwellMs         int `json:"dwell_ms"`           // pause before the placeholder is replaced
}

// RateLimitStep returns the rate-limit wait unit
func (r RetryConfig) RateLimitStep() time.Duration {
	return time.Duration(r.RateLimitStepMs) * time.Millisecond
}

// Backoff returns the generic failure wait
func (r RetryConfig) Backoff() time.Duration {
	return time.Duration(r.BackoffMs) * time.Millisecond
}

// Dwell returns the reconciliation pause
func (r RetryConfig) Dwell() time.Duration {
	return time.Duration(r.DwellMs) * time.Millisecond
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the base URL of the chat service; "/chat" and "/health"
	// are appended to it.
	Endpoint string `json:"endpoint"`
	// RequestTimeout is the per-request HTTP timeout in seconds.
	RequestTimeout int         `json:"request_timeout"`
	Retry          RetryConfig `json:"retry"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel        string `json:"log_level"`
	CopyToClipboard bool   `json:"copy_to_clipboard"`
	TUITheme        string `json:"tui_theme,omitempty"`
	// VoiceCommand is a speech-to-text command line whose stdout is the
	// transcript. Empty disables voice input.
	VoiceCommand string         `json:"voice_command,omitempty"`
	Markdown     MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		CodeStyle:        "monokai",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
	}
}

// DefaultRetryConfig returns the default retry schedule
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:     3,
		RateLimitStepMs: 5000,
		BackoffMs:       2000,
		DwellMs:         400,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:        "http://localhost:8000",
		RequestTimeout:  300,
		Retry:           DefaultRetryConfig(),
		LogLevel:        "info",
		CopyToClipboard: false,
		TUITheme:        "tokyonight",
		Markdown:        DefaultMarkdownConfig(),
	}
}

// Timeout returns RequestTimeout as a duration
func (c Config) Timeout() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

// Validate checks that the configuration can drive a dispatch
func (c Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if !strings.HasPrefix(c.Endpoint, "http://") && !strings.HasPrefix(c.Endpoint, "https://") {
		return fmt.Errorf("endpoint must start with http:// or https://: %s", c.Endpoint)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.RateLimitStepMs < 0 || c.Retry.BackoffMs < 0 || c.Retry.DwellMs < 0 {
		return fmt.Errorf("retry durations cannot be negative")
	}
	if c.RequestTimeout < 1 {
		return fmt.Errorf("request_timeout must be at least 1 second, got %d", c.RequestTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q (want debug, info, warn or error)", c.LogLevel)
	}
	return nil
}

// GetConfigDir returns the configuration directory path. CHATFRONT_HOME
// overrides the default of ~/.chatfront.
func GetConfigDir() (string, error) {
	if dir := os.Getenv("CHATFRONT_HOME"); dir != "" {
		return dir, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".chatfront"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path to the log file used while the TUI runs
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "chatfront.log"), nil
}

// LoadConfig loads the configuration from disk and applies environment
// overrides
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return ApplyEnv(cfg), err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return ApplyEnv(cfg), nil // Use defaults if config doesn't exist
		}
		return ApplyEnv(cfg), fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return ApplyEnv(DefaultConfig()), fmt.Errorf("failed to parse config file: %w", err)
	}

	return ApplyEnv(cfg), nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays CHATFRONT_* environment variables onto cfg
func ApplyEnv(cfg Config) Config {
	cfg.Endpoint = envStr("CHATFRONT_ENDPOINT", cfg.Endpoint)
	cfg.LogLevel = envStr("CHATFRONT_LOG_LEVEL", cfg.LogLevel)
	cfg.VoiceCommand = envStr("CHATFRONT_VOICE_COMMAND", cfg.VoiceCommand)
	cfg.Retry.MaxAttempts = envInt("CHATFRONT_MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	return cfg
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
