package config

import (
	"fmt"
	"sort"
	"strconv"
)

// setting binds a dotted config key to accessors on Config
type setting struct {
	get func(Config) string
	set func(*Config, string) error
}

var settings = map[string]setting{
	"endpoint": {
		get: func(c Config) string { return c.Endpoint },
		set: func(c *Config, v string) error { c.Endpoint = v; return nil },
	},
	"request_timeout": {
		get: func(c Config) string { return strconv.Itoa(c.RequestTimeout) },
		set: intSetter(func(c *Config, n int) { c.RequestTimeout = n }),
	},
	"retry.max_attempts": {
		get: func(c Config) string { return strconv.Itoa(c.Retry.MaxAttempts) },
		set: intSetter(func(c *Config, n int) { c.Retry.MaxAttempts = n }),
	},
	"retry.rate_limit_step_ms": {
		get: func(c Config) string { return strconv.Itoa(c.Retry.RateLimitStepMs) },
		set: intSetter(func(c *Config, n int) { c.Retry.RateLimitStepMs = n }),
	},
	"retry.backoff_ms": {
		get: func(c Config) string { return strconv.Itoa(c.Retry.BackoffMs) },
		set: intSetter(func(c *Config, n int) { c.Retry.BackoffMs = n }),
	},
	"retry.dwell_ms": {
		get: func(c Config) string { return strconv.Itoa(c.Retry.DwellMs) },
		set: intSetter(func(c *Config, n int) { c.Retry.DwellMs = n }),
	},
	"log_level": {
		get: func(c Config) string { return c.LogLevel },
		set: func(c *Config, v string) error { c.LogLevel = v; return nil },
	},
	"copy_to_clipboard": {
		get: func(c Config) string { return strconv.FormatBool(c.CopyToClipboard) },
		set: boolSetter(func(c *Config, b bool) { c.CopyToClipboard = b }),
	},
	"tui_theme": {
		get: func(c Config) string { return c.TUITheme },
		set: func(c *Config, v string) error { c.TUITheme = v; return nil },
	},
	"voice_command": {
		get: func(c Config) string { return c.VoiceCommand },
		set: func(c *Config, v string) error { c.VoiceCommand = v; return nil },
	},
	"markdown.style": {
		get: func(c Config) string { return c.Markdown.Style },
		set: func(c *Config, v string) error { c.Markdown.Style = v; return nil },
	},
	"markdown.code_style": {
		get: func(c Config) string { return c.Markdown.CodeStyle },
		set: func(c *Config, v string) error { c.Markdown.CodeStyle = v; return nil },
	},
	"markdown.enable_emoji": {
		get: func(c Config) string { return strconv.FormatBool(c.Markdown.EnableEmoji) },
		set: boolSetter(func(c *Config, b bool) { c.Markdown.EnableEmoji = b }),
	},
	"markdown.preserve_newlines": {
		get: func(c Config) string { return strconv.FormatBool(c.Markdown.PreserveNewLines) },
		set: boolSetter(func(c *Config, b bool) { c.Markdown.PreserveNewLines = b }),
	},
	"markdown.table_wrap": {
		get: func(c Config) string { return strconv.FormatBool(c.Markdown.TableWrap) },
		set: boolSetter(func(c *Config, b bool) { c.Markdown.TableWrap = b }),
	},
}

func intSetter(apply func(*Config, int)) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", v)
		}
		apply(c, n)
		return nil
	}
}

func boolSetter(apply func(*Config, bool)) func(*Config, string) error {
	return func(c *Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("expected true or false, got %q", v)
		}
		apply(c, b)
		return nil
	}
}

// Keys returns every settable key in sorted order
func Keys() []string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of key
func Get(cfg Config, key string) (string, error) {
	s, ok := settings[key]
	if !ok {
		return "", fmt.Errorf("unknown config key: %s", key)
	}
	return s.get(cfg), nil
}

// Set parses value into key and validates the result
func Set(cfg *Config, key, value string) error {
	s, ok := settings[key]
	if !ok {
		return fmt.Errorf("unknown config key: %s", key)
	}

	updated := *cfg
	if err := s.set(&updated, value); err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := updated.Validate(); err != nil {
		return err
	}

	*cfg = updated
	return nil
}
