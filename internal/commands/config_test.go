package commands

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/diogo/chatfront/internal/config"
)

func TestConfigCommand_NoArgs(t *testing.T) {
	t.Run("not a terminal prints JSON", func(t *testing.T) {
		env := newTestEnv(t)
		if err := env.run("config"); err != nil {
			t.Fatal(err)
		}
		var cfg config.Config
		if err := json.Unmarshal(env.stdout.Bytes(), &cfg); err != nil {
			t.Fatalf("stdout is not JSON: %v\n%s", err, env.stdout.String())
		}
		if cfg.Endpoint != "http://localhost:8000" {
			t.Errorf("Endpoint = %q", cfg.Endpoint)
		}
		if env.tui.configCfg != nil {
			t.Error("menu should not open without a terminal")
		}
	})

	t.Run("terminal opens the menu", func(t *testing.T) {
		env := newTestEnv(t)
		env.deps.StdoutTTY = func() bool { return true }
		if err := env.run("config"); err != nil {
			t.Fatal(err)
		}
		if env.tui.configCfg == nil {
			t.Fatal("RunConfig not called")
		}
		want, _ := config.GetConfigPath()
		if env.tui.configPath != want {
			t.Errorf("path = %q, want %q", env.tui.configPath, want)
		}
	})
}

func TestConfigCommand_SetGet(t *testing.T) {
	env := newTestEnv(t)

	if err := env.run("config", "set", "log_level", "debug"); err != nil {
		t.Fatal(err)
	}
	if got := env.stdout.String(); got != "log_level = debug\n" {
		t.Errorf("set output = %q", got)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("saved LogLevel = %q", cfg.LogLevel)
	}

	env.stdout.Reset()
	if err := env.run("config", "get", "log_level"); err != nil {
		t.Fatal(err)
	}
	if got := env.stdout.String(); got != "debug\n" {
		t.Errorf("get output = %q", got)
	}
}

func TestConfigCommand_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown key on get", []string{"config", "get", "nope"}},
		{"unknown key on set", []string{"config", "set", "nope", "1"}},
		{"invalid value", []string{"config", "set", "log_level", "loud"}},
		{"missing value", []string{"config", "set", "log_level"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run(tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestConfigCommand_KeysAndPath(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config", "keys"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(env.stdout.String()), "\n")
	if len(lines) != len(config.Keys()) {
		t.Errorf("keys printed %d lines, want %d", len(lines), len(config.Keys()))
	}

	env.stdout.Reset()
	if err := env.run("config", "path"); err != nil {
		t.Fatal(err)
	}
	got := strings.TrimSpace(env.stdout.String())
	if filepath.Base(got) != "config.json" {
		t.Errorf("path = %q", got)
	}
}

func TestSpinner(t *testing.T) {
	var buf bytes.Buffer
	s := newSpinner(&buf, "Waiting")
	s.start()
	s.setMessage("Rate limit hit. Retrying in 5s...")
	s.stopWithSuccess("Done")

	out := buf.String()
	if !strings.Contains(out, "\033[?25l") || !strings.Contains(out, "\033[?25h") {
		t.Error("spinner should hide and restore the cursor")
	}
	if !strings.Contains(out, "Done") {
		t.Errorf("output = %q", out)
	}

	// stopping twice must not panic
	s.stopOnce()

	var nilSpin *spinner
	nilSpin.start()
	nilSpin.setMessage("x")
	nilSpin.stopWithSuccess("x")
	nilSpin.stopWithError()
}

func TestSetupLogging(t *testing.T) {
	tests := []struct {
		level     string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"debug", true, true, true},
		{"info", false, true, true},
		{"", false, true, true},
		{"warn", false, false, true},
		{"error", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := setupLogging(tt.level, &buf)
			logger.Debug("d-line")
			logger.Info("i-line")
			logger.Warn("w-line")

			out := buf.String()
			if strings.Contains(out, "d-line") != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v", !tt.wantDebug, tt.wantDebug)
			}
			if strings.Contains(out, "i-line") != tt.wantInfo {
				t.Errorf("info logged = %v, want %v", !tt.wantInfo, tt.wantInfo)
			}
			if strings.Contains(out, "w-line") != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", !tt.wantWarn, tt.wantWarn)
			}
		})
	}
}
