package commands

import (
	"io"
	"log/slog"
	"os"

	"github.com/diogo/chatfront/internal/config"
)

// setupLogging installs a JSON slog handler at level writing to w and
// returns the logger.
func setupLogging(level string, w io.Writer) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	logger := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

// openLogFile opens the append-only log file under the config directory.
// It returns io.Discard and a no-op closer when the file cannot be opened.
func openLogFile() (io.Writer, func()) {
	if _, err := config.EnsureConfigDir(); err != nil {
		return io.Discard, func() {}
	}
	path, err := config.GetLogPath()
	if err != nil {
		return io.Discard, func() {}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { _ = f.Close() }
}
