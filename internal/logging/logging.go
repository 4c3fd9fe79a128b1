package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is shared by every package. It discards output until Initialize runs.
var Logger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// Initialize installs a JSON logger writing to stdout at the given level
// (debug, info, warn, error; anything else means info).
func Initialize(level string) {
	InitializeWriter(os.Stdout, level)
}

func InitializeWriter(w io.Writer, level string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	Logger = slog.New(slog.NewJSONHandler(w, opts))
	slog.SetDefault(Logger)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
