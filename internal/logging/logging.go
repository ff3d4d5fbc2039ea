// Package logging builds the service's slog logger.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

// Format is the log output format.
type Format string

// Format values.
const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseLevel converts a LOG_LEVEL value to a slog.Level.  An empty value is
// info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// ParseFormat converts a LOG_FORMAT value to a Format.  An empty value is
// JSON.
func ParseFormat(format string) (Format, error) {
	switch Format(strings.ToLower(format)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatText:
		return FormatText, nil
	default:
		return FormatJSON, fmt.Errorf("unknown log format %q", format)
	}
}

// New returns a logger writing to w.  JSON is meant for log collectors, text
// for terminals.
func New(w io.Writer, level slog.Level, format Format) *slog.Logger {
	if format == FormatText {
		return slog.New(tint.NewHandler(w, &tint.Options{
			Level:       level,
			TimeFormat:  time.RFC3339Nano,
			ReplaceAttr: dropEmpty,
		}))
	}

	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

func dropEmpty(_ []string, a slog.Attr) slog.Attr {
	if s, ok := a.Value.Any().(string); ok && s == "" {
		return slog.Attr{}
	}
	return a
}
