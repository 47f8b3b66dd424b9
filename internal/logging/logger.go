package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// New creates a configured application logger.
// It writes to Stderr (to separate from Stdout reports/JSON-RPC).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithWriter(os.Stderr, level)
}

// NewWithWriter is New writing to w.
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel parses a --log-level value. "off" disables logging.
func ParseLevel(s string) (slog.Level, bool, error) {
	if strings.EqualFold(s, "off") || strings.EqualFold(s, "none") {
		return 0, false, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, false, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, true, nil
}

// FromFlag builds the logger selected by a --log-level value.
func FromFlag(s string) (*slog.Logger, error) {
	level, enabled, err := ParseLevel(s)
	if err != nil {
		return nil, err
	}
	if !enabled {
		return NewNop(), nil
	}
	return New(level), nil
}
