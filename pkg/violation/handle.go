package violation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Mode selects how violations are surfaced.
type Mode string

const (
	// ModeRaise turns violations into an *Error.
	ModeRaise Mode = "raise"
	// ModeWarn reports violations to a Warner and carries on.
	ModeWarn Mode = "warn"
	// ModeReturn only hands violations back to the caller.
	ModeReturn Mode = "return"
)

var (
	// ErrTypingViolation is matched by every *Error via errors.Is.
	ErrTypingViolation = errors.New("typing violation")

	// ErrInvalidMode is returned by ParseMode for unknown modes.
	ErrInvalidMode = errors.New("invalid handling mode")
)

// ParseMode converts a mode name. The empty string selects ModeRaise.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeRaise, nil
	case ModeRaise, ModeWarn, ModeReturn:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q (want raise, warn or return)", ErrInvalidMode, s)
}

// Error is the raised form of one or more violations.
type Error struct {
	Violations []Violation
	msg        string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return ErrTypingViolation }

// Join renders several violations as one bulleted message.
func Join(vs []Violation) string {
	msgs := make([]string, len(vs))
	for i, v := range vs {
		msgs[i] = v.Message()
	}
	return "\n    + " + strings.Join(msgs, "\n    + ")
}

// Warner receives non-fatal warnings.
type Warner interface {
	Warn(ctx context.Context, msg string, vs []Violation)
}

// WarnFunc adapts a function to Warner.
type WarnFunc func(ctx context.Context, msg string, vs []Violation)

func (f WarnFunc) Warn(ctx context.Context, msg string, vs []Violation) { f(ctx, msg, vs) }

// LogWarner emits warnings as Warn-level log records.
func LogWarner(logger *slog.Logger) Warner {
	return WarnFunc(func(ctx context.Context, msg string, vs []Violation) {
		logger.WarnContext(ctx, "typing violation", "violations", len(vs), "message", msg)
	})
}

// Handler applies a Mode to violations.
type Handler struct {
	Mode   Mode
	Warner Warner
}

// Handle surfaces a single violation as soon as it is found.
func (h Handler) Handle(ctx context.Context, v Violation) error {
	return h.apply(ctx, v.Message(), []Violation{v})
}

// HandleAll surfaces every violation of a pass at once.
func (h Handler) HandleAll(ctx context.Context, vs []Violation) error {
	if len(vs) == 0 {
		return nil
	}
	return h.apply(ctx, Join(vs), vs)
}

func (h Handler) apply(ctx context.Context, msg string, vs []Violation) error {
	switch h.Mode {
	case ModeRaise, "":
		return &Error{Violations: vs, msg: msg}
	case ModeWarn:
		if h.Warner != nil {
			h.Warner.Warn(ctx, msg, vs)
		}
	}
	return nil
}
