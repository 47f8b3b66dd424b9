package typeguard

import (
	"context"
	"time"

	"github.com/aretw0/typeguard/pkg/violation"
)

// PassEvent describes one validation pass of a call.
type PassEvent struct {
	ID         string                `json:"id"`
	Subject    violation.Subject     `json:"subject"`
	Mode       violation.Mode        `json:"mode"`
	Deferred   bool                  `json:"deferred"`
	Timestamp  time.Time             `json:"timestamp"`
	Duration   time.Duration         `json:"duration,omitempty"`
	Violations []violation.Violation `json:"-"`
	Err        error                 `json:"-"`
}

// ViolationEvent is emitted for every violation as it is recorded.
type ViolationEvent struct {
	PassID    string
	Subject   violation.Subject
	Path      string
	Violation violation.Violation
}

// Hooks are observability callbacks. Any of them may be nil.
// They run synchronously on the calling goroutine.
type Hooks struct {
	OnPassStart func(context.Context, *PassEvent)
	OnViolation func(context.Context, *ViolationEvent)
	OnPassEnd   func(context.Context, *PassEvent)
}

// MultiHooks chains several hook sets, calling them in order.
func MultiHooks(hooks ...Hooks) Hooks {
	return Hooks{
		OnPassStart: func(ctx context.Context, e *PassEvent) {
			for _, h := range hooks {
				if h.OnPassStart != nil {
					h.OnPassStart(ctx, e)
				}
			}
		},
		OnViolation: func(ctx context.Context, e *ViolationEvent) {
			for _, h := range hooks {
				if h.OnViolation != nil {
					h.OnViolation(ctx, e)
				}
			}
		},
		OnPassEnd: func(ctx context.Context, e *PassEvent) {
			for _, h := range hooks {
				if h.OnPassEnd != nil {
					h.OnPassEnd(ctx, e)
				}
			}
		},
	}
}
