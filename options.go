package typeguard

import (
	"log/slog"

	"github.com/aretw0/typeguard/pkg/violation"
)

// Option defines a functional option for configuring a Func.
type Option func(*Func)

// WithMode selects how violations are surfaced (default: raise).
func WithMode(mode violation.Mode) Option {
	return func(f *Func) {
		f.mode = mode
	}
}

// WithDefer collects every violation of a call and handles them once at the
// end of the pass instead of as each parameter is validated.
func WithDefer(deferred bool) Option {
	return func(f *Func) {
		f.deferred = deferred
	}
}

// WithInclude restricts validation to the named parameters. ReturnName
// selects the return value.
func WithInclude(names ...string) Option {
	return func(f *Func) {
		f.include = append(f.include, names...)
	}
}

// WithExclude skips validation of the named parameters. Exclusion wins over
// inclusion.
func WithExclude(names ...string) Option {
	return func(f *Func) {
		f.exclude = append(f.exclude, names...)
	}
}

// WithLogger sets a custom structured logger. It also receives warnings
// unless WithWarner is used.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Func) {
		f.logger = logger
	}
}

// WithHooks registers observability hooks. Repeated calls chain.
func WithHooks(hooks Hooks) Option {
	return func(f *Func) {
		f.hooks = append(f.hooks, hooks)
	}
}

// WithWarner sets the destination of warn-mode violations.
func WithWarner(w violation.Warner) Option {
	return func(f *Func) {
		f.warner = w
	}
}

// WithSubjectKind overrides the subject kind used in messages ("function" by default).
func WithSubjectKind(kind string) Option {
	return func(f *Func) {
		f.subject.Kind = kind
	}
}
