package typeguard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"slices"
	"time"

	"github.com/aretw0/typeguard/internal/bind"
	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/validator"
	"github.com/aretw0/typeguard/pkg/value"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/google/uuid"
)

var errorType = reflect.TypeFor[error]()

// Func is a validating wrapper around a Go function.
// It holds only immutable configuration and is safe for concurrent use.
type Func struct {
	subject violation.Subject
	fn      reflect.Value
	ft      reflect.Type
	sig     Signature
	params  []bind.Param

	mode     violation.Mode
	deferred bool
	include  []string
	exclude  []string
	logger   *slog.Logger
	hooks    []Hooks
	warner   violation.Warner
}

// Result is the outcome of a call. Violations is populated in every mode;
// under raise it duplicates what the returned *violation.Error carries.
type Result struct {
	Value      any
	Violations []violation.Violation
}

// OK reports whether the call produced no violations.
func (r Result) OK() bool { return len(r.Violations) == 0 }

// New wraps fn, a Go function whose parameters correspond one to one with
// sig.Params. For a variadic function the last parameter receives the
// variadic slice.
func New(name string, fn any, sig Signature, opts ...Option) (*Func, error) {
	rv := reflect.ValueOf(fn)
	if fn == nil || rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrNotCallable, fn)
	}
	ft := rv.Type()
	if ft.NumIn() != len(sig.Params) {
		return nil, fmt.Errorf("%w: %s takes %d parameters, signature declares %d",
			ErrSignatureMismatch, name, ft.NumIn(), len(sig.Params))
	}
	if err := sig.check(); err != nil {
		return nil, err
	}

	f := &Func{
		subject: violation.Subject{Kind: "function", Name: name},
		fn:      rv,
		ft:      ft,
		sig:     sig,
		params:  sig.bindParams(ft.IsVariadic()),
		mode:    violation.ModeRaise,
	}
	for _, opt := range opts {
		opt(f)
	}
	if _, err := violation.ParseMode(string(f.mode)); err != nil {
		return nil, err
	}

	if f.warner == nil {
		if f.logger != nil {
			f.warner = violation.LogWarner(f.logger)
		} else {
			f.warner = violation.LogWarner(slog.Default())
		}
	}
	if f.logger == nil {
		f.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	f.logger = f.logger.With("subject", f.subject.Name)
	return f, nil
}

// Declare wraps fn with a signature inferred from its Go types.
func Declare(name string, fn any, opts ...Option) (*Func, error) {
	sig, err := Infer(fn)
	if err != nil {
		return nil, err
	}
	return New(name, fn, sig, opts...)
}

// Name returns the wrapped function's name.
func (f *Func) Name() string { return f.subject.Name }

// Subject returns the subject violations are reported against.
func (f *Func) Subject() violation.Subject { return f.subject }

// Signature returns the declared signature.
func (f *Func) Signature() Signature { return f.sig }

// Mode returns the handling mode.
func (f *Func) Mode() violation.Mode { return f.mode }

// DeclaredSignature implements descriptor.Signed, so a wrapped function is
// compared by its declared types when passed where a callable is expected.
func (f *Func) DeclaredSignature() ([]descriptor.Descriptor, descriptor.Descriptor) {
	return f.sig.Descriptors()
}

// Call invokes the function with positional arguments.
func (f *Func) Call(ctx context.Context, args ...any) (Result, error) {
	return f.CallArgs(ctx, Args{Positional: args})
}

// CallArgs validates the arguments, invokes the function and validates its
// result. Binding problems and missing arguments are returned before any
// validation. If the function returns a non-nil error it is returned after
// the violations have been handled, joined with any raised violation error.
func (f *Func) CallArgs(ctx context.Context, args Args) (Result, error) {
	return f.execute(ctx, args, f.invoke)
}

// Validate runs the argument half of a pass without invoking the function.
func (f *Func) Validate(ctx context.Context, args Args) (Result, error) {
	return f.execute(ctx, args, func(bind.Bound) (any, bool, error) {
		return nil, false, nil
	})
}

// Replay validates a recorded call: the arguments and the value the function
// returned for them. The function is not invoked.
func (f *Func) Replay(ctx context.Context, args Args, returned any) (Result, error) {
	return f.execute(ctx, args, func(bind.Bound) (any, bool, error) {
		return returned, true, nil
	})
}

// producer yields the call result. returned is false when there is no value
// to validate.
type producer func(bind.Bound) (v any, returned bool, err error)

func (f *Func) execute(ctx context.Context, args Args, produce producer) (Result, error) {
	bound, err := bind.Bind(f.params, args)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", f.subject, err)
	}
	if missing := bind.Missing(f.params, bound); len(missing) > 0 {
		return Result{}, &MissingArgumentError{Subject: f.subject, Names: missing}
	}

	r := f.begin(ctx)
	for _, p := range f.sig.Params {
		if !f.included(p.Name) {
			continue
		}
		if err := r.check(ctx, bound[p.Name], p.Type, p.Name); err != nil {
			return r.end(ctx, nil, err)
		}
	}

	v, returned, callErr := produce(bound)
	if returned && f.sig.Return != nil && f.included(ReturnName) {
		if err := r.check(ctx, v, f.sig.Return, ReturnName); err != nil {
			return r.end(ctx, v, joinErrors(err, callErr))
		}
	}

	var handleErr error
	if f.deferred {
		handleErr = r.handler.HandleAll(ctx, r.pass.Violations())
	}
	return r.end(ctx, v, joinErrors(handleErr, callErr))
}

func (f *Func) included(name string) bool {
	if slices.Contains(f.exclude, name) {
		return false
	}
	return len(f.include) == 0 || slices.Contains(f.include, name)
}

// run is the state of one pass.
type run struct {
	f       *Func
	pass    *validator.Pass
	handler violation.Handler
	event   *PassEvent
}

func (f *Func) begin(ctx context.Context) *run {
	r := &run{
		f:       f,
		pass:    validator.New(f.subject, nil),
		handler: violation.Handler{Mode: f.mode, Warner: f.warner},
		event: &PassEvent{
			ID:        uuid.NewString(),
			Subject:   f.subject,
			Mode:      f.mode,
			Deferred:  f.deferred,
			Timestamp: time.Now(),
		},
	}
	for _, h := range f.hooks {
		if h.OnPassStart != nil {
			h.OnPassStart(ctx, r.event)
		}
	}
	f.logger.DebugContext(ctx, "validation pass started", "pass_id", r.event.ID, "mode", f.mode)
	return r
}

// check validates one value. Outside deferred mode each new violation is
// handled immediately, so raise fails fast.
func (r *run) check(ctx context.Context, v any, d descriptor.Descriptor, path string) error {
	found := r.pass.Validate(v, d, path)
	for _, vi := range found {
		for _, h := range r.f.hooks {
			if h.OnViolation != nil {
				h.OnViolation(ctx, &ViolationEvent{
					PassID:    r.event.ID,
					Subject:   r.f.subject,
					Path:      path,
					Violation: vi,
				})
			}
		}
	}
	if r.f.deferred {
		return nil
	}
	for _, vi := range found {
		if err := r.handler.Handle(ctx, vi); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) end(ctx context.Context, v any, err error) (Result, error) {
	res := Result{Value: v, Violations: r.pass.Violations()}

	r.event.Duration = time.Since(r.event.Timestamp)
	r.event.Violations = res.Violations
	r.event.Err = err
	for _, h := range r.f.hooks {
		if h.OnPassEnd != nil {
			h.OnPassEnd(ctx, r.event)
		}
	}
	r.f.logger.DebugContext(ctx, "validation pass finished",
		"pass_id", r.event.ID,
		"violations", len(res.Violations),
		"duration", r.event.Duration,
	)
	return res, err
}

func (f *Func) invoke(bound bind.Bound) (any, bool, error) {
	in, err := f.arguments(bound)
	if err != nil {
		return nil, false, err
	}

	var out []reflect.Value
	if f.ft.IsVariadic() {
		out = f.fn.CallSlice(in)
	} else {
		out = f.fn.Call(in)
	}
	v, callErr := f.results(out)
	return v, true, callErr
}

// arguments converts bound values into call arguments, in parameter order.
func (f *Func) arguments(bound bind.Bound) ([]reflect.Value, error) {
	in := make([]reflect.Value, f.ft.NumIn())
	for i, p := range f.sig.Params {
		pt := f.ft.In(i)
		v := bound[p.Name]

		var (
			arg reflect.Value
			ok  bool
		)
		if f.params[i].Variadic {
			arg, ok = variadicArg(v, pt)
		} else {
			arg, ok = assignable(v, pt)
		}
		if !ok {
			return nil, &ArgumentError{Subject: f.subject, Name: p.Name, Want: pt, Got: reflect.TypeOf(v)}
		}
		in[i] = arg
	}
	return in, nil
}

func assignable(v any, t reflect.Type) (reflect.Value, bool) {
	if v == nil {
		switch t.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), true
		}
		return reflect.Value{}, false
	}
	rv := reflect.ValueOf(v)
	if !rv.Type().AssignableTo(t) {
		return reflect.Value{}, false
	}
	return rv, true
}

// variadicArg builds the slice passed to a variadic parameter of type t from
// either a ready slice or the []any collected by binding.
func variadicArg(v any, t reflect.Type) (reflect.Value, bool) {
	if arg, ok := assignable(v, t); ok {
		return arg, true
	}
	items, ok := v.([]any)
	if !ok {
		return reflect.Value{}, false
	}
	s := reflect.MakeSlice(t, len(items), len(items))
	for i, item := range items {
		e, ok := assignable(item, t.Elem())
		if !ok {
			return reflect.Value{}, false
		}
		s.Index(i).Set(e)
	}
	return s, true
}

// results splits off a trailing error and shapes the remaining results:
// none is nil, one is the value itself, several form a value.Tuple.
func (f *Func) results(out []reflect.Value) (any, error) {
	n := len(out)
	var callErr error
	if n > 0 && f.ft.Out(n-1) == errorType {
		if e, ok := out[n-1].Interface().(error); ok {
			callErr = e
		}
		n--
	}
	switch n {
	case 0:
		return nil, callErr
	case 1:
		return out[0].Interface(), callErr
	}
	t := make(value.Tuple, n)
	for i := range t {
		t[i] = out[i].Interface()
	}
	return t, callErr
}
