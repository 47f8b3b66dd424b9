package typeguard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aretw0/typeguard/internal/bind"
	"github.com/aretw0/typeguard/pkg/violation"
)

var (
	// ErrNotCallable is returned by New when fn is not a non-nil function.
	ErrNotCallable = errors.New("not a callable function")

	// ErrSignatureMismatch is returned by New when the signature does not fit
	// the function's parameter list.
	ErrSignatureMismatch = errors.New("signature does not match function")

	// ErrMissingArgument is matched by every *MissingArgumentError.
	ErrMissingArgument = errors.New("missing required argument")

	// ErrUnassignableArgument is returned when a bound value cannot be passed
	// to the underlying Go function at all.
	ErrUnassignableArgument = errors.New("argument not assignable to parameter")

	// ErrUnknownMethod is returned by Methods for a signature naming no method.
	ErrUnknownMethod = errors.New("unknown method")

	ErrTooManyArguments   = bind.ErrTooManyArguments
	ErrUnexpectedArgument = bind.ErrUnexpectedArgument
)

// MissingArgumentError reports required parameters that received no value.
// It is returned regardless of the handling mode.
type MissingArgumentError struct {
	Subject violation.Subject
	Names   []string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Subject, ErrMissingArgument, strings.Join(e.Names, ", "))
}

func (e *MissingArgumentError) Unwrap() error { return ErrMissingArgument }

// ArgumentError reports a value that the Go function cannot receive, such as
// a string bound to an int parameter under the warn or return modes.
type ArgumentError struct {
	Subject violation.Subject
	Name    string
	Want    reflect.Type
	Got     reflect.Type
}

func (e *ArgumentError) Error() string {
	got := "nil"
	if e.Got != nil {
		got = e.Got.String()
	}
	return fmt.Sprintf("%s: argument %q: cannot use %s as %s", e.Subject, e.Name, got, e.Want)
}

func (e *ArgumentError) Unwrap() error { return ErrUnassignableArgument }

func joinErrors(a, b error) error {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return errors.Join(a, b)
}
