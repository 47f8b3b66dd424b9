// Package checker implements ports.Checker on top of typeguard and schema.
// Values and recorded calls are checked against a placeholder function, so
// nothing user-supplied is ever invoked.
package checker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/internal/logging"
	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/schema"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/mitchellh/mapstructure"
)

// ErrInvalidRequest is wrapped by errors caused by a malformed request.
var ErrInvalidRequest = errors.New("invalid request")

// DefaultValueName is the name a checked value is reported under when the
// request does not name it.
const DefaultValueName = "value"

// Checker implements ports.Checker. It is safe for concurrent use.
type Checker struct {
	scope  *schema.Scope
	loader ports.SignatureLoader
	hooks  []typeguard.Hooks
	logger *slog.Logger
}

var _ ports.Checker = (*Checker)(nil)

// Option configures a Checker.
type Option func(*Checker)

// WithScope resolves custom type names and shared type variables.
func WithScope(scope *schema.Scope) Option {
	return func(c *Checker) {
		c.scope = scope
	}
}

// WithLoader resolves CallRequest.SignatureName.
func WithLoader(loader ports.SignatureLoader) Option {
	return func(c *Checker) {
		c.loader = loader
	}
}

// WithHooks attaches hooks to every check. Repeated calls chain.
func WithHooks(hooks typeguard.Hooks) Option {
	return func(c *Checker) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithLogger sets the logger passed to the wrapped functions.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) {
		c.logger = logger
	}
}

// New creates a Checker.
func New(opts ...Option) *Checker {
	c := &Checker{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Checker) options(kind string) []typeguard.Option {
	opts := []typeguard.Option{
		typeguard.WithMode(violation.ModeReturn),
		typeguard.WithSubjectKind(kind),
		typeguard.WithLogger(c.logger),
	}
	for _, h := range c.hooks {
		opts = append(opts, typeguard.WithHooks(h))
	}
	return opts
}

// CheckValue validates a standalone value.
func (c *Checker) CheckValue(ctx context.Context, req ports.ValueRequest) (violation.Report, error) {
	if req.Type == "" {
		return violation.Report{}, fmt.Errorf("%w: type is required", ErrInvalidRequest)
	}
	name := req.Name
	if name == "" {
		name = DefaultValueName
	}

	sf := &schema.SignatureFile{
		Name:     name,
		TypeVars: req.TypeVars,
		Params:   []schema.ParamFile{{Name: name, Type: req.Type}},
	}
	decl, err := sf.Compile(c.scope)
	if err != nil {
		return violation.Report{}, err
	}
	stub, err := decl.Stub(c.options("value")...)
	if err != nil {
		return violation.Report{}, err
	}

	res, err := stub.Validate(ctx, typeguard.Args{Positional: []any{req.Value}})
	if err != nil {
		return violation.Report{}, err
	}
	return violation.NewReport(stub.Subject(), violation.ModeReturn, res.Violations), nil
}

// CheckCall validates a recorded call against its signature.
func (c *Checker) CheckCall(ctx context.Context, req ports.CallRequest) (violation.Report, error) {
	sf, err := c.signature(req)
	if err != nil {
		return violation.Report{}, err
	}
	decl, err := sf.Compile(c.scope)
	if err != nil {
		return violation.Report{}, err
	}

	// The file's include and exclude lists still apply; its mode does not.
	stub, err := decl.Stub(c.options("function")...)
	if err != nil {
		return violation.Report{}, err
	}

	args := typeguard.Args{Positional: req.Args, Keyword: req.Kwargs}
	var res typeguard.Result
	if req.HasReturn {
		res, err = stub.Replay(ctx, args, req.Return)
	} else {
		res, err = stub.Validate(ctx, args)
	}
	if err != nil {
		return violation.Report{}, err
	}
	return violation.NewReport(stub.Subject(), violation.ModeReturn, res.Violations), nil
}

func (c *Checker) signature(req ports.CallRequest) (*schema.SignatureFile, error) {
	switch {
	case req.Signature != nil && req.SignatureName != "":
		return nil, fmt.Errorf("%w: signature and signature_name are exclusive", ErrInvalidRequest)
	case req.Signature != nil:
		return schema.SignatureFrom(req.Signature)
	case req.SignatureName != "":
		if c.loader == nil {
			return nil, fmt.Errorf("%w: %s (no signature library configured)", ports.ErrSignatureNotFound, req.SignatureName)
		}
		raw, err := c.loader.Get(req.SignatureName)
		if err != nil {
			return nil, err
		}
		return schema.DecodeSignature(raw)
	}
	return nil, fmt.Errorf("%w: signature or signature_name is required", ErrInvalidRequest)
}

// Signatures lists the names served by the configured loader.
func (c *Checker) Signatures() ([]string, error) {
	if c.loader == nil {
		return []string{}, nil
	}
	return c.loader.List()
}

// IsClientError reports whether err was caused by the request rather than by
// the checker or its backends.
func IsClientError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ports.ErrSignatureNotFound),
		errors.Is(err, typeguard.ErrMissingArgument),
		errors.Is(err, typeguard.ErrTooManyArguments),
		errors.Is(err, typeguard.ErrUnexpectedArgument),
		errors.Is(err, typeguard.ErrSignatureMismatch),
		schema.IsSignatureError(err):
		return true
	}
	return false
}

// DecodeValueRequest builds a ValueRequest from a decoded document such as
// the output of schema.ParseValue.
func DecodeValueRequest(doc any) (ports.ValueRequest, error) {
	var req ports.ValueRequest
	if err := decode(doc, &req); err != nil {
		return ports.ValueRequest{}, err
	}
	return req, nil
}

// DecodeCallRequest builds a CallRequest from a decoded document. HasReturn
// is set when the document has a return key.
func DecodeCallRequest(doc any) (ports.CallRequest, error) {
	var req ports.CallRequest
	if err := decode(doc, &req); err != nil {
		return ports.CallRequest{}, err
	}
	if m, ok := doc.(map[string]any); ok {
		_, req.HasReturn = m["return"]
	}
	return req, nil
}

func decode(doc any, out any) error {
	if _, ok := doc.(map[string]any); !ok {
		return fmt.Errorf("%w: expected a mapping, got %T", ErrInvalidRequest, doc)
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		ErrorUnused: true,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return nil
}
