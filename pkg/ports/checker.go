package ports

import (
	"context"

	"github.com/aretw0/typeguard/pkg/violation"
)

// ValueRequest asks for a standalone value to be checked against a type
// expression. TypeVars declares type variables usable in Type, each mapped to
// its constraint expressions.
type ValueRequest struct {
	Type     string              `json:"type" mapstructure:"type"`
	Value    any                 `json:"value" mapstructure:"value"`
	Name     string              `json:"name,omitempty" mapstructure:"name"`
	TypeVars map[string][]string `json:"typevars,omitempty" mapstructure:"typevars"`
}

// CallRequest asks for a recorded call to be checked. Exactly one of
// Signature (an inline document) and SignatureName (resolved through a
// SignatureLoader) should be set. HasReturn tells an explicit null return
// from an absent one.
type CallRequest struct {
	Signature     map[string]any `json:"signature,omitempty" mapstructure:"signature"`
	SignatureName string         `json:"signature_name,omitempty" mapstructure:"signature_name"`
	Args          []any          `json:"args,omitempty" mapstructure:"args"`
	Kwargs        map[string]any `json:"kwargs,omitempty" mapstructure:"kwargs"`
	Return        any            `json:"return,omitempty" mapstructure:"return"`
	HasReturn     bool           `json:"-" mapstructure:"-"`
}

// Checker validates values and recorded calls and reports the outcome.
// This is the interface used by front ends (HTTP, MCP, CLI).
type Checker interface {
	// CheckValue validates a standalone value.
	CheckValue(ctx context.Context, req ValueRequest) (violation.Report, error)

	// CheckCall validates the arguments and, when present, the return value
	// of a recorded call. The function itself is never invoked.
	CheckCall(ctx context.Context, req CallRequest) (violation.Report, error)
}
