package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/typeguard/internal/presentation/tui"
	"github.com/aretw0/typeguard/pkg/checker"
	"github.com/aretw0/typeguard/pkg/observability"
	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/schema"
	"github.com/aretw0/typeguard/pkg/violation"
)

// ErrViolations is returned when at least one checked document did not
// conform. Commands map it to exit status 1.
var ErrViolations = errors.New("typing violations found")

// Stdin is the path that reads a document from standard input.
const Stdin = "-"

// CheckOptions configures the validate and check commands.
type CheckOptions struct {
	In       io.Reader
	Out      io.Writer
	Writer   *tui.ReportWriter
	Logger   *slog.Logger
	Loader   ports.SignatureLoader
	Name     string
	TypeVars map[string][]string
}

func (o CheckOptions) checker() *checker.Checker {
	opts := []checker.Option{
		checker.WithLogger(o.Logger),
		checker.WithHooks(observability.LogHooks(o.Logger)),
	}
	if o.Loader != nil {
		opts = append(opts, checker.WithLoader(o.Loader))
	}
	return checker.New(opts...)
}

func (o CheckOptions) read(path string) ([]byte, error) {
	if path == Stdin {
		return io.ReadAll(o.In)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}

// RunValidate checks the value in each file against typeExpr and writes one
// report per file.
func RunValidate(ctx context.Context, opts CheckOptions, typeExpr string, paths []string) error {
	c := opts.checker()
	failed := false
	for _, path := range paths {
		data, err := opts.read(path)
		if err != nil {
			return err
		}
		v, err := schema.ParseValue(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		report, err := c.CheckValue(ctx, ports.ValueRequest{
			Type:     typeExpr,
			Value:    v,
			Name:     opts.Name,
			TypeVars: opts.TypeVars,
		})
		if err != nil {
			return err
		}
		if err := opts.write(report, &failed); err != nil {
			return err
		}
	}
	if failed {
		return ErrViolations
	}
	return nil
}

// RunCheck checks each recorded call against a signature. signature is a
// signature file path, or a library name when opts.Loader is set and
// byName is true.
func RunCheck(ctx context.Context, opts CheckOptions, signature string, byName bool, paths []string) error {
	base := ports.CallRequest{}
	if byName {
		base.SignatureName = signature
	} else {
		data, err := opts.read(signature)
		if err != nil {
			return err
		}
		doc, err := schema.ParseValue(data)
		if err != nil {
			return fmt.Errorf("%s: %w", signature, err)
		}
		m, ok := doc.(map[string]any)
		if !ok {
			return fmt.Errorf("%s: %w: expected a mapping", signature, schema.ErrInvalidSignature)
		}
		base.Signature = m
	}

	c := opts.checker()
	failed := false
	for _, path := range paths {
		data, err := opts.read(path)
		if err != nil {
			return err
		}
		rec, err := schema.ParseCallRecord(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		req := base
		req.Args = rec.Args.Positional
		req.Kwargs = rec.Args.Keyword
		req.Return = rec.Return
		req.HasReturn = rec.Returned

		report, err := c.CheckCall(ctx, req)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := opts.write(report, &failed); err != nil {
			return err
		}
	}
	if failed {
		return ErrViolations
	}
	return nil
}

func (o CheckOptions) write(report violation.Report, failed *bool) error {
	if !report.OK() {
		*failed = true
	}
	return o.Writer.Write(o.Out, report)
}
