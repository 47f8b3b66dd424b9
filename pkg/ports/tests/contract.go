package tests

import (
	"context"
	"errors"
	"slices"
	"testing"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/observability"
	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/violation"
)

// SinkPipelineContractTest wires sink behind a validated function and verifies
// that failing calls are reported and passing calls are not.
// The sink should start empty.
func SinkPipelineContractTest(t *testing.T, sink ports.ReportSink) {
	t.Helper()
	ctx := context.Background()

	double, err := typeguard.New("double", func(x any) any { return x }, typeguard.Signature{
		Params: []typeguard.Param{{Name: "x", Type: descriptor.Of[int]()}},
		Return: descriptor.Of[int](),
	},
		typeguard.WithMode(violation.ModeReturn),
		typeguard.WithHooks(observability.SinkHooks(sink, nil)),
	)
	if err != nil {
		t.Fatalf("failed to wrap function: %v", err)
	}

	// 1. A passing call records nothing
	t.Run("Passing_NotRecorded", func(t *testing.T) {
		if _, err := double.Call(ctx, 2); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		reports, err := sink.Recent(ctx, 0)
		if err != nil {
			t.Fatalf("unexpected error listing reports: %v", err)
		}
		if len(reports) != 0 {
			t.Errorf("expected no reports, got %d", len(reports))
		}
	})

	// 2. A failing call is recorded under its pass ID
	t.Run("Failing_Recorded", func(t *testing.T) {
		res, err := double.Call(ctx, "two")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		reports, err := sink.Recent(ctx, 0)
		if err != nil {
			t.Fatalf("unexpected error listing reports: %v", err)
		}
		if len(reports) != 1 {
			t.Fatalf("expected 1 report, got %d", len(reports))
		}

		got := reports[0]
		if got.Subject.Name != "double" {
			t.Errorf("subject mismatch: got %q", got.Subject.Name)
		}
		// The argument and the echoed return value both violate int.
		if len(got.Violations) != len(res.Violations) || len(got.Violations) != 2 {
			t.Errorf("expected 2 violations, got %d", len(got.Violations))
		}

		loaded, err := sink.Load(ctx, got.ID)
		if err != nil {
			t.Fatalf("unexpected error loading report %s: %v", got.ID, err)
		}
		if loaded.ID != got.ID {
			t.Errorf("id mismatch: got %q, want %q", loaded.ID, got.ID)
		}
		_ = sink.Delete(ctx, got.ID)
	})
}

// SignatureLoaderContractTest is a reusable test suite that verifies if an
// adapter complies with ports.SignatureLoader.
func SignatureLoaderContractTest(t *testing.T, loader ports.SignatureLoader, setupData map[string][]byte) {
	t.Helper()

	// 1. Test Get (Success)
	t.Run("Get_Success", func(t *testing.T) {
		for name, expectedContent := range setupData {
			content, err := loader.Get(name)
			if err != nil {
				t.Fatalf("unexpected error getting signature %s: %v", name, err)
			}
			if string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", name, content, expectedContent)
			}
		}
	})

	// 2. Test Get (NotFound)
	t.Run("Get_NotFound", func(t *testing.T) {
		_, err := loader.Get("non-existent-signature")
		if !errors.Is(err, ports.ErrSignatureNotFound) {
			t.Errorf("expected ErrSignatureNotFound, got %v", err)
		}
	})

	// 3. Test List
	t.Run("List", func(t *testing.T) {
		names, err := loader.List()
		if err != nil {
			t.Fatalf("unexpected error listing signatures: %v", err)
		}

		if len(names) != len(setupData) {
			t.Errorf("expected %d signatures, got %d", len(setupData), len(names))
		}
		if !slices.IsSorted(names) {
			t.Errorf("expected sorted names, got %v", names)
		}

		for name := range setupData {
			if !slices.Contains(names, name) {
				t.Errorf("signature %s missing from list", name)
			}
		}
	})
}
