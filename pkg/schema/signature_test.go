package schema

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/pkg/descriptor"
	"github.com/aretw0/typeguard/pkg/violation"
)

const clampYAML = `
name: clamp
mode: return
defer: true
typevars:
  T: [int, float]
params:
  - name: x
    type: T
  - name: lo
    type: T
    default: 0
  - name: hi
    type: optional[T]
    default: null
return: T
`

func TestDecodeSignature(t *testing.T) {
	sf, err := DecodeSignature([]byte(clampYAML))
	if err != nil {
		t.Fatalf("DecodeSignature() error = %v", err)
	}

	if sf.Name != "clamp" || sf.Mode != "return" || !sf.Defer {
		t.Errorf("header = %+v", sf)
	}
	if len(sf.Params) != 3 {
		t.Fatalf("Params = %d, want 3", len(sf.Params))
	}
	if sf.Params[0].HasDefault {
		t.Error("x should have no default")
	}
	if !sf.Params[1].HasDefault || sf.Params[1].Default != 0 {
		t.Errorf("lo default = %v (%v)", sf.Params[1].Default, sf.Params[1].HasDefault)
	}
	if !sf.Params[2].HasDefault || sf.Params[2].Default != nil {
		t.Errorf("hi should have an explicit null default")
	}
}

func TestDecodeSignature_Errors(t *testing.T) {
	docs := []string{
		"[1, 2]",
		"params: []",
		"name: f\nunknown: 1",
		"name: f\nparams: 3",
	}
	for _, doc := range docs {
		_, err := DecodeSignature([]byte(doc))
		if !errors.Is(err, ErrInvalidSignature) {
			t.Errorf("DecodeSignature(%q) error = %v, want ErrInvalidSignature", doc, err)
		}
	}
}

func TestCompile(t *testing.T) {
	sf, err := DecodeSignature([]byte(clampYAML))
	if err != nil {
		t.Fatalf("DecodeSignature() error = %v", err)
	}
	decl, err := sf.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	sig := decl.Signature
	tv, ok := sig.Params[0].Type.(*descriptor.TypeVar)
	if !ok || tv.Name != "T" || len(tv.Constraints) != 2 {
		t.Fatalf("x type = %v, want constrained T", sig.Params[0].Type)
	}
	// Every occurrence refers to the same variable.
	if sig.Return != tv || sig.Params[1].Type != tv {
		t.Error("type variable T should be shared across the signature")
	}
	if len(decl.Options) != 2 {
		t.Errorf("Options = %d, want mode and defer", len(decl.Options))
	}
}

func TestCompile_Errors(t *testing.T) {
	tests := []struct {
		name string
		sf   SignatureFile
	}{
		{"bad param type", SignatureFile{Name: "f", Params: []ParamFile{{Name: "x", Type: "list["}}}},
		{"bad return", SignatureFile{Name: "f", Return: "nope"}},
		{"bad mode", SignatureFile{Name: "f", Mode: "shout"}},
		{"non concrete constraint", SignatureFile{Name: "f", TypeVars: map[string][]string{"T": {"list[int]"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.sf.Compile(nil); err == nil {
				t.Errorf("Compile() error = %v, want failure", err)
			}
		})
	}
}

func TestDeclaration_Bind(t *testing.T) {
	sf, err := DecodeSignature([]byte(clampYAML))
	if err != nil {
		t.Fatalf("DecodeSignature() error = %v", err)
	}
	decl, err := sf.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	clamp, err := decl.Bind(func(x, lo, hi any) any { return x })
	if err != nil {
		t.Fatalf("Bind() error = %v", err)
	}

	res, err := clamp.Call(context.Background(), 5)
	if err != nil || !res.OK() {
		t.Fatalf("Call(5) = %v, %v", res.Violations, err)
	}
	if res.Value != 5 {
		t.Errorf("Value = %v, want 5", res.Value)
	}

	// x binds T to float64, so the int default of lo violates it.
	res, err = clamp.Call(context.Background(), 1.5)
	if err != nil {
		t.Fatalf("Call(1.5) error = %v", err)
	}
	if len(res.Violations) == 0 {
		t.Error("Call(1.5) should report a violation")
	}
}

func TestDeclaration_StubReplay(t *testing.T) {
	sf := &SignatureFile{
		Name:   "label",
		Params: []ParamFile{{Name: "n", Type: "int"}},
		Return: "str",
	}
	decl, err := sf.Compile(nil)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	stub, err := decl.Stub(typeguard.WithMode(violation.ModeReturn))
	if err != nil {
		t.Fatalf("Stub() error = %v", err)
	}

	rec, err := ParseCallRecord([]byte("args: [3]\nreturn: 4"))
	if err != nil {
		t.Fatalf("ParseCallRecord() error = %v", err)
	}
	res, err := stub.Replay(context.Background(), rec.Args, rec.Return)
	if err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if len(res.Violations) != 1 {
		t.Fatalf("Violations = %d, want 1", len(res.Violations))
	}
	simple, ok := res.Violations[0].(*violation.Simple)
	if !ok || simple.Path != typeguard.ReturnName {
		t.Errorf("violation = %v, want one on the return value", res.Violations[0])
	}
}

func TestLoadSignature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clamp.yaml")
	if err := os.WriteFile(path, []byte(clampYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	sf, err := LoadSignature(path)
	if err != nil {
		t.Fatalf("LoadSignature() error = %v", err)
	}
	if sf.Name != "clamp" {
		t.Errorf("Name = %q", sf.Name)
	}

	if _, err := LoadSignature(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadSignature() should fail for a missing file")
	}
}
