package tui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/aretw0/typeguard/pkg/schema"
	"github.com/aretw0/typeguard/pkg/validator"
	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/muesli/termenv"
)

func failingReport(t *testing.T) violation.Report {
	t.Helper()
	d := schema.MustParse("record{id: int, tags: list[str] | none}", nil)
	vs := validator.Check(map[string]any{"id": "7", "tags": []any{1}}, d, "user")
	if len(vs) != 2 {
		t.Fatalf("expected 2 violations, got %d", len(vs))
	}
	return violation.NewReport(violation.Subject{Kind: "value", Name: "user"}, violation.ModeReturn, vs)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"markdown", FormatMarkdown, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestText(t *testing.T) {
	ok := violation.NewReport(violation.Subject{Kind: "value", Name: "n"}, violation.ModeReturn, nil)
	if got := Text(ok, termenv.Ascii); got != "✓ value `n` conforms\n" {
		t.Errorf("unexpected text for passing report: %q", got)
	}

	got := Text(failingReport(t), termenv.Ascii)
	for _, want := range []string{
		"✗ value `user`: 2 violations",
		"  - [type of argument] typing violation in value `user`",
		"  - union (or)",
		"    - [type of argument]",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected text to contain %q.\nGot:\n%s", want, got)
		}
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(failingReport(t))
	for _, want := range []string{
		"# value `user`",
		"**2 violations** (mode `return`)",
		"| type of argument | `user.id` | `int` | `string` |",
		"## Messages",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected markdown to contain %q.\nGot:\n%s", want, md)
		}
	}
}

func TestReportWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	rw := NewReportWriter(FormatJSON)
	if err := rw.Write(&buf, failingReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	var decoded violation.Report
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not a JSON report: %v", err)
	}
	if decoded.Subject.Name != "user" || len(decoded.Violations) != 2 {
		t.Errorf("unexpected decoded report: %+v", decoded)
	}
}

func TestReportWriter_MarkdownRender(t *testing.T) {
	var buf bytes.Buffer
	rw := &ReportWriter{Format: FormatMarkdown, Render: func(s string) (string, error) {
		return strings.ToUpper(s), nil
	}}
	if err := rw.Write(&buf, failingReport(t)); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# VALUE `USER`") {
		t.Errorf("expected rendered markdown, got %q", buf.String())
	}
}
