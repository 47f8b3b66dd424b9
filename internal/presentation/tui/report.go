package tui

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/typeguard/pkg/violation"
	"github.com/muesli/termenv"
)

// Format selects how reports are written.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	}
	return "", fmt.Errorf("unknown format %q (want text, markdown or json)", s)
}

// ReportWriter writes reports in one format.
type ReportWriter struct {
	Format  Format
	Profile termenv.Profile
	Render  func(string) (string, error)
}

// NewReportWriter builds a writer for f. Text output is coloured according
// to the terminal's profile; markdown is rendered with glamour.
func NewReportWriter(f Format) *ReportWriter {
	w := &ReportWriter{Format: f, Profile: termenv.ColorProfile()}
	if f == FormatMarkdown {
		w.Render = NewRenderer()
	}
	return w
}

// Write writes r to out.
func (rw *ReportWriter) Write(out io.Writer, r violation.Report) error {
	switch rw.Format {
	case FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		md := Markdown(r)
		if rw.Render != nil {
			rendered, err := rw.Render(md)
			if err != nil {
				return err
			}
			md = rendered
		}
		_, err := io.WriteString(out, md)
		return err
	}
	_, err := io.WriteString(out, Text(r, rw.Profile))
	return err
}

// Text renders r for a terminal.
func Text(r violation.Report, p termenv.Profile) string {
	var sb strings.Builder
	if r.OK() {
		sb.WriteString(p.String("✓ ").Foreground(p.Color("#22c55e")).String())
		sb.WriteString(fmt.Sprintf("%s conforms\n", r.Subject))
		return sb.String()
	}

	sb.WriteString(p.String("✗ ").Foreground(p.Color("#ef4444")).String())
	sb.WriteString(fmt.Sprintf("%s: %s\n", r.Subject, plural(len(r.Violations))))
	for _, e := range r.Violations {
		writeEntry(&sb, e, 1, p)
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, e violation.Entry, depth int, p termenv.Profile) {
	indent := strings.Repeat("  ", depth)
	if len(e.Children) == 0 {
		label := p.String("[" + e.Label + "]").Faint().String()
		sb.WriteString(fmt.Sprintf("%s- %s %s\n", indent, label, e.Message))
		return
	}
	head := p.String(fmt.Sprintf("%s (%s)", e.Label, e.Combination)).Foreground(p.Color("#f59e0b")).String()
	sb.WriteString(fmt.Sprintf("%s- %s\n", indent, head))
	for _, child := range e.Children {
		writeEntry(sb, child, depth+1, p)
	}
}

// Markdown renders r as a markdown document.
func Markdown(r violation.Report) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s\n\n", r.Subject))
	if r.OK() {
		sb.WriteString("No violations.\n")
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("**%s** (mode `%s`)\n\n", plural(len(r.Violations)), r.Mode))
	sb.WriteString("| Label | Path | Expected | Got |\n|---|---|---|---|\n")
	for _, e := range flatten(r.Violations) {
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n", e.Label, cell(e.Path), cell(e.Expected), cell(e.Got)))
	}
	sb.WriteString("\n## Messages\n\n")
	for _, e := range r.Violations {
		sb.WriteString(fmt.Sprintf("- %s\n", strings.ReplaceAll(e.Message, "\n", "\n  ")))
	}
	return sb.String()
}

// flatten lists the leaves of a violation tree in order.
func flatten(entries []violation.Entry) []violation.Entry {
	var out []violation.Entry
	for _, e := range entries {
		if len(e.Children) == 0 {
			out = append(out, e)
			continue
		}
		out = append(out, flatten(e.Children)...)
	}
	return out
}

func cell(s string) string {
	if s == "" {
		return ""
	}
	return "`" + strings.ReplaceAll(s, "|", "\\|") + "`"
}

func plural(n int) string {
	if n == 1 {
		return "1 violation"
	}
	return fmt.Sprintf("%d violations", n)
}
