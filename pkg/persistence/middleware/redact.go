package middleware

import (
	"context"
	"regexp"
	"strings"

	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/violation"
)

// Mask replaces redacted values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.ReportSink
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks the observed value of
// violations whose path matches one of the patterns, in the entry and in
// every message that quotes it.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		patterns[i] = re
	}
	return func(next ports.ReportSink) ports.ReportSink {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Record(ctx context.Context, report violation.Report) error {
	// Copy entries so the caller's report is left untouched.
	cloned := report
	cloned.Violations = make([]violation.Entry, len(report.Violations))
	for i, e := range report.Violations {
		cloned.Violations[i], _ = m.mask(e)
	}
	return m.next.Record(ctx, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, id string) (violation.Report, error) {
	return m.next.Load(ctx, id)
}

func (m *redactMiddleware) Recent(ctx context.Context, limit int) ([]violation.Report, error) {
	return m.next.Recent(ctx, limit)
}

func (m *redactMiddleware) Delete(ctx context.Context, id string) error {
	return m.next.Delete(ctx, id)
}

// mask returns a masked copy of e and the values it hid.
func (m *redactMiddleware) mask(e violation.Entry) (violation.Entry, []string) {
	var hidden []string
	if len(e.Children) > 0 {
		children := make([]violation.Entry, len(e.Children))
		for i, c := range e.Children {
			var h []string
			children[i], h = m.mask(c)
			hidden = append(hidden, h...)
		}
		e.Children = children
	}
	if e.Got != "" && m.matches(e.Path) {
		hidden = append(hidden, e.Got)
		e.Got = Mask
	}
	for _, h := range hidden {
		e.Message = strings.ReplaceAll(e.Message, "(got `"+h+"`)", "(got `"+Mask+"`)")
	}
	return e, hidden
}

func (m *redactMiddleware) matches(path string) bool {
	for _, p := range m.patterns {
		if p.MatchString(path) {
			return true
		}
	}
	return false
}
