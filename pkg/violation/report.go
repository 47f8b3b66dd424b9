package violation

import (
	"time"

	"github.com/google/uuid"
)

// Report is a serialisable snapshot of the violations of one pass.
type Report struct {
	ID         string    `json:"id"`
	Subject    Subject   `json:"subject"`
	Mode       Mode      `json:"mode,omitempty"`
	Violations []Entry   `json:"violations"`
	CreatedAt  time.Time `json:"created_at"`
}

// Entry is the serialisable form of a Violation.
type Entry struct {
	Label       string      `json:"label"`
	Message     string      `json:"message"`
	Path        string      `json:"path,omitempty"`
	Expected    string      `json:"expected,omitempty"`
	Got         string      `json:"got,omitempty"`
	Combination Combination `json:"combination,omitempty"`
	Children    []Entry     `json:"children,omitempty"`
}

// NewReport snapshots vs.
func NewReport(subject Subject, mode Mode, vs []Violation) Report {
	entries := make([]Entry, len(vs))
	for i, v := range vs {
		entries[i] = ToEntry(v)
	}
	return Report{
		ID:         uuid.NewString(),
		Subject:    subject,
		Mode:       mode,
		Violations: entries,
		CreatedAt:  time.Now().UTC(),
	}
}

// ToEntry converts a violation, recursing into complex children.
func ToEntry(v Violation) Entry {
	e := Entry{Label: Label(v), Message: v.Message()}
	switch v := v.(type) {
	case *Simple:
		e.Path = v.Path
		e.Expected = format(v.Expected)
		e.Got = format(v.Got)
	case *Complex:
		e.Combination = v.Combination
		e.Children = make([]Entry, len(v.Children))
		for i, child := range v.Children {
			e.Children[i] = ToEntry(child)
		}
	}
	return e
}

// OK reports whether the report holds no violations.
func (r Report) OK() bool { return len(r.Violations) == 0 }
