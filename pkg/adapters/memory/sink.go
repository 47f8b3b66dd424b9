package memory

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/violation"
)

// Sink implements ports.ReportSink in memory.
// Safe for concurrent use.
type Sink struct {
	data  map[string]violation.Report
	limit int
	mu    sync.RWMutex
}

// SinkOption configures a Sink.
type SinkOption func(*Sink)

// WithLimit keeps only the newest n reports. Zero means unbounded.
func WithLimit(n int) SinkOption {
	return func(s *Sink) {
		s.limit = n
	}
}

// NewSink creates a new in-memory sink.
func NewSink(opts ...SinkOption) *Sink {
	s := &Sink{
		data: make(map[string]violation.Report),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record stores the report in memory.
func (s *Sink) Record(ctx context.Context, report violation.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[report.ID] = clone(report)

	if s.limit > 0 && len(s.data) > s.limit {
		for _, old := range s.sorted()[s.limit:] {
			delete(s.data, old.ID)
		}
	}
	return nil
}

// Load retrieves a report from memory.
func (s *Sink) Load(ctx context.Context, id string) (violation.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.data[id]
	if !ok {
		return violation.Report{}, ports.ErrReportNotFound
	}
	// Copy on read so callers can't mutate stored reports.
	return clone(report), nil
}

// Recent returns up to limit reports, newest first.
func (s *Sink) Recent(ctx context.Context, limit int) ([]violation.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	reports := s.sorted()
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	for i := range reports {
		reports[i] = clone(reports[i])
	}
	return reports, nil
}

// Delete removes a report.
func (s *Sink) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// Len returns the number of stored reports.
func (s *Sink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// sorted returns the stored reports newest first. Callers hold the lock.
func (s *Sink) sorted() []violation.Report {
	reports := make([]violation.Report, 0, len(s.data))
	for _, r := range s.data {
		reports = append(reports, r)
	}
	slices.SortFunc(reports, func(a, b violation.Report) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return reports
}

func clone(r violation.Report) violation.Report {
	r.Violations = slices.Clone(r.Violations)
	return r
}
