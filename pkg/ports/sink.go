package ports

import (
	"context"
	"errors"

	"github.com/aretw0/typeguard/pkg/violation"
)

// ErrReportNotFound is returned by ReportSink.Load for unknown IDs.
var ErrReportNotFound = errors.New("report not found")

// ReportSink persists violation reports.
// Implementations must be safe for concurrent use.
type ReportSink interface {
	// Record stores a report under its ID, replacing any previous one.
	Record(ctx context.Context, report violation.Report) error

	// Load retrieves a report by ID.
	// Returns ErrReportNotFound if the report does not exist.
	Load(ctx context.Context, id string) (violation.Report, error)

	// Recent returns up to limit reports, newest first. A limit <= 0 returns all.
	Recent(ctx context.Context, limit int) ([]violation.Report, error)

	// Delete removes a report. Deleting an unknown ID is not an error.
	Delete(ctx context.Context, id string) error
}
