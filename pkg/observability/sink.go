package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/typeguard"
	"github.com/aretw0/typeguard/internal/logging"
	"github.com/aretw0/typeguard/pkg/ports"
	"github.com/aretw0/typeguard/pkg/violation"
)

// SinkHooks records a report for every pass that produced violations. The
// report takes the pass ID. Sink failures are logged and never affect the
// call. A nil logger discards them.
func SinkHooks(sink ports.ReportSink, logger *slog.Logger) typeguard.Hooks {
	if logger == nil {
		logger = logging.NewNop()
	}
	return typeguard.Hooks{
		OnPassEnd: func(ctx context.Context, e *typeguard.PassEvent) {
			if len(e.Violations) == 0 {
				return
			}
			report := violation.NewReport(e.Subject, e.Mode, e.Violations)
			report.ID = e.ID
			if err := sink.Record(ctx, report); err != nil {
				logger.ErrorContext(ctx, "failed to record report", "pass_id", e.ID, "err", err)
			}
		},
	}
}
