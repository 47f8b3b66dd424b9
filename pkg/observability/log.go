package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/typeguard"
)

// LogHooks logs the end of every pass: Info for clean passes and Warn for
// passes with violations or errors.
func LogHooks(logger *slog.Logger) typeguard.Hooks {
	return typeguard.Hooks{
		OnPassEnd: func(ctx context.Context, e *typeguard.PassEvent) {
			attrs := []any{
				"pass_id", e.ID,
				"subject", e.Subject.String(),
				"mode", e.Mode,
				"violations", len(e.Violations),
				"duration", e.Duration,
			}
			if e.Err != nil {
				attrs = append(attrs, "err", e.Err)
			}
			if Outcome(e) == OutcomePass {
				logger.InfoContext(ctx, "validation pass", attrs...)
				return
			}
			logger.WarnContext(ctx, "validation pass", attrs...)
		},
	}
}
