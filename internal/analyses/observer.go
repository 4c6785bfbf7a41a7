package analyses

import (
	"context"
	"fmt"
	"time"

	"tire-backend/internal/shared/metrics"
	"tire-backend/internal/shared/telemetry"
)

// Observer reports engine events as log lines and Prometheus samples.
type Observer struct {
	Metrics *metrics.Metrics
}

// NewObserver returns an Observer recording into m; nil uses the default metrics.
func NewObserver(m *metrics.Metrics) Observer {
	if m == nil {
		m = metrics.Default()
	}
	return Observer{Metrics: m}
}

func (o Observer) ScoreFallback(ctx context.Context, component string, err error) {
	fields := map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
		"component":  component,
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	telemetry.Warn("scoring.fallback", fields)
	if o.Metrics != nil {
		o.Metrics.ScorerFallback(component)
	}
}

func (o Observer) BranchSettled(ctx context.Context, branch, outcome, reason string, d time.Duration) {
	fields := map[string]any{
		"request_id":  telemetry.RequestIDFromContext(ctx),
		"branch":      branch,
		"outcome":     outcome,
		"duration_ms": d.Milliseconds(),
	}
	if reason != "" {
		fields["reason"] = reason
		telemetry.Warn("enrichment.branch", fields)
	} else {
		telemetry.Info("enrichment.branch", fields)
	}
	if o.Metrics != nil {
		o.Metrics.BranchSettled(branch, outcome, d)
	}
}

func (o Observer) EnrichmentFailed(ctx context.Context, recovered any) {
	telemetry.Error("enrichment.failed", map[string]any{
		"request_id": telemetry.RequestIDFromContext(ctx),
		"panic":      fmt.Sprint(recovered),
	})
}
