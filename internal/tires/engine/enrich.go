package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/narrative"
	"tire-backend/internal/tires/problems"
)

// WarnEnrichmentFailed is set when the enrichment stage itself failed and the
// baseline was returned unchanged.
const WarnEnrichmentFailed = "enrichment_failed"

// Branch names, used in warnings and metrics.
const (
	BranchAnalysis  = "analysis"
	BranchProblems  = "problems"
	BranchBrand     = "brand"
	BranchTechnical = "technical"
)

// settled holds one outcome slot per branch. Each branch writes only its own slot.
type settled struct {
	analysis  narrative.Outcome[narrative.Analysis]
	problems  narrative.Outcome[[]tires.Problem]
	brand     narrative.Outcome[int]
	technical narrative.Outcome[narrative.Report]
	took      [4]time.Duration
}

// Enrich runs the four narrative branches concurrently, each under its own
// deadline, and merges whatever they produced into base. It never fails: a
// branch that does not deliver falls back, and a failure of the stage as a
// whole returns base marked as degraded.
func (e *Engine) Enrich(ctx context.Context, attrs tires.Attributes, signal tires.VisionSignal, base tires.AnalysisResult) (out tires.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			e.observer.EnrichmentFailed(ctx, r)
			out = base.Clone()
			out.Degraded = true
			out.Warnings = append(out.Warnings, WarnEnrichmentFailed)
		}
	}()

	in := narrative.Input{Attrs: attrs, Signal: signal, Facts: base.Facts, Scores: base.ScoreComponents}
	var s settled
	var g errgroup.Group
	g.Go(func() error {
		s.analysis, s.took[0] = runBranch(ctx, e.branchTimeout, narrative.Analysis{}, func(ctx context.Context) narrative.Outcome[narrative.Analysis] {
			return e.narrator.Analysis(ctx, in)
		})
		return nil
	})
	g.Go(func() error {
		s.problems, s.took[1] = runBranch(ctx, e.branchTimeout, []tires.Problem(nil), func(ctx context.Context) narrative.Outcome[[]tires.Problem] {
			return e.narrator.Problems(ctx, in)
		})
		return nil
	})
	g.Go(func() error {
		s.brand, s.took[2] = runBranch(ctx, e.branchTimeout, narrative.BrandFailedScore, func(ctx context.Context) narrative.Outcome[int] {
			return e.narrator.Brand(ctx, in)
		})
		return nil
	})
	g.Go(func() error {
		s.technical, s.took[3] = runBranch(ctx, e.branchTimeout, narrative.Report{}, func(ctx context.Context) narrative.Outcome[narrative.Report] {
			return e.narrator.Technical(ctx, in)
		})
		return nil
	})
	_ = g.Wait()

	for i, b := range []struct{ name, label, reason string }{
		{BranchAnalysis, s.analysis.Label(), s.analysis.Reason},
		{BranchProblems, s.problems.Label(), s.problems.Reason},
		{BranchBrand, s.brand.Label(), s.brand.Reason},
		{BranchTechnical, s.technical.Label(), s.technical.Reason},
	} {
		e.observer.BranchSettled(ctx, b.name, b.label, b.reason, s.took[i])
	}
	return e.merge(ctx, base, s)
}

// runBranch calls fn under the branch deadline and reports how long it took.
// The branch settles as soon as fn returns or the deadline/caller context
// ends, whichever comes first; a panic in fn settles it as a fallback.
func runBranch[T any](ctx context.Context, timeout time.Duration, fallback T, fn func(context.Context) narrative.Outcome[T]) (narrative.Outcome[T], time.Duration) {
	start := time.Now()
	bctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan narrative.Outcome[T], 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- narrative.Fallback(fallback, narrative.ReasonPanic)
			}
		}()
		done <- fn(bctx)
	}()

	select {
	case o := <-done:
		return o, time.Since(start)
	case <-bctx.Done():
		return narrative.Fallback(fallback, contextReason(bctx.Err())), time.Since(start)
	}
}

func contextReason(err error) string {
	if errors.Is(err, context.Canceled) {
		return narrative.ReasonCanceled
	}
	return narrative.ReasonTimeout
}

// merge is total over every combination of outcomes.
func (e *Engine) merge(ctx context.Context, base tires.AnalysisResult, s settled) tires.AnalysisResult {
	out := base.Clone()

	if s.problems.OK {
		out.Problems = nonNil(e.extractor.FilterForAge(e.extractor.Normalize(s.problems.Value), out.Facts))
		out.MaintenanceNeeds = problems.Buckets(out.Problems)
		out.Recommendations = recommendations(out.Problems)
	}

	out.Brand = s.brand.Value
	out.SafetyScore = e.safety(ctx, out)
	out.EstimatedLifespan = lifespanFor(out.SafetyScore)

	if s.analysis.OK {
		a := s.analysis.Value
		if a.Summary != "" {
			out.Summary = a.Summary
		}
		if len(a.Recommendations) > 0 {
			out.Recommendations = a.Recommendations
		}
		if a.EstimatedLifespan != nil {
			out.EstimatedLifespan = *a.EstimatedLifespan
		}
		if a.MaintenanceNeeds != nil {
			out.MaintenanceNeeds = filled(*a.MaintenanceNeeds)
		}
	}

	if s.technical.OK {
		if raw, err := json.Marshal(s.technical.Value); err == nil {
			out.Narrative = raw
		}
	}

	for _, f := range []struct {
		name, reason string
		ok           bool
	}{
		{BranchAnalysis, s.analysis.Reason, s.analysis.OK},
		{BranchProblems, s.problems.Reason, s.problems.OK},
		{BranchBrand, s.brand.Reason, s.brand.OK},
		{BranchTechnical, s.technical.Reason, s.technical.OK},
	} {
		if f.ok {
			continue
		}
		out.Degraded = true
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s_fallback:%s", f.name, f.reason))
	}
	return out
}

func filled(m tires.MaintenanceNeeds) tires.MaintenanceNeeds {
	if m.Immediate == nil {
		m.Immediate = []string{}
	}
	if m.Soon == nil {
		m.Soon = []string{}
	}
	if m.Future == nil {
		m.Future = []string{}
	}
	return m
}
