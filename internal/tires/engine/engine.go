// Package engine produces the AnalysisResult of one tire photo: a synchronous
// rule-based baseline, optionally enriched by four concurrent narrative calls.
package engine

import (
	"context"
	"math"
	"time"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/narrative"
	"tire-backend/internal/tires/problems"
	"tire-backend/internal/tires/rules"
	"tire-backend/internal/tires/scoring"
)

const (
	DefaultBranchTimeout = 45 * time.Second

	// PlaceholderSummary stands in until the narrative analysis supplies a summary.
	PlaceholderSummary = "Lastiğiniz kural tabanlı olarak değerlendirildi; ayrıntılı analiz şu anda kullanılamıyor."

	// GeneralAdvice is recommended when no problem suggests an action.
	GeneralAdvice = "Lastik basıncını ve diş derinliğini ayda bir kontrol edin."

	baselineLifespanConfidence = 0.5
	maxLifespanMonths          = 72
)

// Narrator issues the four enrichment calls. *narrative.Service implements it.
type Narrator interface {
	Analysis(ctx context.Context, in narrative.Input) narrative.Outcome[narrative.Analysis]
	Problems(ctx context.Context, in narrative.Input) narrative.Outcome[[]tires.Problem]
	Brand(ctx context.Context, in narrative.Input) narrative.Outcome[int]
	Technical(ctx context.Context, in narrative.Input) narrative.Outcome[narrative.Report]
}

// Observer receives the events the engine would otherwise have to log itself.
type Observer interface {
	ScoreFallback(ctx context.Context, component string, err error)
	BranchSettled(ctx context.Context, branch, outcome, reason string, d time.Duration)
	EnrichmentFailed(ctx context.Context, recovered any)
}

// NopObserver discards every event.
type NopObserver struct{}

func (NopObserver) ScoreFallback(context.Context, string, error)                        {}
func (NopObserver) BranchSettled(context.Context, string, string, string, time.Duration) {}
func (NopObserver) EnrichmentFailed(context.Context, any)                                {}

type Engine struct {
	scorer        *scoring.Scorer
	extractor     *problems.Extractor
	narrator      Narrator
	observer      Observer
	branchTimeout time.Duration
	now           func() time.Time
}

type Option func(*Engine)

func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observer = o
		}
	}
}

// WithBranchTimeout bounds each enrichment call; non-positive values keep the default.
func WithBranchTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.branchTimeout = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

func WithRules(table *rules.Table) Option {
	return func(e *Engine) {
		e.scorer = scoring.New(table)
		e.extractor = problems.New(table)
	}
}

// New returns an Engine. A nil narrator disables enrichment: Analyze returns the baseline.
func New(narrator Narrator, opts ...Option) *Engine {
	e := &Engine{
		scorer:        scoring.New(nil),
		extractor:     problems.New(nil),
		narrator:      narrator,
		observer:      NopObserver{},
		branchTimeout: DefaultBranchTimeout,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze builds the baseline and enriches it.
func (e *Engine) Analyze(ctx context.Context, attrs tires.Attributes, signal tires.VisionSignal) tires.AnalysisResult {
	base := e.Baseline(ctx, attrs, signal)
	if e.narrator == nil {
		return base
	}
	return e.Enrich(ctx, attrs, signal, base)
}

// Baseline computes the result that needs no external call. Brand is provisional.
func (e *Engine) Baseline(ctx context.Context, attrs tires.Attributes, signal tires.VisionSignal) tires.AnalysisResult {
	facts := tires.NewFacts(attrs, e.now())

	visual, err := e.scorer.Visual(signal, facts.AgeYears, attrs.TireType, facts.Season)
	if err != nil {
		e.observer.ScoreFallback(ctx, "visual", err)
	}
	usage, err := e.scorer.Usage(attrs.MileageRaw, facts.AgeYears, visual)
	if err != nil {
		e.observer.ScoreFallback(ctx, "usage", err)
	}

	res := tires.AnalysisResult{
		ScoreComponents: tires.ScoreComponents{
			Age:      scoring.Age(facts.AgeYears),
			Usage:    usage,
			Seasonal: scoring.Seasonal(time.Month(facts.Month), attrs.TireType),
			Brand:    narrative.BrandUnknownScore,
			Visual:   visual,
		},
		Summary:  PlaceholderSummary,
		Problems: nonNil(e.extractor.FilterForAge(e.extractor.FastPath(signal), facts)),
		Facts:    facts,
	}
	res.MaintenanceNeeds = problems.Buckets(res.Problems)
	res.Recommendations = recommendations(res.Problems)
	res.SafetyScore = e.safety(ctx, res)
	res.EstimatedLifespan = lifespanFor(res.SafetyScore)
	return res
}

func (e *Engine) safety(ctx context.Context, res tires.AnalysisResult) int {
	s, err := scoring.Safety(res.ScoreComponents, res.Facts.AgeYears)
	if err != nil {
		e.observer.ScoreFallback(ctx, "safety", err)
	}
	return s
}

func recommendations(ps []tires.Problem) []string {
	recs := problems.Recommendations(ps)
	if len(recs) == 0 {
		return []string{GeneralAdvice}
	}
	return recs
}

// lifespanFor estimates the remaining months from the composite score.
func lifespanFor(safety int) tires.Lifespan {
	months := math.Round(float64(safety-30) * 0.8)
	return tires.Lifespan{
		Months:     int(min(max(months, 0), maxLifespanMonths)),
		Confidence: baselineLifespanConfidence,
	}
}

func nonNil(ps []tires.Problem) []tires.Problem {
	if ps == nil {
		return []tires.Problem{}
	}
	return ps
}
