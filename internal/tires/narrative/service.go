// Package narrative calls the narrative inference service for the four
// enrichment contracts and turns every reply into an Outcome.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"tire-backend/internal/llm"
	"tire-backend/internal/tires"
)

// Service issues narrative calls. Analysis, Problems and Technical retry a
// transient failure once; Brand makes exactly one attempt.
type Service struct {
	once  llm.Client
	retry llm.Client
}

func New(client llm.Client) *Service {
	if client == nil {
		client = llm.PlaceholderClient{}
	}
	return &Service{once: client, retry: llm.WithRetry(client)}
}

// Analysis is the general narrative assessment. Nil fields were absent or ill-typed.
type Analysis struct {
	Summary           string                  `json:"summary"`
	Recommendations   []string                `json:"recommendations"`
	EstimatedLifespan *tires.Lifespan         `json:"estimatedLifespan"`
	MaintenanceNeeds  *tires.MaintenanceNeeds `json:"maintenanceNeeds"`
}

// Report is the long-form technical narrative.
type Report struct {
	Title            string `json:"title"`
	Overview         string `json:"overview"`
	TreadAnalysis    string `json:"treadAnalysis"`
	SidewallAnalysis string `json:"sidewallAnalysis"`
	AgeAssessment    string `json:"ageAssessment"`
	SeasonalFit      string `json:"seasonalFit"`
	SafetyVerdict    string `json:"safetyVerdict"`
}

func (s *Service) Analysis(ctx context.Context, in Input) Outcome[Analysis] {
	reply, err := s.complete(ctx, s.retry, llm.PromptAnalysis, in)
	if err != nil {
		return Fallback(Analysis{}, reasonFor(err))
	}
	var raw struct {
		Summary           json.RawMessage `json:"summary"`
		Recommendations   json.RawMessage `json:"recommendations"`
		EstimatedLifespan json.RawMessage `json:"estimatedLifespan"`
		MaintenanceNeeds  json.RawMessage `json:"maintenanceNeeds"`
	}
	if err := decodeJSON(reply, &raw); err != nil {
		return Fallback(Analysis{}, ReasonMalformed)
	}

	var a Analysis
	if decodeField(raw.Summary, &a.Summary) {
		a.Summary = strings.TrimSpace(a.Summary)
	}
	a.Recommendations = nonEmpty(decodeEach[string](raw.Recommendations))
	var l tires.Lifespan
	if decodeField(raw.EstimatedLifespan, &l) &&
		l.Months >= 0 && !math.IsNaN(l.Confidence) && l.Confidence >= 0 && l.Confidence <= 1 {
		a.EstimatedLifespan = &l
	}
	var buckets struct {
		Immediate json.RawMessage `json:"immediate"`
		Soon      json.RawMessage `json:"soon"`
		Future    json.RawMessage `json:"future"`
	}
	if decodeField(raw.MaintenanceNeeds, &buckets) {
		a.MaintenanceNeeds = &tires.MaintenanceNeeds{
			Immediate: nonEmpty(decodeEach[string](buckets.Immediate)),
			Soon:      nonEmpty(decodeEach[string](buckets.Soon)),
			Future:    nonEmpty(decodeEach[string](buckets.Future)),
		}
	}
	if a.Summary == "" && a.Recommendations == nil && a.EstimatedLifespan == nil && a.MaintenanceNeeds == nil {
		return Fallback(Analysis{}, ReasonMalformed)
	}
	return Ok(a)
}

// Problems returns the detailed problem list exactly as the service reported it;
// the caller normalizes it. The reply must carry an array under "problems".
// Entries that do not decode as a problem are dropped.
func (s *Service) Problems(ctx context.Context, in Input) Outcome[[]tires.Problem] {
	reply, err := s.complete(ctx, s.retry, llm.PromptProblems, in)
	if err != nil {
		return Fallback[[]tires.Problem](nil, reasonFor(err))
	}
	var envelope struct {
		Problems json.RawMessage `json:"problems"`
	}
	if err := decodeJSON(reply, &envelope); err != nil {
		return Fallback[[]tires.Problem](nil, ReasonMalformed)
	}
	var items []json.RawMessage
	if raw := bytes.TrimSpace(envelope.Problems); len(raw) == 0 || raw[0] != '[' || json.Unmarshal(raw, &items) != nil {
		return Fallback[[]tires.Problem](nil, ReasonMalformed)
	}
	list := decodeEach[tires.Problem](envelope.Problems)
	if list == nil {
		list = []tires.Problem{}
	}
	if len(items) > 0 && len(list) == 0 {
		return Fallback[[]tires.Problem](nil, ReasonMalformed)
	}
	return Ok(list)
}

func (s *Service) Technical(ctx context.Context, in Input) Outcome[Report] {
	reply, err := s.complete(ctx, s.retry, llm.PromptTechnical, in)
	if err != nil {
		return Fallback(Report{}, reasonFor(err))
	}
	var r Report
	if err := decodeJSON(reply, &r); err != nil {
		return Fallback(Report{}, ReasonMalformed)
	}
	if strings.TrimSpace(r.Overview) == "" {
		return Fallback(Report{}, ReasonMalformed)
	}
	return Ok(r)
}

func (s *Service) complete(ctx context.Context, client llm.Client, prompt string, in Input) (string, error) {
	text, err := in.Render(prompt)
	if err != nil {
		return "", err
	}
	return client.Complete(ctx, text)
}

func reasonFor(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	default:
		return ReasonCallFailed
	}
}

func nonEmpty(xs []string) []string {
	var out []string
	for _, x := range xs {
		if x = strings.TrimSpace(x); x != "" {
			out = append(out, x)
		}
	}
	return out
}

// String renders the outcome for logs.
func (o Outcome[T]) String() string {
	if o.OK {
		return "ok"
	}
	return fmt.Sprintf("fallback(%s)", o.Reason)
}
