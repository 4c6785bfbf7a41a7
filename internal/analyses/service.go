package analyses

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tire-backend/internal/shared/cache"
	"tire-backend/internal/shared/metrics"
	"tire-backend/internal/shared/telemetry"
	"tire-backend/internal/tires"
	"tire-backend/internal/vision"
)

// WarnNotSaved marks a result that was computed but could not be stored.
const WarnNotSaved = "persistence_failed"

// Analyzer scores one tire. *engine.Engine implements it.
type Analyzer interface {
	Analyze(ctx context.Context, attrs tires.Attributes, signal tires.VisionSignal) tires.AnalysisResult
}

// ImageResolver turns a request imageUrl into something the vision adapter accepts.
type ImageResolver interface {
	Resolve(ctx context.Context, imageURL string) (vision.Image, error)
}

// Service contains business logic for analyses.
type Service struct {
	Repo    Repo
	Images  ImageResolver
	Vision  vision.Adapter
	Engine  Analyzer
	Cache   cache.Cache
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Outcome is what Analyze hands back to the handler.
type Outcome struct {
	Detected bool
	Analysis Analysis
}

// Analyze runs one request through validation, the vision gate and the
// engine. Detection-only requests stop after the gate and report whether a
// tire was seen without failing. Every other request either fails before the
// engine or yields a result.
func (s *Service) Analyze(ctx context.Context, ownerID string, req Request) (Outcome, error) {
	started := s.now()
	m := s.metrics()
	if !req.DetectOnly {
		s.cache().Clear()
		m.AnalysisStarted()
	}
	fail := func(err error) (Outcome, error) {
		if !req.DetectOnly {
			m.AnalysisFailed()
		}
		telemetry.Warn("analysis.rejected", map[string]any{
			"request_id":  telemetry.RequestIDFromContext(ctx),
			"owner_id":    ownerID,
			"detect_only": req.DetectOnly,
			"error":       err.Error(),
		})
		return Outcome{}, err
	}

	if err := Validate(req, started); err != nil {
		return fail(err)
	}
	if s.Images == nil || s.Vision == nil || s.Engine == nil {
		return fail(errors.New("analysis dependencies not configured"))
	}

	img, err := s.Images.Resolve(ctx, req.ImageURL)
	if err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		return fail(&ValidationError{Fields: []FieldError{{Field: "imageUrl", Issue: "unreadable"}}})
	}
	signal, err := s.Vision.Analyze(ctx, img)
	if err != nil {
		if ctx.Err() != nil {
			return fail(ctx.Err())
		}
		return fail(fmt.Errorf("%w: %v", ErrVisionUnavailable, err))
	}

	detected := vision.TireDetected(signal)
	if req.DetectOnly {
		return Outcome{Detected: detected}, nil
	}
	if !detected {
		return fail(ErrTireNotDetected)
	}

	attrs := req.FormData.Attributes()
	analysis := Analysis{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		ImageURL:   req.ImageURL,
		Attributes: attrs,
		Result:     s.Engine.Analyze(ctx, attrs, signal),
		CreatedAt:  s.now().UTC(),
	}
	if s.Repo != nil {
		// The store only backs history; the result is returned even when saving fails.
		if err := s.Repo.Create(context.WithoutCancel(ctx), analysis); err != nil {
			telemetry.Error("analysis.persist_failed", map[string]any{
				"request_id":  telemetry.RequestIDFromContext(ctx),
				"analysis_id": analysis.ID,
				"error":       err.Error(),
			})
			analysis.Result.Warnings = append(analysis.Result.Warnings, WarnNotSaved)
			analysis.ID = ""
		}
	}

	m.AnalysisCompleted()
	if analysis.Result.Degraded {
		m.AnalysisDegraded()
	}
	elapsed := s.now().Sub(started)
	m.ObserveAnalysis(elapsed)
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":   telemetry.RequestIDFromContext(ctx),
		"owner_id":     ownerID,
		"analysis_id":  analysis.ID,
		"safety_score": analysis.Result.SafetyScore,
		"problems":     len(analysis.Result.Problems),
		"degraded":     analysis.Result.Degraded,
		"warnings":     analysis.Result.Warnings,
		"duration_ms":  elapsed.Milliseconds(),
	})
	return Outcome{Detected: true, Analysis: analysis}, nil
}

// Get returns an analysis owned by ownerID.
func (s *Service) Get(ctx context.Context, ownerID, analysisID string) (Analysis, error) {
	if s.Repo == nil {
		return Analysis{}, ErrNotFound
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.OwnerID != ownerID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// List returns the owner's analyses, newest first.
func (s *Service) List(ctx context.Context, ownerID string, limit, offset int) ([]Analysis, error) {
	if s.Repo == nil {
		return []Analysis{}, nil
	}
	return s.Repo.ListByOwner(ctx, ownerID, limit, offset)
}

// Report renders the Markdown report of an analysis, reusing a cached
// rendering of the same payload when there is one.
func (s *Service) Report(ctx context.Context, ownerID, analysisID string) ([]byte, error) {
	a, err := s.Get(ctx, ownerID, analysisID)
	if err != nil {
		return nil, err
	}
	key := cache.Key("report", reportPayload(a))
	if cached, ok := s.cache().Get(key); ok {
		return cached, nil
	}
	out := []byte(RenderReport(a))
	s.cache().Set(key, out)
	return out, nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) cache() cache.Cache {
	if s.Cache == nil {
		return cache.Nop{}
	}
	return s.Cache
}

func (s *Service) metrics() *metrics.Metrics {
	if s.Metrics == nil {
		return metrics.Default()
	}
	return s.Metrics
}
