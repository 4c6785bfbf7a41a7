// Package vision turns a tire photo into tags and a caption using an
// external image analysis service.
package vision

import (
	"context"
	"errors"
	"strings"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/rules"
)

var (
	ErrNotConfigured = errors.New("vision service not configured")
	ErrInvalidImage  = errors.New("invalid image")
)

// DetectionMinConfidence is the lowest tag confidence accepted as proof of a tire.
const DetectionMinConfidence = 0.5

// Image is a photo to analyze: either inline bytes or a URL the service can fetch.
type Image struct {
	Data        []byte
	ContentType string
	URL         string
}

// Adapter analyzes one photo.
type Adapter interface {
	Analyze(ctx context.Context, img Image) (tires.VisionSignal, error)
}

// Placeholder is used when no vision service is configured.
type Placeholder struct{}

func (Placeholder) Analyze(context.Context, Image) (tires.VisionSignal, error) {
	return tires.VisionSignal{}, ErrNotConfigured
}

// TireDetected reports whether the signal shows a tire: a tire or wheel tag
// with confidence of at least 0.5, or a caption naming one.
func TireDetected(sig tires.VisionSignal) bool {
	table := rules.Default()
	for _, tag := range sig.Tags {
		if tag.Confidence >= DetectionMinConfidence && table.NamesTire(tag.Name) {
			return true
		}
	}
	caption := sig.CaptionText()
	return caption != "" && table.NamesTire(caption)
}

// Filter drops tags below minConfidence and blank names. The caption is kept as is.
func Filter(sig tires.VisionSignal, minConfidence float64) tires.VisionSignal {
	out := tires.VisionSignal{Caption: sig.Caption, Tags: make([]tires.Tag, 0, len(sig.Tags))}
	for _, tag := range sig.Tags {
		tag.Name = strings.TrimSpace(tag.Name)
		if tag.Name == "" || tag.Confidence < minConfidence {
			continue
		}
		out.Tags = append(out.Tags, tag)
	}
	return out
}
