package scoring

import (
	"fmt"
	"math"

	"tire-backend/internal/tires"
)

// Weights of each sub-score in the composite. They sum to 1.
type Weights struct {
	Age      float64
	Visual   float64
	Seasonal float64
	Usage    float64
	Brand    float64
}

var DefaultWeights = Weights{Age: 0.25, Visual: 0.30, Seasonal: 0.20, Usage: 0.15, Brand: 0.10}

func (w Weights) Sum() float64 {
	return w.Age + w.Visual + w.Seasonal + w.Usage + w.Brand
}

const (
	criticalThreshold = 40
	criticalPenalty   = 5
	criticalFloor     = 15
	oldTireAge        = 10
	oldTireMaxPenalty = 20
	oldTireFloor      = 20
)

// SafetyFallback is the composite used when the weighted computation fails.
func SafetyFallback(ageYears int) int {
	return int(clamp(float64(95-6*ageYears), 30, 95))
}

// Safety combines the sub-scores into the composite safety score.
func Safety(c tires.ScoreComponents, ageYears int) (score int, err error) {
	fallback := SafetyFallback(ageYears)
	defer func() {
		if r := recover(); r != nil {
			score = fallback
			err = fmt.Errorf("safety: %w: %v", ErrFallback, r)
		}
	}()

	w := DefaultWeights
	s := float64(c.Age)*w.Age +
		float64(c.Visual)*w.Visual +
		float64(c.Seasonal)*w.Seasonal +
		float64(c.Usage)*w.Usage +
		float64(c.Brand)*w.Brand

	if ageYears > oldTireAge && s > oldTireFloor {
		penalty := min(oldTireMaxPenalty, float64(ageYears-oldTireAge)*2)
		s = max(oldTireFloor, s-penalty)
	}

	critical := 0
	for _, v := range []int{c.Age, c.Visual, c.Seasonal} {
		if v < criticalThreshold {
			critical++
		}
	}
	if critical > 0 && s > criticalFloor {
		s = max(criticalFloor, s-float64(critical*criticalPenalty))
	}

	if math.IsNaN(s) || math.IsInf(s, 0) {
		return fallback, fmt.Errorf("safety: %w: non-finite result", ErrFallback)
	}
	return ClampRound(s), nil
}
