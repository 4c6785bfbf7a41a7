// Package scoring computes the five tire sub-scores and the composite safety score.
//
// Every scorer is deterministic and never panics: an internal failure yields the
// component's fixed fallback together with an error wrapping ErrFallback, so the
// caller can report it without treating it as a request failure.
package scoring

import (
	"errors"
	"fmt"
	"math"

	"tire-backend/internal/tires/rules"
)

// ErrFallback marks a score that was replaced by its fixed fallback value.
var ErrFallback = errors.New("scoring fallback")

const (
	VisualFallback = 80
	UsageFallback  = 80
)

// Scorer evaluates sub-scores against a rule table.
type Scorer struct {
	rules *rules.Table
}

// New returns a Scorer over table; a nil table means rules.Default().
func New(table *rules.Table) *Scorer {
	if table == nil {
		table = rules.Default()
	}
	return &Scorer{rules: table}
}

// guard runs fn and turns panics and non-finite results into fallback.
func guard(component string, fallback int, fn func() float64) (score int, err error) {
	defer func() {
		if r := recover(); r != nil {
			score = fallback
			err = fmt.Errorf("%s: %w: %v", component, ErrFallback, r)
		}
	}()
	v := fn()
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback, fmt.Errorf("%s: %w: non-finite result", component, ErrFallback)
	}
	return ClampRound(v), nil
}

// ClampRound clamps v to [0,100] and rounds half away from zero.
func ClampRound(v float64) int {
	return int(math.Round(clamp(v, 0, 100)))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
