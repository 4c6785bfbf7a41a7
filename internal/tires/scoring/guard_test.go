package scoring

import (
	"errors"
	"math"
	"testing"

	"tire-backend/internal/tires"
)

func TestGuardRecoversPanicAndNaN(t *testing.T) {
	got, err := guard("x", 80, func() float64 { panic("boom") })
	if got != 80 || !errors.Is(err, ErrFallback) {
		t.Fatalf("panic: got %d, %v", got, err)
	}

	got, err = guard("x", 80, func() float64 { return math.NaN() })
	if got != 80 || !errors.Is(err, ErrFallback) {
		t.Fatalf("nan: got %d, %v", got, err)
	}

	got, err = guard("x", 80, func() float64 { return 142.4 })
	if got != 100 || err != nil {
		t.Fatalf("clamp: got %d, %v", got, err)
	}
}

func TestVisualFallsBackWithoutRules(t *testing.T) {
	s := &Scorer{}
	got, err := s.Visual(tires.VisionSignal{Tags: []tires.Tag{{Name: "crack", Confidence: 1}}}, 0, tires.TypeSummer, tires.SeasonSummer)
	if got != VisualFallback || !errors.Is(err, ErrFallback) {
		t.Fatalf("got %d, %v", got, err)
	}
}

func TestAgeDecay(t *testing.T) {
	cases := map[int]float64{0: 0, 3: 0, 4: 1, 6: 3, 8: 6, 10: 9, 12: 13, 20: 20}
	for age, want := range cases {
		if got := ageDecay(age); got != want {
			t.Fatalf("ageDecay(%d) = %v, want %v", age, got, want)
		}
	}
}
