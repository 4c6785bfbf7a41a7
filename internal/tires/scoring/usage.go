package scoring

import (
	"math"
	"strconv"
	"strings"
)

// ParseMileage strips every non-digit from raw, so locale separators such as
// "50.000" or "120,000 km" parse as whole kilometres. ok is false when nothing
// numeric remains or the value overflows.
func ParseMileage(raw string) (km int, ok bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Usage scores wear from mileage, age and the visual score.
func (s *Scorer) Usage(mileageRaw string, ageYears, visual int) (int, error) {
	return guard("usage", UsageFallback, func() float64 {
		age := float64(ageYears)
		v := float64(visual)

		km, ok := ParseMileage(mileageRaw)
		if !ok {
			return clamp(95-4*age, 0, 100) + 0.3*(v-70)
		}

		m := float64(km)
		score := 90.0
		if m > 10000 {
			score -= min(50, math.Floor((m-10000)/10000)*5)
		}
		if ageYears > 4 {
			score -= min(20, (age-4)*4)
		}
		yearly := m / max(age, 1)
		if yearly > 25000 {
			score -= min(15, math.Floor((yearly-25000)/5000)*3)
		}
		if visual < 70 {
			score += (v - 70) * 0.25
		}
		return score
	})
}
