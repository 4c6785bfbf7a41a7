package scoring

var ageScores = [...]int{0: 100, 1: 100, 2: 95, 3: 90, 4: 85, 5: 80, 6: 70, 7: 60, 8: 50, 9: 45, 10: 40}

// Age scores the tire age in whole years. Past ten years the score drops by
// five per year down to 10.
func Age(ageYears int) int {
	if ageYears < 0 {
		ageYears = 0
	}
	if ageYears < len(ageScores) {
		return ageScores[ageYears]
	}
	return max(10, 40-5*(ageYears-10))
}

// ageDecay is the visual penalty for age: nothing up to three years, then 1,
// 1.5 and 2 points per year in the (3,6], (6,10] and >10 bands, capped at 20.
func ageDecay(ageYears int) float64 {
	age := float64(ageYears)
	var d float64
	if age > 3 {
		d += min(age, 6) - 3
	}
	if age > 6 {
		d += 1.5 * (min(age, 10) - 6)
	}
	if age > 10 {
		d += 2 * (age - 10)
	}
	return min(d, 20)
}
