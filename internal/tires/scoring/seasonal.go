package scoring

import (
	"time"

	"tire-backend/internal/tires"
)

var seasonalScores = map[tires.TireType]map[tires.Season]int{
	tires.TypeAllSeason: {tires.SeasonWinter: 85, tires.SeasonTransition: 95, tires.SeasonSummer: 85},
	tires.TypeSummer:    {tires.SeasonWinter: 50, tires.SeasonTransition: 85, tires.SeasonSummer: 100},
	tires.TypeWinter:    {tires.SeasonWinter: 100, tires.SeasonTransition: 80, tires.SeasonSummer: 60},
}

const unknownSeasonalScore = 80

// Seasonal returns how well the tire type suits the calendar month.
func Seasonal(month time.Month, tt tires.TireType) int {
	byseason, ok := seasonalScores[tt]
	if !ok {
		return unknownSeasonalScore
	}
	return byseason[tires.SeasonFor(month)]
}

// seasonalAdjustment is the visual-score nudge for a tire used in or out of its season.
func seasonalAdjustment(season tires.Season, tt tires.TireType) float64 {
	switch {
	case tt == tires.TypeSummer && season == tires.SeasonWinter,
		tt == tires.TypeWinter && season == tires.SeasonSummer:
		return -5
	case tt == tires.TypeSummer && season == tires.SeasonSummer,
		tt == tires.TypeWinter && season == tires.SeasonWinter:
		return 2
	default:
		return 0
	}
}
