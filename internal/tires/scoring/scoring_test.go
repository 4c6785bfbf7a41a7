package scoring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/scoring"
)

func TestAgeScoreTable(t *testing.T) {
	cases := map[int]int{-1: 100, 0: 100, 1: 100, 2: 95, 5: 80, 9: 45, 10: 40, 11: 35, 12: 30, 16: 10, 30: 10}
	for age, want := range cases {
		assert.Equal(t, want, scoring.Age(age), "age %d", age)
	}
}

func TestSeasonalTable(t *testing.T) {
	cases := []struct {
		month time.Month
		tt    tires.TireType
		want  int
	}{
		{time.January, tires.TypeSummer, 50},
		{time.April, tires.TypeSummer, 85},
		{time.July, tires.TypeSummer, 100},
		{time.December, tires.TypeWinter, 100},
		{time.October, tires.TypeWinter, 80},
		{time.August, tires.TypeWinter, 60},
		{time.April, tires.TypeAllSeason, 95},
		{time.February, tires.TypeAllSeason, 85},
		{time.June, tires.TypeUnknown, 80},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, scoring.Seasonal(tc.month, tc.tt), "%s/%s", tc.month, tc.tt)
	}
}

func TestSeasonalIsPure(t *testing.T) {
	types := []tires.TireType{tires.TypeSummer, tires.TypeWinter, tires.TypeAllSeason, tires.TypeUnknown}
	for m := time.January; m <= time.December; m++ {
		for _, tt := range types {
			first := scoring.Seasonal(m, tt)
			for i := 0; i < 3; i++ {
				require.Equal(t, first, scoring.Seasonal(m, tt))
			}
		}
	}
}

func TestParseMileage(t *testing.T) {
	cases := []struct {
		raw  string
		want int
		ok   bool
	}{
		{"50.000", 50000, true},
		{"120,000 km", 120000, true},
		{"  8 500 ", 8500, true},
		{"", 0, false},
		{"bilmiyorum", 0, false},
		{"99999999999999999999999", 0, false},
	}
	for _, tc := range cases {
		got, ok := scoring.ParseMileage(tc.raw)
		assert.Equal(t, tc.ok, ok, tc.raw)
		assert.Equal(t, tc.want, got, tc.raw)
	}
}

func TestUsageScore(t *testing.T) {
	s := scoring.New(nil)

	cases := []struct {
		name    string
		mileage string
		age     int
		visual  int
		want    int
	}{
		{"no mileage", "", 2, 80, 90},
		{"no mileage low visual", "", 0, 50, 89},
		{"thousands separator", "50.000", 2, 80, 70},
		{"heavy yearly use", "90000", 1, 85, 35},
		{"new tire, little use", "5000", 0, 90, 90},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Usage(tc.mileage, tc.age, tc.visual)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestVisualScore(t *testing.T) {
	s := scoring.New(nil)

	cases := []struct {
		name   string
		sig    tires.VisionSignal
		age    int
		tt     tires.TireType
		season tires.Season
		want   int
	}{
		{"baseline", tires.VisionSignal{}, 0, tires.TypeAllSeason, tires.SeasonTransition, 85},
		{"part weight", tires.VisionSignal{Tags: []tires.Tag{{Name: "tread wear", Confidence: 1}}}, 0, tires.TypeAllSeason, tires.SeasonTransition, 65},
		{"keywords inside other words", tires.VisionSignal{Tags: []tires.Tag{
			{Name: "passenger car tire", Confidence: 0.9},
			{Name: "nickel", Confidence: 0.8},
		}}, 0, tires.TypeAllSeason, tires.SeasonTransition, 85},
		{"caption good condition", tires.VisionSignal{Caption: &tires.Caption{Text: "a new tire in good condition", Confidence: 0.8}}, 0, tires.TypeAllSeason, tires.SeasonTransition, 93},
		{"caption damage", tires.VisionSignal{Caption: &tires.Caption{Text: "a damaged tire", Confidence: 1}}, 0, tires.TypeAllSeason, tires.SeasonTransition, 70},
		{"summer tire in winter", tires.VisionSignal{}, 0, tires.TypeSummer, tires.SeasonWinter, 80},
		{"winter tire in winter", tires.VisionSignal{}, 0, tires.TypeWinter, tires.SeasonWinter, 87},
		{"age decay capped", tires.VisionSignal{}, 20, tires.TypeAllSeason, tires.SeasonTransition, 65},
		{"age decay eight years", tires.VisionSignal{}, 8, tires.TypeAllSeason, tires.SeasonTransition, 79},
		{"clamped at zero", tires.VisionSignal{Tags: []tires.Tag{
			{Name: "bald tread", Confidence: 1},
			{Name: "sidewall bulge", Confidence: 1},
		}}, 12, tires.TypeSummer, tires.SeasonWinter, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.Visual(tc.sig, tc.age, tc.tt, tc.season)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestScenarioBScores(t *testing.T) {
	s := scoring.New(nil)
	sig := tires.VisionSignal{Tags: []tires.Tag{
		{Name: "crack", Confidence: 0.9},
		{Name: "bald", Confidence: 0.95},
	}}

	visual, err := s.Visual(sig, 12, tires.TypeSummer, tires.SeasonSummer)
	require.NoError(t, err)
	assert.Equal(t, 23, visual)

	usage, err := s.Usage("120.000", 12, visual)
	require.NoError(t, err)
	assert.Equal(t, 8, usage)

	c := tires.ScoreComponents{Age: scoring.Age(12), Visual: visual, Seasonal: 100, Usage: usage, Brand: 70}
	safety, err := scoring.Safety(c, 12)
	require.NoError(t, err)
	// 42.6 weighted, minus 4 for age > 10, minus 5 for each of age and visual below 40.
	assert.Equal(t, 29, safety)
}

func TestWeightsSumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, scoring.DefaultWeights.Sum(), 1e-9)
}

func TestSafetyPenaltiesAndFloors(t *testing.T) {
	cases := []struct {
		name string
		c    tires.ScoreComponents
		age  int
		want int
	}{
		{"perfect", tires.ScoreComponents{Age: 100, Visual: 100, Seasonal: 100, Usage: 100, Brand: 100}, 0, 100},
		{"old tire penalty", tires.ScoreComponents{Age: 100, Visual: 100, Seasonal: 100, Usage: 100, Brand: 100}, 12, 96},
		{"floors hold", tires.ScoreComponents{Age: 10, Visual: 10, Seasonal: 10, Usage: 100, Brand: 100}, 20, 15},
		{"already below floors", tires.ScoreComponents{Age: 10, Visual: 10, Seasonal: 10, Usage: 10, Brand: 10}, 20, 10},
		{"seasonal critical", tires.ScoreComponents{Age: 100, Visual: 80, Seasonal: 30, Usage: 80, Brand: 70}, 0, 69},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := scoring.Safety(tc.c, tc.age)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSafetyMonotonicInAge(t *testing.T) {
	c := tires.ScoreComponents{Age: 60, Visual: 70, Seasonal: 80, Usage: 70, Brand: 70}

	at9, err := scoring.Safety(c, 9)
	require.NoError(t, err)
	at12, err := scoring.Safety(c, 12)
	require.NoError(t, err)
	assert.LessOrEqual(t, at12, at9)

	prev := 101
	for age := 0; age <= 30; age++ {
		got, err := scoring.Safety(c, age)
		require.NoError(t, err)
		assert.LessOrEqual(t, got, prev, "age %d", age)
		prev = got
	}
}

func TestSafetyFallback(t *testing.T) {
	assert.Equal(t, 95, scoring.SafetyFallback(0))
	assert.Equal(t, 65, scoring.SafetyFallback(5))
	assert.Equal(t, 30, scoring.SafetyFallback(20))
}

func TestScoresStayInRange(t *testing.T) {
	s := scoring.New(nil)
	tagSets := [][]tires.Tag{
		nil,
		{{Name: "new", Confidence: 1}, {Name: "clean", Confidence: 1}, {Name: "yeni diş", Confidence: 1}},
		{{Name: "bald tread", Confidence: 1}, {Name: "crack", Confidence: 1}, {Name: "sidewall bulge", Confidence: 1}},
	}
	mileages := []string{"", "0", "10.000", "250000", "9999999"}
	types := []tires.TireType{tires.TypeSummer, tires.TypeWinter, tires.TypeAllSeason, tires.TypeUnknown}

	for _, tags := range tagSets {
		for age := 0; age <= 25; age += 5 {
			for _, tt := range types {
				for m := time.January; m <= time.December; m += 3 {
					season := tires.SeasonFor(m)
					visual, err := s.Visual(tires.VisionSignal{Tags: tags}, age, tt, season)
					require.NoError(t, err)
					require.True(t, visual >= 0 && visual <= 100, "visual %d", visual)

					seasonal := scoring.Seasonal(m, tt)
					for _, mileage := range mileages {
						usage, err := s.Usage(mileage, age, visual)
						require.NoError(t, err)
						require.True(t, usage >= 0 && usage <= 100, "usage %d", usage)

						for _, brand := range []int{50, 70, 98} {
							c := tires.ScoreComponents{Age: scoring.Age(age), Visual: visual, Seasonal: seasonal, Usage: usage, Brand: brand}
							safety, err := scoring.Safety(c, age)
							require.NoError(t, err)
							require.True(t, safety >= 0 && safety <= 100, "safety %d", safety)
						}
					}
				}
			}
		}
	}
}
