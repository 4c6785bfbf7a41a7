package tires

import "time"

// seasonCalendar is the canonical month table shared by every component that
// needs to know the season. November opens winter; April and October are the
// transition windows.
var seasonCalendar = [13]Season{
	time.January:   SeasonWinter,
	time.February:  SeasonWinter,
	time.March:     SeasonWinter,
	time.April:     SeasonTransition,
	time.May:       SeasonSummer,
	time.June:      SeasonSummer,
	time.July:      SeasonSummer,
	time.August:    SeasonSummer,
	time.September: SeasonSummer,
	time.October:   SeasonTransition,
	time.November:  SeasonWinter,
	time.December:  SeasonWinter,
}

// SeasonFor returns the calendar bucket for month. Out-of-range months are treated as transition.
func SeasonFor(month time.Month) Season {
	if month < time.January || month > time.December {
		return SeasonTransition
	}
	return seasonCalendar[month]
}

// AgeYears returns the tire age in whole years; future production years yield 0.
func AgeYears(productionYear int, now time.Time) int {
	if productionYear <= 0 {
		return 0
	}
	age := now.Year() - productionYear
	if age < 0 {
		return 0
	}
	return age
}

// NewFacts derives the shared request facts from the declared attributes.
func NewFacts(attrs Attributes, now time.Time) Facts {
	age := AgeYears(attrs.ProductionYear, now)
	return Facts{
		Now:      now,
		AgeYears: age,
		Month:    int(now.Month()),
		Season:   SeasonFor(now.Month()),
		BrandNew: attrs.ProductionYear > 0 && (attrs.ProductionYear > now.Year() || age < 1),
	}
}
