package problems

import "tire-backend/internal/tires"

// Buckets sorts the suggested actions of ps by urgency. It is the baseline
// maintenance plan used until the narrative analysis provides one.
func Buckets(ps []tires.Problem) tires.MaintenanceNeeds {
	needs := tires.MaintenanceNeeds{Immediate: []string{}, Soon: []string{}, Future: []string{}}
	for _, p := range ps {
		action := p.SuggestedAction
		if action == "" {
			continue
		}
		switch p.Urgency {
		case tires.UrgencyImmediate:
			needs.Immediate = appendUnique(needs.Immediate, action)
		case tires.UrgencySoon:
			needs.Soon = appendUnique(needs.Soon, action)
		default:
			needs.Future = appendUnique(needs.Future, action)
		}
	}
	return needs
}

// Recommendations lists the suggested actions in urgency order, without duplicates.
func Recommendations(ps []tires.Problem) []string {
	b := Buckets(ps)
	out := make([]string, 0, len(b.Immediate)+len(b.Soon)+len(b.Future))
	out = append(out, b.Immediate...)
	out = append(out, b.Soon...)
	out = append(out, b.Future...)
	return out
}

func appendUnique(xs []string, s string) []string {
	for _, x := range xs {
		if x == s {
			return xs
		}
	}
	return append(xs, s)
}
