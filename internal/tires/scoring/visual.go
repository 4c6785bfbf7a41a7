package scoring

import "tire-backend/internal/tires"

const visualBaseline = 85

// Visual scores the photographed condition. Tags are expected to be filtered
// by confidence upstream; every tag with a known keyword contributes
// impact × part weight × confidence.
func (s *Scorer) Visual(sig tires.VisionSignal, ageYears int, tt tires.TireType, season tires.Season) (int, error) {
	return guard("visual", VisualFallback, func() float64 {
		score := float64(visualBaseline)
		for _, tag := range sig.Tags {
			impact, ok := s.rules.VisualImpact(tag.Name)
			if !ok {
				continue
			}
			score += impact * s.rules.PartWeight(tag.Name) * tag.Confidence
		}
		if sig.Caption != nil {
			for _, hit := range s.rules.CaptionHits(sig.Caption.Text) {
				score += hit.Impact * sig.Caption.Confidence
			}
		}
		score -= ageDecay(ageYears)
		score += seasonalAdjustment(season, tt)
		return score
	})
}
