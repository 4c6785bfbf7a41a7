package analyses

import (
	"encoding/json"
	"strings"
	"testing"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/narrative"
)

func TestRenderReportUsesNarrative(t *testing.T) {
	rep, err := json.Marshal(narrative.Report{
		Title:         "Kış Lastiği Raporu",
		Overview:      "Genel durum iyi.",
		TreadAnalysis: "Diş derinliği yeterli.",
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	a := Analysis{
		Attributes: tires.Attributes{Brand: "Lassa", Size: "195/65 R15", ProductionYear: 2022},
		Result: tires.AnalysisResult{
			ScoreComponents:   tires.ScoreComponents{Age: 85, Usage: 80, Seasonal: 100, Brand: 82, Visual: 90},
			SafetyScore:       86,
			Summary:           "özet",
			Recommendations:   []string{"Basıncı kontrol edin."},
			EstimatedLifespan: tires.Lifespan{Months: 45, Confidence: 0.5},
			Narrative:         rep,
		},
	}

	out := RenderReport(a)
	for _, want := range []string{
		"# Kış Lastiği Raporu",
		"_Lassa · 195/65 R15 · üretim 2022_",
		"Genel durum iyi.",
		"| Güvenlik | 86 |",
		"## Diş Analizi",
		"- Basıncı kontrol edin.",
		"45 ay",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Yanak Analizi") {
		t.Fatalf("empty narrative sections should be omitted:\n%s", out)
	}
	if strings.Contains(out, "özet") {
		t.Fatalf("overview should replace the summary:\n%s", out)
	}
}

func TestRenderReportWithoutNarrative(t *testing.T) {
	out := RenderReport(Analysis{Result: tires.AnalysisResult{Summary: "Kural tabanlı özet.", Degraded: true}})
	if !strings.HasPrefix(out, "# "+defaultReportTitle) {
		t.Fatalf("expected default title:\n%s", out)
	}
	if !strings.Contains(out, "Kural tabanlı özet.") || !strings.Contains(out, "kısmi verilerle") {
		t.Fatalf("expected summary and degraded note:\n%s", out)
	}
}
