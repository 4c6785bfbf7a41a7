package analyses

import (
	"encoding/json"
	"fmt"
	"strings"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/narrative"
)

const defaultReportTitle = "Lastik Durum Raporu"

func reportPayload(a Analysis) any {
	return struct {
		ID     string               `json:"id"`
		Attrs  tires.Attributes     `json:"attrs"`
		Result tires.AnalysisResult `json:"result"`
	}{a.ID, a.Attributes, a.Result}
}

// RenderReport formats an analysis as Markdown. Sections the technical
// narrative did not provide are left out.
func RenderReport(a Analysis) string {
	var rep narrative.Report
	if len(a.Result.Narrative) > 0 {
		// A narrative that fails to decode renders like a missing one.
		_ = json.Unmarshal(a.Result.Narrative, &rep)
	}
	res := a.Result

	var b strings.Builder
	title := strings.TrimSpace(rep.Title)
	if title == "" {
		title = defaultReportTitle
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if desc := describeTire(a.Attributes); desc != "" {
		fmt.Fprintf(&b, "_%s_\n\n", desc)
	}

	overview := strings.TrimSpace(rep.Overview)
	if overview == "" {
		overview = res.Summary
	}
	if overview != "" {
		fmt.Fprintf(&b, "%s\n\n", overview)
	}

	fmt.Fprintf(&b, "## Puanlar\n\n")
	fmt.Fprintf(&b, "| Bileşen | Puan |\n|---|---|\n")
	for _, row := range []struct {
		name  string
		value int
	}{
		{"Güvenlik", res.SafetyScore},
		{"Yaş", res.Age},
		{"Kullanım", res.Usage},
		{"Mevsim uygunluğu", res.Seasonal},
		{"Marka", res.Brand},
		{"Görsel durum", res.Visual},
	} {
		fmt.Fprintf(&b, "| %s | %d |\n", row.name, row.value)
	}
	b.WriteString("\n")

	for _, sec := range []struct{ heading, body string }{
		{"Diş Analizi", rep.TreadAnalysis},
		{"Yanak Analizi", rep.SidewallAnalysis},
		{"Yaş Değerlendirmesi", rep.AgeAssessment},
		{"Mevsim Uygunluğu", rep.SeasonalFit},
		{"Güvenlik Kararı", rep.SafetyVerdict},
	} {
		if body := strings.TrimSpace(sec.body); body != "" {
			fmt.Fprintf(&b, "## %s\n\n%s\n\n", sec.heading, body)
		}
	}

	if len(res.Problems) > 0 {
		b.WriteString("## Tespit Edilen Sorunlar\n\n")
		for _, p := range res.Problems {
			fmt.Fprintf(&b, "- **%s** (%s, aciliyet: %s): %s", p.Type, p.Severity, p.Urgency, p.Description)
			if p.SuggestedAction != "" {
				fmt.Fprintf(&b, " Öneri: %s", p.SuggestedAction)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	writeList(&b, "Hemen Yapılması Gerekenler", res.MaintenanceNeeds.Immediate)
	writeList(&b, "Yakında Yapılması Gerekenler", res.MaintenanceNeeds.Soon)
	writeList(&b, "İleride Yapılması Gerekenler", res.MaintenanceNeeds.Future)
	writeList(&b, "Öneriler", res.Recommendations)

	fmt.Fprintf(&b, "## Tahmini Kalan Ömür\n\n%d ay (güven: %%%.0f)\n",
		res.EstimatedLifespan.Months, res.EstimatedLifespan.Confidence*100)

	if res.Degraded {
		b.WriteString("\n> Bu rapor kısmi verilerle oluşturuldu.\n")
	}
	return b.String()
}

func writeList(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "## %s\n\n", heading)
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
	b.WriteString("\n")
}

func describeTire(attrs tires.Attributes) string {
	var parts []string
	for _, p := range []string{attrs.Brand, attrs.Model, attrs.Size} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if attrs.ProductionYear > 0 {
		parts = append(parts, fmt.Sprintf("üretim %d", attrs.ProductionYear))
	}
	return strings.Join(parts, " · ")
}
