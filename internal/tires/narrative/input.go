package narrative

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"tire-backend/internal/llm"
	"tire-backend/internal/tires"
)

// Input is the immutable request context every prompt is rendered from.
type Input struct {
	Attrs  tires.Attributes
	Signal tires.VisionSignal
	Facts  tires.Facts
	Scores tires.ScoreComponents
}

// Render fills the named prompt template from in.
func (in Input) Render(prompt string) (string, error) {
	return llm.RenderPrompt(prompt, in.vars())
}

func (in Input) vars() map[string]string {
	year := "unknown"
	if in.Attrs.ProductionYear > 0 {
		year = strconv.Itoa(in.Attrs.ProductionYear)
	}
	month := "unknown"
	if in.Facts.Month >= 1 && in.Facts.Month <= 12 {
		month = time.Month(in.Facts.Month).String()
	}
	return map[string]string{
		"BRAND":           orUnknown(in.Attrs.Brand),
		"MODEL":           orUnknown(in.Attrs.Model),
		"SIZE":            orUnknown(in.Attrs.Size),
		"TIRE_TYPE":       string(orType(in.Attrs.TireType)),
		"PRODUCTION_YEAR": year,
		"AGE_YEARS":       strconv.Itoa(in.Facts.AgeYears),
		"BRAND_NEW":       strconv.FormatBool(in.Facts.BrandNew),
		"MILEAGE":         orUnknown(in.Attrs.MileageRaw),
		"MONTH":           month,
		"SEASON":          string(in.Facts.Season),
		"TAGS":            formatTags(in.Signal.Tags),
		"CAPTION":         formatCaption(in.Signal.Caption),
		"SCORES":          formatScores(in.Scores),
	}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}

func orType(t tires.TireType) tires.TireType {
	if t == "" {
		return tires.TypeUnknown
	}
	return t
}

func formatTags(tags []tires.Tag) string {
	if len(tags) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for _, t := range tags {
		fmt.Fprintf(&b, "- %s: %.2f\n", t.Name, t.Confidence)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatCaption(c *tires.Caption) string {
	if c == nil || strings.TrimSpace(c.Text) == "" {
		return "(none)"
	}
	return fmt.Sprintf("%s (confidence %.2f)", c.Text, c.Confidence)
}

func formatScores(s tires.ScoreComponents) string {
	return fmt.Sprintf("age=%d usage=%d seasonal=%d visual=%d", s.Age, s.Usage, s.Seasonal, s.Visual)
}
