package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tire-backend/internal/tires"
	"tire-backend/internal/tires/engine"
)

// tireFlags are the inputs shared by every subcommand.
type tireFlags struct {
	tireType string
	brand    string
	model    string
	size     string
	year     int
	mileage  string
	tags     []string
	caption  string
	date     string
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tirectl",
		Short:        "Inspect tire condition scoring offline",
		SilenceUsage: true,
	}
	root.AddCommand(newScoreCmd(), newPromptsCmd())
	return root
}

func (f *tireFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.tireType, "type", "t", "unknown", "Tire type (summer, winter, all-season)")
	cmd.Flags().StringVar(&f.brand, "brand", "", "Tire brand")
	cmd.Flags().StringVar(&f.model, "model", "", "Tire model")
	cmd.Flags().StringVar(&f.size, "size", "", "Tire size, e.g. 205/55 R16")
	cmd.Flags().IntVarP(&f.year, "year", "y", 0, "Production year")
	cmd.Flags().StringVarP(&f.mileage, "mileage", "m", "", "Mileage as entered, e.g. 50.000")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Vision tag as name=confidence (repeatable)")
	cmd.Flags().StringVar(&f.caption, "caption", "", "Vision caption text")
	cmd.Flags().StringVar(&f.date, "date", "", "Evaluate as of this date (YYYY-MM-DD); defaults to today")
}

func (f *tireFlags) attributes() tires.Attributes {
	return tires.Attributes{
		TireType:       tires.ParseTireType(f.tireType),
		Brand:          f.brand,
		Model:          f.model,
		Size:           f.size,
		ProductionYear: f.year,
		MileageRaw:     f.mileage,
	}
}

func (f *tireFlags) signal() (tires.VisionSignal, error) {
	var sig tires.VisionSignal
	for _, raw := range f.tags {
		name, conf, ok := strings.Cut(raw, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return sig, fmt.Errorf("tag %q: expected name=confidence", raw)
		}
		c, err := strconv.ParseFloat(strings.TrimSpace(conf), 64)
		if err != nil || c < 0 || c > 1 {
			return sig, fmt.Errorf("tag %q: confidence must be between 0 and 1", raw)
		}
		sig.Tags = append(sig.Tags, tires.Tag{Name: name, Confidence: c})
	}
	if text := strings.TrimSpace(f.caption); text != "" {
		sig.Caption = &tires.Caption{Text: text, Confidence: 1}
	}
	return sig, nil
}

func (f *tireFlags) now() (time.Time, error) {
	if strings.TrimSpace(f.date) == "" {
		return time.Now(), nil
	}
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(f.date))
	if err != nil {
		return time.Time{}, fmt.Errorf("date: %w", err)
	}
	return t, nil
}

// baseline runs the rule-based engine for the flags.
func (f *tireFlags) baseline(cmd *cobra.Command) (tires.Attributes, tires.VisionSignal, tires.AnalysisResult, error) {
	sig, err := f.signal()
	if err != nil {
		return tires.Attributes{}, sig, tires.AnalysisResult{}, err
	}
	now, err := f.now()
	if err != nil {
		return tires.Attributes{}, sig, tires.AnalysisResult{}, err
	}
	attrs := f.attributes()
	eng := engine.New(nil, engine.WithClock(func() time.Time { return now }))
	return attrs, sig, eng.Baseline(cmd.Context(), attrs, sig), nil
}
