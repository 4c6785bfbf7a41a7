package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tire-backend/internal/tires"
)

func newScoreCmd() *cobra.Command {
	var flags tireFlags
	var output string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Compute the rule-based tire score",
		Long: `Compute sub-scores, problems and the composite safety score from the
declared attributes and vision tags. No narrative or vision service is called.

Examples:
  tirectl score --type summer --year 2014 --mileage 120.000 --tag crack=0.9 --tag bald=0.95
  tirectl score -t winter -y 2022 --brand Lassa -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _, res, err := flags.baseline(cmd)
			if err != nil {
				return err
			}
			return display(cmd.OutOrStdout(), res, output)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "human", "Output format (human, json, yaml)")
	return cmd
}

func display(w io.Writer, res tires.AnalysisResult, format string) error {
	switch format {
	case "json":
		out, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		// Round-trip through JSON so the YAML keys follow the API field names.
		raw, err := json.Marshal(res)
		if err != nil {
			return err
		}
		var generic map[string]any
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		out, err := yaml.Marshal(generic)
		if err != nil {
			return err
		}
		_, err = w.Write(out)
		return err
	case "human", "":
		displayHuman(w, res)
		return nil
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func displayHuman(w io.Writer, res tires.AnalysisResult) {
	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)

	fmt.Fprintln(w)
	bold.Fprint(w, "SAFETY SCORE: ")
	scoreColor(res.SafetyScore).Fprintf(w, "%d/100\n\n", res.SafetyScore)

	cyan.Fprintln(w, "Sub-scores")
	for _, row := range []struct {
		name  string
		value int
	}{
		{"age", res.Age},
		{"usage", res.Usage},
		{"seasonal", res.Seasonal},
		{"brand", res.Brand},
		{"visual", res.Visual},
	} {
		fmt.Fprintf(w, "  %-9s ", row.name)
		scoreColor(row.value).Fprintf(w, "%3d\n", row.value)
	}
	fmt.Fprintf(w, "  facts: age %dy, %s, month %d\n\n", res.Facts.AgeYears, res.Facts.Season, res.Facts.Month)

	cyan.Fprintln(w, "Problems")
	if len(res.Problems) == 0 {
		fmt.Fprintln(w, "  none")
	}
	for _, p := range res.Problems {
		urgencyColor(p.Urgency).Fprintf(w, "  [%s] ", p.Urgency)
		fmt.Fprintf(w, "%s (%s, %s): %s\n", p.Type, p.Severity, p.MaintenanceType, p.Description)
	}
	fmt.Fprintln(w)

	cyan.Fprintln(w, "Recommendations")
	for _, r := range res.Recommendations {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	fmt.Fprintf(w, "\nEstimated lifespan: %d months (confidence %.2f)\n", res.EstimatedLifespan.Months, res.EstimatedLifespan.Confidence)
}

func scoreColor(v int) *color.Color {
	switch {
	case v < 40:
		return color.New(color.FgRed, color.Bold)
	case v < 70:
		return color.New(color.FgYellow, color.Bold)
	default:
		return color.New(color.FgGreen, color.Bold)
	}
}

func urgencyColor(u tires.Urgency) *color.Color {
	switch u {
	case tires.UrgencyImmediate:
		return color.New(color.FgRed, color.Bold)
	case tires.UrgencySoon:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgWhite)
	}
}
