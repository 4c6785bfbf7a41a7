package main

import (
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tire-backend/internal/llm"
	"tire-backend/internal/tires/narrative"
)

func newPromptsCmd() *cobra.Command {
	var flags tireFlags
	var only string
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Render the narrative prompts for a tire",
		Long: `Render the four narrative prompts exactly as the service would send them,
using the rule-based scores computed from the same flags.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			names := llm.PromptNames
			if only != "" {
				if !slices.Contains(llm.PromptNames, only) {
					return fmt.Errorf("unknown prompt %q (want one of %v)", only, llm.PromptNames)
				}
				names = []string{only}
			}
			attrs, sig, res, err := flags.baseline(cmd)
			if err != nil {
				return err
			}
			in := narrative.Input{Attrs: attrs, Signal: sig, Facts: res.Facts, Scores: res.ScoreComponents}

			w := cmd.OutOrStdout()
			header := color.New(color.FgCyan, color.Bold)
			for _, name := range names {
				text, err := in.Render(name)
				if err != nil {
					return err
				}
				header.Fprintf(w, "===== %s =====\n", name)
				fmt.Fprintln(w, text)
			}
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&only, "only", "", "Render a single prompt (analysis, problems, brand, technical)")
	return cmd
}
