package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dropwatch/internal/dedupe"
	"dropwatch/internal/pipeline"
	"dropwatch/internal/product"
	"dropwatch/internal/queue"
	"dropwatch/internal/scoring"
)

func newScoreCommand(ctx *commandContext) *cobra.Command {
	var inputPath string
	var showBreakdown bool

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Preview priority scores without touching the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(inputPath)
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(_ context.Context, p *pipeline.Pipeline, store *dedupe.Store, _ *queue.Store) error {
				for _, item := range items {
					product.Normalize(item, nil)
				}
				scored := p.Scorer().ScoreBatch(items, store)

				if ctx.jsonOutput() {
					return writeJSON(cmd, scored)
				}
				if len(scored) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items to score")
					return nil
				}
				rows := make([][]string, 0, len(scored))
				for _, result := range scored {
					rows = append(rows, []string{
						result.Item.Title,
						brandCaser.String(result.Item.Brand),
						string(result.Item.ReleaseState),
						formatScore(result.Score),
					})
				}
				rendered := renderTable(
					[]string{"Title", "Brand", "State", "Score"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				)
				out := cmd.OutOrStdout()
				fmt.Fprintln(out, rendered)

				if showBreakdown {
					for _, result := range scored {
						fmt.Fprintf(out, "%s\n", result.Item.Title)
						printBreakdown(cmd, result.Breakdown)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Item JSON file (array or one object per line); - for stdin")
	cmd.Flags().BoolVar(&showBreakdown, "breakdown", false, "Print per-component score breakdowns")
	return cmd
}

func printBreakdown(cmd *cobra.Command, b scoring.Breakdown) {
	out := cmd.OutOrStdout()
	colorize := shouldColorize(out)
	lines := []struct {
		label string
		value float64
	}{
		{"hype", b.Hype},
		{"brand tier", b.BrandTier},
		{"recency", b.Recency},
		{"engagement", b.Engagement},
		{"scarcity", b.Scarcity},
		{"weighted base", b.WeightedBase},
		{"source reliability", b.SourceReliability},
		{"category multiplier", b.CategoryMultiplier},
		{"transition bonus", b.TransitionBonus},
		{"final", b.Final},
	}
	for _, line := range lines {
		fmt.Fprintln(out, renderStatLine(line.label, formatScore(line.value), colorize))
	}
	if b.Error != "" {
		fmt.Fprintln(out, renderStatLine("error", b.Error, colorize))
	}
}
