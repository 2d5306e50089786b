package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dropwatch/internal/dedupe"
	"dropwatch/internal/pipeline"
	"dropwatch/internal/queue"
)

func newIngestCommand(ctx *commandContext) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Score a batch of listings and admit them into the queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(inputPath)
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(cmdCtx context.Context, p *pipeline.Pipeline, _ *dedupe.Store, _ *queue.Store) error {
				summary, err := p.Process(cmdCtx, items)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, summary)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Processed %d items: %d queued, %d duplicates, %d failed\n",
					summary.Processed, summary.Queued, summary.Duplicates, summary.Failed)
				for _, result := range summary.Results {
					if result.Queued {
						fmt.Fprintf(out, "  queued   %-40s score %s\n", truncate(result.Item.Title, 40), formatScore(result.Score))
					} else {
						fmt.Fprintf(out, "  rejected %-40s %s\n", truncate(result.Item.Title, 40), result.Match)
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Item JSON file (array or one object per line); - for stdin")
	return cmd
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
