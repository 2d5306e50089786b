package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dropwatch/internal/dedupe"
	"dropwatch/internal/pipeline"
	"dropwatch/internal/product"
	"dropwatch/internal/queue"
)

func newDedupeCommand(ctx *commandContext) *cobra.Command {
	dedupeCmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Inspect and maintain dedupe state",
	}

	dedupeCmd.AddCommand(newDedupeStatsCommand(ctx))
	dedupeCmd.AddCommand(newDedupeCheckCommand(ctx))
	dedupeCmd.AddCommand(newDedupeCleanupCommand(ctx))
	dedupeCmd.AddCommand(newDedupeExportCommand(ctx))
	dedupeCmd.AddCommand(newDedupeImportCommand(ctx))
	dedupeCmd.AddCommand(newDedupeClearCommand(ctx))

	return dedupeCmd
}

func newDedupeClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget every fingerprint record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(_ context.Context, _ *pipeline.Pipeline, store *dedupe.Store, _ *queue.Store) error {
				stats := store.Stats()
				store.Clear()
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d fingerprint records\n", stats.ProductStates)
				return nil
			})
		},
	}
}

func newDedupeStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dedupe store counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(_ context.Context, _ *pipeline.Pipeline, store *dedupe.Store, _ *queue.Store) error {
				stats := store.Stats()
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Dedupe", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatLine("Admitted items", strconv.Itoa(stats.TotalItems), colorize))
				fmt.Fprintln(out, renderStatLine("Limited edition", strconv.Itoa(stats.LimitedEditionItems), colorize))
				fmt.Fprintln(out, renderStatLine("Tracked fingerprints", strconv.Itoa(stats.ProductStates), colorize))
				for _, state := range []product.ReleaseState{product.StateUpcoming, product.StateLive} {
					if count, ok := stats.StateBreakdown[state]; ok {
						fmt.Fprintln(out, renderStatLine(string(state), strconv.Itoa(count), colorize))
					}
				}
				return nil
			})
		},
	}
}

func newDedupeCheckCommand(ctx *commandContext) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report whether listings would be admitted, without committing",
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := readItems(inputPath)
			if err != nil {
				return err
			}
			return ctx.withPipeline(func(_ context.Context, _ *pipeline.Pipeline, store *dedupe.Store, _ *queue.Store) error {
				rows := make([][]string, 0, len(items))
				for _, item := range items {
					product.Normalize(item, nil)
					decision := store.IsDuplicate(item)
					rows = append(rows, []string{
						item.Title,
						string(item.ReleaseState),
						yesNo(!decision.Duplicate),
						string(decision.Match),
					})
				}
				if len(rows) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items to check")
					return nil
				}
				rendered := renderTable(
					[]string{"Title", "State", "Would admit", "Match"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "-", "Item JSON file (array or one object per line); - for stdin")
	return cmd
}

func newDedupeCleanupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Evict fingerprint records past their retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(_ context.Context, p *pipeline.Pipeline, _ *dedupe.Store, _ *queue.Store) error {
				evicted, err := p.Cleanup()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Evicted %d expired records\n", evicted)
				return nil
			})
		},
	}
}

func newDedupeExportCommand(ctx *commandContext) *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the fingerprint map to a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(_ context.Context, _ *pipeline.Pipeline, store *dedupe.Store, _ *queue.Store) error {
				target := outputPath
				if target == "" {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					target = cfg.Dedupe.SnapshotPath
				}
				if err := store.Export(target); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported dedupe snapshot to %s\n", target)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Snapshot destination (defaults to the configured path)")
	return cmd
}

func newDedupeImportCommand(ctx *commandContext) *cobra.Command {
	var inputPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Replace dedupe state from a snapshot file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(_ context.Context, _ *pipeline.Pipeline, store *dedupe.Store, _ *queue.Store) error {
				source := inputPath
				if source == "" {
					cfg, err := ctx.ensureConfig()
					if err != nil {
						return err
					}
					source = cfg.Dedupe.SnapshotPath
				}
				if err := store.Import(source); err != nil {
					return err
				}
				stats := store.Stats()
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d fingerprint records from %s\n", stats.ProductStates, source)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "Snapshot source (defaults to the configured path)")
	return cmd
}
