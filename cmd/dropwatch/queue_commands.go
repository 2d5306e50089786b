package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"dropwatch/internal/product"
	"dropwatch/internal/queue"
)

var brandCaser = cases.Title(language.English)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect and manage the posting queue",
	}

	queueCmd.AddCommand(newQueueListCommand(ctx))
	queueCmd.AddCommand(newQueueNextCommand(ctx))
	queueCmd.AddCommand(newQueueStatsCommand(ctx))
	queueCmd.AddCommand(newQueueRemoveCommand(ctx))
	queueCmd.AddCommand(newQueueClearCommand(ctx))

	return queueCmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List queued items by posting priority",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(cmdCtx context.Context, store *queue.Store) error {
				entries, err := store.List(cmdCtx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				rendered := renderTable(
					[]string{"ID", "Title", "Brand", "State", "Limited", "Score", "Admitted"},
					buildQueueListRows(entries),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
				)
				fmt.Fprintln(cmd.OutOrStdout(), rendered)
				return nil
			})
		},
	}
}

func newQueueNextCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Show the highest-priority queued item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(cmdCtx context.Context, store *queue.Store) error {
				entry, err := store.Next(cmdCtx)
				if err != nil {
					return err
				}
				if entry == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "Queue is empty")
					return nil
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, entry)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				fmt.Fprintln(out, renderStatLine("ID", strconv.FormatInt(entry.ID, 10), colorize))
				fmt.Fprintln(out, renderStatLine("Title", entry.Title, colorize))
				fmt.Fprintln(out, renderStatLine("Brand", brandCaser.String(entry.Brand), colorize))
				fmt.Fprintln(out, renderStatLine("State", string(entry.ReleaseState), colorize))
				fmt.Fprintln(out, renderStatLine("Score", formatScore(entry.Score), colorize))
				fmt.Fprintln(out, renderStatLine("Fingerprint", entry.Fingerprint, colorize))
				return nil
			})
		},
	}
}

func newQueueStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show queue totals",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(cmdCtx context.Context, store *queue.Store) error {
				stats, err := store.GetStats(cmdCtx)
				if err != nil {
					return err
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, stats)
				}
				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for _, line := range renderSectionHeader("Queue", colorize) {
					fmt.Fprintln(out, line)
				}
				fmt.Fprintln(out, renderStatLine("Total items", strconv.Itoa(stats.TotalItems), colorize))
				fmt.Fprintln(out, renderStatLine("Limited edition", strconv.Itoa(stats.LimitedEditionItems), colorize))
				for _, state := range []product.ReleaseState{product.StateUpcoming, product.StateLive} {
					if count, ok := stats.StateCounts[state]; ok {
						fmt.Fprintln(out, renderStatLine(string(state), strconv.Itoa(count), colorize))
					}
				}
				return nil
			})
		},
	}
}

func newQueueRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a queued item after posting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("parse queue id %q: %w", args[0], err)
			}
			return ctx.withQueue(func(cmdCtx context.Context, store *queue.Store) error {
				removed, err := store.Remove(cmdCtx, id)
				if err != nil {
					return err
				}
				if !removed {
					return fmt.Errorf("no queue entry with id %d", id)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed queue entry %d\n", id)
				return nil
			})
		},
	}
}

func newQueueClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every queued item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withQueue(func(cmdCtx context.Context, store *queue.Store) error {
				cleared, err := store.Clear(cmdCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d queue entries\n", cleared)
				return nil
			})
		},
	}
}

func buildQueueListRows(entries []*queue.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(entry.ID, 10),
			entry.Title,
			brandCaser.String(entry.Brand),
			string(entry.ReleaseState),
			yesNo(entry.LimitedEdition),
			formatScore(entry.Score),
			entry.AdmittedAt.Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
