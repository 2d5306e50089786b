package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"dropwatch/internal/dedupe"
	"dropwatch/internal/pipeline"
	"dropwatch/internal/product"
	"dropwatch/internal/queue"
)

// newWatchCommand runs dropwatch as a long-lived intake process: listings
// arrive as one JSON object per line on stdin, and the retention sweep runs
// on the configured cron schedule until the process is signalled.
func newWatchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "watch",
		Aliases: []string{"daemon"},
		Short:   "Continuously ingest listings from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withPipeline(func(cmdCtx context.Context, p *pipeline.Pipeline, _ *dedupe.Store, _ *queue.Store) error {
				runCtx, stop := signal.NotifyContext(cmdCtx, os.Interrupt, syscall.SIGTERM)
				defer stop()

				stopCleanup, err := p.StartCleanupSchedule()
				if err != nil {
					return err
				}
				defer stopCleanup()

				lines := make(chan string)
				go func() {
					defer close(lines)
					scanner := bufio.NewScanner(cmd.InOrStdin())
					scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
					for scanner.Scan() {
						select {
						case lines <- scanner.Text():
						case <-runCtx.Done():
							return
						}
					}
				}()

				out := cmd.OutOrStdout()
				for {
					select {
					case <-runCtx.Done():
						return nil
					case line, ok := <-lines:
						if !ok {
							return nil
						}
						text := strings.TrimSpace(line)
						if text == "" {
							continue
						}
						item := &product.Item{}
						if err := json.Unmarshal([]byte(text), item); err != nil {
							fmt.Fprintf(cmd.ErrOrStderr(), "skipping malformed listing: %v\n", err)
							continue
						}
						summary, err := p.Process(runCtx, []*product.Item{item})
						if err != nil {
							return err
						}
						result := summary.Results[0]
						if result.Queued {
							fmt.Fprintf(out, "queued %s (score %s)\n", result.Item.Title, formatScore(result.Score))
						} else if summary.Failed > 0 {
							fmt.Fprintf(out, "failed %s\n", result.Item.Title)
						} else {
							fmt.Fprintf(out, "rejected %s (%s)\n", result.Item.Title, result.Match)
						}
					}
				}
			})
		},
	}
}
