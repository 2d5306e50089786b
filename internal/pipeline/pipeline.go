package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/robfig/cron/v3"

	"dropwatch/internal/config"
	"dropwatch/internal/dedupe"
	"dropwatch/internal/logging"
	"dropwatch/internal/product"
	"dropwatch/internal/queue"
	"dropwatch/internal/scoring"
)

// maxScoringWorkers bounds the scoring pool. Scoring is pure CPU work, so
// there is no point spawning more workers than cores.
const maxScoringWorkers = 8

// ItemResult captures the outcome for one processed item.
type ItemResult struct {
	Item      *product.Item     `json:"item"`
	Score     float64           `json:"score"`
	Breakdown scoring.Breakdown `json:"breakdown"`
	Queued    bool              `json:"queued"`
	Match     dedupe.MatchType  `json:"match"`
}

// Summary aggregates the outcome of one Process call.
type Summary struct {
	Processed  int          `json:"processed"`
	Queued     int          `json:"queued"`
	Duplicates int          `json:"duplicates"`
	Failed     int          `json:"failed"`
	Results    []ItemResult `json:"results"`
}

// Pipeline wires the scorer, dedupe store, and posting queue together.
type Pipeline struct {
	cfg     *config.Config
	scorer  *scoring.Scorer
	dedupe  *dedupe.Store
	queue   *queue.Store
	logger  *slog.Logger
	workers int
}

// New builds a pipeline around existing stores.
func New(cfg *config.Config, dedupeStore *dedupe.Store, queueStore *queue.Store, logger *slog.Logger) *Pipeline {
	workers := runtime.NumCPU()
	if workers > maxScoringWorkers {
		workers = maxScoringWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{
		cfg:     cfg,
		scorer:  scoring.NewScorer(cfg.Scoring, logger),
		dedupe:  dedupeStore,
		queue:   queueStore,
		logger:  logging.NewComponentLogger(logger, "pipeline"),
		workers: workers,
	}
}

// Scorer exposes the pipeline's scorer for read-only previews.
func (p *Pipeline) Scorer() *scoring.Scorer {
	return p.scorer
}

// Process normalizes, scores, and admits a batch of items. Scoring runs on a
// bounded worker pool; admissions stay strictly sequential in feed order so
// the dedupe decision for each item sees every earlier admission in the batch.
func (p *Pipeline) Process(ctx context.Context, items []*product.Item) (Summary, error) {
	summary := Summary{Processed: len(items), Results: make([]ItemResult, len(items))}
	if len(items) == 0 {
		return summary, nil
	}

	for _, item := range items {
		product.Normalize(item, p.logger)
	}

	if err := p.scoreAll(ctx, items, summary.Results); err != nil {
		return summary, err
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		result := &summary.Results[i]

		// An upcoming announcement admitted earlier in this batch changes
		// the recorded prior state, so a live limited item that scored
		// without the transition bonus is rescored just before admission.
		if item.LimitedEdition && item.ReleaseState == product.StateLive && result.Breakdown.TransitionBonus == 0 {
			result.Score, result.Breakdown = p.scorer.Score(item, p.dedupe)
		}

		added, err := p.queue.AddItem(ctx, item, result.Score, result.Breakdown, p.dedupe)
		if err != nil {
			summary.Failed++
			result.Match = dedupe.MatchNone
			p.logger.Error("failed to queue item",
				logging.String(logging.FieldItemID, item.ID),
				logging.Error(err))
			continue
		}
		if !added {
			summary.Duplicates++
			result.Match = p.dedupe.IsDuplicate(item).Match
			continue
		}
		summary.Queued++
		result.Queued = true
		result.Match = dedupe.MatchNone
	}

	p.logger.Info("processed batch",
		logging.Int("processed", summary.Processed),
		logging.Int("queued", summary.Queued),
		logging.Int("duplicates", summary.Duplicates),
		logging.Int("failed", summary.Failed))
	return summary, nil
}

// scoreAll fans the batch out over the worker pool, writing each result into
// results by index so feed order is preserved.
func (p *Pipeline) scoreAll(ctx context.Context, items []*product.Item, results []ItemResult) error {
	workers := p.workers
	if workers > len(items) {
		workers = len(items)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				score, breakdown := p.scorer.Score(items[idx], p.dedupe)
				results[idx].Item = items[idx]
				results[idx].Score = score
				results[idx].Breakdown = breakdown
			}
		}()
	}

	var sendErr error
	for i := range items {
		select {
		case jobs <- i:
		case <-ctx.Done():
			sendErr = ctx.Err()
		}
		if sendErr != nil {
			break
		}
	}
	close(jobs)
	wg.Wait()
	return sendErr
}

// LoadState restores the dedupe map from the configured snapshot. A missing
// snapshot leaves the store empty.
func (p *Pipeline) LoadState() error {
	if p.cfg.Dedupe.SnapshotPath == "" {
		return nil
	}
	return p.dedupe.Import(p.cfg.Dedupe.SnapshotPath)
}

// SaveState writes the dedupe map to the configured snapshot so admissions
// survive a restart.
func (p *Pipeline) SaveState() error {
	if p.cfg.Dedupe.SnapshotPath == "" {
		return nil
	}
	return p.dedupe.Export(p.cfg.Dedupe.SnapshotPath)
}

// Cleanup runs one retention sweep and persists the surviving records.
func (p *Pipeline) Cleanup() (int, error) {
	evicted := p.dedupe.CleanupOldEntries()
	if err := p.SaveState(); err != nil {
		return evicted, fmt.Errorf("save dedupe snapshot: %w", err)
	}
	return evicted, nil
}

// StartCleanupSchedule runs Cleanup on the configured cron schedule. The
// returned stop function blocks until any in-flight sweep finishes. An empty
// schedule disables the sweep.
func (p *Pipeline) StartCleanupSchedule() (func(), error) {
	schedule := p.cfg.Dedupe.CleanupSchedule
	if schedule == "" {
		return func() {}, nil
	}

	runner := cron.New()
	_, err := runner.AddFunc(schedule, func() {
		if _, err := p.Cleanup(); err != nil {
			p.logger.Error("scheduled cleanup failed", logging.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("parse cleanup schedule %q: %w", schedule, err)
	}

	runner.Start()
	p.logger.Info("started cleanup schedule", logging.String("schedule", schedule))
	return func() {
		<-runner.Stop().Done()
	}, nil
}
