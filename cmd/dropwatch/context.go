package main

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"dropwatch/internal/config"
	"dropwatch/internal/dedupe"
	"dropwatch/internal/logging"
	"dropwatch/internal/pipeline"
	"dropwatch/internal/queue"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the shared file logger. CLI commands log to the
// configured log directory so structured output never interleaves with
// rendered tables on stdout.
func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:       cfg.Logging.Level,
			Format:      cfg.Logging.Format,
			OutputPaths: []string{filepath.Join(cfg.Paths.LogDir, "dropwatch.log")},
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// withQueue opens the queue store for one command invocation.
func (c *commandContext) withQueue(fn func(context.Context, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(context.Background(), store)
}

// withPipeline wires the full intake stack: queue store, dedupe store
// restored from its snapshot, and the pipeline around them. The snapshot is
// saved again after fn succeeds so admissions survive the process.
func (c *commandContext) withPipeline(fn func(context.Context, *pipeline.Pipeline, *dedupe.Store, *queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}

	queueStore, err := queue.Open(cfg, logger)
	if err != nil {
		return err
	}
	defer queueStore.Close()

	dedupeStore := dedupe.NewStore(dedupe.Retention{
		Standard: time.Duration(cfg.Dedupe.RetentionDays) * 24 * time.Hour,
		Limited:  time.Duration(cfg.Dedupe.LimitedRetentionDays) * 24 * time.Hour,
	}, logger)

	p := pipeline.New(cfg, dedupeStore, queueStore, logger)
	if err := p.LoadState(); err != nil {
		return err
	}
	if err := fn(context.Background(), p, dedupeStore, queueStore); err != nil {
		return err
	}
	return p.SaveState()
}
