package janitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/mcoot/sudokuduo/internal/dependencies/clock"
	"github.com/mcoot/sudokuduo/internal/storage"
)

// Config holds configuration for the janitor
type Config struct {
	Interval  time.Duration
	BatchSize int
}

// DefaultConfig returns default janitor configuration
func DefaultConfig() Config {
	return Config{
		Interval:  time.Minute,
		BatchSize: 500,
	}
}

// SweepResult counts the records removed by one sweep
type SweepResult struct {
	Matches      int
	QueueEntries int
}

// Janitor periodically deletes expired matches and queue entries
type Janitor struct {
	storage storage.Storage
	clock   clock.Clock
	cfg     Config
	logger  *slog.Logger

	scheduler gocron.Scheduler
}

// New creates a new Janitor
func New(store storage.Storage, clk clock.Clock, cfg Config, logger *slog.Logger) *Janitor {
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	return &Janitor{
		storage: store,
		clock:   clk,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "janitor")),
	}
}

// Sweep deletes everything expired as of now, one batch at a time
func (j *Janitor) Sweep(ctx context.Context) (SweepResult, error) {
	var result SweepResult
	now := j.clock.Now()

	for {
		n, err := j.storage.DeleteExpiredMatches(ctx, now, j.cfg.BatchSize)
		if err != nil {
			return result, fmt.Errorf("sweep matches: %w", err)
		}
		result.Matches += n
		if n < j.cfg.BatchSize {
			break
		}
	}

	for {
		n, err := j.storage.DeleteExpiredQueueEntries(ctx, now, j.cfg.BatchSize)
		if err != nil {
			return result, fmt.Errorf("sweep queue entries: %w", err)
		}
		result.QueueEntries += n
		if n < j.cfg.BatchSize {
			break
		}
	}

	if result.Matches > 0 || result.QueueEntries > 0 {
		j.logger.Info("expired records deleted",
			slog.Int("matches", result.Matches),
			slog.Int("queue_entries", result.QueueEntries),
		)
	}
	return result, nil
}

// Start schedules Sweep to run immediately and then every interval
func (j *Janitor) Start(ctx context.Context) error {
	sched, err := gocron.NewScheduler(gocron.WithLogger(j.logger))
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(j.cfg.Interval),
		gocron.NewTask(func() {
			if _, err := j.Sweep(ctx); err != nil {
				j.logger.Error("sweep failed", slog.String("error", err.Error()))
			}
		}),
		gocron.WithName("sweep-expired"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = sched.Shutdown()
		return fmt.Errorf("schedule sweep: %w", err)
	}

	sched.Start()
	j.scheduler = sched
	j.logger.Info("janitor started", slog.Duration("interval", j.cfg.Interval))
	return nil
}

// Stop shuts down the scheduler, waiting for a running sweep to finish
func (j *Janitor) Stop() error {
	if j.scheduler == nil {
		return nil
	}
	err := j.scheduler.Shutdown()
	j.scheduler = nil
	return err
}
