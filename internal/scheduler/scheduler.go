// Package scheduler drives the two recurring jobs: the ingestion cycle on a
// fixed interval and the retention prune once a day at midnight UTC.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"newspulse/internal/retry"
)

// Job is one schedulable unit of work.
type Job func(ctx context.Context) error

type Config struct {
	Interval   time.Duration
	JobTimeout time.Duration
	Retry      retry.Policy
}

type Scheduler struct {
	ingest Job
	prune  Job
	cfg    Config
	logger *slog.Logger

	startOnce sync.Once
	stopOnce  sync.Once
	stop      chan struct{}
	wg        sync.WaitGroup
	now       func() time.Time
}

func New(ingest, prune Job, cfg Config, logger *slog.Logger) *Scheduler {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default
	}
	if cfg.JobTimeout == 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	return &Scheduler{
		ingest: ingest,
		prune:  prune,
		cfg:    cfg,
		logger: logger.With("component", "scheduler"),
		stop:   make(chan struct{}),
		now:    time.Now,
	}
}

// Start launches both job loops. The ingestion job runs immediately, then on
// every interval tick; the prune job waits for the next midnight UTC. Start
// is idempotent and returns without blocking.
func (s *Scheduler) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.logger.Info("scheduler started",
			"ingest_interval", s.cfg.Interval,
			"job_timeout", s.cfg.JobTimeout,
		)

		s.wg.Add(2)
		go s.runIntervalLoop(ctx)
		go s.runMidnightLoop(ctx)
	})
}

// Stop halts both loops and waits for any in-flight job to finish. Stop is
// idempotent.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runIntervalLoop(ctx context.Context) {
	defer s.wg.Done()

	s.runJob(ctx, "ingest", s.ingest)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.runJob(ctx, "ingest", s.ingest)
		}
	}
}

func (s *Scheduler) runMidnightLoop(ctx context.Context) {
	defer s.wg.Done()

	for {
		wait := untilNextMidnight(s.now().UTC())
		s.logger.Debug("next prune scheduled", "in", wait)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
			s.runJob(ctx, "prune", s.prune)
		}
	}
}

// runJob executes one job invocation under the job timeout, retrying any
// failure. An invocation that exhausts its retries is logged and dropped;
// the schedule cadence is never disturbed.
func (s *Scheduler) runJob(ctx context.Context, name string, job Job) {
	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	err := s.cfg.Retry.Do(jobCtx, s.logger, name, nil, func(ctx context.Context) error {
		return job(ctx)
	})
	if err != nil {
		s.logger.Error("job failed", "job", name, "error", err)
	}
}

// untilNextMidnight returns the duration from now to the next 00:00 UTC.
func untilNextMidnight(now time.Time) time.Duration {
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Sub(now)
}
