// Package retry provides the exponential-backoff policy shared by every
// I/O call in the pipeline: remote fetches, per-record upserts, the
// retention prune, cache writes and whole job invocations.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Policy describes a bounded exponential backoff. The backoff doubles from
// InitialBackoff on each attempt and is capped at MaxBackoff. Only errors
// accepted by the retryable predicate consume attempts; anything else
// propagates immediately.
type Policy struct {
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// Default is the retry family used across the pipeline: 1s base, 10s cap,
// 5 attempts.
var Default = Policy{
	MaxAttempts:    5,
	InitialBackoff: 1 * time.Second,
	MaxBackoff:     10 * time.Second,
}

// Do runs fn, retrying on errors for which retryable returns true. It sleeps
// the backoff between attempts, logging before each sleep, and respects
// context cancellation while waiting. A nil retryable treats every error as
// retryable.
func (p Policy) Do(ctx context.Context, logger *slog.Logger, op string, retryable func(error) bool, fn func(ctx context.Context) error) error {
	var err error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}

		if retryable != nil && !retryable(err) {
			return err
		}

		if attempt == p.MaxAttempts {
			break
		}

		backoff := p.Backoff(attempt)
		logger.Warn("operation failed, retrying",
			"op", op,
			"attempt", attempt,
			"backoff", backoff,
			"error", err,
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}

	logger.Warn("operation failed, retries exhausted",
		"op", op,
		"attempts", p.MaxAttempts,
		"error", err,
	)
	return fmt.Errorf("after %d attempts: %w", p.MaxAttempts, err)
}

// Backoff returns the sleep before the attempt following the given one.
func (p Policy) Backoff(attempt int) time.Duration {
	backoff := p.InitialBackoff
	for i := 1; i < attempt; i++ {
		backoff *= 2
	}
	if backoff > p.MaxBackoff {
		backoff = p.MaxBackoff
	}
	return backoff
}
