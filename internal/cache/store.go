// Package cache publishes pre-aggregated summary bundles to Redis and reads
// them back for the dashboard. All traffic is guarded by a circuit breaker;
// reads degrade to a structurally valid empty bundle so consumers never see
// a malformed shape.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	"newspulse/internal/domain"
	"newspulse/internal/retry"
)

// ErrCircuitOpen is returned by Publish when the breaker is open and the
// write was skipped without touching the network.
var ErrCircuitOpen = errors.New("cache circuit breaker open")

// commands is the narrow slice of the Redis API the store needs. The found
// flag distinguishes a missing key from an error.
type commands interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
}

type redisCommands struct {
	rdb *redis.Client
}

func (r *redisCommands) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}

func (r *redisCommands) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Store is the summary cache publisher/reader.
type Store struct {
	cmds    commands
	breaker *Breaker
	retry   retry.Policy
	logger  *slog.Logger
}

// Config holds cache store configuration.
type Config struct {
	BreakerCooldown time.Duration
	Retry           retry.Policy
}

// New creates a cache store over an established Redis client.
func New(rdb *redis.Client, cfg Config, logger *slog.Logger) *Store {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default
	}
	if cfg.BreakerCooldown == 0 {
		cfg.BreakerCooldown = 60 * time.Second
	}
	return newStore(&redisCommands{rdb: rdb}, cfg, logger)
}

func newStore(cmds commands, cfg Config, logger *slog.Logger) *Store {
	logger = logger.With("component", "cache")
	return &Store{
		cmds:    cmds,
		breaker: NewBreaker(cfg.BreakerCooldown, logger),
		retry:   cfg.Retry,
		logger:  logger,
	}
}

// Publish serializes the bundle and writes it under key, overwriting the
// prior value. Transient errors are retried; exhaustion opens the breaker.
// When the breaker is already open the write is skipped entirely.
func (s *Store) Publish(ctx context.Context, key string, bundle *domain.SummaryBundle) error {
	if !s.breaker.Allow() {
		return ErrCircuitOpen
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("marshal summary bundle: %w", err)
	}

	err = s.retry.Do(ctx, s.logger, "cache set "+key, isRetriable, func(ctx context.Context) error {
		return s.cmds.Set(ctx, key, string(payload))
	})
	if err != nil {
		if isRetriable(err) {
			s.breaker.RecordFailure()
		}
		return fmt.Errorf("publish %s: %w", key, err)
	}

	s.breaker.RecordSuccess()
	s.logger.Debug("published summary", "key", key)
	return nil
}

// Read returns the bundle stored under key. A missing key, open breaker or
// store failure all yield the empty bundle; callers never receive nil.
func (s *Store) Read(ctx context.Context, key string) *domain.SummaryBundle {
	if !s.breaker.Allow() {
		return domain.EmptySummary()
	}

	var value string
	var found bool
	err := s.retry.Do(ctx, s.logger, "cache get "+key, isRetriable, func(ctx context.Context) error {
		var getErr error
		value, found, getErr = s.cmds.Get(ctx, key)
		return getErr
	})
	if err != nil {
		if isRetriable(err) {
			s.breaker.RecordFailure()
		}
		s.logger.Error("cache read failed", "key", key, "error", err)
		return domain.EmptySummary()
	}

	s.breaker.RecordSuccess()

	if !found {
		s.logger.Info("cache key missing", "key", key)
		return domain.EmptySummary()
	}

	var bundle domain.SummaryBundle
	if err := json.Unmarshal([]byte(value), &bundle); err != nil {
		s.logger.Error("malformed cached bundle", "key", key, "error", err)
		return domain.EmptySummary()
	}
	if bundle.LineGraph == nil {
		bundle.LineGraph = domain.LineGraph{}
	}
	if bundle.TopSources == nil {
		bundle.TopSources = []domain.SourceRank{}
	}

	return &bundle
}

// isRetriable reports whether an error is a transient cache-store condition.
func isRetriable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
		return true
	}

	var ne net.Error
	return errors.As(err, &ne)
}
