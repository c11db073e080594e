package service

import (
	"context"
	"log/slog"
	"time"

	"newspulse/internal/retry"
	"newspulse/internal/storage/postgres"
)

// RetentionService prunes articles older than the configured window. Pruning
// is best effort: a cycle that exhausts its retries is logged and the next
// scheduled run tries again.
type RetentionService struct {
	articles   ArticleStore
	maxAgeDays int
	retry      retry.Policy
	logger     *slog.Logger
}

func NewRetentionService(articles ArticleStore, maxAgeDays int, retryPolicy retry.Policy, logger *slog.Logger) *RetentionService {
	if retryPolicy.MaxAttempts == 0 {
		retryPolicy = retry.Default
	}
	return &RetentionService{
		articles:   articles,
		maxAgeDays: maxAgeDays,
		retry:      retryPolicy,
		logger:     logger.With("component", "retention"),
	}
}

// Prune deletes every article published before the retention cutoff.
func (s *RetentionService) Prune(ctx context.Context) error {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.maxAgeDays)

	var deleted int64
	err := s.retry.Do(ctx, s.logger, "prune old articles", postgres.IsRetriable, func(ctx context.Context) error {
		var delErr error
		deleted, delErr = s.articles.DeleteOlderThan(ctx, cutoff)
		return delErr
	})
	if err != nil {
		s.logger.Error("retention prune failed", "cutoff", cutoff, "error", err)
		return nil
	}

	s.logger.Info("pruned old articles", "cutoff", cutoff, "deleted", deleted)
	return nil
}
