package service

import (
	"context"
	"fmt"
	"log/slog"

	"newspulse/internal/domain"
)

// topSourcesLimit caps the top-sources ranking in every cached summary.
const topSourcesLimit = 10

// SummaryService recomputes aggregation bundles from the article store and
// publishes them to the cache under the fixed period keys.
type SummaryService struct {
	articles ArticleStore
	cache    SummaryCache
	logger   *slog.Logger
}

func NewSummaryService(articles ArticleStore, cache SummaryCache, logger *slog.Logger) *SummaryService {
	return &SummaryService{
		articles: articles,
		cache:    cache,
		logger:   logger.With("component", "summary"),
	}
}

// Build computes one summary bundle for the filter. Each aggregation query
// fails independently; a failed part is left structurally empty so the bundle
// always has the full shape.
func (s *SummaryService) Build(ctx context.Context, f domain.AggregateFilter) *domain.SummaryBundle {
	bundle := domain.EmptySummary()

	if graph, err := s.articles.DailySentiment(ctx, f); err != nil {
		s.logger.Error("daily sentiment query failed", "category", f.Category, "error", err)
	} else if graph != nil {
		bundle.LineGraph = graph
	}

	if pie, err := s.articles.SentimentDistribution(ctx, f); err != nil {
		s.logger.Error("sentiment distribution query failed", "category", f.Category, "error", err)
	} else {
		bundle.PieChart = pie
	}

	if ranks, err := s.articles.TopSources(ctx, f, topSourcesLimit); err != nil {
		s.logger.Error("top sources query failed", "category", f.Category, "error", err)
	} else if ranks != nil {
		bundle.TopSources = ranks
	}

	return bundle
}

// PublishAll rebuilds and publishes every period key. Individual publish
// failures do not stop the remaining keys; an error is returned if any key
// could not be written.
func (s *SummaryService) PublishAll(ctx context.Context) error {
	var failed int
	var lastErr error

	for _, period := range domain.SummaryPeriods {
		bundle := s.Build(ctx, period.Filter)
		if err := s.cache.Publish(ctx, period.Key, bundle); err != nil {
			s.logger.Error("failed to publish summary", "key", period.Key, "error", err)
			failed++
			lastErr = err
			continue
		}
	}

	if failed > 0 {
		return fmt.Errorf("published %d of %d summaries: %w",
			len(domain.SummaryPeriods)-failed, len(domain.SummaryPeriods), lastErr)
	}

	s.logger.Info("published all summaries", "count", len(domain.SummaryPeriods))
	return nil
}

// Read returns the cached bundle for a period key, falling back to the empty
// bundle shape on any cache problem.
func (s *SummaryService) Read(ctx context.Context, key string) *domain.SummaryBundle {
	return s.cache.Read(ctx, key)
}
