package service

import (
	"context"
	"log/slog"

	"newspulse/internal/domain"
)

// Search sentiment-class thresholds. The on-demand view uses a tighter band
// than the persisted pipeline so weak signals still show up.
const (
	searchPositiveThreshold = 0.2
	searchNegativeThreshold = -0.2
)

// SearchPie counts sentiment classes for an ad-hoc query result.
type SearchPie struct {
	Positive int `json:"positive"`
	Neutral  int `json:"neutral"`
	Negative int `json:"negative"`
}

// SearchResult is the on-demand view for a free-text query. Nothing in it is
// persisted; dates are passed through as the upstream returned them.
type SearchResult struct {
	Dates      []string          `json:"dates"`
	Sentiments []float64         `json:"sentiments"`
	Pie        SearchPie         `json:"pie"`
	Headlines  []domain.Headline `json:"headlines"`
}

// SearchService serves ad-hoc query lookups that bypass the database
// entirely: fresh upstream fetch, in-memory scoring, live headlines.
type SearchService struct {
	source    Source
	headlines HeadlineSource
	scorer    Scorer
	logger    *slog.Logger
}

func NewSearchService(source Source, headlines HeadlineSource, scorer Scorer, logger *slog.Logger) *SearchService {
	return &SearchService{
		source:    source,
		headlines: headlines,
		scorer:    scorer,
		logger:    logger.With("component", "search"),
	}
}

// Search scores the current upstream results for query and pairs them with
// top headlines. Upstream failure degrades to an empty result with the
// fallback headlines; the caller always gets a renderable shape.
func (s *SearchService) Search(ctx context.Context, query string) *SearchResult {
	result := &SearchResult{
		Dates:      []string{},
		Sentiments: []float64{},
		Headlines:  s.headlines.TopHeadlines(ctx, query),
	}

	raw, err := s.source.FetchQuery(ctx, query)
	if err != nil {
		s.logger.Error("search fetch failed", "query", query, "error", err)
		return result
	}

	for _, r := range raw {
		score := s.scorer.Score(r.Description)
		result.Dates = append(result.Dates, r.PubDate)
		result.Sentiments = append(result.Sentiments, score)

		switch {
		case score > searchPositiveThreshold:
			result.Pie.Positive++
		case score < searchNegativeThreshold:
			result.Pie.Negative++
		default:
			result.Pie.Neutral++
		}
	}

	s.logger.Info("search completed",
		"query", query,
		"articles", len(raw),
		"headlines", len(result.Headlines),
	)

	return result
}
