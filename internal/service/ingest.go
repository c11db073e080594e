package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"newspulse/internal/domain"
	"newspulse/internal/retry"
	"newspulse/internal/storage/postgres"
)

// PubDateLayout is the timestamp layout the upstream API uses.
const PubDateLayout = "2006-01-02 15:04:05"

// linkPattern accepts http(s) URLs with an optional scheme and www prefix.
// Links that do not match are stored as null rather than rejected outright.
var linkPattern = regexp.MustCompile(`^(https?://)?(www\.)?([a-zA-Z0-9\-]+\.)+[a-zA-Z]{2,}(/\S*)?$`)

// IngestService runs the periodic fetch-score-classify-persist cycle. Each
// record is inserted in its own transaction so one bad article never rolls
// back its siblings.
type IngestService struct {
	source      Source
	articles    ArticleStore
	ingestState IngestStateStore
	txManager   TransactionManager
	publisher   Publisher
	summaries   SummaryPublisher
	scorer      Scorer
	classifier  Classifier
	retry       retry.Policy
	logger      *slog.Logger
}

func NewIngestService(
	source Source,
	articles ArticleStore,
	ingestState IngestStateStore,
	txManager TransactionManager,
	publisher Publisher,
	summaries SummaryPublisher,
	scorer Scorer,
	classifier Classifier,
	retryPolicy retry.Policy,
	logger *slog.Logger,
) *IngestService {
	if retryPolicy.MaxAttempts == 0 {
		retryPolicy = retry.Default
	}
	return &IngestService{
		source:      source,
		articles:    articles,
		ingestState: ingestState,
		txManager:   txManager,
		publisher:   publisher,
		summaries:   summaries,
		scorer:      scorer,
		classifier:  classifier,
		retry:       retryPolicy,
		logger:      logger.With("source", source.ID()),
	}
}

// Run executes one full ingestion cycle and, when at least one article was
// inserted, republishes every cached summary.
func (s *IngestService) Run(ctx context.Context) error {
	stats, err := s.Ingest(ctx)
	if err != nil {
		return err
	}

	if stats.Inserted == 0 {
		s.logger.Info("no new articles, skipping summary refresh")
		return nil
	}

	if err := s.summaries.PublishAll(ctx); err != nil {
		return fmt.Errorf("refresh summaries: %w", err)
	}

	s.logger.Info("refreshed cached summaries after ingestion", "inserted", stats.Inserted)
	return nil
}

// Ingest fetches the latest batch, classifies it, and persists each record.
// Malformed records and duplicates are skipped; only fetch or classification
// failures abort the cycle.
func (s *IngestService) Ingest(ctx context.Context) (*domain.IngestStats, error) {
	startTime := time.Now()
	s.logger.Info("starting ingestion")

	raw, err := s.source.FetchLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}

	stats := &domain.IngestStats{
		SourceID: s.source.ID(),
		Fetched:  len(raw),
	}

	if len(raw) == 0 {
		s.logger.Info("no articles fetched")
		stats.Duration = time.Since(startTime)
		return stats, nil
	}

	descriptions := make([]string, len(raw))
	for i, r := range raw {
		descriptions[i] = r.Description
	}

	categories, err := s.classifier.Classify(descriptions)
	if err != nil {
		return nil, fmt.Errorf("classify articles: %w", err)
	}
	if len(categories) != len(raw) {
		return nil, fmt.Errorf("classify articles: got %d labels for %d articles", len(categories), len(raw))
	}

	for i, r := range raw {
		article, ok := s.buildArticle(r, categories[i])
		if !ok {
			stats.Invalid++
			continue
		}

		err := s.insertArticle(ctx, article)
		if errors.Is(err, domain.ErrDuplicate) {
			s.logger.Warn("skipping duplicate article", "title", article.Title)
			stats.Duplicate++
			continue
		}
		if err != nil {
			s.logger.Error("failed to insert article", "title", article.Title, "error", err)
			stats.Errors++
			continue
		}
		stats.Inserted++

		if s.publisher != nil {
			if err := s.publisher.Publish(ctx, article); err != nil {
				s.logger.Error("failed to publish article event", "title", article.Title, "error", err)
				stats.Errors++
			} else {
				stats.Published++
			}
		}
	}

	if err := s.updateIngestState(ctx, stats); err != nil {
		return stats, fmt.Errorf("update ingest state: %w", err)
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("ingestion completed",
		"fetched", stats.Fetched,
		"inserted", stats.Inserted,
		"duplicate", stats.Duplicate,
		"invalid", stats.Invalid,
		"errors", stats.Errors,
		"published", stats.Published,
		"duration", stats.Duration,
	)

	return stats, nil
}

// buildArticle validates and scores one raw record. A record with an
// unparseable publish time is dropped; an invalid link only nulls the field.
func (s *IngestService) buildArticle(r domain.RawArticle, category string) (*domain.Article, bool) {
	pubDate, err := time.Parse(PubDateLayout, r.PubDate)
	if err != nil {
		s.logger.Warn("dropping article with bad publish time",
			"title", r.Title,
			"pub_date", r.PubDate,
		)
		return nil, false
	}

	var link *string
	if r.Link != "" && linkPattern.MatchString(r.Link) {
		l := r.Link
		link = &l
	}

	return &domain.Article{
		Title:     r.Title,
		SourceID:  r.SourceID,
		Country:   r.Country,
		PubDate:   pubDate,
		Sentiment: s.scorer.Score(r.Description),
		Category:  category,
		Link:      link,
	}, true
}

func (s *IngestService) insertArticle(ctx context.Context, article *domain.Article) error {
	return s.retry.Do(ctx, s.logger, "insert article", postgres.IsRetriable, func(ctx context.Context) error {
		return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return s.articles.Insert(txCtx, article)
		})
	})
}

func (s *IngestService) updateIngestState(ctx context.Context, stats *domain.IngestStats) error {
	state, err := s.ingestState.Get(ctx, s.source.ID())
	if err != nil {
		return err
	}

	state.SourceID = s.source.ID()
	state.LastIngestAt = time.Now()
	state.TotalInserted += int64(stats.Inserted)

	return s.ingestState.Update(ctx, state)
}
