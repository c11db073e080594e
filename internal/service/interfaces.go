package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"newspulse/internal/domain"
)

type Source interface {
	ID() string
	FetchLatest(ctx context.Context) ([]domain.RawArticle, error)
	FetchQuery(ctx context.Context, query string) ([]domain.RawArticle, error)
}

type HeadlineSource interface {
	TopHeadlines(ctx context.Context, query string) []domain.Headline
}

type ArticleStore interface {
	Insert(ctx context.Context, article *domain.Article) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DailySentiment(ctx context.Context, f domain.AggregateFilter) (domain.LineGraph, error)
	SentimentDistribution(ctx context.Context, f domain.AggregateFilter) (domain.PieChart, error)
	TopSources(ctx context.Context, f domain.AggregateFilter, limit int) ([]domain.SourceRank, error)
}

type IngestStateStore interface {
	Get(ctx context.Context, sourceID string) (*domain.IngestState, error)
	Update(ctx context.Context, state *domain.IngestState) error
}

type SummaryCache interface {
	Publish(ctx context.Context, key string, bundle *domain.SummaryBundle) error
	Read(ctx context.Context, key string) *domain.SummaryBundle
}

type SummaryPublisher interface {
	PublishAll(ctx context.Context) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, article *domain.Article) error
	Close() error
}

type Scorer interface {
	Score(text string) float64
}

type Classifier interface {
	Classify(texts []string) ([]string, error)
}
