package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"newspulse/internal/domain"
)

type ArticleStore struct {
	db *sqlx.DB
}

func NewArticleStore(db *sqlx.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

// Insert stores one article. A natural-key collision returns
// domain.ErrDuplicate; articles are never updated in place.
func (s *ArticleStore) Insert(ctx context.Context, article *domain.Article) error {
	query := `
		INSERT INTO news_articles (title, source_id, country, pub_date, sentiment, category, link)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	err := executor(ctx, s.db).QueryRowxContext(ctx, query,
		article.Title,
		article.SourceID,
		article.Country,
		article.PubDate,
		article.Sentiment,
		article.Category,
		article.Link,
	).Scan(&article.ID)

	if err != nil {
		if IsDuplicate(err) {
			return domain.ErrDuplicate
		}
		return err
	}

	return nil
}

// DeleteOlderThan removes all articles published strictly before cutoff and
// returns the number of deleted rows.
func (s *ArticleStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := executor(ctx, s.db).ExecContext(ctx,
		"DELETE FROM news_articles WHERE pub_date < $1", cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DailySentiment returns the average sentiment per calendar day (UTC) inside
// the filter window, ordered ascending by day. Days without articles are
// omitted.
func (s *ArticleStore) DailySentiment(ctx context.Context, f domain.AggregateFilter) (domain.LineGraph, error) {
	query := `
		SELECT date_trunc('day', pub_date AT TIME ZONE 'UTC') AS day,
		       AVG(sentiment) AS avg_sentiment
		FROM news_articles
		WHERE pub_date >= $1 AND pub_date <= $2`

	args := []interface{}{s.windowStart(f), time.Now().UTC()}
	if f.Category != "" {
		query += " AND category = $3"
		args = append(args, f.Category)
	}
	query += " GROUP BY day ORDER BY day"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var graph domain.LineGraph
	for rows.Next() {
		var p domain.DailyPoint
		if err := rows.Scan(&p.Day, &p.AvgSentiment); err != nil {
			return nil, err
		}
		graph = append(graph, p)
	}

	return graph, rows.Err()
}

// SentimentDistribution counts articles in the three sentiment classes over
// the filter window. Boundary scores (exactly ±0.4) count as okay.
func (s *ArticleStore) SentimentDistribution(ctx context.Context, f domain.AggregateFilter) (domain.PieChart, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE sentiment > 0.4)                        AS good,
			COUNT(*) FILTER (WHERE sentiment < -0.4)                       AS bad,
			COUNT(*) FILTER (WHERE sentiment >= -0.4 AND sentiment <= 0.4) AS okay
		FROM news_articles
		WHERE pub_date >= $1 AND pub_date <= $2`

	args := []interface{}{s.windowStart(f), time.Now().UTC()}
	if f.Category != "" {
		query += " AND category = $3"
		args = append(args, f.Category)
	}

	var pie domain.PieChart
	err := s.db.QueryRowxContext(ctx, query, args...).Scan(&pie.Good, &pie.Bad, &pie.Okay)
	if err != nil {
		return domain.PieChart{}, err
	}

	return pie, nil
}

// TopSources returns up to limit sources ranked by article count inside the
// filter window, with the mean sentiment rounded to 4 decimal places.
func (s *ArticleStore) TopSources(ctx context.Context, f domain.AggregateFilter, limit int) ([]domain.SourceRank, error) {
	query := `
		SELECT source_id,
		       COUNT(id)                          AS article_count,
		       ROUND(AVG(sentiment)::numeric, 4)  AS avg_sentiment
		FROM news_articles
		WHERE pub_date >= $1 AND pub_date <= $2`

	args := []interface{}{s.windowStart(f), time.Now().UTC()}
	if f.Category != "" {
		query += " AND category = $3"
		args = append(args, f.Category)
	}
	query += fmt.Sprintf(" GROUP BY source_id ORDER BY COUNT(id) DESC LIMIT %d", limit)

	var ranks []domain.SourceRank
	if err := s.db.SelectContext(ctx, &ranks, query, args...); err != nil {
		return nil, err
	}

	return ranks, nil
}

func (s *ArticleStore) windowStart(f domain.AggregateFilter) time.Time {
	return time.Now().UTC().AddDate(0, 0, -f.LookbackDays)
}
