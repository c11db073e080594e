package newsdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"newspulse/internal/domain"
	"newspulse/internal/retry"
)

const SourceID = "newsdata"

// Config holds newsdata.io source configuration.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Retry   retry.Policy
}

// Source fetches and extracts articles from the newsdata.io API. Transient
// failures (network errors, timeouts, HTTP 429/503) are retried with
// exponential backoff; any other upstream error yields an empty payload.
type Source struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	retry      retry.Policy
	logger     *slog.Logger
}

// statusError marks a non-2xx upstream response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.code)
}

// New creates a newsdata source.
func New(cfg Config, logger *slog.Logger) *Source {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = retry.Default
	}
	return &Source{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		retry:      cfg.Retry,
		logger:     logger.With("source", SourceID),
	}
}

// ID returns the stable source identifier stored with each article.
func (s *Source) ID() string {
	return SourceID
}

// FetchLatest fetches the current English-language news batch.
func (s *Source) FetchLatest(ctx context.Context) ([]domain.RawArticle, error) {
	return s.fetch(ctx, "")
}

// FetchQuery fetches news matching a free-text query. Used by the on-demand
// search path, which bypasses persistence.
func (s *Source) FetchQuery(ctx context.Context, query string) ([]domain.RawArticle, error) {
	return s.fetch(ctx, query)
}

func (s *Source) fetch(ctx context.Context, query string) ([]domain.RawArticle, error) {
	params := url.Values{}
	params.Set("apikey", s.apiKey)
	params.Set("language", "en")
	if query != "" {
		params.Set("q", query)
	}
	reqURL := s.baseURL + "?" + params.Encode()

	var resp *apiResponse
	err := s.retry.Do(ctx, s.logger, "fetch news", isRetriable, func(ctx context.Context) error {
		var reqErr error
		resp, reqErr = s.doRequest(ctx, reqURL)
		return reqErr
	})

	if err != nil {
		if isRetriable(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		// Non-retriable upstream error: treated as an empty payload, not a
		// pipeline failure.
		s.logger.Error("non-retriable upstream error", "error", err)
		return nil, nil
	}

	return s.extract(resp), nil
}

func (s *Source) doRequest(ctx context.Context, reqURL string) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "NewsPulse/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode}
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &apiResp, nil
}

// extract normalizes the response into RawArticle records, applying
// field-level fallbacks. Zero results is the normal "no news" condition and
// yields an empty list.
func (s *Source) extract(resp *apiResponse) []domain.RawArticle {
	if resp.Status != "success" {
		s.logger.Warn("api returned non-success status", "status", resp.Status)
		return nil
	}

	if len(resp.Results) == 0 {
		s.logger.Info("no results in api response")
		return []domain.RawArticle{}
	}

	articles := make([]domain.RawArticle, 0, len(resp.Results))
	for _, r := range resp.Results {
		description := r.Description.Join()
		if description == "" {
			description = r.Title.Join()
		}

		articles = append(articles, domain.RawArticle{
			Title:       r.Title.Join(),
			Description: description,
			PubDate:     r.PubDate.Join(),
			SourceID:    r.SourceID.Join(),
			Link:        r.Link.Join(),
			Country:     r.Country.Join(),
		})
	}

	s.logger.Info("extracted articles", "count", len(articles))
	return articles
}

// isRetriable reports whether an error is a transient fetch condition:
// network/connection errors, timeouts, or HTTP 429/503.
func isRetriable(err error) bool {
	var se *statusError
	if errors.As(err, &se) {
		return se.code == http.StatusTooManyRequests || se.code == http.StatusServiceUnavailable
	}

	var ne net.Error
	if errors.As(err, &ne) {
		return true
	}

	var ue *url.Error
	return errors.As(err, &ue)
}
