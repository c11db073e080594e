package newsdata

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newspulse/internal/retry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func fastRetry() retry.Policy {
	return retry.Policy{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
	}
}

func newTestSource(t *testing.T, handler http.HandlerFunc) *Source {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return New(Config{
		BaseURL: srv.URL,
		APIKey:  "test-key",
		Timeout: 5 * time.Second,
		Retry:   fastRetry(),
	}, testLogger())
}

func TestFetchLatest_ExtractsFields(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		assert.Equal(t, "en", r.URL.Query().Get("language"))

		_, _ = w.Write([]byte(`{
			"status": "success",
			"totalResults": 2,
			"results": [
				{
					"title": "First Article",
					"description": "Something happened",
					"pubDate": "2025-08-30 12:00:00",
					"source_id": "bbc",
					"link": "https://bbc.com/news/1",
					"country": ["united kingdom", "ireland"]
				},
				{
					"title": "Second Article",
					"description": null,
					"pubDate": "2025-08-30 13:00:00",
					"source_id": "cnn",
					"link": "https://cnn.com/news/2",
					"country": "united states"
				}
			]
		}`))
	})

	articles, err := src.FetchLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 2)

	assert.Equal(t, "First Article", articles[0].Title)
	assert.Equal(t, "Something happened", articles[0].Description)
	assert.Equal(t, "united kingdom, ireland", articles[0].Country)
	assert.Equal(t, "bbc", articles[0].SourceID)

	// Missing description falls back to title.
	assert.Equal(t, "Second Article", articles[1].Description)
}

func TestFetchLatest_NonSuccessStatusYieldsEmpty(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "error", "results": []}`))
	})

	articles, err := src.FetchLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFetchLatest_ZeroResultsIsNotAnError(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status": "success", "totalResults": 0, "results": []}`))
	})

	articles, err := src.FetchLatest(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, articles)
	assert.Empty(t, articles)
}

func TestFetchLatest_NonRetriableStatusYieldsEmptyPayload(t *testing.T) {
	calls := 0
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	})

	articles, err := src.FetchLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
	assert.Equal(t, 1, calls, "non-retriable status must not consume the retry budget")
}

func TestFetchLatest_MalformedPayloadYieldsEmptyPayload(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	articles, err := src.FetchLatest(context.Background())
	require.NoError(t, err)
	assert.Empty(t, articles)
}

func TestFetchLatest_RetriesOn503(t *testing.T) {
	calls := 0
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{
			"status": "success",
			"results": [{"title": "Late Article", "pubDate": "2025-08-30 12:00:00", "source_id": "bbc", "link": "https://bbc.com/1", "country": "uk"}]
		}`))
	})

	articles, err := src.FetchLatest(context.Background())
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, 3, calls)
}

func TestFetchLatest_RetriableExhaustionPropagates(t *testing.T) {
	calls := 0
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := src.FetchLatest(context.Background())
	require.Error(t, err)
	assert.Equal(t, 3, calls)
}

func TestFetchQuery_SetsQueryParam(t *testing.T) {
	src := newTestSource(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pizza", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"status": "success", "results": []}`))
	})

	_, err := src.FetchQuery(context.Background(), "pizza")
	require.NoError(t, err)
}

func TestField_UnmarshalVariants(t *testing.T) {
	var f Field

	require.NoError(t, json.Unmarshal([]byte(`"plain"`), &f))
	assert.Equal(t, "plain", f.Join())

	require.NoError(t, json.Unmarshal([]byte(`["a", "", "b"]`), &f))
	assert.Equal(t, "a, b", f.Join())

	require.NoError(t, json.Unmarshal([]byte(`null`), &f))
	assert.True(t, f.IsAbsent())
	assert.Equal(t, "", f.Join())

	require.NoError(t, json.Unmarshal([]byte(`42`), &f))
	assert.Equal(t, "42", f.Join())

	assert.Error(t, json.Unmarshal([]byte(`{"nested": true}`), &f))
}
