// Package headlines fetches top news headlines from a Google-News style RSS
// feed. A malformed or empty feed never surfaces as an error: callers always
// get a usable headline list, falling back to a fixed alternate set.
package headlines

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"newspulse/internal/domain"
)

// FallbackHeadlines is returned whenever the feed cannot be fetched or
// parsed, so the dashboard always has something to render.
var FallbackHeadlines = []domain.Headline{
	{Title: "Tech Giant Unveils New AI Processor",
		Link: "https://www.verylongexample.com/ai-innovation/tech-giant-unveils-revolutionary-new-artificial-intelligence-processor-details.html"},
	{Title: "Global Markets React to Interest Rate Hike",
		Link: "https://www.financeworldnews.org/economy/global-markets-show-mixed-reactions-to-recent-central-bank-interest-rate-hike-analysis.html"},
	{Title: "Breakthrough in Renewable Energy Storage",
		Link: "https://www.greenenergynow.net/research/new-breakthrough-in-long-duration-renewable-energy-storage-technology-paving-the-way.html"},
	{Title: "Local Charity Exceeds Fundraising Goal",
		Link: "https://www.communityvoice.com/local-updates/local-charity-campaign-exceeds-fundraising-goal-thanks-to-overwhelming-community-support.html"},
	{Title: "New Study on Climate Change Impacts",
		Link: "https://www.environmentalsciencejournal.org/climate-research/comprehensive-new-study-highlights-severe-climate-change-impacts-globally.html"},
}

// Config holds headline feed configuration.
type Config struct {
	BaseURL string
	Limit   int
	Timeout time.Duration
}

// Feed fetches headlines from an RSS endpoint.
type Feed struct {
	parser  *gofeed.Parser
	baseURL string
	limit   int
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a headline feed client.
func New(cfg Config, logger *slog.Logger) *Feed {
	return &Feed{
		parser:  gofeed.NewParser(),
		baseURL: cfg.BaseURL,
		limit:   cfg.Limit,
		timeout: cfg.Timeout,
		logger:  logger.With("source", "headlines"),
	}
}

// TopHeadlines returns up to the configured limit of headlines for the given
// query (empty query means the front page). It never fails; on any feed
// problem the fallback list is returned.
func (f *Feed) TopHeadlines(ctx context.Context, query string) []domain.Headline {
	feedURL := f.buildURL(query)

	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		f.logger.Warn("failed to parse headline feed", "url", feedURL, "error", err)
		return FallbackHeadlines
	}

	headlines := make([]domain.Headline, 0, f.limit)
	for _, entry := range feed.Items {
		if len(headlines) >= f.limit {
			break
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}
		headlines = append(headlines, domain.Headline{
			Title: entry.Title,
			Link:  entry.Link,
		})
	}

	if len(headlines) == 0 {
		f.logger.Info("no valid headlines in feed, using fallback", "url", feedURL)
		return FallbackHeadlines
	}

	f.logger.Debug("fetched headlines", "count", len(headlines))
	return headlines
}

func (f *Feed) buildURL(query string) string {
	params := url.Values{}
	params.Set("hl", "en-US")
	params.Set("gl", "US")
	params.Set("ceid", "US:en")

	if query == "" {
		return f.baseURL + "?" + params.Encode()
	}

	params.Set("q", strings.Join(strings.Fields(query), ""))
	return f.baseURL + "/search?" + params.Encode()
}
