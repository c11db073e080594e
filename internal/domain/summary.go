package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// DayKeyFormat is the bucket key format used in the line graph. Matches the
// day-truncated timestamp the dashboard expects.
const DayKeyFormat = "2006-01-02 15:04:05"

// Sentiment class thresholds. Good is strictly above the upper bound, bad
// strictly below the lower one; both boundary values count as okay.
const (
	GoodThreshold = 0.4
	BadThreshold  = -0.4
)

// SentimentClass buckets a compound score into good/okay/bad.
func SentimentClass(score float64) string {
	switch {
	case score > GoodThreshold:
		return "good"
	case score < BadThreshold:
		return "bad"
	default:
		return "okay"
	}
}

// DailyPoint is one day bucket of the sentiment trend line.
type DailyPoint struct {
	Day          time.Time
	AvgSentiment float64
}

// LineGraph is the daily average sentiment series, ordered ascending by day.
// It serializes as a JSON object keyed by the day bucket so the cached shape
// stays compatible with the dashboard, while iteration order in Go remains
// the ascending slice order.
type LineGraph []DailyPoint

func (lg LineGraph) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, p := range lg {
		if i > 0 {
			sb.WriteByte(',')
		}
		key, err := json.Marshal(p.Day.UTC().Format(DayKeyFormat))
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(p.AvgSentiment)
		if err != nil {
			return nil, err
		}
		sb.Write(key)
		sb.WriteByte(':')
		sb.Write(val)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

func (lg *LineGraph) UnmarshalJSON(data []byte) error {
	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	points := make(LineGraph, 0, len(keys))
	for _, k := range keys {
		day, err := time.ParseInLocation(DayKeyFormat, k, time.UTC)
		if err != nil {
			return fmt.Errorf("parse day key %q: %w", k, err)
		}
		points = append(points, DailyPoint{Day: day, AvgSentiment: raw[k]})
	}
	*lg = points
	return nil
}

// PieChart holds sentiment-class counts over a window.
type PieChart struct {
	Good int64 `json:"good"`
	Okay int64 `json:"okay"`
	Bad  int64 `json:"bad"`
}

// Total returns the number of articles covered by the counts.
func (p PieChart) Total() int64 {
	return p.Good + p.Okay + p.Bad
}

// SourceRank is one top-sources entry. AvgSentiment is rounded to 4 decimal
// places by the aggregation query.
type SourceRank struct {
	Source       string  `json:"source" db:"source_id"`
	ArticleCount int64   `json:"article_count" db:"article_count"`
	AvgSentiment float64 `json:"avg_sentiment" db:"avg_sentiment"`
}

// SummaryBundle is one cached aggregation result, recomputed wholesale after
// every successful ingestion cycle.
type SummaryBundle struct {
	LineGraph  LineGraph    `json:"line_graph"`
	PieChart   PieChart     `json:"pie_chart"`
	TopSources []SourceRank `json:"top_sources"`
}

// EmptySummary returns a structurally valid zero bundle. Cache reads fall
// back to it so callers never see a malformed shape.
func EmptySummary() *SummaryBundle {
	return &SummaryBundle{
		LineGraph:  LineGraph{},
		TopSources: []SourceRank{},
	}
}

// AggregateFilter scopes an aggregation query to a lookback window and an
// optional exact category match (empty string means no filter).
type AggregateFilter struct {
	LookbackDays int
	Category     string
}

// SummaryPeriod names one cached summary and the filter that produces it.
type SummaryPeriod struct {
	Key    string
	Filter AggregateFilter
}

// SummaryPeriods is the full set of cache keys the publisher maintains.
var SummaryPeriods = []SummaryPeriod{
	{Key: "monthly_summary", Filter: AggregateFilter{LookbackDays: 30}},
	{Key: "monthly_business", Filter: AggregateFilter{LookbackDays: 30, Category: CategoryBusiness}},
	{Key: "monthly_sports", Filter: AggregateFilter{LookbackDays: 30, Category: CategorySports}},
	{Key: "monthly_sci_tech", Filter: AggregateFilter{LookbackDays: 30, Category: CategorySciTech}},
	{Key: "monthly_world", Filter: AggregateFilter{LookbackDays: 30, Category: CategoryWorld}},
	{Key: "weekly_summary", Filter: AggregateFilter{LookbackDays: 7}},
	{Key: "weekly_business", Filter: AggregateFilter{LookbackDays: 7, Category: CategoryBusiness}},
	{Key: "weekly_sports", Filter: AggregateFilter{LookbackDays: 7, Category: CategorySports}},
	{Key: "weekly_sci_tech", Filter: AggregateFilter{LookbackDays: 7, Category: CategorySciTech}},
	{Key: "weekly_world", Filter: AggregateFilter{LookbackDays: 7, Category: CategoryWorld}},
}
