package domain

import (
	"errors"
	"time"
)

// ErrDuplicate is returned by the article store when an insert collides with
// the natural key (title, source, publish time). Duplicates are expected on
// overlapping fetch windows and are skipped, not treated as failures.
var ErrDuplicate = errors.New("duplicate article")

// Categories the classifier can assign.
const (
	CategoryWorld    = "World"
	CategorySports   = "Sports"
	CategoryBusiness = "Business"
	CategorySciTech  = "Sci/Tech"
)

// RawArticle holds the extracted upstream fields before validation and
// scoring. All fields are plain strings exactly as the upstream returned
// them; PubDate is parsed and Link validated by the persistence stage.
type RawArticle struct {
	Title       string
	Description string
	PubDate     string
	SourceID    string
	Link        string
	Country     string
}

// Article is one ingested news item as stored in the relational store.
type Article struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	SourceID  string    `db:"source_id"`
	Country   string    `db:"country"`
	PubDate   time.Time `db:"pub_date"`
	Sentiment float64   `db:"sentiment"`
	Category  string    `db:"category"`
	Link      *string   `db:"link"`
}

// Headline is one entry from the headline feed collaborator.
type Headline struct {
	Title string `json:"title"`
	Link  string `json:"link"`
}

// IngestState tracks per-source ingestion bookkeeping.
type IngestState struct {
	ID            int64     `db:"id"`
	SourceID      string    `db:"source_id"`
	LastIngestAt  time.Time `db:"last_ingest_at"`
	TotalInserted int64     `db:"total_inserted"`
}

// IngestStats holds statistics about one ingestion cycle.
type IngestStats struct {
	SourceID  string
	Fetched   int
	Inserted  int
	Duplicate int
	Invalid   int
	Errors    int
	Published int
	Duration  time.Duration
}
