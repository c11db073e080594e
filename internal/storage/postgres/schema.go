package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// schema is applied on startup. The unique index on (title, source_id,
// pub_date) is the natural key that makes ingestion idempotent: re-running a
// cycle over overlapping upstream data raises duplicate-key errors instead
// of creating rows.
const schema = `
CREATE TABLE IF NOT EXISTS news_articles (
	id         BIGSERIAL PRIMARY KEY,
	title      TEXT             NOT NULL,
	source_id  TEXT             NOT NULL,
	country    TEXT             NOT NULL,
	pub_date   TIMESTAMPTZ      NOT NULL,
	sentiment  DOUBLE PRECISION NOT NULL,
	category   TEXT             NOT NULL,
	link       TEXT
);

CREATE UNIQUE INDEX IF NOT EXISTS news_articles_natural_key
	ON news_articles (title, source_id, pub_date);

CREATE INDEX IF NOT EXISTS news_articles_pub_date_idx
	ON news_articles (pub_date);

CREATE TABLE IF NOT EXISTS ingest_state (
	id             BIGSERIAL PRIMARY KEY,
	source_id      TEXT        NOT NULL UNIQUE,
	last_ingest_at TIMESTAMPTZ NOT NULL,
	total_inserted BIGINT      NOT NULL DEFAULT 0
);
`

// EnsureSchema creates the tables and indexes if they do not exist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
