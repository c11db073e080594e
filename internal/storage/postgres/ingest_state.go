package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"newspulse/internal/domain"
)

type IngestStateStore struct {
	db *sqlx.DB
}

func NewIngestStateStore(db *sqlx.DB) *IngestStateStore {
	return &IngestStateStore{db: db}
}

// Get returns the ingestion bookkeeping row for a source, or an empty state
// for sources that have never run.
func (s *IngestStateStore) Get(ctx context.Context, sourceID string) (*domain.IngestState, error) {
	var state domain.IngestState
	query := `
		SELECT id, source_id, last_ingest_at, total_inserted
		FROM ingest_state
		WHERE source_id = $1`

	err := s.db.GetContext(ctx, &state, query, sourceID)
	if errors.Is(err, sql.ErrNoRows) {
		return &domain.IngestState{
			SourceID:     sourceID,
			LastIngestAt: time.Time{},
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

// Update upserts the bookkeeping row.
func (s *IngestStateStore) Update(ctx context.Context, state *domain.IngestState) error {
	query := `
		INSERT INTO ingest_state (source_id, last_ingest_at, total_inserted)
		VALUES ($1, $2, $3)
		ON CONFLICT (source_id) DO UPDATE SET
			last_ingest_at = EXCLUDED.last_ingest_at,
			total_inserted = EXCLUDED.total_inserted`

	_, err := s.db.ExecContext(ctx, query,
		state.SourceID,
		state.LastIngestAt,
		state.TotalInserted,
	)
	return err
}
