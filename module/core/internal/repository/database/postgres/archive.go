package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dispatchly/courier-tracking/module/core/domain"
	"github.com/dispatchly/courier-tracking/module/core/internal/repository/database"
)

var (
	_ database.SessionArchive  = (*ArchiveRepo)(nil)
	_ database.DeadLetterStore = (*ArchiveRepo)(nil)
)

// ArchiveRepo persists session summaries and dead-lettered upload batches.
type ArchiveRepo struct {
	db *sql.DB
}

func NewArchiveRepo(db *sql.DB) *ArchiveRepo {
	return &ArchiveRepo{db: db}
}

func (r *ArchiveRepo) SaveSummary(ctx context.Context, s *domain.SessionSummary) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_summaries (session_id, started_at, stopped_at, total_distance_km, total_time_seconds, average_speed_kmh, max_speed_kmh, sample_count)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.SessionID, s.StartedAt, s.StoppedAt,
		s.Stats.TotalDistanceKm, s.Stats.TotalTimeSeconds,
		s.Stats.AverageSpeedKmh, s.Stats.MaxSpeedKmh, s.Stats.SampleCount,
	)
	return err
}

func (r *ArchiveRepo) SaveDroppedBatch(ctx context.Context, sessionID string, locations []domain.Coordinate, attempts int) error {
	payload, err := json.Marshal(locations)
	if err != nil {
		return fmt.Errorf("marshal batch payload: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO dropped_batches (session_id, payload, sample_count, attempts) VALUES ($1, $2, $3, $4)`,
		sessionID, payload, len(locations), attempts,
	)
	return err
}
