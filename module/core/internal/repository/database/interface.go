package database

import (
	"context"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

// SessionArchive persists session summaries when tracking stops.
type SessionArchive interface {
	SaveSummary(ctx context.Context, summary *domain.SessionSummary) error
}

// DeadLetterStore keeps upload batches that exhausted their retries, so
// they can be replayed by hand instead of silently lost.
type DeadLetterStore interface {
	SaveDroppedBatch(ctx context.Context, sessionID string, locations []domain.Coordinate, attempts int) error
}
