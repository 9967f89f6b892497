package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

func TestSaveSummary_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	started := time.Unix(1715000000, 0)
	stopped := started.Add(30 * time.Minute)

	mock.ExpectExec(`INSERT INTO session_summaries`).
		WithArgs("session-1", started, stopped, 12.4, 1800.0, 24.8, 61.2, 420).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewArchiveRepo(db)
	err = repo.SaveSummary(context.Background(), &domain.SessionSummary{
		SessionID: "session-1",
		StartedAt: started,
		StoppedAt: stopped,
		Stats: domain.TrackingStatistics{
			TotalDistanceKm:  12.4,
			TotalTimeSeconds: 1800,
			AverageSpeedKmh:  24.8,
			MaxSpeedKmh:      61.2,
			SampleCount:      420,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestSaveSummary_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO session_summaries`).
		WillReturnError(sqlmock.ErrCancelled)

	repo := NewArchiveRepo(db)
	err = repo.SaveSummary(context.Background(), &domain.SessionSummary{SessionID: "session-1"})
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestSaveDroppedBatch_Success(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = db.Close() }()

	mock.ExpectExec(`INSERT INTO dropped_batches`).
		WithArgs("session-1", sqlmock.AnyArg(), 2, 5).
		WillReturnResult(sqlmock.NewResult(1, 1))

	repo := NewArchiveRepo(db)
	locations := []domain.Coordinate{
		{Lat: 25.2048, Lon: 55.2708, Timestamp: time.Unix(1715000000, 0)},
		{Lat: 25.2148, Lon: 55.2808, Timestamp: time.Unix(1715000060, 0)},
	}
	if err := repo.SaveDroppedBatch(context.Background(), "session-1", locations, 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
