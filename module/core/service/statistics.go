package service

import (
	"sync"
	"time"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

// StatsAggregator accumulates distance, time and speed totals over the
// accepted samples of one session.
type StatsAggregator struct {
	mu           sync.Mutex
	stats        domain.TrackingStatistics
	sessionStart time.Time
	previous     *domain.Coordinate
}

func NewStatsAggregator() *StatsAggregator {
	return &StatsAggregator{}
}

// Start marks the session start and zeroes the totals.
func (a *StatsAggregator) Start(at time.Time) {
	a.mu.Lock()
	a.stats = domain.TrackingStatistics{}
	a.sessionStart = at
	a.previous = nil
	a.mu.Unlock()
}

// Record folds one accepted sample into the totals. The first sample only
// counts; distance and speed need a previous point.
func (a *StatsAggregator) Record(sample domain.Coordinate) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stats.SampleCount++

	speed, reported := sample.SpeedKmh()
	if a.previous != nil {
		a.stats.TotalDistanceKm += DistanceKm(*a.previous, sample)
		if !reported {
			speed = SpeedKmh(*a.previous, sample)
		}
	} else if !reported {
		speed = 0
	}

	if speed > a.stats.MaxSpeedKmh {
		a.stats.MaxSpeedKmh = speed
	}

	a.stats.TotalTimeSeconds = sample.Timestamp.Sub(a.sessionStart).Seconds()
	if a.stats.TotalTimeSeconds > 0 {
		a.stats.AverageSpeedKmh = a.stats.TotalDistanceKm / (a.stats.TotalTimeSeconds / 3600)
	}

	prev := sample
	a.previous = &prev
}

// Snapshot returns a copy of the current totals.
func (a *StatsAggregator) Snapshot() domain.TrackingStatistics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stats
}

// Reset zeroes every field and clears the previous-sample reference.
func (a *StatsAggregator) Reset() {
	a.mu.Lock()
	a.stats = domain.TrackingStatistics{}
	a.sessionStart = time.Time{}
	a.previous = nil
	a.mu.Unlock()
}
