package service

import (
	"math"
	"testing"
	"time"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

func TestStats_KnownSequence(t *testing.T) {
	a := NewStatsAggregator()
	start := time.Unix(1715000000, 0)
	a.Start(start)

	track := []domain.Coordinate{
		{Lat: 25.2048, Lon: 55.2708, Timestamp: start},
		{Lat: 25.2148, Lon: 55.2808, Timestamp: start.Add(60 * time.Second)},
		{Lat: 25.2248, Lon: 55.2908, Timestamp: start.Add(120 * time.Second)},
	}
	for _, s := range track {
		a.Record(s)
	}

	var want float64
	for i := 1; i < len(track); i++ {
		want += DistanceKm(track[i-1], track[i])
	}

	got := a.Snapshot()
	if math.Abs(got.TotalDistanceKm-want) > 1e-9 {
		t.Errorf("TotalDistanceKm = %f, want %f", got.TotalDistanceKm, want)
	}
	if got.SampleCount != 3 {
		t.Errorf("SampleCount = %d, want 3", got.SampleCount)
	}
	if math.Abs(got.TotalTimeSeconds-120) > 1e-9 {
		t.Errorf("TotalTimeSeconds = %f, want 120", got.TotalTimeSeconds)
	}

	wantAvg := want / (120.0 / 3600)
	if math.Abs(got.AverageSpeedKmh-wantAvg) > 1e-6 {
		t.Errorf("AverageSpeedKmh = %f, want %f", got.AverageSpeedKmh, wantAvg)
	}
}

func TestStats_DubaiLegSpeed(t *testing.T) {
	a := NewStatsAggregator()
	start := time.Unix(1715000000, 0)
	a.Start(start)

	a.Record(domain.Coordinate{Lat: 25.2048, Lon: 55.2708, Timestamp: start})
	a.Record(domain.Coordinate{Lat: 25.2148, Lon: 55.2808, Timestamp: start.Add(60 * time.Second)})

	got := a.Snapshot()
	if got.TotalDistanceKm < 1.48 || got.TotalDistanceKm > 1.52 {
		t.Errorf("expected ~1.50 km, got %f", got.TotalDistanceKm)
	}
	if got.AverageSpeedKmh < 88.8 || got.AverageSpeedKmh > 91.0 {
		t.Errorf("expected ~90 km/h, got %f", got.AverageSpeedKmh)
	}
	if got.MaxSpeedKmh < 88.8 || got.MaxSpeedKmh > 91.0 {
		t.Errorf("expected derived max ~90 km/h, got %f", got.MaxSpeedKmh)
	}
}

func TestStats_ReportedSpeedWins(t *testing.T) {
	a := NewStatsAggregator()
	start := time.Unix(1715000000, 0)
	a.Start(start)

	speed := 30.0 // m/s = 108 km/h
	a.Record(domain.Coordinate{Lat: 25.2048, Lon: 55.2708, SpeedMS: &speed, Timestamp: start})

	got := a.Snapshot()
	if math.Abs(got.MaxSpeedKmh-108) > 1e-9 {
		t.Errorf("MaxSpeedKmh = %f, want 108", got.MaxSpeedKmh)
	}
}

func TestStats_SingleSample(t *testing.T) {
	a := NewStatsAggregator()
	start := time.Unix(1715000000, 0)
	a.Start(start)

	a.Record(domain.Coordinate{Lat: 25.2048, Lon: 55.2708, Timestamp: start})

	got := a.Snapshot()
	if got.TotalDistanceKm != 0 {
		t.Errorf("first sample must add no distance, got %f", got.TotalDistanceKm)
	}
	if got.SampleCount != 1 {
		t.Errorf("SampleCount = %d, want 1", got.SampleCount)
	}
	if got.AverageSpeedKmh != 0 {
		t.Errorf("zero elapsed time must not divide, got %f", got.AverageSpeedKmh)
	}
}

func TestStats_Reset(t *testing.T) {
	a := NewStatsAggregator()
	start := time.Unix(1715000000, 0)
	a.Start(start)
	a.Record(domain.Coordinate{Lat: 25.2048, Lon: 55.2708, Timestamp: start})
	a.Record(domain.Coordinate{Lat: 25.2148, Lon: 55.2808, Timestamp: start.Add(time.Minute)})

	a.Reset()
	got := a.Snapshot()
	if got != (domain.TrackingStatistics{}) {
		t.Errorf("expected zeroed statistics, got %+v", got)
	}
}
