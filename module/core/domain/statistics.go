package domain

// TrackingStatistics are the running totals for the active session.
// Mutated only by the statistics aggregator; read-only everywhere else.
type TrackingStatistics struct {
	TotalDistanceKm  float64 `json:"total_distance_km"`
	TotalTimeSeconds float64 `json:"total_time_seconds"`
	AverageSpeedKmh  float64 `json:"average_speed_kmh"`
	MaxSpeedKmh      float64 `json:"max_speed_kmh"`
	SampleCount      int     `json:"sample_count"`
}
