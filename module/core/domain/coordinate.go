package domain

import "time"

// Coordinate is a single positioning sample as reported by the driver's
// device. Optional fields are nil when the hardware did not report them.
type Coordinate struct {
	Lat       float64   `json:"latitude"`
	Lon       float64   `json:"longitude"`
	AccuracyM float64   `json:"accuracy"`
	AltitudeM *float64  `json:"altitude,omitempty"`
	Heading   *float64  `json:"heading,omitempty"`
	SpeedMS   *float64  `json:"speed,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// SpeedKmh returns the reported speed converted to km/h, or ok=false when
// the device did not report one.
func (c Coordinate) SpeedKmh() (float64, bool) {
	if c.SpeedMS == nil {
		return 0, false
	}
	return *c.SpeedMS * 3.6, true
}

// TrackingConfig carries the caller-supplied options for a tracking session.
type TrackingConfig struct {
	EnableHighAccuracy   bool    `json:"enable_high_accuracy"`
	DistanceFilterMeters float64 `json:"distance_filter_meters"`
	TimeFilterMs         int64   `json:"time_filter_ms"`
	BackgroundTracking   bool    `json:"background_tracking"`
}
