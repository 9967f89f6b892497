package service

import (
	"math"
	"testing"
	"time"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

func coord(lat, lon float64) domain.Coordinate {
	return domain.Coordinate{Lat: lat, Lon: lon}
}

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	points := []domain.Coordinate{
		coord(0, 0),
		coord(25.2048, 55.2708),
		coord(-6.2088, 106.8456),
		coord(89.9, 0),
	}
	for _, p := range points {
		if d := DistanceKm(p, p); d != 0 {
			t.Errorf("DistanceKm(%v, %v) = %f, want 0", p, p, d)
		}
	}
}

func TestDistanceKm_Symmetry(t *testing.T) {
	a := coord(25.2048, 55.2708)
	b := coord(-6.2088, 106.8456)
	d1 := DistanceKm(a, b)
	d2 := DistanceKm(b, a)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("expected symmetric distance, got %f and %f", d1, d2)
	}
}

func TestDistanceKm_TriangleInequality(t *testing.T) {
	a := coord(25.2048, 55.2708)
	b := coord(25.25, 55.30)
	c := coord(25.30, 55.35)
	if DistanceKm(a, c) > DistanceKm(a, b)+DistanceKm(b, c)+1e-9 {
		t.Error("triangle inequality violated")
	}
}

func TestDistanceKm_KnownLeg(t *testing.T) {
	// One hundredth of a degree in both axes near Dubai is just under
	// 1.5 km of great-circle distance.
	d := DistanceKm(coord(25.2048, 55.2708), coord(25.2148, 55.2808))
	if d < 1.48 || d > 1.52 {
		t.Errorf("expected ~1.50 km, got %f", d)
	}
}

func TestSpeedKmh_DerivedFromTimestamps(t *testing.T) {
	start := time.Unix(1715000000, 0)
	a := domain.Coordinate{Lat: 25.2048, Lon: 55.2708, Timestamp: start}
	b := domain.Coordinate{Lat: 25.2148, Lon: 55.2808, Timestamp: start.Add(60 * time.Second)}

	v := SpeedKmh(a, b)
	if v < 88.8 || v > 91.0 {
		t.Errorf("expected ~90 km/h, got %f", v)
	}
}

func TestSpeedKmh_NonPositiveDelta(t *testing.T) {
	ts := time.Unix(1715000000, 0)
	a := domain.Coordinate{Lat: 25.2048, Lon: 55.2708, Timestamp: ts}
	b := domain.Coordinate{Lat: 25.2148, Lon: 55.2808, Timestamp: ts}
	if v := SpeedKmh(a, b); v != 0 {
		t.Errorf("expected 0 for zero time delta, got %f", v)
	}
	b.Timestamp = ts.Add(-time.Second)
	if v := SpeedKmh(a, b); v != 0 {
		t.Errorf("expected 0 for negative time delta, got %f", v)
	}
}

func TestBearingDegrees_Range(t *testing.T) {
	a := coord(25.2048, 55.2708)
	cases := []domain.Coordinate{
		coord(26.0, 55.2708), // due north
		coord(25.2048, 56.0), // due east
		coord(24.0, 55.2708), // due south
		coord(25.2048, 54.0), // due west
	}
	want := []float64{0, 90, 180, 270}
	for i, b := range cases {
		got := BearingDegrees(a, b)
		if got < 0 || got >= 360 {
			t.Errorf("bearing %f outside [0, 360)", got)
		}
		if math.Abs(got-want[i]) > 1.0 {
			t.Errorf("bearing to %v = %f, want ~%f", b, got, want[i])
		}
	}
}
