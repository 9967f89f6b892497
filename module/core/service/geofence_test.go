package service

import (
	"testing"
	"time"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

var depotCenter = domain.Coordinate{Lat: 25.2048, Lon: 55.2708}

func depotZone(radiusM float64) domain.GeofenceBoundary {
	return domain.GeofenceBoundary{
		ID:      "depot",
		Center:  depotCenter,
		RadiusM: radiusM,
		Kind:    "depot",
	}
}

// ~150 m north of the depot center
var outsidePoint = domain.Coordinate{Lat: 25.20615, Lon: 55.2708}

func at(c domain.Coordinate, ts time.Time) domain.Coordinate {
	c.Timestamp = ts
	return c
}

func TestAddGeofence_Invalid(t *testing.T) {
	s := NewGeofenceService(GeofenceConfig{})
	if err := s.AddGeofence(domain.GeofenceBoundary{ID: "", RadiusM: 100}); err == nil {
		t.Error("expected error for missing id")
	}
	if err := s.AddGeofence(domain.GeofenceBoundary{ID: "x", RadiusM: 0}); err == nil {
		t.Error("expected error for non-positive radius")
	}
	if err := s.AddGeofence(domain.GeofenceBoundary{ID: "x", RadiusM: -5}); err == nil {
		t.Error("expected error for negative radius")
	}
}

func TestEvaluate_FirstClassificationEmitsNothing(t *testing.T) {
	s := NewGeofenceService(GeofenceConfig{})
	if err := s.AddGeofence(depotZone(100)); err != nil {
		t.Fatal(err)
	}

	ts := time.Unix(1715000000, 0)
	if events := s.Evaluate(at(depotCenter, ts)); len(events) != 0 {
		t.Fatalf("expected no events on initial classification, got %d", len(events))
	}
	if events := s.Evaluate(at(outsidePoint, ts.Add(time.Minute))); len(events) != 1 {
		t.Fatalf("expected 1 exit event, got %d", len(events))
	}
}

func TestEvaluate_EnterThenExit(t *testing.T) {
	s := NewGeofenceService(GeofenceConfig{})
	if err := s.AddGeofence(depotZone(100)); err != nil {
		t.Fatal(err)
	}

	ts := time.Unix(1715000000, 0)

	// establish outside
	if events := s.Evaluate(at(outsidePoint, ts)); len(events) != 0 {
		t.Fatalf("expected no events, got %d", len(events))
	}

	events := s.Evaluate(at(depotCenter, ts.Add(time.Minute)))
	if len(events) != 1 {
		t.Fatalf("expected exactly 1 event, got %d", len(events))
	}
	if events[0].Kind != domain.GeofenceEnter {
		t.Errorf("expected enter, got %s", events[0].Kind)
	}
	if events[0].GeofenceID != "depot" {
		t.Errorf("expected depot, got %s", events[0].GeofenceID)
	}

	// repeated samples on the same side are quiet
	if events := s.Evaluate(at(depotCenter, ts.Add(2*time.Minute))); len(events) != 0 {
		t.Fatalf("expected no duplicate events, got %d", len(events))
	}

	events = s.Evaluate(at(outsidePoint, ts.Add(3*time.Minute)))
	if len(events) != 1 || events[0].Kind != domain.GeofenceExit {
		t.Fatalf("expected exactly 1 exit event, got %+v", events)
	}
}

func TestEvaluate_ExactCenterAndBoundary(t *testing.T) {
	s := NewGeofenceService(GeofenceConfig{})
	if err := s.AddGeofence(depotZone(100)); err != nil {
		t.Fatal(err)
	}
	ts := time.Unix(1715000000, 0)

	s.Evaluate(at(outsidePoint, ts))
	events := s.Evaluate(at(depotCenter, ts.Add(time.Minute)))
	if len(events) != 1 || events[0].Kind != domain.GeofenceEnter {
		t.Fatalf("center sample must classify inside, got %+v", events)
	}
}

func TestEvaluate_EmitOnInitialClassification(t *testing.T) {
	s := NewGeofenceService(GeofenceConfig{EmitOnInitialClassification: true})
	if err := s.AddGeofence(depotZone(100)); err != nil {
		t.Fatal(err)
	}

	ts := time.Unix(1715000000, 0)
	events := s.Evaluate(at(depotCenter, ts))
	if len(events) != 1 || events[0].Kind != domain.GeofenceEnter {
		t.Fatalf("expected initial enter with policy enabled, got %+v", events)
	}
}

func TestRemoveGeofence_ClearsMembership(t *testing.T) {
	s := NewGeofenceService(GeofenceConfig{})
	if err := s.AddGeofence(depotZone(100)); err != nil {
		t.Fatal(err)
	}
	ts := time.Unix(1715000000, 0)

	s.Evaluate(at(depotCenter, ts))
	s.RemoveGeofence("depot")
	if err := s.AddGeofence(depotZone(100)); err != nil {
		t.Fatal(err)
	}

	// membership starts over; the first sample classifies silently again
	if events := s.Evaluate(at(outsidePoint, ts.Add(time.Minute))); len(events) != 0 {
		t.Fatalf("expected no events after re-add, got %d", len(events))
	}
}

func TestEvaluate_MultipleZones(t *testing.T) {
	s := NewGeofenceService(GeofenceConfig{})
	if err := s.AddGeofence(depotZone(100)); err != nil {
		t.Fatal(err)
	}
	wide := depotZone(500)
	wide.ID = "delivery-area"
	wide.Kind = "delivery"
	if err := s.AddGeofence(wide); err != nil {
		t.Fatal(err)
	}

	ts := time.Unix(1715000000, 0)
	s.Evaluate(at(depotCenter, ts))

	// 150 m out: leaves the 100 m zone, stays inside the 500 m one
	events := s.Evaluate(at(outsidePoint, ts.Add(time.Minute)))
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].GeofenceID != "depot" || events[0].Kind != domain.GeofenceExit {
		t.Errorf("unexpected event %+v", events[0])
	}
}
