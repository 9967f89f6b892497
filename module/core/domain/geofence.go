package domain

import "time"

// GeofenceBoundary is a named circular zone on the map.
type GeofenceBoundary struct {
	ID       string            `json:"id"`
	Center   Coordinate        `json:"center"`
	RadiusM  float64           `json:"radius_meters"`
	Kind     string            `json:"kind"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// GeofenceMembership is the last known side of a zone for the tracked driver.
type GeofenceMembership int

const (
	MembershipUnclassified GeofenceMembership = iota
	MembershipInside
	MembershipOutside
)

type GeofenceEventKind string

const (
	GeofenceEnter GeofenceEventKind = "geofence_enter"
	GeofenceExit  GeofenceEventKind = "geofence_exit"
)

// GeofenceEvent is emitted once per true boundary crossing.
type GeofenceEvent struct {
	GeofenceID string            `json:"geofence_id"`
	Kind       GeofenceEventKind `json:"kind"`
	Location   Coordinate        `json:"location"`
	Timestamp  time.Time         `json:"timestamp"`
}
