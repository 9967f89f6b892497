package domain

import "time"

// SessionExport is the serialized snapshot handed to the UI collaborator
// for download or inspection.
type SessionExport struct {
	SessionID  string             `json:"session_id"`
	Locations  []Coordinate       `json:"locations"`
	Stats      TrackingStatistics `json:"stats"`
	Geofences  []GeofenceBoundary `json:"geofences"`
	Settings   TrackingConfig     `json:"settings"`
	ExportedAt time.Time          `json:"exported_at"`
}

// SessionSummary is the persistent record written when a session stops.
type SessionSummary struct {
	SessionID string             `json:"session_id"`
	StartedAt time.Time          `json:"started_at"`
	StoppedAt time.Time          `json:"stopped_at"`
	Stats     TrackingStatistics `json:"stats"`
}

// UploadFailure reports a telemetry batch dropped after exhausting its
// retries. Samples counts the locations removed from the outbound queue;
// they remain recoverable from the dead-letter archive only.
type UploadFailure struct {
	SessionID string `json:"session_id"`
	Samples   int    `json:"samples"`
}

// LocationErrorKind classifies a positioning failure from the device.
type LocationErrorKind string

const (
	// ErrorPermissionDenied requires explicit user action to recover;
	// the source adapter never auto-retries it.
	ErrorPermissionDenied    LocationErrorKind = "permission_denied"
	ErrorPositionUnavailable LocationErrorKind = "position_unavailable"
	ErrorTimeout             LocationErrorKind = "timeout"
)

// Transient reports whether sampling should keep going after this error.
func (k LocationErrorKind) Transient() bool {
	return k != ErrorPermissionDenied
}

// LocationError is a positioning failure surfaced through the event stream.
type LocationError struct {
	Kind    LocationErrorKind `json:"kind"`
	Message string            `json:"message"`
}

func (e *LocationError) Error() string {
	return string(e.Kind) + ": " + e.Message
}
