package domain

import (
	"errors"
	"fmt"
)

// ErrSessionActive is returned when start is called while another session
// is already running. Starting is never a silent override.
var ErrSessionActive = errors.New("a tracking session is already active")

// ErrNoStops is returned by the optimizer for an empty stop list.
var ErrNoStops = errors.New("no deliveries to optimize")

// ValidationError marks a malformed sample. The sample is dropped and
// counted; the session keeps running.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid sample: %s: %s", e.Field, e.Reason)
}
