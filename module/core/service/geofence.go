package service

import (
	"sync"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

// GeofenceConfig controls evaluation policy.
type GeofenceConfig struct {
	// EmitOnInitialClassification fires an event for the first sample that
	// establishes membership. Off by default to avoid a spurious enter at
	// session start.
	EmitOnInitialClassification bool
}

// GeofenceService owns the active zones and their membership state. A zone
// transitions directly between inside and outside; each true crossing emits
// exactly one event.
type GeofenceService struct {
	cfg GeofenceConfig

	mu         sync.Mutex
	geofences  map[string]domain.GeofenceBoundary
	membership map[string]domain.GeofenceMembership
}

func NewGeofenceService(cfg GeofenceConfig) *GeofenceService {
	return &GeofenceService{
		cfg:        cfg,
		geofences:  make(map[string]domain.GeofenceBoundary),
		membership: make(map[string]domain.GeofenceMembership),
	}
}

// AddGeofence registers a zone. Adding an existing id replaces the boundary
// and resets its membership.
func (s *GeofenceService) AddGeofence(b domain.GeofenceBoundary) error {
	if b.ID == "" {
		return &domain.ValidationError{Field: "id", Reason: "required"}
	}
	if b.RadiusM <= 0 {
		return &domain.ValidationError{Field: "radius_meters", Reason: "must be positive"}
	}
	s.mu.Lock()
	s.geofences[b.ID] = b
	s.membership[b.ID] = domain.MembershipUnclassified
	s.mu.Unlock()
	return nil
}

// RemoveGeofence drops a zone and its stored membership. Unknown ids are
// a no-op.
func (s *GeofenceService) RemoveGeofence(id string) {
	s.mu.Lock()
	delete(s.geofences, id)
	delete(s.membership, id)
	s.mu.Unlock()
}

// Boundaries returns a snapshot of the active zones.
func (s *GeofenceService) Boundaries() []domain.GeofenceBoundary {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.GeofenceBoundary, 0, len(s.geofences))
	for _, b := range s.geofences {
		out = append(out, b)
	}
	return out
}

// RemoveAll clears every zone, for session teardown.
func (s *GeofenceService) RemoveAll() {
	s.mu.Lock()
	s.geofences = make(map[string]domain.GeofenceBoundary)
	s.membership = make(map[string]domain.GeofenceMembership)
	s.mu.Unlock()
}

// Evaluate classifies the sample against every active zone and returns the
// crossing events, if any.
func (s *GeofenceService) Evaluate(sample domain.Coordinate) []domain.GeofenceEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var events []domain.GeofenceEvent
	for id, b := range s.geofences {
		current := domain.MembershipOutside
		if DistanceKm(sample, b.Center)*1000 <= b.RadiusM {
			current = domain.MembershipInside
		}

		previous := s.membership[id]
		s.membership[id] = current

		if previous == domain.MembershipUnclassified {
			// Initial classification only emits when the policy asks for
			// it, and only for an inside fix.
			if !s.cfg.EmitOnInitialClassification || current != domain.MembershipInside {
				continue
			}
		} else if previous == current {
			continue
		}

		kind := domain.GeofenceExit
		if current == domain.MembershipInside {
			kind = domain.GeofenceEnter
		}
		events = append(events, domain.GeofenceEvent{
			GeofenceID: id,
			Kind:       kind,
			Location:   sample,
			Timestamp:  sample.Timestamp,
		})
	}
	return events
}
