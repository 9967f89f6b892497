package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dispatchly/courier-tracking/module/core/domain"
	"github.com/dispatchly/courier-tracking/module/core/internal/repository/database"
	"github.com/dispatchly/courier-tracking/module/core/internal/repository/publisher"
)

// LocationSource is the platform positioning capability. Implementations
// deliver raw samples and classified errors through the callbacks until
// StopTracking, which must be idempotent.
type LocationSource interface {
	StartTracking(cfg domain.TrackingConfig, onSample func(domain.Coordinate), onError func(*domain.LocationError)) error
	StopTracking()
}

// TelemetryQueue is the uploader's intake. Enqueue never blocks the
// sampling path; Flush is an asynchronous nudge.
type TelemetryQueue interface {
	Enqueue(sessionID string, sample domain.Coordinate)
	Flush(sessionID string)
}

// SessionConfig carries the fixed per-deployment knobs of the manager.
type SessionConfig struct {
	HistoryCapacity int
	Validator       ValidatorConfig
	Geofence        GeofenceConfig
}

const defaultHistoryCapacity = 1000

// SessionManager owns the single active tracking session and orchestrates
// validation, geofencing, statistics, history and upload for every sample.
// Source callbacks are serialized through its mutex, so the pipeline sees
// samples in arrival order.
type SessionManager struct {
	cfg       SessionConfig
	source    LocationSource
	queue     TelemetryQueue
	events    publisher.EventPublisher
	archive   database.SessionArchive
	dispatch  *Dispatcher
	validator *SampleValidator
	geofences *GeofenceService
	stats     *StatsAggregator
	optimizer *RouteOptimizer

	mu        sync.Mutex
	active    bool
	sessionID string
	startedAt time.Time
	settings  domain.TrackingConfig
	history   *historyRing
}

func NewSessionManager(cfg SessionConfig, source LocationSource, queue TelemetryQueue, events publisher.EventPublisher, archive database.SessionArchive) *SessionManager {
	if cfg.HistoryCapacity <= 0 {
		cfg.HistoryCapacity = defaultHistoryCapacity
	}
	return &SessionManager{
		cfg:       cfg,
		source:    source,
		queue:     queue,
		events:    events,
		archive:   archive,
		dispatch:  NewDispatcher(),
		validator: NewSampleValidator(cfg.Validator),
		geofences: NewGeofenceService(cfg.Geofence),
		stats:     NewStatsAggregator(),
		optimizer: NewRouteOptimizer(),
		history:   newHistoryRing(cfg.HistoryCapacity),
	}
}

// Events exposes the dispatcher for UI-layer subscriptions.
func (m *SessionManager) Events() *Dispatcher {
	return m.dispatch
}

// Start begins a tracking session. Starting while one is active fails with
// ErrSessionActive; it never silently overrides the running session.
func (m *SessionManager) Start(cfg domain.TrackingConfig) (string, error) {
	m.mu.Lock()
	if m.active {
		m.mu.Unlock()
		return "", domain.ErrSessionActive
	}

	m.active = true
	m.sessionID = uuid.NewString()
	m.startedAt = time.Now()
	m.settings = cfg
	m.history = newHistoryRing(m.cfg.HistoryCapacity)

	// The session's distance/time filters override the deployment
	// defaults for the life of this session.
	vcfg := m.cfg.Validator
	if cfg.DistanceFilterMeters > 0 {
		vcfg.MinDistanceM = cfg.DistanceFilterMeters
	}
	if cfg.TimeFilterMs > 0 {
		vcfg.MinIntervalMs = cfg.TimeFilterMs
	}
	m.validator = NewSampleValidator(vcfg)
	m.stats.Start(m.startedAt)
	sessionID := m.sessionID
	m.mu.Unlock()

	if err := m.source.StartTracking(cfg, m.handleSample, m.handleError); err != nil {
		m.mu.Lock()
		m.active = false
		m.mu.Unlock()
		return "", err
	}

	log.WithField("session_id", sessionID).Info("tracking session started")
	m.publishLifecycle(sessionID, "tracking_started")
	m.dispatch.Dispatch(EventTrackingStarted, sessionID)
	return sessionID, nil
}

// Stop ends the active session. Idempotent; safe to call when idle. Pending
// events flush synchronously, in-flight uploads run to completion on their
// own goroutine.
func (m *SessionManager) Stop() {
	m.mu.Lock()
	if !m.active {
		m.mu.Unlock()
		return
	}
	m.active = false
	sessionID := m.sessionID
	startedAt := m.startedAt
	m.mu.Unlock()

	m.source.StopTracking()
	m.queue.Flush(sessionID)

	summary := &domain.SessionSummary{
		SessionID: sessionID,
		StartedAt: startedAt,
		StoppedAt: time.Now(),
		Stats:     m.stats.Snapshot(),
	}
	if m.archive != nil {
		if err := m.archive.SaveSummary(context.Background(), summary); err != nil {
			log.WithField("session_id", sessionID).Warnf("archive session summary: %v", err)
		}
	}

	m.geofences.RemoveAll()

	log.WithField("session_id", sessionID).Info("tracking session stopped")
	m.publishLifecycle(sessionID, "tracking_stopped")
	m.dispatch.Dispatch(EventTrackingStopped, sessionID)
}

// AddGeofence registers a zone with the evaluator.
func (m *SessionManager) AddGeofence(b domain.GeofenceBoundary) error {
	return m.geofences.AddGeofence(b)
}

// RemoveGeofence drops a zone and its membership.
func (m *SessionManager) RemoveGeofence(id string) {
	m.geofences.RemoveGeofence(id)
}

// OptimizeRoute orders a batch of stops. Runs outside the streaming path.
func (m *SessionManager) OptimizeRoute(stops []domain.Stop, start domain.Coordinate, opts domain.RouteOptions) (*domain.OptimizedRoute, error) {
	return m.optimizer.Optimize(stops, start, opts)
}

// Stats returns a copy of the current session totals.
func (m *SessionManager) Stats() domain.TrackingStatistics {
	return m.stats.Snapshot()
}

// Export snapshots the session for download or inspection.
func (m *SessionManager) Export() *domain.SessionExport {
	m.mu.Lock()
	sessionID := m.sessionID
	settings := m.settings
	locations := m.history.snapshot()
	m.mu.Unlock()

	return &domain.SessionExport{
		SessionID:  sessionID,
		Locations:  locations,
		Stats:      m.stats.Snapshot(),
		Geofences:  m.geofences.Boundaries(),
		Settings:   settings,
		ExportedAt: time.Now(),
	}
}

// handleSample runs the per-sample pipeline to completion before the next
// callback is admitted.
func (m *SessionManager) handleSample(sample domain.Coordinate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.active {
		return
	}

	outcome := m.validator.Validate(sample)
	switch {
	case outcome.Err != nil:
		log.Debugf("sample rejected: %v", outcome.Err)
		return
	case outcome.Filtered:
		log.Tracef("sample filtered: %s", outcome.Reason)
		return
	}

	for _, ev := range m.geofences.Evaluate(sample) {
		m.publishGeofence(m.sessionID, ev)
		if ev.Kind == domain.GeofenceEnter {
			m.dispatch.Dispatch(EventGeofenceEnter, ev)
		} else {
			m.dispatch.Dispatch(EventGeofenceExit, ev)
		}
	}

	m.stats.Record(sample)
	m.history.append(sample)
	m.queue.Enqueue(m.sessionID, sample)
	m.dispatch.Dispatch(EventLocationUpdate, sample)
}

// handleError surfaces positioning failures. Permission errors need user
// action; transient errors leave the watch alive.
func (m *SessionManager) handleError(lerr *domain.LocationError) {
	if lerr.Kind.Transient() {
		log.Warnf("positioning error: %v", lerr)
	} else {
		log.Errorf("positioning error: %v", lerr)
	}
	m.dispatch.Dispatch(EventLocationError, lerr)
}

func (m *SessionManager) publishGeofence(sessionID string, ev domain.GeofenceEvent) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishGeofenceEvent(context.Background(), sessionID, &ev); err != nil {
		log.Warnf("publish geofence event: %v", err)
	}
}

func (m *SessionManager) publishLifecycle(sessionID, kind string) {
	if m.events == nil {
		return
	}
	if err := m.events.PublishLifecycle(context.Background(), sessionID, kind); err != nil {
		log.Warnf("publish lifecycle event: %v", err)
	}
}

// historyRing keeps the last capacity samples, evicting oldest first.
type historyRing struct {
	buf   []domain.Coordinate
	start int
	size  int
}

func newHistoryRing(capacity int) *historyRing {
	return &historyRing{buf: make([]domain.Coordinate, capacity)}
}

func (r *historyRing) append(c domain.Coordinate) {
	if r.size < len(r.buf) {
		r.buf[(r.start+r.size)%len(r.buf)] = c
		r.size++
		return
	}
	r.buf[r.start] = c
	r.start = (r.start + 1) % len(r.buf)
}

func (r *historyRing) snapshot() []domain.Coordinate {
	out := make([]domain.Coordinate, r.size)
	for i := 0; i < r.size; i++ {
		out[i] = r.buf[(r.start+i)%len(r.buf)]
	}
	return out
}
