package subscriber

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

const (
	locationTopic = "/courier/driver/+/location"
	errorTopic    = "/courier/driver/+/error"
)

type locationMessage struct {
	DriverID  string   `json:"driver_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Altitude  *float64 `json:"altitude,omitempty"`
	Heading   *float64 `json:"heading,omitempty"`
	Speed     *float64 `json:"speed,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type errorMessage struct {
	DriverID string `json:"driver_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// LocationSource adapts the MQTT feed from the driver's device into the
// session callbacks. The device is a black box that either reports samples
// or classified positioning errors; the adapter applies the tracking
// configuration and keeps the watch alive across transient errors.
//
// EnableHighAccuracy maps to QoS 1 on both subscriptions.
// BackgroundTracking is advisory here: the broker connection outlives any
// app foreground state, so the subscription never pauses either way. It is
// stored and exported with the session settings for devices that honor it.
type LocationSource struct {
	client mqtt.Client

	mu       sync.Mutex
	tracking bool
	cfg      domain.TrackingConfig
	onSample func(domain.Coordinate)
	onError  func(*domain.LocationError)
}

func NewLocationSource(client mqtt.Client) *LocationSource {
	return &LocationSource{client: client}
}

// StartTracking subscribes to the device topics and begins forwarding raw
// samples. Fails if tracking is already started.
func (s *LocationSource) StartTracking(cfg domain.TrackingConfig, onSample func(domain.Coordinate), onError func(*domain.LocationError)) error {
	s.mu.Lock()
	if s.tracking {
		s.mu.Unlock()
		return fmt.Errorf("location source already tracking")
	}
	s.tracking = true
	s.cfg = cfg
	s.onSample = onSample
	s.onError = onError
	s.mu.Unlock()

	qos := byte(0)
	if cfg.EnableHighAccuracy {
		qos = 1
	}

	if token := s.client.Subscribe(locationTopic, qos, s.handleLocation); token.Wait() && token.Error() != nil {
		s.reset()
		return fmt.Errorf("subscribe locations: %w", token.Error())
	}
	if token := s.client.Subscribe(errorTopic, qos, s.handleDeviceError); token.Wait() && token.Error() != nil {
		s.client.Unsubscribe(locationTopic)
		s.reset()
		return fmt.Errorf("subscribe errors: %w", token.Error())
	}
	return nil
}

// StopTracking cancels the watch. Idempotent; safe when not tracking.
func (s *LocationSource) StopTracking() {
	s.mu.Lock()
	wasTracking := s.tracking
	s.mu.Unlock()
	if !wasTracking {
		return
	}

	if token := s.client.Unsubscribe(locationTopic, errorTopic); token.Wait() && token.Error() != nil {
		log.Warnf("unsubscribe: %v", token.Error())
	}
	s.reset()
}

func (s *LocationSource) reset() {
	s.mu.Lock()
	s.tracking = false
	s.onSample = nil
	s.onError = nil
	s.mu.Unlock()
}

func (s *LocationSource) handleLocation(_ mqtt.Client, msg mqtt.Message) {
	s.mu.Lock()
	cb := s.onSample
	s.mu.Unlock()
	if cb == nil {
		return
	}

	var raw locationMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Debugf("invalid location payload: %v", err)
		return
	}

	cb(domain.Coordinate{
		Lat:       raw.Latitude,
		Lon:       raw.Longitude,
		AccuracyM: raw.Accuracy,
		AltitudeM: raw.Altitude,
		Heading:   raw.Heading,
		SpeedMS:   raw.Speed,
		Timestamp: time.UnixMilli(raw.Timestamp),
	})
}

// handleDeviceError forwards a classified positioning failure. Transient
// kinds leave the subscription alive; permission denials wait for the user,
// never an automatic retry.
func (s *LocationSource) handleDeviceError(_ mqtt.Client, msg mqtt.Message) {
	s.mu.Lock()
	cb := s.onError
	s.mu.Unlock()
	if cb == nil {
		return
	}

	var raw errorMessage
	if err := json.Unmarshal(msg.Payload(), &raw); err != nil {
		log.Debugf("invalid error payload: %v", err)
		return
	}

	cb(&domain.LocationError{Kind: classify(raw.Code), Message: raw.Message})
}

func classify(code string) domain.LocationErrorKind {
	switch code {
	case "permission_denied":
		return domain.ErrorPermissionDenied
	case "timeout":
		return domain.ErrorTimeout
	default:
		return domain.ErrorPositionUnavailable
	}
}
