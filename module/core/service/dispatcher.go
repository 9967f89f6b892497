package service

import "sync"

// EventType names one of the session's published event streams.
type EventType string

const (
	EventLocationUpdate  EventType = "location_update"
	EventLocationError   EventType = "location_error"
	EventGeofenceEnter   EventType = "geofence_enter"
	EventGeofenceExit    EventType = "geofence_exit"
	EventTrackingStarted EventType = "tracking_started"
	EventTrackingStopped EventType = "tracking_stopped"
	EventDeviceStatus    EventType = "device_status"
	EventUploadFailed    EventType = "upload_failed"
)

// Subscription identifies one registered callback for later removal.
type Subscription struct {
	eventType EventType
	id        int
}

// Dispatcher fans events out to registered callbacks. Dispatch is
// synchronous and in subscription order, inline with the sampling path, so
// callbacks must not block.
type Dispatcher struct {
	mu     sync.RWMutex
	nextID int
	subs   map[EventType][]subscriber
}

type subscriber struct {
	id int
	fn func(payload any)
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: make(map[EventType][]subscriber)}
}

// Subscribe registers fn for one event type. Multiple subscribers per type
// are allowed.
func (d *Dispatcher) Subscribe(t EventType, fn func(payload any)) Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	d.subs[t] = append(d.subs[t], subscriber{id: d.nextID, fn: fn})
	return Subscription{eventType: t, id: d.nextID}
}

// Unsubscribe removes a previously registered callback. Unknown
// subscriptions are a no-op.
func (d *Dispatcher) Unsubscribe(sub Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.subs[sub.eventType]
	for i, s := range list {
		if s.id == sub.id {
			d.subs[sub.eventType] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// Dispatch delivers payload to every subscriber of t, in subscription order.
func (d *Dispatcher) Dispatch(t EventType, payload any) {
	d.mu.RLock()
	list := make([]subscriber, len(d.subs[t]))
	copy(list, d.subs[t])
	d.mu.RUnlock()

	for _, s := range list {
		s.fn(payload)
	}
}
