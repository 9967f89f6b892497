package publisher

import (
	"context"

	"github.com/dispatchly/courier-tracking/module/core/domain"
)

// EventPublisher fans tracking events out to other services.
type EventPublisher interface {
	PublishGeofenceEvent(ctx context.Context, sessionID string, event *domain.GeofenceEvent) error
	PublishLifecycle(ctx context.Context, sessionID string, kind string) error
}
