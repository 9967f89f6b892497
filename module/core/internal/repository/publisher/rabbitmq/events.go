package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dispatchly/courier-tracking/module/core/domain"
	"github.com/dispatchly/courier-tracking/module/core/internal/repository/publisher"
)

var _ publisher.EventPublisher = (*EventPublisher)(nil)

const (
	exchangeName = "courier.events"
	queueName    = "tracking_events"
)

type EventPublisher struct {
	ch *amqp.Channel
}

func NewEventPublisher(conn *amqp.Connection) (*EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("rabbitmq channel: %w", err)
	}

	if err := ch.ExchangeDeclare(exchangeName, "fanout", true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.QueueBind(queueName, "", exchangeName, false, nil); err != nil {
		return nil, fmt.Errorf("bind queue: %w", err)
	}

	return &EventPublisher{ch: ch}, nil
}

type geofenceEventMessage struct {
	SessionID  string        `json:"session_id"`
	GeofenceID string        `json:"geofence_id"`
	Event      string        `json:"event"`
	Location   eventLocation `json:"location"`
	Timestamp  int64         `json:"timestamp"`
}

type eventLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type lifecycleMessage struct {
	SessionID string `json:"session_id"`
	Event     string `json:"event"`
	Timestamp int64  `json:"timestamp"`
}

func (p *EventPublisher) PublishGeofenceEvent(ctx context.Context, sessionID string, event *domain.GeofenceEvent) error {
	msg := geofenceEventMessage{
		SessionID:  sessionID,
		GeofenceID: event.GeofenceID,
		Event:      string(event.Kind),
		Location: eventLocation{
			Latitude:  event.Location.Lat,
			Longitude: event.Location.Lon,
		},
		Timestamp: event.Timestamp.UnixMilli(),
	}
	return p.publish(ctx, msg)
}

func (p *EventPublisher) PublishLifecycle(ctx context.Context, sessionID string, kind string) error {
	return p.publish(ctx, lifecycleMessage{
		SessionID: sessionID,
		Event:     kind,
		Timestamp: time.Now().UnixMilli(),
	})
}

func (p *EventPublisher) publish(ctx context.Context, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	return p.ch.PublishWithContext(ctx, exchangeName, "", false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        body,
	})
}
