package core

import (
	"database/sql"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/dispatchly/courier-tracking/module/core/domain"
	handler "github.com/dispatchly/courier-tracking/module/core/internal/handler/http"
	"github.com/dispatchly/courier-tracking/module/core/internal/handler/subscriber"
	"github.com/dispatchly/courier-tracking/module/core/internal/repository/database/postgres"
	"github.com/dispatchly/courier-tracking/module/core/internal/repository/publisher/rabbitmq"
	"github.com/dispatchly/courier-tracking/module/core/internal/uploader"
	"github.com/dispatchly/courier-tracking/module/core/service"
)

// Options carries the deployment knobs threaded through Build.
type Options struct {
	Session  service.SessionConfig
	Uploader UploaderOptions
	Backend  BackendOptions
}

// UploaderOptions tunes the telemetry uploader's retry schedule.
type UploaderOptions struct {
	BaseDelay     time.Duration
	BackoffFactor float64
	MaxAttempts   int
	FlushInterval time.Duration

	// StatusInterval is how often device connectivity is polled.
	StatusInterval time.Duration
}

// BackendOptions locates the telemetry backend collaborator.
type BackendOptions struct {
	IngestURL string
	APIKey    string
}

type Module struct {
	Sessions *service.SessionManager
	Uploader *uploader.Uploader
	Status   *service.StatusPoller
	handler  *handler.TrackingHandler
}

func Build(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client, opts Options) (*Module, error) {
	archive := postgres.NewArchiveRepo(db)

	events, err := rabbitmq.NewEventPublisher(amqpConn)
	if err != nil {
		return nil, fmt.Errorf("event publisher: %w", err)
	}

	sender := uploader.NewHTTPSender(opts.Backend.IngestURL, opts.Backend.APIKey, 0)
	up := uploader.New(uploader.Config{
		BaseDelay:     opts.Uploader.BaseDelay,
		BackoffFactor: opts.Uploader.BackoffFactor,
		MaxAttempts:   opts.Uploader.MaxAttempts,
		FlushInterval: opts.Uploader.FlushInterval,
	}, sender, archive)

	source := subscriber.NewLocationSource(mqttClient)
	sessions := service.NewSessionManager(opts.Session, source, up, events, archive)
	up.SetMetadata(sessions.Stats, deviceInfo())
	up.SetDropHandler(func(sessionID string, samples int) {
		sessions.Events().Dispatch(service.EventUploadFailed, domain.UploadFailure{
			SessionID: sessionID,
			Samples:   samples,
		})
	})

	status := service.NewStatusPoller(mqttProbe{client: mqttClient}, opts.Uploader.StatusInterval, sessions.Events())
	status.OnlineChanged = up.SetOnline
	status.Run()

	h := handler.NewTrackingHandler(sessions)

	return &Module{
		Sessions: sessions,
		Uploader: up,
		Status:   status,
		handler:  h,
	}, nil
}

// mqttProbe treats broker connectivity as the device's online signal.
type mqttProbe struct {
	client mqtt.Client
}

func (p mqttProbe) Status() domain.DeviceStatus {
	return domain.DeviceStatus{
		Online: p.client.IsConnectionOpen(),
		At:     time.Now(),
	}
}

func (m *Module) RegisterRoutes(r *gin.RouterGroup) {
	m.handler.Register(r)
}

// Shutdown stops the active session, if any, and closes the uploader after
// its current flush pass.
func (m *Module) Shutdown() {
	m.Status.Stop()
	m.Sessions.Stop()
	m.Uploader.Close()
}

func deviceInfo() map[string]string {
	return map[string]string{
		"platform": "courier-tracking",
		"source":   "mqtt",
	}
}
