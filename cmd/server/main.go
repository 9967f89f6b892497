package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/dispatchly/courier-tracking/config"
	"github.com/dispatchly/courier-tracking/module/core"
	"github.com/dispatchly/courier-tracking/module/core/service"
)

func main() {
	cfg := config.Load()
	config.ConfigureLogging(cfg)

	db, err := config.NewPostgres(cfg)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer func() { _ = db.Close() }()

	amqpConn, err := config.NewRabbitMQ(cfg)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}
	defer func() { _ = amqpConn.Close() }()

	mqttClient, err := config.NewMQTT(cfg)
	if err != nil {
		log.Fatalf("mqtt: %v", err)
	}
	defer mqttClient.Disconnect(250)

	opts := core.Options{
		Session: service.SessionConfig{
			HistoryCapacity: cfg.HistoryCapacity,
			Validator: service.ValidatorConfig{
				MaxAccuracyM: cfg.NoiseAccuracyM,
			},
		},
		Uploader: core.UploaderOptions{
			BaseDelay:      cfg.UploadBaseDelay,
			BackoffFactor:  cfg.UploadBackoffFactor,
			MaxAttempts:    cfg.UploadMaxAttempts,
			FlushInterval:  cfg.UploadFlushInterval,
			StatusInterval: cfg.StatusPollInterval,
		},
		Backend: core.BackendOptions{
			IngestURL: cfg.BackendIngestURL,
			APIKey:    cfg.BackendAPIKey,
		},
	}

	coreModule, err := core.Build(db, amqpConn, mqttClient, opts)
	if err != nil {
		log.Fatalf("core module: %v", err)
	}

	r := gin.Default()

	health := config.NewHealthChecker(db, amqpConn, mqttClient)
	health.Register(r)

	coreModule.RegisterRoutes(&r.RouterGroup)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info("shutting down")
		coreModule.Shutdown()
		os.Exit(0)
	}()

	log.Infof("listening on :%s", cfg.HTTPPort)
	if err := r.Run(":" + cfg.HTTPPort); err != nil {
		log.Fatalf("server: %v", err)
	}
}
