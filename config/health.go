package config

import (
	"database/sql"
	"net/http"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gin-gonic/gin"
	amqp "github.com/rabbitmq/amqp091-go"
)

type HealthChecker struct {
	db       *sql.DB
	amqpConn *amqp.Connection
	mqtt     mqtt.Client
}

func NewHealthChecker(db *sql.DB, amqpConn *amqp.Connection, mqttClient mqtt.Client) *HealthChecker {
	return &HealthChecker{db: db, amqpConn: amqpConn, mqtt: mqttClient}
}

func (h *HealthChecker) Register(r *gin.Engine) {
	r.GET("/healthz", h.Handle)
}

type depStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (h *HealthChecker) Handle(c *gin.Context) {
	deps := map[string]depStatus{
		"postgres": h.checkPostgres(c),
		"rabbitmq": h.checkRabbitMQ(),
		"mqtt":     h.checkMQTT(),
	}

	status := http.StatusOK
	overall := "healthy"
	for _, d := range deps {
		if d.Status != "up" {
			status = http.StatusServiceUnavailable
			overall = "unhealthy"
			break
		}
	}

	c.JSON(status, gin.H{
		"status":       overall,
		"dependencies": deps,
	})
}

func (h *HealthChecker) checkPostgres(c *gin.Context) depStatus {
	if err := h.db.PingContext(c.Request.Context()); err != nil {
		return depStatus{Status: "down", Error: err.Error()}
	}
	return depStatus{Status: "up"}
}

func (h *HealthChecker) checkRabbitMQ() depStatus {
	if h.amqpConn.IsClosed() {
		return depStatus{Status: "down", Error: "connection closed"}
	}
	return depStatus{Status: "up"}
}

func (h *HealthChecker) checkMQTT() depStatus {
	if !h.mqtt.IsConnected() {
		return depStatus{Status: "down", Error: "not connected"}
	}
	return depStatus{Status: "up"}
}
