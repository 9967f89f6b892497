package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

type locationMessage struct {
	DriverID  string   `json:"driver_id"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  float64  `json:"accuracy"`
	Speed     *float64 `json:"speed,omitempty"`
	Timestamp int64    `json:"timestamp"`
}

type errorMessage struct {
	DriverID string `json:"driver_id"`
	Code     string `json:"code"`
	Message  string `json:"message"`
}

// The simulated driver runs a straight track through this depot zone, the
// same one the examples in the test suite use.
const (
	depotLat = 25.2048
	depotLon = 55.2708
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <interval_seconds>\n", os.Args[0])
		os.Exit(1)
	}

	intervalSec, err := strconv.Atoi(os.Args[1])
	if err != nil || intervalSec <= 0 {
		fmt.Fprintf(os.Stderr, "error: interval must be a positive integer\n")
		os.Exit(1)
	}

	broker := "tcp://localhost:1883"
	if v := os.Getenv("MQTT_BROKER"); v != "" {
		broker = v
	}

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID("courier-simulator")

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("mqtt connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	driverID := fmt.Sprintf("driver-%04d", rand.Intn(10000))
	log.Infof("connected to %s as %s, publishing every %ds", broker, driverID, intervalSec)

	// Start ~2 km southwest of the depot and drive through it.
	lat := depotLat - 0.013
	lon := depotLon - 0.013

	ticker := time.NewTicker(time.Duration(intervalSec) * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		// Occasional transient dropout, like a tunnel.
		if rand.Float64() < 0.05 {
			payload, _ := json.Marshal(errorMessage{
				DriverID: driverID,
				Code:     "position_unavailable",
				Message:  "no GPS fix",
			})
			topic := fmt.Sprintf("/courier/driver/%s/error", driverID)
			client.Publish(topic, 1, false, payload).Wait()
			log.Warnf("published dropout to %s", topic)
			continue
		}

		lat += 0.0006 + (rand.Float64()-0.5)*0.0001
		lon += 0.0006 + (rand.Float64()-0.5)*0.0001
		speed := 8 + rand.Float64()*6 // m/s, city driving

		msg := locationMessage{
			DriverID:  driverID,
			Latitude:  lat,
			Longitude: lon,
			Accuracy:  5 + rand.Float64()*20,
			Speed:     &speed,
			Timestamp: time.Now().UnixMilli(),
		}

		payload, _ := json.Marshal(msg)
		topic := fmt.Sprintf("/courier/driver/%s/location", driverID)

		client.Publish(topic, 1, false, payload).Wait()
		log.Infof("published to %s: %s", topic, payload)
	}
}
