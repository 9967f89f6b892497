package domain

import "time"

// DeviceStatus is a periodic report on the device's health, polled
// independently of GPS sampling.
type DeviceStatus struct {
	Online     bool      `json:"online"`
	BatteryPct *float64  `json:"battery_pct,omitempty"`
	At         time.Time `json:"at"`
}
