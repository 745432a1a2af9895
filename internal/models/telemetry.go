package models

import "time"

// SensorReading is one sample from /sensor-data/latest.
type SensorReading struct {
	Moisture    float64   `json:"moisture"`
	Temperature float64   `json:"temperature"`
	Humidity    float64   `json:"humidity"`
	ObservedAt  time.Time `json:"observed_at"`
}

// HazardSignal is the colour-sensor hazard flag from /color-data/latest.
type HazardSignal struct {
	BlackDetected bool      `json:"black_detected"`
	ObservedAt    time.Time `json:"observed_at"`
}

// TelemetrySnapshot is the latest published poll result.
type TelemetrySnapshot struct {
	Reading    *SensorReading `json:"reading,omitempty"`
	Hazard     HazardSignal   `json:"hazard"`
	BatchID    string         `json:"batch_id,omitempty"`
	LastPollAt time.Time      `json:"last_poll_at,omitempty"`
	LastError  string         `json:"last_error,omitempty"`
}
