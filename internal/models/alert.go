package models

import "time"

// OverheatAlert is the process-wide overheat state shown by every screen.
type OverheatAlert struct {
	Active           bool      `json:"active"`
	CountdownSeconds int       `json:"countdown_seconds"`
	Acknowledged     bool      `json:"acknowledged"`
	Expired          bool      `json:"expired"`
	TemperatureC     float64   `json:"temperature_c"`
	RaisedAt         time.Time `json:"raised_at,omitempty"`
}

// AlertTransition describes what a temperature report did to the alert.
type AlertTransition int

const (
	AlertUnchanged AlertTransition = iota
	AlertRaised
	AlertCleared
)

// AlarmState is the audible alarm channel as the operator sees it.
// HazardActive is the colour-sensor flag; OverheatActive mirrors the alert.
type AlarmState struct {
	HazardActive   bool `json:"hazard_active"`
	OverheatActive bool `json:"overheat_active"`
	SoundEnabled   bool `json:"sound_enabled"`
	Playing        bool `json:"playing"`
}
