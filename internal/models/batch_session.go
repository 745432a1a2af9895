package models

import "time"

// BatchStatus is the lifecycle state of a drying run.
type BatchStatus string

const (
	StatusIdle      BatchStatus = "IDLE"
	StatusRunning   BatchStatus = "RUNNING"
	StatusCompleted BatchStatus = "COMPLETED"
	StatusStopped   BatchStatus = "STOPPED"
)

// BatchSession is one physical drying run as seen by the control service.
// BatchID is set only while Status is RUNNING (and on finished copies).
type BatchSession struct {
	BatchID         string      `json:"batch_id,omitempty"`
	Status          BatchStatus `json:"status"`
	StartTime       time.Time   `json:"start_time,omitempty"`
	EndTime         *time.Time  `json:"end_time,omitempty"`
	InitialMoisture float64     `json:"initial_moisture"`
	FinalMoisture   *float64    `json:"final_moisture,omitempty"`
	TargetMoisture  float64     `json:"target_moisture"`
	Operator        string      `json:"operator,omitempty"`
}

// Running reports whether the session is the active run.
func (s BatchSession) Running() bool {
	return s.Status == StatusRunning && s.BatchID != ""
}

// Elapsed returns how long a running session has been going at now.
func (s BatchSession) Elapsed(now time.Time) time.Duration {
	if !s.Running() || s.StartTime.IsZero() {
		return 0
	}
	return now.Sub(s.StartTime)
}

// SessionView is what the control screens render: the current session,
// the configured target, and the last finished run (if any).
type SessionView struct {
	Session        BatchSession  `json:"session"`
	TargetMoisture float64       `json:"target_moisture"`
	ElapsedSeconds int64         `json:"elapsed_seconds"`
	Durable        bool          `json:"durable"`
	LastFinished   *BatchSession `json:"last_finished,omitempty"`
}
