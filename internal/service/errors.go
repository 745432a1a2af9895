package service

import (
	"errors"
	"fmt"
)

var (
	ErrNoActiveSession = errors.New("no active batch session")
	ErrSessionActive   = errors.New("a batch session is running")
	ErrInvalidTarget   = errors.New("target moisture must be within 0..100")
	ErrInvalidMoisture = errors.New("moisture must be within 0..100")
)

// Steps named in StartError and StopError.
const (
	StepReadMoisture   = "read_moisture"
	StepStartTelemetry = "start_telemetry"
	StepStartBatch     = "start_batch"
	StepStopTelemetry  = "stop_telemetry"
	StepStopBatch      = "stop_batch"
)

// StartError means the batch could not be started. No session was created.
type StartError struct {
	Step string
	Err  error
}

func (e *StartError) Error() string { return fmt.Sprintf("start batch: %s: %v", e.Step, e.Err) }

func (e *StartError) Unwrap() error { return e.Err }

// StopError means a backend call failed while stopping. The local session
// is already cleared when this is returned.
type StopError struct {
	Step string
	Err  error
}

func (e *StopError) Error() string { return fmt.Sprintf("stop batch: %s: %v", e.Step, e.Err) }

func (e *StopError) Unwrap() error { return e.Err }
