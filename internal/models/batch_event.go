package models

import "time"

// Event types written to the batch journal.
const (
	EventStart           = "START"
	EventStop            = "STOP"
	EventCompleted       = "COMPLETED"
	EventOverheat        = "OVERHEAT"
	EventOverheatCleared = "OVERHEAT_CLEARED"
	EventAcknowledged    = "ACKNOWLEDGED"
	EventHazard          = "HAZARD"
	EventHazardCleared   = "HAZARD_CLEARED"
	EventEmergencyStop   = "EMERGENCY_STOP"
	EventTargetChange    = "TARGET_CHANGE"
)

// BatchEvent is a single journal entry.
type BatchEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	BatchID     string    `json:"batch_id,omitempty"`
	Description string    `json:"description"`
	Metadata    any       `json:"metadata,omitempty"`
}
