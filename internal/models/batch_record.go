package models

// BatchRecord is the process backend's view of a batch (getBatches, stop summary).
// Times are kept as the backend's local timestamp strings.
type BatchRecord struct {
	ID              int64    `json:"id,omitempty"`
	BatchID         string   `json:"batchId"`
	UserEmail       string   `json:"userEmail,omitempty"`
	StartTime       string   `json:"startTime,omitempty"`
	EndTime         string   `json:"endTime,omitempty"`
	InitialMoisture float64  `json:"initialMoisture"`
	FinalMoisture   *float64 `json:"finalMoisture,omitempty"`
}
