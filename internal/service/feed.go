package service

import (
	"sync"

	"cocodry/internal/models"
)

// TelemetryFeed holds the latest published poll result for display.
type TelemetryFeed struct {
	mu   sync.RWMutex
	snap models.TelemetrySnapshot
}

func NewTelemetryFeed() *TelemetryFeed { return &TelemetryFeed{} }

// Publish replaces the snapshot. A snapshot without a reading keeps the
// previous reading so screens do not blank out on a failed poll.
func (f *TelemetryFeed) Publish(s models.TelemetrySnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.Reading == nil {
		s.Reading = f.snap.Reading
	}
	f.snap = s
}

func (f *TelemetryFeed) Latest() models.TelemetrySnapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.snap
}

// LatestReading returns the most recent successful reading, if any.
func (f *TelemetryFeed) LatestReading() (models.SensorReading, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.snap.Reading == nil {
		return models.SensorReading{}, false
	}
	return *f.snap.Reading, true
}
