package service

import "cocodry/internal/models"

// DefaultOverheatC is the dryer's safe temperature limit in °C.
const DefaultOverheatC = 35.0

// TargetConfig is what a reading is judged against.
type TargetConfig struct {
	TargetMoisture float64
	OverheatC      float64 // 0 means DefaultOverheatC
}

// Signals raised by one reading. Both may be set at once.
type Signals struct {
	Completed bool
	Overheat  bool
}

// Continue reports whether the reading raised nothing.
func (s Signals) Continue() bool { return !s.Completed && !s.Overheat }

// Evaluate judges a single reading. Completion is an exact match on the
// target: the moisture probe reports whole percents.
func Evaluate(r models.SensorReading, cfg TargetConfig) Signals {
	limit := cfg.OverheatC
	if limit == 0 {
		limit = DefaultOverheatC
	}
	return Signals{
		Completed: r.Moisture == cfg.TargetMoisture,
		Overheat:  r.Temperature > limit,
	}
}
