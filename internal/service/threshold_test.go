package service

import (
	"testing"

	"cocodry/internal/models"
)

func TestEvaluate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		reading models.SensorReading
		cfg     TargetConfig
		want    Signals
	}{
		{
			name:    "above target, safe temperature",
			reading: models.SensorReading{Moisture: 24, Temperature: 30},
			cfg:     TargetConfig{TargetMoisture: 12},
			want:    Signals{},
		},
		{
			name:    "exact target completes",
			reading: models.SensorReading{Moisture: 12, Temperature: 30},
			cfg:     TargetConfig{TargetMoisture: 12},
			want:    Signals{Completed: true},
		},
		{
			name:    "below target is not a match",
			reading: models.SensorReading{Moisture: 11, Temperature: 30},
			cfg:     TargetConfig{TargetMoisture: 12},
			want:    Signals{},
		},
		{
			name:    "near miss is not a match",
			reading: models.SensorReading{Moisture: 12.0001, Temperature: 30},
			cfg:     TargetConfig{TargetMoisture: 12},
			want:    Signals{},
		},
		{
			name:    "35.0 is safe",
			reading: models.SensorReading{Moisture: 20, Temperature: 35.0},
			cfg:     TargetConfig{TargetMoisture: 12},
			want:    Signals{},
		},
		{
			name:    "just above 35 overheats",
			reading: models.SensorReading{Moisture: 20, Temperature: 35.1},
			cfg:     TargetConfig{TargetMoisture: 12},
			want:    Signals{Overheat: true},
		},
		{
			name:    "both at once",
			reading: models.SensorReading{Moisture: 12, Temperature: 40},
			cfg:     TargetConfig{TargetMoisture: 12},
			want:    Signals{Completed: true, Overheat: true},
		},
		{
			name:    "custom limit",
			reading: models.SensorReading{Moisture: 20, Temperature: 36},
			cfg:     TargetConfig{TargetMoisture: 12, OverheatC: 38},
			want:    Signals{},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Evaluate(tt.reading, tt.cfg)
			if got != tt.want {
				t.Fatalf("Evaluate() = %+v, want %+v", got, tt.want)
			}
			if got.Continue() != (tt.want == Signals{}) {
				t.Fatalf("Continue() = %v", got.Continue())
			}
		})
	}
}

func TestEvaluate_CompletesOnThirdReading(t *testing.T) {
	cfg := TargetConfig{TargetMoisture: 12.0}
	stream := []float64{24.0, 18.0, 12.0}
	for i, m := range stream {
		sig := Evaluate(models.SensorReading{Moisture: m, Temperature: 30}, cfg)
		if sig.Completed != (i == 2) {
			t.Fatalf("reading %d (%.1f): Completed = %v", i+1, m, sig.Completed)
		}
	}
}
