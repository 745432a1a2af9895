package gateway

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"cocodry/internal/models"
)

// ----------- Simulation constants -----------
const (
	AmbientC          = 25.0  // ambient temperature °C
	HeatPlateauC      = 33.5  // temperature the IR heaters settle at
	HeatSwingC        = 2.5   // amplitude of the slow swing around the plateau
	HeatSwingPeriod   = 180.0 // seconds per swing
	RampUpCPerSec     = 0.2   // °C per second while heating
	StandbyCoolPerSec = 0.1   // °C per second drift toward ambient
	StartMoisture     = 30.0  // % moisture of a fresh load
	MoistureFloor     = 8.0   // % the husk never dries below
	DryPctPerSec      = 0.05  // % moisture lost per second while drying
	AmbientHumidity   = 70.0  // % relative humidity with the dryer idle
)

const simTimeLayout = "2006-01-02T15:04:05"

// Simulator is an in-process dryer with the same surface as Client. Moisture
// is reported as a whole percent, like the real moisture probe.
type Simulator struct {
	mu sync.Mutex

	now      func() time.Time
	lastStep time.Time
	started  time.Time

	moisture    float64
	temperature float64
	humidity    float64
	collecting  bool
	heating     bool

	nextBatch int
	batches   []models.BatchRecord
}

func NewSimulator() *Simulator {
	return &Simulator{
		now:         time.Now,
		moisture:    StartMoisture,
		temperature: AmbientC,
		humidity:    AmbientHumidity,
		heating:     true,
		nextBatch:   1,
	}
}

// step advances the physical model to the current time.
func (s *Simulator) step() time.Time {
	now := s.now()
	if s.lastStep.IsZero() {
		s.lastStep = now
		return now
	}
	elapsed := now.Sub(s.lastStep).Seconds()
	if elapsed <= 0 {
		return now
	}
	s.lastStep = now

	if s.collecting && s.heating {
		s.heat(now, elapsed)
		s.moisture = maxFloat(s.moisture-DryPctPerSec*elapsed, MoistureFloor)
	} else {
		s.driftToAmbient(elapsed)
	}
	s.humidity = AmbientHumidity - (s.temperature-AmbientC)*2
	return now
}

// heat ramps toward the plateau, then follows the slow swing around it.
func (s *Simulator) heat(now time.Time, elapsed float64) {
	target := HeatPlateauC + HeatSwingC*math.Sin(2*math.Pi*now.Sub(s.started).Seconds()/HeatSwingPeriod)
	if s.temperature < target {
		s.temperature = math.Min(s.temperature+RampUpCPerSec*elapsed, target)
		return
	}
	s.temperature = target
}

func (s *Simulator) driftToAmbient(elapsed float64) {
	if s.temperature > AmbientC {
		s.temperature = maxFloat(s.temperature-StandbyCoolPerSec*elapsed, AmbientC)
	}
}

func (s *Simulator) LatestReading(context.Context) (models.SensorReading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.step()
	return models.SensorReading{
		Moisture:    math.Round(s.moisture),
		Temperature: math.Round(s.temperature*10) / 10,
		Humidity:    math.Round(s.humidity*10) / 10,
		ObservedAt:  now.UTC(),
	}, nil
}

// LatestHazard never reports black husk; the colour sensor is not simulated.
func (s *Simulator) LatestHazard(context.Context) (models.HazardSignal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.HazardSignal{ObservedAt: s.now().UTC()}, nil
}

func (s *Simulator) StartTelemetry(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.step()
	if !s.collecting {
		s.started = now
	}
	s.collecting = true
	s.heating = true
	return nil
}

func (s *Simulator) StopTelemetry(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
	s.collecting = false
	return nil
}

func (s *Simulator) EmergencyStop(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step()
	s.heating = false
	return nil
}

// StartBatch issues ids B1, B2, ... and loads a fresh batch of husk.
func (s *Simulator) StartBatch(_ context.Context, initialMoisture float64, userEmail string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.step()
	id := fmt.Sprintf("B%d", s.nextBatch)
	s.nextBatch++
	s.batches = append(s.batches, models.BatchRecord{
		ID:              int64(len(s.batches) + 1),
		BatchID:         id,
		UserEmail:       userEmail,
		StartTime:       now.Format(simTimeLayout),
		InitialMoisture: initialMoisture,
	})
	s.moisture = StartMoisture
	return id, nil
}

func (s *Simulator) StopBatch(_ context.Context, batchID string, finalMoisture float64) (models.BatchRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.step()
	for i := range s.batches {
		if s.batches[i].BatchID != batchID {
			continue
		}
		final := finalMoisture
		s.batches[i].EndTime = now.Format(simTimeLayout)
		s.batches[i].FinalMoisture = &final
		return s.batches[i], nil
	}
	return models.BatchRecord{}, &NetworkError{
		Op:     OpStopBatch,
		Status: http.StatusNotFound,
		Err:    fmt.Errorf("batch %s not found", batchID),
	}
}

func (s *Simulator) ListBatches(_ context.Context, userEmail string) ([]models.BatchRecord, error) {
	return s.filter(userEmail, ""), nil
}

func (s *Simulator) ListTodayBatches(_ context.Context, userEmail string) ([]models.BatchRecord, error) {
	s.mu.Lock()
	day := s.now().Format("2006-01-02")
	s.mu.Unlock()
	return s.filter(userEmail, day), nil
}

func (s *Simulator) filter(userEmail, dayPrefix string) []models.BatchRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.BatchRecord{}
	for _, b := range s.batches {
		if b.UserEmail != userEmail {
			continue
		}
		if dayPrefix != "" && !strings.HasPrefix(b.StartTime, dayPrefix) {
			continue
		}
		out = append(out, b)
	}
	return out
}

// helpers
func maxFloat(a, b float64) float64 {
	if a >= b {
		return a
	}
	return b
}
