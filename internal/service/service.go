package service

import (
	"context"
	"time"

	"cocodry/internal/logger"
	"cocodry/internal/metrics"
	"cocodry/internal/models"
	"cocodry/internal/repository"
)

// SensorGateway reads the latest telemetry from the dryer.
type SensorGateway interface {
	LatestReading(ctx context.Context) (models.SensorReading, error)
	LatestHazard(ctx context.Context) (models.HazardSignal, error)
}

// ProcessControl drives telemetry collection and batch records on the backend.
type ProcessControl interface {
	StartTelemetry(ctx context.Context) error
	StopTelemetry(ctx context.Context) error
	EmergencyStop(ctx context.Context) error
	StartBatch(ctx context.Context, initialMoisture float64, userEmail string) (string, error)
	StopBatch(ctx context.Context, batchID string, finalMoisture float64) (models.BatchRecord, error)
}

// BatchArchive lists finished and running batch records.
type BatchArchive interface {
	ListBatches(ctx context.Context, userEmail string) ([]models.BatchRecord, error)
	ListTodayBatches(ctx context.Context, userEmail string) ([]models.BatchRecord, error)
}

// Backend is the whole process backend surface (gateway.Client, gateway.Simulator).
type Backend interface {
	SensorGateway
	ProcessControl
	BatchArchive
}

// Batch controls the lifecycle of a drying run.
type Batch interface {
	Start(ctx context.Context, op models.Operator, initialMoisture *float64) (models.BatchSession, error)
	Stop(ctx context.Context, finalMoisture *float64) (models.BatchSession, error)
	SetTargetMoisture(ctx context.Context, value float64) error
	EmergencyStop(ctx context.Context, op models.Operator) error
	Session() models.SessionView
}

// Monitoring exposes the latest polled telemetry.
type Monitoring interface {
	Latest() models.TelemetrySnapshot
}

// Alerts exposes the shared overheat alert to every screen.
type Alerts interface {
	Alert() models.OverheatAlert
	Acknowledge() bool
	Subscribe() (<-chan models.OverheatAlert, func())
}

// Alarm exposes the audible alarm channel and the operator's mute toggle.
type Alarm interface {
	State() models.AlarmState
	SetEnabled(enabled bool) models.AlarmState
}

// History lists batch records for an operator.
type History interface {
	Batches(ctx context.Context, userEmail string, scope string) ([]models.BatchRecord, error)
}

// EventLog exposes the batch journal with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.BatchEvent, error)
}

// Authorization resolves the dashboard's bearer token to an operator.
type Authorization interface {
	ParseToken(accessToken string) (models.Operator, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Batch
	Monitoring
	Alerts
	Alarm
	History
	EventLog
	Authorization

	controller *BatchController
	hazard     *HazardCoordinator
	watch      *TemperatureWatch
}

// Config carries the tunables NewService needs from the config file.
type Config struct {
	PollInterval          time.Duration
	WatchInterval         time.Duration // idle temperature watch; 0 disables it
	CallTimeout           time.Duration
	OverheatC             float64
	CountdownSeconds      int
	DefaultTargetMoisture float64
	SoundEnabled          bool
	JWTSecret             string
}

// Deps are the collaborators NewService wires together.
type Deps struct {
	Repos   *repository.Repository
	Backend Backend
	Player  Player
	Metrics *metrics.Recorder
	Log     *logger.Logger
}

// NewService builds the control core: the hazard coordinator and alarm are
// linked so an overheat alert also sounds the alarm, and the idle watch
// keeps the alert following the dryer between batches.
func NewService(cfg Config, deps Deps) *Service {
	log := deps.Log
	if log == nil {
		log = logger.Nop()
	}
	journal := NewEventLogService(deps.Repos.Events, log.Named("journal"))
	feed := NewTelemetryFeed()
	alarm := NewAlarmManager(deps.Player, cfg.SoundEnabled, deps.Metrics, log.Named("alarm"))

	hazard := NewHazardCoordinator(HazardConfig{
		ThresholdC:       cfg.OverheatC,
		CountdownSeconds: cfg.CountdownSeconds,
	}, journal, deps.Metrics, log.Named("hazard"))
	hazard.OnChange(func(a models.OverheatAlert) { alarm.SetOverheatActive(a.Active) })

	poller := NewTelemetryPoller(PollerConfig{
		Interval:    cfg.PollInterval,
		CallTimeout: cfg.CallTimeout,
	}, deps.Backend, feed, hazard, alarm, journal, deps.Metrics, log.Named("poller"))

	controller := NewBatchController(BatchConfig{
		DefaultTargetMoisture: cfg.DefaultTargetMoisture,
		CallTimeout:           cfg.CallTimeout,
	}, deps.Repos.State, deps.Backend, poller, feed, journal, deps.Metrics, log.Named("batch"))

	watch := NewTemperatureWatch(WatchConfig{
		Interval:    cfg.WatchInterval,
		CallTimeout: cfg.CallTimeout,
	}, deps.Backend, hazard, poller.Running, journal, deps.Metrics, log.Named("watch"))
	if cfg.WatchInterval > 0 {
		watch.Start()
	}

	return &Service{
		Batch:         controller,
		Monitoring:    feed,
		Alerts:        hazard,
		Alarm:         alarm,
		History:       NewHistoryService(deps.Backend),
		EventLog:      journal,
		Authorization: NewIdentityService(cfg.JWTSecret),
		controller:    controller,
		hazard:        hazard,
		watch:         watch,
	}
}

// Recover resumes a batch left running by a previous process.
func (s *Service) Recover(ctx context.Context) (models.BatchSession, bool) {
	return s.controller.Recover(ctx)
}

// Close stops polling, the idle watch and the alert countdown. A running
// batch stays persisted so the next start resumes it.
func (s *Service) Close() {
	s.watch.Stop()
	s.controller.Shutdown()
	s.hazard.Close()
}
