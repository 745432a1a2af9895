package service

import (
	"context"
	"strconv"
	"sync"
	"time"

	"cocodry/internal/logger"
	"cocodry/internal/metrics"
	"cocodry/internal/models"
	"cocodry/internal/repository"
)

const defaultTargetMoisture = 12.0

// DryerControl is the backend surface the controller drives.
type DryerControl interface {
	SensorGateway
	ProcessControl
}

type BatchConfig struct {
	DefaultTargetMoisture float64
	CallTimeout           time.Duration
}

// runKeys are the store keys describing a running batch. The target
// moisture is an operator setting and outlives the batch.
var runKeys = []string{
	repository.KeySystemRunning,
	repository.KeyStartTime,
	repository.KeyBatchID,
	repository.KeyInitialMoisture,
	repository.KeyOperator,
}

// BatchController owns the batch session. Start, Stop, SetTargetMoisture
// and Recover run one at a time; Complete arrives from the poller and only
// takes the state lock.
type BatchController struct {
	cfg     BatchConfig
	store   repository.StateStore
	backend DryerControl
	poller  *TelemetryPoller
	feed    *TelemetryFeed
	journal Journal
	metrics *metrics.Recorder
	log     *logger.Logger
	now     func() time.Time

	opMu sync.Mutex

	mu           sync.Mutex
	session      models.BatchSession
	target       float64
	durable      bool
	lastFinished *models.BatchSession
}

func NewBatchController(cfg BatchConfig, store repository.StateStore, backend DryerControl, poller *TelemetryPoller,
	feed *TelemetryFeed, journal Journal, m *metrics.Recorder, log *logger.Logger) *BatchController {
	if !validPercent(cfg.DefaultTargetMoisture) || cfg.DefaultTargetMoisture == 0 {
		cfg.DefaultTargetMoisture = defaultTargetMoisture
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if journal == nil {
		journal = nopJournal{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BatchController{
		cfg:     cfg,
		store:   store,
		backend: backend,
		poller:  poller,
		feed:    feed,
		journal: journal,
		metrics: m,
		log:     log,
		now:     time.Now,
		session: models.BatchSession{Status: models.StatusIdle, TargetMoisture: cfg.DefaultTargetMoisture},
		target:  cfg.DefaultTargetMoisture,
		durable: true,
	}
}

// Start begins telemetry collection, opens a batch record on the backend
// and only then creates and persists the RUNNING session. A nil
// initialMoisture means the latest sensor reading.
func (c *BatchController) Start(ctx context.Context, op models.Operator, initialMoisture *float64) (models.BatchSession, error) {
	if initialMoisture != nil && !validPercent(*initialMoisture) {
		return models.BatchSession{}, ErrInvalidMoisture
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.session.Running() {
		c.mu.Unlock()
		return models.BatchSession{}, ErrSessionActive
	}
	target := c.target
	c.mu.Unlock()

	// an auto-completed batch may still be closing on the poller goroutine
	c.poller.Stop()

	initial, err := c.resolveInitial(ctx, initialMoisture)
	if err != nil {
		return models.BatchSession{}, &StartError{Step: StepReadMoisture, Err: err}
	}

	if err := c.backend.StartTelemetry(ctx); err != nil {
		c.metrics.GatewayError(StepStartTelemetry)
		c.log.Errorw("start_telemetry_failed", "err", err)
		return models.BatchSession{}, &StartError{Step: StepStartTelemetry, Err: err}
	}
	batchID, err := c.backend.StartBatch(ctx, initial, op.Email)
	if err != nil {
		c.metrics.GatewayError(StepStartBatch)
		c.log.Errorw("start_batch_failed", "err", err)
		// collection was switched on for a batch that does not exist
		if serr := c.backend.StopTelemetry(ctx); serr != nil {
			c.log.Warnw("start_compensation_failed", "err", serr)
		}
		return models.BatchSession{}, &StartError{Step: StepStartBatch, Err: err}
	}

	session := models.BatchSession{
		BatchID:         batchID,
		Status:          models.StatusRunning,
		StartTime:       c.now().UTC(),
		InitialMoisture: initial,
		TargetMoisture:  target,
		Operator:        op.Email,
	}
	durable := c.persist(ctx, session)

	c.mu.Lock()
	c.session = session
	c.durable = durable
	c.mu.Unlock()

	c.poller.Start(batchID, target, c)
	c.metrics.BatchTransition("started")
	c.metrics.SessionRunning(true)
	c.journal.Record(ctx, models.EventStart, batchID, "Batch started", map[string]any{
		"initial_moisture": initial,
		"target_moisture":  target,
		"operator":         op.Email,
		"durable":          durable,
	})
	c.log.Infow("batch_started", "batch_id", batchID, "initial_moisture", initial, "target_moisture", target, "operator", op.Email)
	return session, nil
}

// Stop ends the running batch. Local and persisted state is cleared before
// the backend is told, so a failed backend call still leaves the session
// IDLE; the failure comes back as *StopError next to the stopped session.
// A nil finalMoisture means the latest sensor reading.
func (c *BatchController) Stop(ctx context.Context, finalMoisture *float64) (models.BatchSession, error) {
	if finalMoisture != nil && !validPercent(*finalMoisture) {
		return models.BatchSession{}, ErrInvalidMoisture
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if !c.session.Running() {
		c.mu.Unlock()
		return models.BatchSession{}, ErrNoActiveSession
	}
	final := c.session.InitialMoisture
	if finalMoisture != nil {
		final = *finalMoisture
	} else if r, ok := c.feed.LatestReading(); ok {
		final = r.Moisture
	}
	finished := c.finishLocked(models.StatusStopped, final)
	c.mu.Unlock()

	c.clearRunKeys(ctx)
	c.poller.Stop()

	c.metrics.BatchTransition("stopped")
	c.metrics.SessionRunning(false)
	c.journal.Record(ctx, models.EventStop, finished.BatchID, "Batch stopped by operator", map[string]any{
		"final_moisture": final,
	})
	c.log.Infow("batch_stopped", "batch_id", finished.BatchID, "final_moisture", final)

	if err := c.stopBackend(ctx, finished.BatchID, final); err != nil {
		return finished, err
	}
	return finished, nil
}

// Complete finishes batchID once the poller saw the target moisture. It is
// a no-op when batchID is no longer the running batch.
func (c *BatchController) Complete(ctx context.Context, batchID string, r models.SensorReading) {
	c.mu.Lock()
	if !c.session.Running() || c.session.BatchID != batchID {
		c.mu.Unlock()
		return
	}
	finished := c.finishLocked(models.StatusCompleted, r.Moisture)
	c.mu.Unlock()

	// the backend must hear about completion even if polling is being torn down
	bctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*c.cfg.CallTimeout)
	defer cancel()

	c.clearRunKeys(bctx)
	c.metrics.BatchTransition("completed")
	c.metrics.SessionRunning(false)
	c.journal.Record(bctx, models.EventCompleted, batchID, "Target moisture reached", map[string]any{
		"final_moisture":  r.Moisture,
		"target_moisture": finished.TargetMoisture,
	})
	c.log.Infow("batch_completed", "batch_id", batchID, "final_moisture", r.Moisture)

	if err := c.stopBackend(bctx, batchID, r.Moisture); err != nil {
		c.log.Warnw("complete_backend_failed", "batch_id", batchID, "err", err)
	}
}

// Recover rebuilds a RUNNING session from the store after a restart and
// resumes polling. It trusts the stored state and makes no backend call.
// A missing batch id or running flag means there is nothing to resume.
func (c *BatchController) Recover(ctx context.Context) (models.BatchSession, bool) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.session.Running() {
		s := c.session
		c.mu.Unlock()
		return s, true
	}
	c.mu.Unlock()

	var readErr error
	get := func(key string) string {
		v, ok, err := c.store.Get(ctx, key)
		if err != nil {
			readErr = err
			return ""
		}
		if !ok {
			return ""
		}
		return v
	}

	target := c.cfg.DefaultTargetMoisture
	if t, err := strconv.ParseFloat(get(repository.KeyTargetMoisture), 64); err == nil && validPercent(t) {
		target = t
	}
	running := get(repository.KeySystemRunning)
	batchID := get(repository.KeyBatchID)
	startRaw := get(repository.KeyStartTime)
	initialRaw := get(repository.KeyInitialMoisture)
	operator := get(repository.KeyOperator)

	c.mu.Lock()
	c.target = target
	c.session = models.BatchSession{Status: models.StatusIdle, TargetMoisture: target}
	if readErr != nil {
		c.durable = false
	}
	c.mu.Unlock()

	if readErr != nil {
		c.log.Errorw("session_recover_failed", "err", readErr)
		return models.BatchSession{}, false
	}
	if running != "true" || batchID == "" {
		c.log.Infow("no_session_to_recover", "target_moisture", target)
		return models.BatchSession{}, false
	}

	start, err := time.Parse(time.RFC3339Nano, startRaw)
	if err != nil {
		c.log.Warnw("recover_bad_start_time", "value", startRaw, "err", err)
		start = c.now().UTC()
	}
	initial, err := strconv.ParseFloat(initialRaw, 64)
	if err != nil {
		c.log.Warnw("recover_bad_initial_moisture", "value", initialRaw, "err", err)
		initial = 0
	}

	session := models.BatchSession{
		BatchID:         batchID,
		Status:          models.StatusRunning,
		StartTime:       start.UTC(),
		InitialMoisture: initial,
		TargetMoisture:  target,
		Operator:        operator,
	}
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()

	c.poller.Start(batchID, target, c)
	c.metrics.SessionRunning(true)
	c.log.Infow("session_recovered", "batch_id", batchID, "start_time", session.StartTime, "target_moisture", target)
	return session, true
}

// SetTargetMoisture changes the completion target. Only allowed while idle.
func (c *BatchController) SetTargetMoisture(ctx context.Context, value float64) error {
	if !validPercent(value) {
		return ErrInvalidTarget
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.session.Running() {
		c.mu.Unlock()
		return ErrSessionActive
	}
	prev := c.target
	c.target = value
	c.session.TargetMoisture = value
	c.mu.Unlock()

	if err := c.store.Set(ctx, repository.KeyTargetMoisture, formatFloat(value)); err != nil {
		c.markVolatile("target_persist_failed", err)
	}
	c.journal.Record(ctx, models.EventTargetChange, "", "Target moisture changed", map[string]any{
		"from": prev,
		"to":   value,
	})
	c.log.Infow("target_moisture_set", "from", prev, "to", value)
	return nil
}

// EmergencyStop cuts the motor and IR heaters. The batch session is left
// as it is; the operator still stops the batch.
func (c *BatchController) EmergencyStop(ctx context.Context, op models.Operator) error {
	c.mu.Lock()
	batchID := c.session.BatchID
	c.mu.Unlock()

	if err := c.backend.EmergencyStop(ctx); err != nil {
		c.metrics.GatewayError("emergency_stop")
		c.log.Errorw("emergency_stop_failed", "batch_id", batchID, "err", err)
		return err
	}
	c.journal.Record(ctx, models.EventEmergencyStop, batchID, "Motor and IR heaters turned off", map[string]any{
		"operator": op.Email,
	})
	c.log.Warnw("emergency_stop", "batch_id", batchID, "operator", op.Email)
	return nil
}

// Session returns what the control screens render.
func (c *BatchController) Session() models.SessionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := models.SessionView{
		Session:        c.session,
		TargetMoisture: c.target,
		ElapsedSeconds: int64(c.session.Elapsed(c.now()).Seconds()),
		Durable:        c.durable,
	}
	if c.lastFinished != nil {
		lf := *c.lastFinished
		v.LastFinished = &lf
	}
	return v
}

// IsActive reports whether batchID is the running batch.
func (c *BatchController) IsActive(batchID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Running() && c.session.BatchID == batchID
}

// Shutdown stops polling without touching the session or the store.
func (c *BatchController) Shutdown() {
	c.poller.Stop()
}

// finishLocked closes the running session with status and returns it.
func (c *BatchController) finishLocked(status models.BatchStatus, final float64) models.BatchSession {
	end := c.now().UTC()
	finished := c.session
	finished.Status = status
	finished.EndTime = &end
	finished.FinalMoisture = &final
	c.lastFinished = &finished
	c.session = models.BatchSession{Status: models.StatusIdle, TargetMoisture: c.target}
	return finished
}

func (c *BatchController) resolveInitial(ctx context.Context, given *float64) (float64, error) {
	if given != nil {
		return *given, nil
	}
	if r, ok := c.feed.LatestReading(); ok {
		return r.Moisture, nil
	}
	rctx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout)
	defer cancel()
	r, err := c.backend.LatestReading(rctx)
	if err != nil {
		return 0, err
	}
	return r.Moisture, nil
}

// persist writes all session keys in one call. A failure keeps the session
// in memory only.
func (c *BatchController) persist(ctx context.Context, s models.BatchSession) bool {
	err := c.store.SetMany(ctx, map[string]string{
		repository.KeySystemRunning:   "true",
		repository.KeyStartTime:       s.StartTime.Format(time.RFC3339Nano),
		repository.KeyBatchID:         s.BatchID,
		repository.KeyInitialMoisture: formatFloat(s.InitialMoisture),
		repository.KeyTargetMoisture:  formatFloat(s.TargetMoisture),
		repository.KeyOperator:        s.Operator,
	})
	if err != nil {
		c.log.Errorw("session_persist_failed", "batch_id", s.BatchID, "err", err)
		return false
	}
	return true
}

func (c *BatchController) clearRunKeys(ctx context.Context) {
	if err := c.store.Delete(ctx, runKeys...); err != nil {
		c.markVolatile("session_clear_failed", err)
	}
}

func (c *BatchController) markVolatile(event string, err error) {
	c.log.Errorw(event, "err", err)
	c.mu.Lock()
	c.durable = false
	c.mu.Unlock()
}

// stopBackend stops collection and closes the batch record. Both calls are
// attempted; the first failure is returned.
func (c *BatchController) stopBackend(ctx context.Context, batchID string, final float64) error {
	var first error
	if err := c.backend.StopTelemetry(ctx); err != nil {
		c.metrics.GatewayError(StepStopTelemetry)
		c.log.Errorw("stop_telemetry_failed", "batch_id", batchID, "err", err)
		first = &StopError{Step: StepStopTelemetry, Err: err}
	}
	if _, err := c.backend.StopBatch(ctx, batchID, final); err != nil {
		c.metrics.GatewayError(StepStopBatch)
		c.log.Errorw("stop_batch_failed", "batch_id", batchID, "err", err)
		if first == nil {
			first = &StopError{Step: StepStopBatch, Err: err}
		}
	}
	return first
}

func validPercent(v float64) bool { return v >= 0 && v <= 100 }

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
