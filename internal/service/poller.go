package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"cocodry/internal/gateway"
	"cocodry/internal/logger"
	"cocodry/internal/metrics"
	"cocodry/internal/models"
)

const (
	defaultPollInterval = 5 * time.Second
	defaultCallTimeout  = 4 * time.Second
)

type PollerConfig struct {
	Interval    time.Duration
	CallTimeout time.Duration // per gateway call; kept below Interval
}

// sessionGuard is the poller's view of the batch it polls for.
type sessionGuard interface {
	// IsActive reports whether batchID is still the running batch.
	IsActive(batchID string) bool
	// Complete finishes batchID after the reading hit the target.
	Complete(ctx context.Context, batchID string, r models.SensorReading)
}

// TelemetryPoller runs one polling loop per running batch. Each tick reads
// the sensor and the hazard flag concurrently, then applies both as one
// snapshot. Ticks never overlap: a slow tick delays the next one.
type TelemetryPoller struct {
	cfg     PollerConfig
	gw      SensorGateway
	feed    *TelemetryFeed
	hazard  *HazardCoordinator
	alarm   *AlarmManager
	journal Journal
	metrics *metrics.Recorder
	log     *logger.Logger
	now     func() time.Time

	mu      sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	batchID string
}

func NewTelemetryPoller(cfg PollerConfig, gw SensorGateway, feed *TelemetryFeed, hazard *HazardCoordinator,
	alarm *AlarmManager, journal Journal, m *metrics.Recorder, log *logger.Logger) *TelemetryPoller {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultPollInterval
	}
	if cfg.CallTimeout <= 0 || cfg.CallTimeout >= cfg.Interval {
		cfg.CallTimeout = minDuration(defaultCallTimeout, cfg.Interval*4/5)
	}
	if journal == nil {
		journal = nopJournal{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TelemetryPoller{
		cfg:     cfg,
		gw:      gw,
		feed:    feed,
		hazard:  hazard,
		alarm:   alarm,
		journal: journal,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// Start begins polling for batchID, replacing any previous loop. The first
// tick runs immediately.
func (p *TelemetryPoller) Start(batchID string, target float64, guard sessionGuard) {
	p.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.batchID = batchID
	p.mu.Unlock()

	p.log.Infow("poller_started", "batch_id", batchID, "interval", p.cfg.Interval)
	go p.run(ctx, done, batchID, target, guard)
}

// Stop cancels the loop and waits for it to exit. After Stop returns no
// tick result is applied. It must not be called from the loop itself.
func (p *TelemetryPoller) Stop() {
	p.mu.Lock()
	cancel, done, batchID := p.cancel, p.done, p.batchID
	p.cancel, p.done, p.batchID = nil, nil, ""
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.log.Infow("poller_stopped", "batch_id", batchID)
}

// Running reports whether a loop is active.
func (p *TelemetryPoller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done != nil
}

type pollState struct {
	black bool
}

func (p *TelemetryPoller) run(ctx context.Context, done chan struct{}, batchID string, target float64, guard sessionGuard) {
	defer close(done)
	defer p.detach(done)
	defer p.clearHazard()

	t := time.NewTicker(p.cfg.Interval)
	defer t.Stop()

	var st pollState
	for {
		if !p.tick(ctx, batchID, target, guard, &st) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// detach clears the loop handle when the loop ends on its own (completion).
func (p *TelemetryPoller) detach(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.cancel()
		p.cancel, p.done, p.batchID = nil, nil, ""
	}
}

// tick runs one poll. It returns false when the loop should end.
func (p *TelemetryPoller) tick(ctx context.Context, batchID string, target float64, guard sessionGuard, st *pollState) bool {
	if ctx.Err() != nil {
		return false
	}

	var (
		wg        sync.WaitGroup
		reading   models.SensorReading
		readErr   error
		hazard    models.HazardSignal
		hazardErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		defer cancel()
		reading, readErr = p.gw.LatestReading(cctx)
	}()
	go func() {
		defer wg.Done()
		cctx, cancel := context.WithTimeout(ctx, p.cfg.CallTimeout)
		defer cancel()
		hazard, hazardErr = p.gw.LatestHazard(cctx)
	}()
	wg.Wait()

	// the session may have ended while the calls were in flight
	if ctx.Err() != nil || !guard.IsActive(batchID) {
		return false
	}

	now := p.now().UTC()
	snap := models.TelemetrySnapshot{BatchID: batchID, LastPollAt: now}

	if hazardErr != nil {
		p.logFetchError(gateway.OpLatestHazard, batchID, hazardErr)
		hazard = models.HazardSignal{ObservedAt: now}
	}
	snap.Hazard = hazard
	p.applyHazard(ctx, batchID, hazard.BlackDetected, st)

	if readErr != nil {
		p.logFetchError(gateway.OpLatestReading, batchID, readErr)
		p.metrics.PollTick("sensor_error")
		snap.LastError = readErr.Error()
		p.feed.Publish(snap)
		return true
	}

	snap.Reading = &reading
	p.feed.Publish(snap)
	p.metrics.PollTick("ok")
	p.metrics.Reading(reading.Moisture, reading.Temperature, reading.Humidity)

	sig := Evaluate(reading, TargetConfig{TargetMoisture: target, OverheatC: p.hazard.Threshold()})
	switch p.hazard.ReportTemperature(reading.Temperature) {
	case models.AlertRaised:
		p.journal.Record(ctx, models.EventOverheat, batchID, "Temperature above safe limit",
			map[string]any{"temperature_c": reading.Temperature, "limit_c": p.hazard.Threshold()})
	case models.AlertCleared:
		p.journal.Record(ctx, models.EventOverheatCleared, batchID, "Temperature back in safe band",
			map[string]any{"temperature_c": reading.Temperature})
	}
	if sig.Overheat {
		p.log.Debugw("overheat_reading", "batch_id", batchID, "temperature_c", reading.Temperature)
	}

	if sig.Completed {
		p.log.Infow("target_moisture_reached", "batch_id", batchID, "moisture", reading.Moisture, "target", target)
		guard.Complete(ctx, batchID, reading)
		return false
	}
	return true
}

func (p *TelemetryPoller) applyHazard(ctx context.Context, batchID string, black bool, st *pollState) {
	if p.alarm != nil {
		p.alarm.SetHazardActive(black)
	}
	if black == st.black {
		return
	}
	st.black = black
	if black {
		p.log.Warnw("black_husk_detected", "batch_id", batchID)
		p.journal.Record(ctx, models.EventHazard, batchID, "Colour sensor detected black husk", nil)
		return
	}
	p.journal.Record(ctx, models.EventHazardCleared, batchID, "Colour sensor hazard cleared", nil)
}

// clearHazard drops the colour-sensor flag once nobody is polling it.
func (p *TelemetryPoller) clearHazard() {
	if p.alarm != nil {
		p.alarm.SetHazardActive(false)
	}
}

func (p *TelemetryPoller) logFetchError(op, batchID string, err error) {
	if errors.Is(err, gateway.ErrNoData) {
		p.log.Debugw("poll_no_data", "op", op, "batch_id", batchID)
		return
	}
	p.metrics.GatewayError(op)
	p.log.Warnw("poll_fetch_failed", "op", op, "batch_id", batchID, "err", err)
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
