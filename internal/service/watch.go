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

const defaultWatchInterval = 15 * time.Second

type WatchConfig struct {
	Interval    time.Duration
	CallTimeout time.Duration
}

// TemperatureWatch keeps the overheat alert tracking the dryer while no
// batch is polling. It reads at a low rate and yields to the poller.
type TemperatureWatch struct {
	cfg     WatchConfig
	gw      SensorGateway
	hazard  *HazardCoordinator
	busy    func() bool
	journal Journal
	metrics *metrics.Recorder
	log     *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewTemperatureWatch builds a watch; busy reports whether a batch poller
// currently owns the readings.
func NewTemperatureWatch(cfg WatchConfig, gw SensorGateway, hazard *HazardCoordinator, busy func() bool,
	journal Journal, m *metrics.Recorder, log *logger.Logger) *TemperatureWatch {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultWatchInterval
	}
	if cfg.CallTimeout <= 0 || cfg.CallTimeout >= cfg.Interval {
		cfg.CallTimeout = minDuration(defaultCallTimeout, cfg.Interval*4/5)
	}
	if busy == nil {
		busy = func() bool { return false }
	}
	if journal == nil {
		journal = nopJournal{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TemperatureWatch{
		cfg:     cfg,
		gw:      gw,
		hazard:  hazard,
		busy:    busy,
		journal: journal,
		metrics: m,
		log:     log,
	}
}

// Start launches the loop. Calling Start on a running watch does nothing.
func (w *TemperatureWatch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	w.done = make(chan struct{})
	go w.run(ctx, w.done)
}

// Stop ends the loop and waits for it.
func (w *TemperatureWatch) Stop() {
	w.mu.Lock()
	cancel, done := w.cancel, w.done
	w.cancel, w.done = nil, nil
	w.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (w *TemperatureWatch) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	t := time.NewTicker(w.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		w.check(ctx)
	}
}

// check reads the temperature once and reports it to the hazard
// coordinator unless a batch poller is running.
func (w *TemperatureWatch) check(ctx context.Context) {
	if w.busy() {
		return
	}
	cctx, cancel := context.WithTimeout(ctx, w.cfg.CallTimeout)
	defer cancel()
	r, err := w.gw.LatestReading(cctx)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, gateway.ErrNoData) {
			return
		}
		w.metrics.GatewayError(gateway.OpLatestReading)
		w.log.Debugw("watch_fetch_failed", "err", err)
		return
	}
	// a batch may have started while the call was in flight
	if ctx.Err() != nil || w.busy() {
		return
	}

	switch w.hazard.ReportTemperature(r.Temperature) {
	case models.AlertRaised:
		w.journal.Record(ctx, models.EventOverheat, "", "Temperature above safe limit",
			map[string]any{"temperature_c": r.Temperature, "limit_c": w.hazard.Threshold()})
	case models.AlertCleared:
		w.journal.Record(ctx, models.EventOverheatCleared, "", "Temperature back in safe band",
			map[string]any{"temperature_c": r.Temperature})
	}
}
