package service

import (
	"context"
	"sync"
	"time"

	"cocodry/internal/logger"
	"cocodry/internal/metrics"
	"cocodry/internal/models"
)

const defaultCountdownTick = time.Second

type HazardConfig struct {
	ThresholdC       float64
	CountdownSeconds int
	Tick             time.Duration // countdown step; one second outside tests
}

// HazardCoordinator owns the process-wide overheat alert. Only
// ReportTemperature and Acknowledge change it; any number of screens
// read it through Alert or Subscribe.
type HazardCoordinator struct {
	cfg     HazardConfig
	journal Journal
	metrics *metrics.Recorder
	log     *logger.Logger
	now     func() time.Time

	mu         sync.Mutex
	alert      models.OverheatAlert
	activation uint64
	stopCount  context.CancelFunc
	subs       map[int]chan models.OverheatAlert
	nextSub    int
	listeners  []func(models.OverheatAlert)
	closed     bool
}

func NewHazardCoordinator(cfg HazardConfig, journal Journal, m *metrics.Recorder, log *logger.Logger) *HazardCoordinator {
	if cfg.ThresholdC == 0 {
		cfg.ThresholdC = DefaultOverheatC
	}
	if cfg.Tick <= 0 {
		cfg.Tick = defaultCountdownTick
	}
	if journal == nil {
		journal = nopJournal{}
	}
	if log == nil {
		log = logger.Nop()
	}
	return &HazardCoordinator{
		cfg:     cfg,
		journal: journal,
		metrics: m,
		log:     log,
		now:     time.Now,
		subs:    make(map[int]chan models.OverheatAlert),
	}
}

// Threshold is the overheat limit in °C.
func (h *HazardCoordinator) Threshold() float64 { return h.cfg.ThresholdC }

// OnChange registers fn to run on every alert change. fn runs with the
// coordinator locked and must not call back into it.
func (h *HazardCoordinator) OnChange(fn func(models.OverheatAlert)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.listeners = append(h.listeners, fn)
}

func (h *HazardCoordinator) Alert() models.OverheatAlert {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.alert
}

// ReportTemperature raises the alert on the first reading above the limit
// and clears it as soon as a reading is back at or below the limit.
func (h *HazardCoordinator) ReportTemperature(tempC float64) models.AlertTransition {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return models.AlertUnchanged
	}

	switch {
	case tempC > h.cfg.ThresholdC && !h.alert.Active:
		h.alert = models.OverheatAlert{
			Active:           true,
			CountdownSeconds: h.cfg.CountdownSeconds,
			TemperatureC:     tempC,
			RaisedAt:         h.now().UTC(),
		}
		h.startCountdownLocked()
		h.metrics.AlertRaised()
		h.metrics.AlertActive(true)
		h.log.Warnw("overheat_raised", "temperature_c", tempC, "limit_c", h.cfg.ThresholdC)
		h.notifyLocked()
		return models.AlertRaised

	case tempC > h.cfg.ThresholdC:
		h.alert.TemperatureC = tempC
		return models.AlertUnchanged

	case h.alert.Active:
		h.stopCountdownLocked()
		h.alert = models.OverheatAlert{TemperatureC: tempC}
		h.metrics.AlertActive(false)
		h.log.Infow("overheat_cleared", "temperature_c", tempC)
		h.notifyLocked()
		return models.AlertCleared
	}
	return models.AlertUnchanged
}

// Acknowledge dismisses an active alert. It reports false when there was
// nothing to dismiss. A later reading above the limit raises a new alert.
func (h *HazardCoordinator) Acknowledge() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.alert.Active {
		return false
	}
	h.stopCountdownLocked()
	remaining := h.alert.CountdownSeconds
	h.alert = models.OverheatAlert{Acknowledged: true, TemperatureC: h.alert.TemperatureC}
	h.metrics.AlertActive(false)
	h.log.Infow("overheat_acknowledged", "countdown_remaining", remaining)
	h.journal.Record(context.Background(), models.EventAcknowledged, "", "Overheat alert acknowledged",
		map[string]any{"countdown_remaining": remaining})
	h.notifyLocked()
	return true
}

// Subscribe returns a channel that always holds the most recent alert
// state, starting with the current one. Call cancel to unsubscribe.
func (h *HazardCoordinator) Subscribe() (<-chan models.OverheatAlert, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	ch := make(chan models.OverheatAlert, 1)
	if h.closed {
		close(ch)
		return ch, func() {}
	}
	id := h.nextSub
	h.nextSub++
	h.subs[id] = ch
	ch <- h.alert

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

// Close stops any countdown and closes every subscription.
func (h *HazardCoordinator) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	h.stopCountdownLocked()
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

func (h *HazardCoordinator) startCountdownLocked() {
	h.stopCountdownLocked()
	h.activation++
	if h.cfg.CountdownSeconds <= 0 {
		h.alert.Expired = true
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.stopCount = cancel
	go h.countdown(ctx, h.activation)
}

func (h *HazardCoordinator) stopCountdownLocked() {
	if h.stopCount != nil {
		h.stopCount()
		h.stopCount = nil
	}
}

// countdown ticks the alert down once per Tick. Reaching zero marks the
// alert expired; the alert stays up until cleared or acknowledged.
func (h *HazardCoordinator) countdown(ctx context.Context, activation uint64) {
	t := time.NewTicker(h.cfg.Tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}

		h.mu.Lock()
		if ctx.Err() != nil || activation != h.activation || !h.alert.Active {
			h.mu.Unlock()
			return
		}
		h.alert.CountdownSeconds--
		done := h.alert.CountdownSeconds <= 0
		if done {
			h.alert.CountdownSeconds = 0
			h.alert.Expired = true
			h.stopCountdownLocked()
			h.log.Warnw("overheat_countdown_expired", "temperature_c", h.alert.TemperatureC)
		}
		h.notifyLocked()
		h.mu.Unlock()
		if done {
			return
		}
	}
}

// notifyLocked delivers the current alert to listeners and subscribers.
// Slow subscribers lose intermediate states, never the latest one.
func (h *HazardCoordinator) notifyLocked() {
	a := h.alert
	for _, fn := range h.listeners {
		fn(a)
	}
	for _, ch := range h.subs {
		select {
		case ch <- a:
			continue
		default:
		}
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- a:
		default:
		}
	}
}
