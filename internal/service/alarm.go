package service

import (
	"sync"

	"cocodry/internal/logger"
	"cocodry/internal/metrics"
	"cocodry/internal/models"
)

// Player is an audible output that loops its cue between Play and Stop.
type Player interface {
	Play() error
	Stop() error
}

// AlarmManager sounds the alarm while a hazard is active and the operator
// has sound enabled. Muting only affects this channel; the overheat alert
// itself is untouched.
type AlarmManager struct {
	player  Player
	metrics *metrics.Recorder
	log     *logger.Logger

	mu       sync.Mutex
	hazard   bool
	overheat bool
	enabled  bool
	playing  bool
}

func NewAlarmManager(player Player, soundEnabled bool, m *metrics.Recorder, log *logger.Logger) *AlarmManager {
	if log == nil {
		log = logger.Nop()
	}
	return &AlarmManager{player: player, enabled: soundEnabled, metrics: m, log: log}
}

// SetHazardActive follows the colour sensor's black-husk flag.
func (a *AlarmManager) SetHazardActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.hazard = active
	a.reconcileLocked()
}

// SetOverheatActive follows the overheat alert.
func (a *AlarmManager) SetOverheatActive(active bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.overheat = active
	a.reconcileLocked()
}

// SetEnabled is the operator's sound toggle. It takes effect immediately.
func (a *AlarmManager) SetEnabled(enabled bool) models.AlarmState {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
	a.reconcileLocked()
	return a.stateLocked()
}

func (a *AlarmManager) State() models.AlarmState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.stateLocked()
}

func (a *AlarmManager) stateLocked() models.AlarmState {
	return models.AlarmState{
		HazardActive:   a.hazard,
		OverheatActive: a.overheat,
		SoundEnabled:   a.enabled,
		Playing:        a.playing,
	}
}

func (a *AlarmManager) reconcileLocked() {
	want := (a.hazard || a.overheat) && a.enabled
	switch {
	case want && !a.playing:
		if err := a.player.Play(); err != nil {
			a.log.Errorw("alarm_play_failed", "err", err)
			return
		}
		a.playing = true
		a.log.Infow("alarm_on", "hazard", a.hazard, "overheat", a.overheat)
	case !want && a.playing:
		if err := a.player.Stop(); err != nil {
			a.log.Errorw("alarm_stop_failed", "err", err)
		}
		a.playing = false
		a.log.Infow("alarm_off", "enabled", a.enabled)
	}
	a.metrics.AlarmPlaying(a.playing)
}
