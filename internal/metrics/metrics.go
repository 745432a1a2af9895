// Package metrics exposes prometheus collectors for the drying control loop.
// A nil *Recorder is valid and records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "cocodry"

// Recorder groups the collectors the services update.
type Recorder struct {
	registry *prometheus.Registry

	pollTicks      *prometheus.CounterVec
	gatewayErrors  *prometheus.CounterVec
	batches        *prometheus.CounterVec
	alertsRaised   prometheus.Counter
	sessionRunning prometheus.Gauge
	alertActive    prometheus.Gauge
	alarmPlaying   prometheus.Gauge
	lastReading    *prometheus.GaugeVec
}

// New builds a Recorder on its own registry, including Go runtime collectors.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		pollTicks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "poll_ticks_total",
			Help:      "Telemetry poll ticks by outcome.",
		}, []string{"outcome"}),
		gatewayErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_errors_total",
			Help:      "Failed process backend calls by operation.",
		}, []string{"op"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batch lifecycle transitions.",
		}, []string{"transition"}),
		alertsRaised: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "overheat_alerts_total",
			Help:      "Overheat alerts raised.",
		}),
		sessionRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "session_running",
			Help:      "1 while a batch is RUNNING.",
		}),
		alertActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overheat_alert_active",
			Help:      "1 while the overheat alert is shown.",
		}),
		alarmPlaying: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "alarm_playing",
			Help:      "1 while the audible alarm is sounding.",
		}),
		lastReading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sensor_reading",
			Help:      "Latest sensor value by quantity.",
		}, []string{"quantity"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.pollTicks, r.gatewayErrors, r.batches, r.alertsRaised,
		r.sessionRunning, r.alertActive, r.alarmPlaying, r.lastReading,
	)
	return r
}

// Gatherer returns the registry for the /metrics handler.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	if r == nil {
		return prometheus.NewRegistry()
	}
	return r.registry
}

func (r *Recorder) PollTick(outcome string) {
	if r == nil {
		return
	}
	r.pollTicks.WithLabelValues(outcome).Inc()
}

func (r *Recorder) GatewayError(op string) {
	if r == nil {
		return
	}
	r.gatewayErrors.WithLabelValues(op).Inc()
}

func (r *Recorder) BatchTransition(transition string) {
	if r == nil {
		return
	}
	r.batches.WithLabelValues(transition).Inc()
}

func (r *Recorder) SessionRunning(running bool) {
	if r == nil {
		return
	}
	r.sessionRunning.Set(boolToFloat(running))
}

func (r *Recorder) AlertRaised() {
	if r == nil {
		return
	}
	r.alertsRaised.Inc()
}

func (r *Recorder) AlertActive(active bool) {
	if r == nil {
		return
	}
	r.alertActive.Set(boolToFloat(active))
}

func (r *Recorder) AlarmPlaying(playing bool) {
	if r == nil {
		return
	}
	r.alarmPlaying.Set(boolToFloat(playing))
}

func (r *Recorder) Reading(moisture, temperature, humidity float64) {
	if r == nil {
		return
	}
	r.lastReading.WithLabelValues("moisture").Set(moisture)
	r.lastReading.WithLabelValues("temperature").Set(temperature)
	r.lastReading.WithLabelValues("humidity").Set(humidity)
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
