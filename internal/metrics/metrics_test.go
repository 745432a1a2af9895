package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()
	r.PollTick("ok")
	r.PollTick("ok")
	r.PollTick("sensor_error")
	r.GatewayError("latest_reading")
	r.BatchTransition("completed")
	r.AlertRaised()

	if got := testutil.ToFloat64(r.pollTicks.WithLabelValues("ok")); got != 2 {
		t.Errorf("poll ok ticks = %v", got)
	}
	if got := testutil.ToFloat64(r.pollTicks.WithLabelValues("sensor_error")); got != 1 {
		t.Errorf("poll error ticks = %v", got)
	}
	if got := testutil.ToFloat64(r.gatewayErrors.WithLabelValues("latest_reading")); got != 1 {
		t.Errorf("gateway errors = %v", got)
	}
	if got := testutil.ToFloat64(r.batches.WithLabelValues("completed")); got != 1 {
		t.Errorf("batches completed = %v", got)
	}
	if got := testutil.ToFloat64(r.alertsRaised); got != 1 {
		t.Errorf("alerts raised = %v", got)
	}
}

func TestRecorder_Gauges(t *testing.T) {
	r := New()
	r.SessionRunning(true)
	r.AlertActive(true)
	r.AlarmPlaying(false)
	r.Reading(18, 36.5, 60)

	if got := testutil.ToFloat64(r.sessionRunning); got != 1 {
		t.Errorf("session running = %v", got)
	}
	if got := testutil.ToFloat64(r.alertActive); got != 1 {
		t.Errorf("alert active = %v", got)
	}
	if got := testutil.ToFloat64(r.alarmPlaying); got != 0 {
		t.Errorf("alarm playing = %v", got)
	}
	if got := testutil.ToFloat64(r.lastReading.WithLabelValues("temperature")); got != 36.5 {
		t.Errorf("temperature gauge = %v", got)
	}
	if _, err := r.Gatherer().Gather(); err != nil {
		t.Fatalf("gather: %v", err)
	}
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	r.PollTick("ok")
	r.GatewayError("x")
	r.BatchTransition("started")
	r.SessionRunning(true)
	r.AlertRaised()
	r.AlertActive(true)
	r.AlarmPlaying(true)
	r.Reading(1, 2, 3)
	if r.Gatherer() == nil {
		t.Fatalf("nil recorder must still return a gatherer")
	}
}
