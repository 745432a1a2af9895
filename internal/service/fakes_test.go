package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cocodry/internal/models"
	"cocodry/internal/repository"
)

// fakeBackend is an in-memory process backend. Readings are served in
// order; the last one repeats.
type fakeBackend struct {
	mu sync.Mutex

	readings  []models.SensorReading
	readErr   error
	readGate  chan struct{} // when set, LatestReading blocks until closed or ctx ends
	hazard    models.HazardSignal
	hazardErr error

	startTelemetryErr error
	stopTelemetryErr  error
	startBatchErr     error
	stopBatchErr      error
	emergencyErr      error

	nextID   int
	calls    []string
	reads    int
	stopped  []string
	initials []float64
}

func (b *fakeBackend) record(call string) {
	b.calls = append(b.calls, call)
}

func (b *fakeBackend) LatestReading(ctx context.Context) (models.SensorReading, error) {
	b.mu.Lock()
	gate := b.readGate
	b.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return models.SensorReading{}, ctx.Err()
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if b.readErr != nil {
		return models.SensorReading{}, b.readErr
	}
	if len(b.readings) == 0 {
		return models.SensorReading{Moisture: 24, Temperature: 30, Humidity: 60}, nil
	}
	r := b.readings[0]
	if len(b.readings) > 1 {
		b.readings = b.readings[1:]
	}
	return r, nil
}

func (b *fakeBackend) LatestHazard(context.Context) (models.HazardSignal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hazard, b.hazardErr
}

func (b *fakeBackend) StartTelemetry(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("start_telemetry")
	return b.startTelemetryErr
}

func (b *fakeBackend) StopTelemetry(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("stop_telemetry")
	return b.stopTelemetryErr
}

func (b *fakeBackend) EmergencyStop(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("emergency_stop")
	return b.emergencyErr
}

func (b *fakeBackend) StartBatch(_ context.Context, initial float64, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("start_batch")
	if b.startBatchErr != nil {
		return "", b.startBatchErr
	}
	b.nextID++
	b.initials = append(b.initials, initial)
	return fmt.Sprintf("B%d", b.nextID), nil
}

func (b *fakeBackend) StopBatch(_ context.Context, batchID string, final float64) (models.BatchRecord, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("stop_batch")
	b.stopped = append(b.stopped, batchID)
	if b.stopBatchErr != nil {
		return models.BatchRecord{}, b.stopBatchErr
	}
	return models.BatchRecord{BatchID: batchID, FinalMoisture: &final}, nil
}

func (b *fakeBackend) ListBatches(context.Context, string) ([]models.BatchRecord, error) {
	return nil, nil
}

func (b *fakeBackend) ListTodayBatches(context.Context, string) ([]models.BatchRecord, error) {
	return nil, nil
}

func (b *fakeBackend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *fakeBackend) readCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

func (b *fakeBackend) set(fn func(b *fakeBackend)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fn(b)
}

// countingStore counts mutations on top of a MemoryStore.
type countingStore struct {
	*repository.MemoryStore
	mutations int32
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: repository.NewMemoryStore()}
}

func (s *countingStore) Set(ctx context.Context, key, value string) error {
	atomic.AddInt32(&s.mutations, 1)
	return s.MemoryStore.Set(ctx, key, value)
}

func (s *countingStore) SetMany(ctx context.Context, values map[string]string) error {
	atomic.AddInt32(&s.mutations, 1)
	return s.MemoryStore.SetMany(ctx, values)
}

func (s *countingStore) Delete(ctx context.Context, keys ...string) error {
	atomic.AddInt32(&s.mutations, 1)
	return s.MemoryStore.Delete(ctx, keys...)
}

func (s *countingStore) ClearAll(ctx context.Context) error {
	atomic.AddInt32(&s.mutations, 1)
	return s.MemoryStore.ClearAll(ctx)
}

func (s *countingStore) count() int32 { return atomic.LoadInt32(&s.mutations) }

// brokenStore fails every call.
type brokenStore struct{}

func (brokenStore) Get(context.Context, string) (string, bool, error) {
	return "", false, repository.ErrStoreUnavailable
}
func (brokenStore) Set(context.Context, string, string) error { return repository.ErrStoreUnavailable }
func (brokenStore) SetMany(context.Context, map[string]string) error {
	return repository.ErrStoreUnavailable
}
func (brokenStore) Delete(context.Context, ...string) error { return repository.ErrStoreUnavailable }
func (brokenStore) ClearAll(context.Context) error          { return repository.ErrStoreUnavailable }

// harness wires a controller the way NewService does, with fakes.
type harness struct {
	be      *fakeBackend
	store   repository.StateStore
	feed    *TelemetryFeed
	hazard  *HazardCoordinator
	alarm   *AlarmManager
	player  *fakePlayer
	poller  *TelemetryPoller
	c       *BatchController
	journal *recordingJournal
}

func newHarness(t *testing.T, be *fakeBackend, store repository.StateStore, interval time.Duration) *harness {
	t.Helper()
	h := &harness{be: be, store: store, player: &fakePlayer{}, journal: &recordingJournal{}}
	h.feed = NewTelemetryFeed()
	h.alarm = NewAlarmManager(h.player, true, nil, nil)
	h.hazard = NewHazardCoordinator(HazardConfig{ThresholdC: 35, CountdownSeconds: 10, Tick: time.Hour}, h.journal, nil, nil)
	h.hazard.OnChange(func(a models.OverheatAlert) { h.alarm.SetOverheatActive(a.Active) })
	h.poller = NewTelemetryPoller(PollerConfig{Interval: interval, CallTimeout: time.Second}, be, h.feed, h.hazard, h.alarm, h.journal, nil, nil)
	h.c = NewBatchController(BatchConfig{DefaultTargetMoisture: 12, CallTimeout: time.Second}, store, be, h.poller, h.feed, h.journal, nil, nil)
	t.Cleanup(func() {
		h.c.Shutdown()
		h.hazard.Close()
	})
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func ptr(v float64) *float64 { return &v }

var testOperator = models.Operator{Email: "op@plant.lk", Role: "WORKER"}
