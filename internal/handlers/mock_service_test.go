package handlers

import (
	"context"
	"net/http"
	"sync"

	"cocodry/internal/models"
	"cocodry/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	op       models.Operator
	parseErr error

	lastParseToken string
}

func (m *mockAuth) ParseToken(token string) (models.Operator, error) {
	m.lastParseToken = token
	return m.op, m.parseErr
}

type mockBatch struct {
	mu sync.Mutex

	session   models.SessionView
	started   models.BatchSession
	stopped   models.BatchSession
	startErr  error
	stopErr   error
	targetErr error
	emergErr  error

	startCalls  int
	stopCalls   int
	emergCalls  int
	lastOp      models.Operator
	lastInitial *float64
	lastFinal   *float64
	lastTarget  float64
}

func (m *mockBatch) Start(_ context.Context, op models.Operator, initial *float64) (models.BatchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startCalls++
	m.lastOp = op
	m.lastInitial = initial
	return m.started, m.startErr
}

func (m *mockBatch) Stop(_ context.Context, final *float64) (models.BatchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalls++
	m.lastFinal = final
	return m.stopped, m.stopErr
}

func (m *mockBatch) SetTargetMoisture(_ context.Context, v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastTarget = v
	return m.targetErr
}

func (m *mockBatch) EmergencyStop(_ context.Context, op models.Operator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.emergCalls++
	m.lastOp = op
	return m.emergErr
}

func (m *mockBatch) Session() models.SessionView {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

type mockMonitoring struct {
	snap models.TelemetrySnapshot
}

func (m *mockMonitoring) Latest() models.TelemetrySnapshot { return m.snap }

type mockAlerts struct {
	mu    sync.Mutex
	alert models.OverheatAlert
	subs  []chan models.OverheatAlert
	acked int
}

func (m *mockAlerts) Alert() models.OverheatAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.alert
}

func (m *mockAlerts) Acknowledge() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.alert.Active {
		return false
	}
	m.acked++
	m.alert = models.OverheatAlert{Acknowledged: true, TemperatureC: m.alert.TemperatureC}
	return true
}

func (m *mockAlerts) Subscribe() (<-chan models.OverheatAlert, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan models.OverheatAlert, 1)
	ch <- m.alert
	m.subs = append(m.subs, ch)
	return ch, func() {}
}

// raise sets the alert and pushes it to every subscriber.
func (m *mockAlerts) raise(a models.OverheatAlert) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alert = a
	for _, ch := range m.subs {
		select {
		case <-ch:
		default:
		}
		ch <- a
	}
}

func (m *mockAlerts) subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

type mockAlarm struct {
	state models.AlarmState
}

func (m *mockAlarm) State() models.AlarmState { return m.state }

func (m *mockAlarm) SetEnabled(enabled bool) models.AlarmState {
	m.state.SoundEnabled = enabled
	m.state.Playing = enabled && (m.state.HazardActive || m.state.OverheatActive)
	return m.state
}

type mockHistory struct {
	resp      []models.BatchRecord
	err       error
	lastEmail string
	lastScope string
}

func (m *mockHistory) Batches(_ context.Context, email, scope string) ([]models.BatchRecord, error) {
	m.lastEmail = email
	m.lastScope = scope
	return m.resp, m.err
}

type mockEventLog struct {
	resp        []models.BatchEvent
	err         error
	lastFilter  service.LogFilter
	listCallCnt int
}

func (m *mockEventLog) List(_ context.Context, f service.LogFilter) ([]models.BatchEvent, error) {
	m.lastFilter = f
	m.listCallCnt++
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

var testOp = models.Operator{Email: "op@plant.lk", Role: "WORKER"}

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request) *http.Request {
	for k, vv := range authHeader("valid") {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
