package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cocodry/internal/models"
	"cocodry/internal/service"
)

func TestBatchHandlers_StartStopSession(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	mb := &mockBatch{
		started: models.BatchSession{BatchID: "B7", Status: models.StatusRunning, StartTime: start, InitialMoisture: 28, TargetMoisture: 12},
		stopped: models.BatchSession{BatchID: "B7", Status: models.StatusStopped, StartTime: start, InitialMoisture: 28, TargetMoisture: 12},
		session: models.SessionView{TargetMoisture: 12, Session: models.BatchSession{Status: models.StatusIdle}},
	}
	s := &service.Service{Authorization: &mockAuth{op: testOp}, Batch: mb}
	r := newTestRouter(s)

	// session requires auth
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/batch/session", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/batch/session", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("session status=%d, body=%s", w.Code, w.Body.String())
	}
	var view models.SessionView
	if err := json.Unmarshal(w.Body.Bytes(), &view); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if view.Session.Status != models.StatusIdle || view.TargetMoisture != 12 {
		t.Fatalf("unexpected view: %+v", view)
	}

	// POST /start with body passes moisture and operator
	w = httptest.NewRecorder()
	req := withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/batch/start", bytes.NewBufferString(`{"initial_moisture":28}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("start status=%d, body=%s", w.Code, w.Body.String())
	}
	if mb.startCalls != 1 || mb.lastInitial == nil || *mb.lastInitial != 28 || mb.lastOp != testOp {
		t.Fatalf("start called with initial=%v op=%+v", mb.lastInitial, mb.lastOp)
	}
	var startResp struct {
		Status  string              `json:"status"`
		Session models.BatchSession `json:"session"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &startResp)
	if startResp.Status != statusStarted || startResp.Session.BatchID != "B7" {
		t.Fatalf("bad start response: %+v", startResp)
	}

	// POST /stop without body defaults the final moisture
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/batch/stop", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("stop status=%d, body=%s", w.Code, w.Body.String())
	}
	if mb.stopCalls != 1 || mb.lastFinal != nil {
		t.Fatalf("stop called %d times with final=%v", mb.stopCalls, mb.lastFinal)
	}
}

func TestBatchHandlers_ErrorMapping(t *testing.T) {
	boom := errors.New("connection refused")
	cases := []struct {
		name     string
		mb       *mockBatch
		method   string
		path     string
		body     string
		wantCode int
	}{
		{"start while running", &mockBatch{startErr: service.ErrSessionActive}, http.MethodPost, "/api/v1/batch/start", "", http.StatusConflict},
		{"start backend down", &mockBatch{startErr: &service.StartError{Step: service.StepStartBatch, Err: boom}}, http.MethodPost, "/api/v1/batch/start", "", http.StatusBadGateway},
		{"start bad moisture", &mockBatch{startErr: service.ErrInvalidMoisture}, http.MethodPost, "/api/v1/batch/start", `{"initial_moisture":140}`, http.StatusBadRequest},
		{"start malformed body", &mockBatch{}, http.MethodPost, "/api/v1/batch/start", `{"initial_moisture":`, http.StatusBadRequest},
		{"stop while idle", &mockBatch{stopErr: service.ErrNoActiveSession}, http.MethodPost, "/api/v1/batch/stop", "", http.StatusConflict},
		{"target while running", &mockBatch{targetErr: service.ErrSessionActive}, http.MethodPut, "/api/v1/batch/target", `{"target_moisture":10}`, http.StatusConflict},
		{"target out of range", &mockBatch{targetErr: service.ErrInvalidTarget}, http.MethodPut, "/api/v1/batch/target", `{"target_moisture":-1}`, http.StatusBadRequest},
		{"target missing", &mockBatch{}, http.MethodPut, "/api/v1/batch/target", `{}`, http.StatusBadRequest},
		{"emergency stop unreachable", &mockBatch{emergErr: boom}, http.MethodPost, "/api/v1/batch/emergency-stop", "", http.StatusBadGateway},
		{"emergency stop ok", &mockBatch{}, http.MethodPost, "/api/v1/batch/emergency-stop", "", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &service.Service{Authorization: &mockAuth{op: testOp}, Batch: tc.mb}
			r := newTestRouter(s)

			var body *bytes.Buffer
			if tc.body != "" {
				body = bytes.NewBufferString(tc.body)
			} else {
				body = &bytes.Buffer{}
			}
			req := withAuth(httptest.NewRequest(tc.method, tc.path, body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tc.wantCode {
				t.Fatalf("status=%d want %d, body=%s", w.Code, tc.wantCode, w.Body.String())
			}
		})
	}
}

func TestBatchHandlers_StopBackendFailureIsWarning(t *testing.T) {
	mb := &mockBatch{
		stopped: models.BatchSession{BatchID: "B3", Status: models.StatusStopped},
		stopErr: &service.StopError{Step: service.StepStopBatch, Err: errors.New("502")},
	}
	s := &service.Service{Authorization: &mockAuth{op: testOp}, Batch: mb}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/batch/stop", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Status  string              `json:"status"`
		Session models.BatchSession `json:"session"`
		Warning string              `json:"warning"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != statusStopped || resp.Session.BatchID != "B3" || resp.Warning == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestBatchHandlers_ListBatches(t *testing.T) {
	final := 12.0
	hist := &mockHistory{resp: []models.BatchRecord{{BatchID: "B1", InitialMoisture: 30, FinalMoisture: &final}}}
	s := &service.Service{Authorization: &mockAuth{op: testOp}, History: hist}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/batches?scope=today", nil)))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d, body=%s", w.Code, w.Body.String())
	}
	if hist.lastEmail != testOp.Email || hist.lastScope != "today" {
		t.Fatalf("history called with email=%q scope=%q", hist.lastEmail, hist.lastScope)
	}
	var out struct {
		Count   int                  `json:"count"`
		Batches []models.BatchRecord `json:"batches"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	if out.Count != 1 || out.Batches[0].BatchID != "B1" {
		t.Fatalf("unexpected response: %+v", out)
	}

	hist.err = errors.New("backend down")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/batches", nil)))
	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 on backend failure, got %d", w.Code)
	}
}

func TestBatchHandlers_ListBatchesBadScope(t *testing.T) {
	svc := service.NewHistoryService(nil)
	s := &service.Service{Authorization: &mockAuth{op: testOp}, History: svc}
	r := newTestRouter(s)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/batches?scope=week", nil)))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", w.Code)
	}
}
