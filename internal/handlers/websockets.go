package handlers

import (
	"net/http"
	"strconv"
	"time"

	"cocodry/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Message types pushed on /ws.
const (
	msgState = "state"
	msgAlert = "alert"
)

type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// streamState is everything a control screen renders, pushed every interval.
type streamState struct {
	Session   models.SessionView       `json:"session"`
	Telemetry models.TelemetrySnapshot `json:"telemetry"`
	Alert     models.OverheatAlert     `json:"alert"`
	Alarm     models.AlarmState        `json:"alarm"`
}

// The dashboard is served from the same plant network; origins are not checked.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConnect streams periodic state snapshots and pushes every overheat
// alert change as soon as it happens, so all screens show the same alert.
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	alerts, unsubscribe := h.services.Alerts.Subscribe()
	defer unsubscribe()

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := h.sendState(conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case a, ok := <-alerts:
			if !ok {
				// service shutting down; keep streaming state until the client leaves
				alerts = nil
				continue
			}
			if err := h.write(conn, wsEnvelope{Type: msgAlert, Data: a}); err != nil {
				if h.log != nil {
					h.log.Infow("ws_alert_write_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendState(conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	if h.wsInterval > 0 {
		return h.wsInterval
	}
	return defaultInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) sendState(conn *websocket.Conn) error {
	return h.write(conn, wsEnvelope{Type: msgState, Data: h.snapshot()})
}

// snapshot builds the stream payload. /ws is unauthenticated, so operator
// identities are left out.
func (h *Handler) snapshot() streamState {
	return streamState{
		Session:   anonymous(h.services.Batch.Session()),
		Telemetry: h.services.Monitoring.Latest(),
		Alert:     h.services.Alerts.Alert(),
		Alarm:     h.services.Alarm.State(),
	}
}

func anonymous(v models.SessionView) models.SessionView {
	v.Session.Operator = ""
	if v.LastFinished != nil {
		last := *v.LastFinished
		last.Operator = ""
		v.LastFinished = &last
	}
	return v
}

func (h *Handler) write(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
