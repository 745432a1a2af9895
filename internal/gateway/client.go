// Package gateway talks to the dryer's process backend: the two telemetry
// reads polled during a batch, and the collection and batch lifecycle calls.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"cocodry/internal/logger"
	"cocodry/internal/models"

	"github.com/sony/gobreaker"
)

// Operation names used in NetworkError.Op, logs and metrics.
const (
	OpLatestReading  = "latest_reading"
	OpLatestHazard   = "latest_hazard"
	OpStartTelemetry = "start_telemetry"
	OpStopTelemetry  = "stop_telemetry"
	OpEmergencyStop  = "emergency_stop"
	OpStartBatch     = "start_batch"
	OpStopBatch      = "stop_batch"
	OpListBatches    = "list_batches"
)

const maxBody = 1 << 20

type Config struct {
	BaseURL         string
	Timeout         time.Duration
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

// Client is the REST client for the process backend. Session cookies the
// backend sets are kept in a jar and sent back on later calls.
type Client struct {
	baseURL string
	http    *http.Client
	readCB  *gobreaker.CircuitBreaker
	log     *logger.Logger
	now     func() time.Time
}

func NewClient(cfg Config, log *logger.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("gateway: empty base url")
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 4 * time.Second
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		baseURL: cfg.BaseURL,
		http:    &http.Client{Timeout: cfg.Timeout, Jar: jar},
		readCB:  newBreaker("telemetry-reads", cfg.BreakerFailures, cfg.BreakerOpenFor, log),
		log:     log,
		now:     time.Now,
	}, nil
}

func newBreaker(name string, fails int, openFor time.Duration, log *logger.Logger) *gobreaker.CircuitBreaker {
	if fails <= 0 {
		fails = 5
	}
	if openFor <= 0 {
		openFor = 30 * time.Second
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    name,
		Timeout: openFor,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(fails)
		},
		// an empty table is a healthy backend
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoData)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warnw("breaker_state", "name", name, "from", from.String(), "to", to.String())
		},
	})
}

type sensorPayload struct {
	Moisture    *float64 `json:"moisture"`
	Temperature float64  `json:"temperature"`
	Humidity    float64  `json:"humidity"`
}

type colorPayload struct {
	BlackDetected bool `json:"blackDetected"`
}

// LatestReading fetches GET /sensor-data/latest. ObservedAt is the poll time.
func (c *Client) LatestReading(ctx context.Context) (models.SensorReading, error) {
	res, err := c.readCB.Execute(func() (any, error) {
		var p *sensorPayload
		if err := c.do(ctx, OpLatestReading, http.MethodGet, "/sensor-data/latest", nil, &p); err != nil {
			return nil, err
		}
		if p == nil || p.Moisture == nil {
			return nil, ErrNoData
		}
		return models.SensorReading{
			Moisture:    *p.Moisture,
			Temperature: p.Temperature,
			Humidity:    p.Humidity,
			ObservedAt:  c.now().UTC(),
		}, nil
	})
	if err != nil {
		return models.SensorReading{}, breakerErr(OpLatestReading, err)
	}
	return res.(models.SensorReading), nil
}

// LatestHazard fetches GET /color-data/latest. The backend answers 404
// until the colour sensor has reported once; that maps to ErrNoData.
func (c *Client) LatestHazard(ctx context.Context) (models.HazardSignal, error) {
	res, err := c.readCB.Execute(func() (any, error) {
		var p *colorPayload
		err := c.do(ctx, OpLatestHazard, http.MethodGet, "/color-data/latest", nil, &p)
		var ne *NetworkError
		if errors.As(err, &ne) && ne.Status == http.StatusNotFound {
			return nil, ErrNoData
		}
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, ErrNoData
		}
		return models.HazardSignal{BlackDetected: p.BlackDetected, ObservedAt: c.now().UTC()}, nil
	})
	if err != nil {
		return models.HazardSignal{}, breakerErr(OpLatestHazard, err)
	}
	return res.(models.HazardSignal), nil
}

func breakerErr(op string, err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &NetworkError{Op: op, Err: err}
	}
	return err
}

func (c *Client) StartTelemetry(ctx context.Context) error {
	return c.do(ctx, OpStartTelemetry, http.MethodPost, "/sensor-data/start", nil, nil)
}

func (c *Client) StopTelemetry(ctx context.Context) error {
	return c.do(ctx, OpStopTelemetry, http.MethodPost, "/sensor-data/stop", nil, nil)
}

// EmergencyStop turns the motor and IR heaters off. It does not end the batch.
func (c *Client) EmergencyStop(ctx context.Context) error {
	return c.do(ctx, OpEmergencyStop, http.MethodPost, "/sensor-data/emergency-stop", nil, nil)
}

// StartBatch opens a batch record and returns the backend-issued batch id.
func (c *Client) StartBatch(ctx context.Context, initialMoisture float64, userEmail string) (string, error) {
	q := url.Values{}
	q.Set("initialMoisture", formatFloat(initialMoisture))
	if userEmail != "" {
		q.Set("userEmail", userEmail)
	}
	var out struct {
		BatchID string `json:"batchId"`
	}
	if err := c.do(ctx, OpStartBatch, http.MethodPost, "/batch-processes/start", q, &out); err != nil {
		return "", err
	}
	if out.BatchID == "" {
		return "", fmt.Errorf("%s: %w: empty batchId", OpStartBatch, ErrBadResponse)
	}
	return out.BatchID, nil
}

// StopBatch closes the batch record and returns the backend's summary.
func (c *Client) StopBatch(ctx context.Context, batchID string, finalMoisture float64) (models.BatchRecord, error) {
	q := url.Values{}
	q.Set("batchId", batchID)
	q.Set("finalMoisture", formatFloat(finalMoisture))
	var rec *models.BatchRecord
	if err := c.do(ctx, OpStopBatch, http.MethodPost, "/batch-processes/stop", q, &rec); err != nil {
		return models.BatchRecord{}, err
	}
	if rec == nil {
		return models.BatchRecord{BatchID: batchID, FinalMoisture: &finalMoisture}, nil
	}
	return *rec, nil
}

func (c *Client) ListBatches(ctx context.Context, userEmail string) ([]models.BatchRecord, error) {
	return c.listBatches(ctx, "/batch-processes/getBatches", userEmail)
}

func (c *Client) ListTodayBatches(ctx context.Context, userEmail string) ([]models.BatchRecord, error) {
	return c.listBatches(ctx, "/batch-processes/getTodayBatches", userEmail)
}

func (c *Client) listBatches(ctx context.Context, path, userEmail string) ([]models.BatchRecord, error) {
	q := url.Values{}
	q.Set("userEmail", userEmail)
	var out []models.BatchRecord
	if err := c.do(ctx, OpListBatches, http.MethodGet, path, q, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.BatchRecord{}
	}
	return out, nil
}

// do issues one request and decodes a JSON body into out (when non-nil).
// Transport failures and non-2xx statuses come back as *NetworkError.
func (c *Client) do(ctx context.Context, op, method, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return &NetworkError{Op: op, Status: resp.StatusCode, Err: err}
	}
	c.log.Debugw("backend_call", "op", op, "status", resp.StatusCode, "took", c.now().Sub(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &NetworkError{
			Op:     op,
			Status: resp.StatusCode,
			Err:    fmt.Errorf("%s %s: %s", method, path, bytes.TrimSpace(body)),
		}
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrBadResponse, err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
