package handlers

import (
	"errors"
	"net/http"

	"cocodry/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK           = "ok"
	statusStarted      = "started"
	statusStopped      = "stopped"
	statusTargetSet    = "target_set"
	statusEmergencyOff = "emergency_stopped"

	errStartBatch      = "failed to start batch"
	errStopBatch       = "failed to stop batch"
	errEmergencyStop   = "failed to reach the dryer; use the local emergency switch"
	errListBatches     = "failed to load batches"
	errInvalidBodyPref = "invalid body: "
)

type startRequest struct {
	InitialMoisture *float64 `json:"initial_moisture"`
}

type stopRequest struct {
	FinalMoisture *float64 `json:"final_moisture"`
}

type targetRequest struct {
	TargetMoisture *float64 `json:"target_moisture" binding:"required"`
}

// StartBatchRequest is an exported model for Swagger docs of the start payload.
type StartBatchRequest struct {
	// Husk moisture at load time in percent. Defaults to the latest reading.
	InitialMoisture float64 `json:"initial_moisture,omitempty" example:"28"`
}

// StopBatchRequest is an exported model for Swagger docs of the stop payload.
type StopBatchRequest struct {
	// Husk moisture at unload time in percent. Defaults to the latest reading.
	FinalMoisture float64 `json:"final_moisture,omitempty" example:"12"`
}

// SetTargetRequest is an exported model for Swagger docs of the target payload.
type SetTargetRequest struct {
	// Moisture percent at which the batch completes.
	TargetMoisture float64 `json:"target_moisture" example:"12"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current batch session
// @Tags         batch
// @Produce      json
// @Success      200  {object}  models.SessionView
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/batch/session [get]
// @Security     BearerAuth
func (h *Handler) getSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Batch.Session())
}

// @Summary      Start a drying batch
// @Description  Starts telemetry collection and opens a batch record on the process backend.
// @Tags         batch
// @Accept       json
// @Produce      json
// @Param        body  body      StartBatchRequest  false  "Start payload"
// @Success      200   {object}  map[string]interface{}  "status, session"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/batch/start [post]
// @Security     BearerAuth
func (h *Handler) startBatch(c *gin.Context) {
	var req startRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	s, err := h.services.Batch.Start(c.Request.Context(), operatorFrom(c), req.InitialMoisture)
	if err != nil {
		h.batchError(c, err, errStartBatch, "batch_start_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusStarted, "session": s})
}

// @Summary      Stop the running batch
// @Description  The session is closed even when the backend cannot be reached; the failure is returned as a warning.
// @Tags         batch
// @Accept       json
// @Produce      json
// @Param        body  body      StopBatchRequest  false  "Stop payload"
// @Success      200   {object}  map[string]interface{}  "status, session, warning"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/batch/stop [post]
// @Security     BearerAuth
func (h *Handler) stopBatch(c *gin.Context) {
	var req stopRequest
	if !h.bindJSONOrBadRequest(c, &req) {
		return
	}
	s, err := h.services.Batch.Stop(c.Request.Context(), req.FinalMoisture)
	var stopErr *service.StopError
	switch {
	case errors.As(err, &stopErr):
		if h.log != nil {
			h.log.Warnw("batch_stop_backend_failed", "batch_id", s.BatchID, "step", stopErr.Step, "err", stopErr.Err)
		}
		c.JSON(http.StatusOK, gin.H{"status": statusStopped, "session": s, "warning": stopErr.Error()})
	case err != nil:
		h.batchError(c, err, errStopBatch, "batch_stop_failed")
	default:
		c.JSON(http.StatusOK, gin.H{"status": statusStopped, "session": s})
	}
}

// @Summary      Set target moisture
// @Description  Only allowed while no batch is running.
// @Tags         batch
// @Accept       json
// @Produce      json
// @Param        body  body      SetTargetRequest  true  "Target payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/v1/batch/target [put]
// @Security     BearerAuth
func (h *Handler) setTarget(c *gin.Context) {
	var req targetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	if err := h.services.Batch.SetTargetMoisture(c.Request.Context(), *req.TargetMoisture); err != nil {
		h.batchError(c, err, "failed to set target", "batch_set_target_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusTargetSet, "target_moisture": *req.TargetMoisture})
}

// @Summary      Emergency stop
// @Description  Turns off the motor and IR heaters. The batch session is not ended.
// @Tags         batch
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/batch/emergency-stop [post]
// @Security     BearerAuth
func (h *Handler) emergencyStop(c *gin.Context) {
	if err := h.services.Batch.EmergencyStop(c.Request.Context(), operatorFrom(c)); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errEmergencyStop, "emergency_stop_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusEmergencyOff})
}

// @Summary      List batch records
// @Tags         batch
// @Produce      json
// @Param        scope  query     string  false  "all (default) or today"  Enums(all,today)
// @Success      200    {object}  map[string]interface{}  "count, batches"
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Failure      502    {object}  map[string]string
// @Router       /api/v1/batches [get]
// @Security     BearerAuth
func (h *Handler) listBatches(c *gin.Context) {
	op := operatorFrom(c)
	batches, err := h.services.History.Batches(c.Request.Context(), op.Email, c.Query("scope"))
	if err != nil {
		if service.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, errListBatches, "batches_list_failed", err, "operator", op.Email)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(batches),
		"batches": batches,
	})
}

// batchError maps controller errors to status codes.
func (h *Handler) batchError(c *gin.Context, err error, userMsg, logKey string) {
	var startErr *service.StartError
	switch {
	case errors.Is(err, service.ErrSessionActive), errors.Is(err, service.ErrNoActiveSession):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidMoisture), errors.Is(err, service.ErrInvalidTarget):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &startErr):
		h.logAndJSONError(c, http.StatusBadGateway, userMsg, logKey, err, "step", startErr.Step)
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, userMsg, logKey, err)
	}
}
