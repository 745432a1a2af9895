package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type soundRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// SetSoundRequest is an exported model for Swagger docs of the alarm toggle.
type SetSoundRequest struct {
	Enabled bool `json:"enabled" example:"false"`
}

// @Summary      Latest telemetry
// @Description  Last polled moisture, temperature and humidity plus the colour-sensor hazard flag.
// @Tags         telemetry
// @Produce      json
// @Success      200  {object}  models.TelemetrySnapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/telemetry/latest [get]
// @Security     BearerAuth
func (h *Handler) latestTelemetry(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Latest())
}

// @Summary      Overheat alert
// @Tags         alert
// @Produce      json
// @Success      200  {object}  models.OverheatAlert
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alert [get]
// @Security     BearerAuth
func (h *Handler) getAlert(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Alerts.Alert())
}

// @Summary      Acknowledge the overheat alert
// @Tags         alert
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "acknowledged, alert"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alert/acknowledge [post]
// @Security     BearerAuth
func (h *Handler) acknowledgeAlert(c *gin.Context) {
	ok := h.services.Alerts.Acknowledge()
	if ok && h.log != nil {
		h.log.Infow("alert_acknowledged", "operator", operatorFrom(c).Email)
	}
	c.JSON(http.StatusOK, gin.H{"acknowledged": ok, "alert": h.services.Alerts.Alert()})
}

// @Summary      Alarm state
// @Tags         alarm
// @Produce      json
// @Success      200  {object}  models.AlarmState
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alarm [get]
// @Security     BearerAuth
func (h *Handler) getAlarm(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Alarm.State())
}

// @Summary      Enable or mute the alarm sound
// @Tags         alarm
// @Accept       json
// @Produce      json
// @Param        body  body      SetSoundRequest  true  "Sound toggle"
// @Success      200   {object}  models.AlarmState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/v1/alarm/sound [put]
// @Security     BearerAuth
func (h *Handler) setSound(c *gin.Context) {
	var req soundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	st := h.services.Alarm.SetEnabled(*req.Enabled)
	if h.log != nil {
		h.log.Infow("alarm_sound_set", "enabled", *req.Enabled, "operator", operatorFrom(c).Email)
	}
	c.JSON(http.StatusOK, st)
}
