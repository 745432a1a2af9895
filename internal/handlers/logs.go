package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"cocodry/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errFromInvalid   = "invalid 'from' time; use RFC3339 or YYYY-MM-DD"
	errToInvalid     = "invalid 'to' time; use RFC3339 or YYYY-MM-DD"
	errRangeInverted = "'from' must be <= 'to'"

	layoutDateTime = "2006-01-02 15:04:05"
	layoutDate     = "2006-01-02"
)

// isDateOnly reports whether the query string represents a date without time component.
func isDateOnly(s string) bool {
	return !strings.ContainsAny(s, "T ")
}

// @Summary      List logs
// @Description  Filter logs by date (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). If 'to' is date-only, it is treated as end-of-day inclusive (23:59:59.999999999Z).
// @Tags         logs
// @Produce      json
// @Param        from  query   string  false  "Start of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD')"  example(2026-03-01)
// @Param        to    query   string  false  "End of range (RFC3339, 'YYYY-MM-DD HH:MM:SS', or 'YYYY-MM-DD'). Date-only treated as end of day."  example(2026-03-31)
// @Param        type  query   string  false  "Event type"  Enums(START,STOP,COMPLETED,OVERHEAT,OVERHEAT_CLEARED,ACKNOWLEDGED,HAZARD,HAZARD_CLEARED,EMERGENCY_STOP,TARGET_CHANGE)
// @Param        batch_id  query  string  false  "Only events of this batch"  example(B12)
// @Success      200   {object}  map[string]interface{}  "count, events"
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) getLogs(c *gin.Context) {
	from, to, msg := parseRange(c.Query("from"), c.Query("to"))
	if msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}
	f := service.LogFilter{
		From:    from,
		To:      to,
		Type:    strings.ToUpper(strings.TrimSpace(c.Query("type"))),
		BatchID: strings.TrimSpace(c.Query("batch_id")),
	}
	events, err := h.services.EventLog.List(c.Request.Context(), f)
	if err != nil {
		if service.IsValidationError(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load logs", "logs_list_failed", err,
			"from", from, "to", to, "type", f.Type, "batch_id", f.BatchID)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":  len(events),
		"events": events,
	})
}

// parseRange parses the optional from/to query values. A date-only 'to'
// covers that whole day. msg is non-empty when the range is unusable.
func parseRange(fromQ, toQ string) (from, to time.Time, msg string) {
	var err error
	if fromQ != "" {
		if from, err = parseQueryTime(fromQ); err != nil {
			return time.Time{}, time.Time{}, errFromInvalid
		}
	}
	if toQ != "" {
		if to, err = parseQueryTime(toQ); err != nil {
			return time.Time{}, time.Time{}, errToInvalid
		}
		if isDateOnly(toQ) {
			to = to.Add(24*time.Hour - time.Nanosecond).UTC()
		}
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return time.Time{}, time.Time{}, errRangeInverted
	}
	return from, to, ""
}

// parseQueryTime accepts RFC3339, "YYYY-MM-DD HH:MM:SS" or "YYYY-MM-DD".
func parseQueryTime(s string) (time.Time, error) {
	// Try multiple accepted formats, normalizing to UTC.
	for _, layout := range []string{time.RFC3339, layoutDateTime, layoutDate} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf(
		"invalid time format %q, expected one of: "+
			"RFC3339 (e.g. 2026-03-01T08:00:00Z), "+
			"'YYYY-MM-DD HH:MM:SS', "+
			"'YYYY-MM-DD'",
		s,
	)
}

