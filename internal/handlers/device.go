package handlers

import (
	"errors"
	"net/http"
	"time"

	"mycodash/internal/service"

	"github.com/gin-gonic/gin"
)

// @Summary      Current device snapshot
// @Tags         device
// @Produce      json
// @Success      200  {object}  models.DeviceSnapshot
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/device/snapshot [get]
func (h *Handler) getSnapshot(c *gin.Context) {
	snap, err := h.services.Monitor.Snapshot(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load device state", "snapshot_failed", err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// @Summary      Climate sensor readings
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "sensors, connectionMode"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string  "no data, cached or live"
// @Router       /api/v1/device/sensors [get]
func (h *Handler) getSensors(c *gin.Context) {
	sensors, mode, err := h.services.Monitor.Sensors(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusServiceUnavailable, "no sensor data available", "sensors_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sensors": sensors, "connectionMode": mode})
}

// @Summary      Water tank level
// @Tags         device
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "water, connectionMode"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/device/water [get]
func (h *Handler) getWater(c *gin.Context) {
	water, mode, err := h.services.Monitor.Water(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusServiceUnavailable, "no water level available", "water_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"water": water, "connectionMode": mode})
}

// @Summary      Climate history
// @Tags         device
// @Produce      json
// @Param        from  query  string  false  "RFC3339 lower bound"
// @Param        to    query  string  false  "RFC3339 upper bound"
// @Success      200  {array}   models.HistoryPoint
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	from, ok := parseTimeQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseTimeQuery(c, "to")
	if !ok {
		return
	}

	points, err := h.services.Monitor.History(c.Request.Context(), from, to)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load history", "history_failed", err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// @Summary      List alerts
// @Tags         alerts
// @Produce      json
// @Success      200  {array}   models.Alert
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alerts [get]
func (h *Handler) getAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitor.Alerts())
}

// @Summary      Mark an alert read
// @Tags         alerts
// @Produce      json
// @Param        id  path  string  true  "alert id"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/alerts/{id}/read [post]
func (h *Handler) markAlertRead(c *gin.Context) {
	if err := h.services.Monitor.MarkRead(c.Param("id")); err != nil {
		if errors.Is(err, service.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to mark alert read", "alert_read_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// parseTimeQuery reads an optional RFC3339 query parameter. A zero time
// means the bound is open.
func parseTimeQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + ": " + err.Error()})
		return time.Time{}, false
	}
	return t, true
}
