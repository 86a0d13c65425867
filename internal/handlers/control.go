package handlers

import (
	"net/http"

	"mycodash/internal/models"

	"github.com/gin-gonic/gin"
)

// @Summary      Toggle an actuator manually
// @Description  Flips the actuator and holds it for ten minutes; toggling again cancels the override.
// @Tags         control
// @Produce      json
// @Param        device  path  string  true  "fogger | exhaustFan | circulationFan"
// @Success      200  {object}  map[string]interface{}  "status, overrides"
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string  "device rejected the command"
// @Router       /api/v1/control/{device}/toggle [post]
func (h *Handler) toggleActuator(c *gin.Context) {
	actuator := models.ActuatorID(c.Param("device"))
	if !actuator.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown actuator"})
		return
	}

	if err := h.services.Overrides.Toggle(c.Request.Context(), actuator); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, "device did not accept the command", "toggle_failed", err,
			"actuator", actuator)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    statusOK,
		"overrides": h.services.Overrides.Active(),
	})
}

// @Summary      List active manual overrides
// @Tags         control
// @Produce      json
// @Success      200  {array}   models.ManualOverride
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/control/overrides [get]
func (h *Handler) listOverrides(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Overrides.Active())
}

// @Summary      Return the device to automatic mode
// @Tags         control
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/control/manual/disable [post]
func (h *Handler) disableManual(c *gin.Context) {
	if err := h.services.Overrides.DisableAll(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, "device did not accept the command", "manual_disable_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}
