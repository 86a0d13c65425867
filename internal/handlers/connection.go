package handlers

import (
	"net/http"

	"mycodash/internal/models"

	"github.com/gin-gonic/gin"
)

// ConnectionRequest is an exported model for Swagger docs of the connection payload.
type ConnectionRequest struct {
	// Device address, IP or host
	Address string `json:"address" example:"192.168.4.1"`
	// Device HTTP port
	Port int `json:"port" example:"80"`
	// Optional bearer token for the device API
	AuthToken string `json:"authToken,omitempty"`
	// Probe candidate addresses when the device is unreachable
	AutoDetect bool `json:"autoDetect" example:"true"`
}

// @Summary      Get connection settings
// @Tags         connection
// @Produce      json
// @Success      200  {object}  models.ConnectionConfig
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/connection [get]
func (h *Handler) getConnection(c *gin.Context) {
	cfg, err := h.services.Connection.Config(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "failed to load connection settings", "connection_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// @Summary      Update connection settings
// @Tags         connection
// @Accept       json
// @Produce      json
// @Param        body  body  ConnectionRequest  true  "new settings"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/connection [put]
func (h *Handler) updateConnection(c *gin.Context) {
	var input models.ConnectionConfig
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}

	if err := h.services.Connection.UpdateConfig(c.Request.Context(), input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Test device connection
// @Tags         connection
// @Produce      json
// @Success      200  {object}  device.ConnStatus
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/connection/test [post]
func (h *Handler) testConnection(c *gin.Context) {
	st, err := h.services.Connection.Test(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, "connection test failed", "connection_test_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Auto-discover the device
// @Tags         connection
// @Produce      json
// @Success      200  {object}  map[string]string  "discovered address"
// @Failure      404  {object}  map[string]string  "no device found"
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/connection/discover [post]
func (h *Handler) discoverDevice(c *gin.Context) {
	addr, err := h.services.Connection.Discover(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusNotFound, "no device found on any candidate address", "discovery_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"address": addr})
}
