package handlers

import (
	"mycodash/internal/logger"
	"mycodash/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// Versioned API endpoints (protected)
	h.registerAPIRoutes(router)

	// Snapshot stream over WebSocket — same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.userIdMiddleware)
	{
		h.registerConnectionRoutes(api)
		h.registerDeviceRoutes(api)
		h.registerProfileRoutes(api)
		h.registerControlRoutes(api)
	}
}

func (h *Handler) registerConnectionRoutes(api *gin.RouterGroup) {
	conn := api.Group("/connection")
	{
		conn.GET("", h.getConnection)
		conn.PUT("", h.updateConnection)
		conn.POST("/test", h.testConnection)
		conn.POST("/discover", h.discoverDevice)
	}
}

func (h *Handler) registerDeviceRoutes(api *gin.RouterGroup) {
	device := api.Group("/device")
	{
		device.GET("/snapshot", h.getSnapshot)
		device.GET("/sensors", h.getSensors)
		device.GET("/water", h.getWater)
	}
	api.GET("/history", h.getHistory)

	alerts := api.Group("/alerts")
	{
		alerts.GET("", h.getAlerts)
		alerts.POST("/:id/read", h.markAlertRead)
	}
}

func (h *Handler) registerProfileRoutes(api *gin.RouterGroup) {
	profiles := api.Group("/profiles")
	{
		profiles.GET("", h.listProfiles)
		profiles.POST("", h.createProfile)
		profiles.PUT("/:id", h.updateProfile)
		profiles.DELETE("/:id", h.deleteProfile)
		profiles.POST("/:id/activate", h.activateProfile)
	}
}

func (h *Handler) registerControlRoutes(api *gin.RouterGroup) {
	control := api.Group("/control")
	{
		control.POST("/:device/toggle", h.toggleActuator)
		control.GET("/overrides", h.listOverrides)
		control.POST("/manual/disable", h.disableManual)
	}
}
