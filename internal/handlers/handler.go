package handlers

import (
	"garden_panel/internal/logger"
	"garden_panel/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

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
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", h.health)
	router.GET("/", h.dashboard)

	h.registerUIRoutes(router)
	h.registerAPIRoutes(router)

	// zone panels stream over the same port
	router.GET("/ws", h.wsConnect)

	return router
}

// registerUIRoutes serves the button clicks posted by the dashboard page.
func (h *Handler) registerUIRoutes(r *gin.Engine) {
	ui := r.Group("/ui")
	{
		ui.POST("/zones/:id/actions/:index", h.pressAction)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	{
		h.registerZoneRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerZoneRoutes(api *gin.RouterGroup) {
	zones := api.Group("/zones")
	{
		zones.GET("", h.listZones)
		zones.POST("/reload", h.reloadZones)
		zones.GET("/:id", h.getZone)
		// ?time=10m or ?time=10 (minutes); omitted means the controller default
		zones.POST("/:id/start", h.startZone)
		zones.POST("/:id/stop", h.stopZone)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}
