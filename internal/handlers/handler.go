package handlers

import (
	"net/http"
	"time"

	"cocodry/internal/logger"
	"cocodry/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services   *service.Service
	log        *logger.Logger
	gatherer   prometheus.Gatherer
	wsInterval time.Duration
}

// Option tunes optional Handler behaviour.
type Option func(*Handler)

// WithMetrics exposes g on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(h *Handler) { h.gatherer = g }
}

// WithStreamInterval sets the /ws push interval used when the client asks
// for none.
func WithStreamInterval(d time.Duration) Option {
	return func(h *Handler) {
		if d > 0 && d <= maxInterval {
			h.wsInterval = d
		}
	}
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger, opts ...Option) *Handler {
	h := &Handler{services: services, log: log, wsInterval: defaultInterval}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", h.health)
	if h.gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.gatherer, promhttp.HandlerOpts{})))
	}

	h.registerAPIRoutes(router)

	// live session/telemetry/alert stream on the same port
	router.GET("/ws", h.wsConnect)

	return router
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.operatorMiddleware)
	{
		h.registerBatchRoutes(api)
		h.registerTelemetryRoutes(api)
		h.registerLogRoutes(api)
	}
}

func (h *Handler) registerBatchRoutes(api *gin.RouterGroup) {
	batch := api.Group("/batch")
	{
		batch.GET("/session", h.getSession)
		// Body example: {"initial_moisture":28}
		batch.POST("/start", h.startBatch)
		// Body example: {"final_moisture":12}
		batch.POST("/stop", h.stopBatch)
		batch.PUT("/target", h.setTarget)
		batch.POST("/emergency-stop", h.emergencyStop)
	}
	api.GET("/batches", h.listBatches)
}

func (h *Handler) registerTelemetryRoutes(api *gin.RouterGroup) {
	api.GET("/telemetry/latest", h.latestTelemetry)

	alert := api.Group("/alert")
	{
		alert.GET("", h.getAlert)
		alert.POST("/acknowledge", h.acknowledgeAlert)
	}

	alarm := api.Group("/alarm")
	{
		alarm.GET("", h.getAlarm)
		alarm.PUT("/sound", h.setSound)
	}
}

func (h *Handler) registerLogRoutes(api *gin.RouterGroup) {
	logs := api.Group("/logs")
	{
		logs.GET("/", h.getLogs)
	}
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// bindJSONOrBadRequest binds an optional JSON body into dst and writes a
// 400 on malformed input. An empty body is accepted.
func (h *Handler) bindJSONOrBadRequest(c *gin.Context, dst any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		if h.log != nil {
			h.log.Infow("bad_request_body", "path", c.FullPath(), "err", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return false
	}
	return true
}
