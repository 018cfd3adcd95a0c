package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/BarkinBalci/error-monitor-dashboard/docs"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/dto"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/metrics"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/service"
	"github.com/BarkinBalci/error-monitor-dashboard/internal/views"
)

type Handler struct {
	dashboard service.DashboardServicer
	metrics   *metrics.Metrics
	router    *gin.Engine
	upgrader  websocket.Upgrader
	log       *zap.Logger
}

// NewHandler wires the dashboard routes. m may be nil, in which case
// /metrics is not served.
func NewHandler(dashboard service.DashboardServicer, m *metrics.Metrics, log *zap.Logger) *Handler {
	h := &Handler{
		dashboard: dashboard,
		metrics:   m,
		router:    gin.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
		log: log,
	}

	h.registerRoutes()

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	if h.metrics != nil {
		h.router.Use(h.metrics.Middleware())
		h.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(h.metrics.Registry(), promhttp.HandlerOpts{})))
	}

	h.router.GET("/health", h.healthCheck)
	h.router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := h.router.Group("/api/dashboard")
	api.GET("/overview", h.getOverview)

	api.GET("/stream", h.getStream)
	api.POST("/stream/ack", h.streamAction(h.dashboard.AcknowledgeStream))
	api.POST("/stream/pause", h.streamAction(h.dashboard.PauseStream))
	api.POST("/stream/resume", h.streamAction(h.dashboard.ResumeStream))
	api.POST("/stream/refresh", h.streamAction(h.dashboard.RefreshStream))
	api.GET("/stream/ws", h.streamSocket)

	api.GET("/errors", h.listErrors)
	api.GET("/errors/:id", h.getError)
	api.PUT("/errors/:id/resolve", h.resolveError)
	api.DELETE("/errors/:id", h.deleteError)

	api.GET("/monitoring", h.getMonitoring)
	api.GET("/uptime", h.getUptime)
	api.GET("/analytics", h.getAnalytics)
	api.GET("/analytics/trends", h.getTrends)
	api.GET("/analytics/performance", h.getPerformance)
	api.GET("/alerts", h.getAlerts)
	api.GET("/reports", h.getReport)
}

// healthCheck handles health check requests
// @Summary Health check
// @Description Report the dashboard's view of the tracking service and the archive
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Health(c.Request.Context()))
}

// getOverview handles GET /api/dashboard/overview
// @Summary Overview page
// @Description API health, error statistics and the live stream, each loading independently
// @Tags overview
// @Produce json
// @Success 200 {object} views.Overview
// @Router /api/dashboard/overview [get]
func (h *Handler) getOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Overview())
}

// getStream handles GET /api/dashboard/stream
// @Summary Live error stream
// @Tags stream
// @Produce json
// @Success 200 {object} views.StreamView
// @Router /api/dashboard/stream [get]
func (h *Handler) getStream(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Stream())
}

// streamAction handles POST /api/dashboard/stream/{ack,pause,resume,refresh}
// @Summary Control the live stream
// @Description ack clears the new-item badge, pause freezes the buffer, resume unfreezes it, refresh clears it and polls immediately
// @Tags stream
// @Produce json
// @Param action path string true "Stream action" Enums(ack, pause, resume, refresh)
// @Success 200 {object} views.StreamView
// @Router /api/dashboard/stream/{action} [post]
func (h *Handler) streamAction(op func() views.StreamView) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, op())
	}
}

// listErrors handles GET /api/dashboard/errors
// @Summary List errors
// @Description One page of errors with optional filters. An empty page is not an error.
// @Tags errors
// @Produce json
// @Param limit query int false "Page size (1-100)" example:"20"
// @Param offset query int false "Offset" example:"0"
// @Param level query string false "Severity" Enums(error, warning, info, debug)
// @Param source query string false "Source service"
// @Param resolved query bool false "Resolution status"
// @Success 200 {object} views.ErrorTable
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/dashboard/errors [get]
func (h *Handler) listErrors(c *gin.Context) {
	var req dto.ListErrorsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid list errors request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	table, err := h.dashboard.ListErrors(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to list errors", err)
		return
	}

	c.JSON(http.StatusOK, table)
}

// getError handles GET /api/dashboard/errors/{id}
// @Summary Get an error
// @Tags errors
// @Produce json
// @Param id path string true "Error id"
// @Success 200 {object} domain.ErrorRecord
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/dashboard/errors/{id} [get]
func (h *Handler) getError(c *gin.Context) {
	id := c.Param("id")

	record, err := h.dashboard.GetError(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to get error", err, zap.String("id", id))
		return
	}

	c.JSON(http.StatusOK, record)
}

// resolveError handles PUT /api/dashboard/errors/{id}/resolve
// @Summary Resolve an error
// @Tags errors
// @Produce json
// @Param id path string true "Error id"
// @Success 200 {object} dto.ResolveResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/dashboard/errors/{id}/resolve [put]
func (h *Handler) resolveError(c *gin.Context) {
	id := c.Param("id")

	resp, err := h.dashboard.ResolveError(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, "Failed to resolve error", err, zap.String("id", id))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// deleteError handles DELETE /api/dashboard/errors/{id}
// @Summary Delete an error
// @Tags errors
// @Param id path string true "Error id"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/dashboard/errors/{id} [delete]
func (h *Handler) deleteError(c *gin.Context) {
	id := c.Param("id")

	if err := h.dashboard.DeleteError(c.Request.Context(), id); err != nil {
		h.respondError(c, "Failed to delete error", err, zap.String("id", id))
		return
	}

	c.Status(http.StatusNoContent)
}

// getMonitoring handles GET /api/dashboard/monitoring
// @Summary Monitoring page
// @Tags monitoring
// @Produce json
// @Success 200 {object} views.Monitoring
// @Router /api/dashboard/monitoring [get]
func (h *Handler) getMonitoring(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Monitoring())
}

// getUptime handles GET /api/dashboard/uptime
// @Summary Uptime page
// @Tags monitoring
// @Produce json
// @Success 200 {object} views.UptimePage
// @Router /api/dashboard/uptime [get]
func (h *Handler) getUptime(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Uptime())
}

// getAnalytics handles GET /api/dashboard/analytics
// @Summary Analytics page
// @Tags analytics
// @Produce json
// @Success 200 {object} views.Analytics
// @Router /api/dashboard/analytics [get]
func (h *Handler) getAnalytics(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Analytics())
}

// getTrends handles GET /api/dashboard/analytics/trends
// @Summary Error trends
// @Tags analytics
// @Produce json
// @Param period query string false "Window" Enums(24h, 7d, 30d)
// @Param group_by query string false "Bucket size" Enums(hour, day)
// @Success 200 {object} views.TrendSummary
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/dashboard/analytics/trends [get]
func (h *Handler) getTrends(c *gin.Context) {
	var req dto.TrendsRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid trends request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	summary, err := h.dashboard.Trends(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to get trends", err,
			zap.String("period", req.Period),
			zap.String("group_by", req.GroupBy))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// getPerformance handles GET /api/dashboard/analytics/performance
// @Summary Performance summary
// @Tags analytics
// @Produce json
// @Success 200 {object} views.PerformanceView
// @Router /api/dashboard/analytics/performance [get]
func (h *Handler) getPerformance(c *gin.Context) {
	c.JSON(http.StatusOK, h.dashboard.Performance())
}

// getAlerts handles GET /api/dashboard/alerts
// @Summary Alert rules and incidents
// @Tags alerts
// @Produce json
// @Success 200 {object} views.Alerts
// @Failure 502 {object} dto.ErrorResponse
// @Router /api/dashboard/alerts [get]
func (h *Handler) getAlerts(c *gin.Context) {
	alerts, err := h.dashboard.Alerts(c.Request.Context())
	if err != nil {
		h.respondError(c, "Failed to get alerts", err)
		return
	}

	c.JSON(http.StatusOK, alerts)
}

// getReport handles GET /api/dashboard/reports
// @Summary Archived observation report
// @Description Aggregate archived stream observations with optional grouping by level, source, hour, or day
// @Tags reports
// @Produce json
// @Param from query int true "Start timestamp (Unix epoch)" example:"1723475612"
// @Param to query int true "End timestamp (Unix epoch)" example:"1723562012"
// @Param group_by query string false "Field to group by" Enums(level, source, hour, day)
// @Param level query string false "Severity" Enums(error, warning, info, debug)
// @Success 200 {object} dto.ReportResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 503 {object} dto.ErrorResponse
// @Router /api/dashboard/reports [get]
func (h *Handler) getReport(c *gin.Context) {
	var req dto.ReportRequest

	if err := c.ShouldBindQuery(&req); err != nil {
		h.log.Warn("Invalid report request", zap.Error(err))
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	response, err := h.dashboard.Report(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, "Failed to get report", err,
			zap.Int64("from", req.From),
			zap.Int64("to", req.To),
			zap.String("group_by", req.GroupBy))
		return
	}

	h.log.Info("Report retrieved",
		zap.Uint64("total_observations", response.TotalObservations),
		zap.Uint64("unique_records", response.UniqueRecords))

	c.JSON(http.StatusOK, response)
}
