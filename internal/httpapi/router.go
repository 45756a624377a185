// Package httpapi exposes the HACCP core and facility logs over HTTP with gin.
package httpapi

import (
	"expvar"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"haccpcore/internal/core"
	"haccpcore/internal/export"
	"haccpcore/internal/metrics"
)

// Options wires the router's dependencies. Service is required.
type Options struct {
	Service        *core.Service
	Exporter       *export.Exporter
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
	JWTSecret      []byte
	JWTIssuer      string
	AllowedOrigins []string
}

type handlers struct {
	svc      *core.Service
	exporter *export.Exporter
	logger   *slog.Logger
}

// NewRouter builds the gin engine serving /api/v1, /healthz, /debug/vars and
// /metrics.
func NewRouter(opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &handlers{svc: opts.Service, exporter: opts.Exporter, logger: logger}

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger, opts.Metrics))

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	if len(opts.AllowedOrigins) == 0 || (len(opts.AllowedOrigins) == 1 && opts.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.AllowedOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/debug/vars", gin.WrapH(expvar.Handler()))
	if opts.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := router.Group("/api/v1")
	api.GET("/templates", h.listTemplates)
	api.GET("/templates/:id", h.getTemplate)

	secured := api.Group("/")
	secured.Use(Authenticate(opts.JWTSecret, opts.JWTIssuer))
	{
		plans := secured.Group("/plans")
		plans.GET("", h.listPlans)
		plans.POST("", h.createPlan)
		plans.POST("/from-template", h.createPlanFromTemplate)
		plans.GET("/:planId", h.getPlan)
		plans.PUT("/:planId", h.updatePlan)
		plans.DELETE("/:planId", h.deletePlan)
		plans.GET("/:planId/status", h.planStatus)

		plans.POST("/:planId/hazards", h.addHazard)
		plans.PUT("/:planId/hazards/:hazardId", h.updateHazard)
		plans.DELETE("/:planId/hazards/:hazardId", h.deleteHazard)

		plans.POST("/:planId/ccps", h.addCCP)
		plans.PUT("/:planId/ccps/:ccpId", h.updateCCP)
		plans.DELETE("/:planId/ccps/:ccpId", h.deleteCCP)

		logs := secured.Group("/monitoring-logs")
		logs.GET("", h.listMonitoringLogs)
		logs.POST("", h.addMonitoringLog)
		logs.GET("/:logId", h.getMonitoringLog)
		logs.POST("/:logId/verify", h.verifyMonitoringLog)

		actions := secured.Group("/corrective-actions")
		actions.GET("", h.listCorrectiveActions)
		actions.POST("", h.addCorrectiveAction)
		actions.GET("/:actionId", h.getCorrectiveAction)
		actions.POST("/:actionId/verify", h.verifyCorrectiveAction)
		actions.POST("/:actionId/follow-up", h.completeFollowUp)

		equipment := secured.Group("/equipment")
		equipment.GET("", h.listEquipment)
		equipment.POST("", h.addEquipment)
		equipment.GET("/:equipmentId", h.getEquipment)
		equipment.PUT("/:equipmentId", h.updateEquipment)
		equipment.DELETE("/:equipmentId", h.deleteEquipment)

		secured.GET("/temperature-logs", h.listTemperatureLogs)
		secured.POST("/temperature-logs", h.addTemperatureLog)

		alerts := secured.Group("/alerts")
		alerts.GET("", h.listAlerts)
		alerts.POST("/:alertId/read", h.markAlertRead)
		alerts.DELETE("/:alertId", h.clearAlert)

		cooling := secured.Group("/cooling-logs")
		cooling.GET("", h.listCoolingLogs)
		cooling.POST("", h.startCoolingLog)
		cooling.GET("/:coolingId", h.getCoolingLog)
		cooling.POST("/:coolingId/readings", h.addCoolingReading)
		cooling.POST("/:coolingId/complete", h.completeCoolingLog)

		checklists := secured.Group("/checklists")
		checklists.GET("", h.listChecklists)
		checklists.POST("", h.addChecklist)
		checklists.GET("/:checklistId", h.getChecklist)
		checklists.POST("/:checklistId/items", h.addChecklistItem)
		checklists.PUT("/:checklistId/items/:itemId", h.updateChecklistItem)

		tasks := secured.Group("/sanitation-tasks")
		tasks.GET("", h.listSanitationTasks)
		tasks.POST("", h.addSanitationTask)
		tasks.GET("/:taskId", h.getSanitationTask)
		tasks.PUT("/:taskId", h.updateSanitationTask)
		tasks.DELETE("/:taskId", h.deleteSanitationTask)
		tasks.POST("/:taskId/complete", h.completeSanitationTask)
		secured.GET("/sanitation-logs", h.listSanitationLogs)

		secured.GET("/dashboard", h.dashboard)

		if opts.Exporter != nil {
			secured.GET("/exports", h.listExports)
			secured.POST("/exports", h.createExport)
			secured.GET("/exports/preview", h.previewExport)
		}
	}
	return router
}

func requestLogger(logger *slog.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		m.IncrementRequest(route, c.Request.Method, status)
		logger.Debug("http request",
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration", time.Since(start),
		)
	}
}
