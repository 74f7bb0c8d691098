package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Session   *handlers.SessionHandler
	Resources *handlers.ResourceHandler
	Dashboard *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares. Metrics
// are registered on reg and served from /metrics.
func New(h Handlers, reg *prometheus.Registry, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	if reg != nil {
		r.Use(metricsMiddleware(newHTTPMetrics(reg)))
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	sess := api.Group("/session")
	sess.GET("", h.Session.Get)
	sess.POST("/login", h.Session.Login)
	sess.POST("/register", h.Session.Register)
	sess.POST("/logout", h.Session.Logout)
	sess.POST("/validate", h.Session.Validate)

	api.GET("/dashboard", h.Dashboard.Overview)

	api.GET("/farms", h.Resources.ListFarms)
	api.POST("/farms", h.Resources.CreateFarm)
	api.PUT("/farms/:id", h.Resources.UpdateFarm)

	api.GET("/flocks", h.Resources.ListFlocks)
	api.POST("/flocks", h.Resources.CreateFlock)

	api.GET("/health/records", h.Resources.ListHealthRecords)
	api.POST("/health/records", h.Resources.CreateHealthRecord)
	api.GET("/health/summary", h.Dashboard.HealthSummary)

	api.GET("/production/records", h.Resources.ListProductionRecords)
	api.POST("/production/records", h.Resources.CreateProductionRecord)
	api.GET("/production/summary", h.Dashboard.ProductionSummary)

	api.GET("/accounting", h.Dashboard.Accounting)
	api.GET("/orders", h.Dashboard.Orders)
	api.POST("/orders", h.Resources.CreateOrder)
	api.GET("/forecast", h.Dashboard.Forecast)

	api.GET("/reports/dashboard", h.Resources.DashboardStats)
	api.GET("/reports/production", h.Resources.ProductionReport)
	api.POST("/reports/export", h.Dashboard.Export)

	api.GET("/snapshots", h.Dashboard.ListSnapshots)
	api.POST("/snapshots", h.Dashboard.TakeSnapshot)

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
