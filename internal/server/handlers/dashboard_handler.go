package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/service/dashboard"
	"github.com/mamadbah2/farmdash/internal/service/reporting"
)

// DashboardHandler serves the computed dashboard views and report actions.
type DashboardHandler struct {
	dashboard *dashboard.Service
	reporting *reporting.Service
	logger    *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(dash *dashboard.Service, reports *reporting.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{dashboard: dash, reporting: reports, logger: logger}
}

func (h *DashboardHandler) Overview(c *gin.Context) {
	view, err := h.dashboard.Overview(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *DashboardHandler) ProductionSummary(c *gin.Context) {
	flockID, ok := optionalID(c, "flock")
	if !ok {
		return
	}
	summary, err := h.dashboard.Production(c.Request.Context(), flockID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) HealthSummary(c *gin.Context) {
	flockID, ok := optionalID(c, "flock")
	if !ok {
		return
	}
	summary, err := h.dashboard.Health(c.Request.Context(), flockID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) Accounting(c *gin.Context) {
	summary, err := h.dashboard.Accounting(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *DashboardHandler) Orders(c *gin.Context) {
	view, err := h.dashboard.Orders(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// Forecast accepts ?days=N; without it the backend default applies.
func (h *DashboardHandler) Forecast(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			badRequest(c, "days must be a positive integer")
			return
		}
		days = n
	}

	forecast, err := h.dashboard.Forecast(c.Request.Context(), days)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, forecast)
}

type exportRequest struct {
	Flock int64 `json:"flock"`
}

// Export appends a flock's production records to Google Sheets.
func (h *DashboardHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Flock <= 0 {
		badRequest(c, "flock must be a positive integer")
		return
	}

	written, err := h.reporting.ExportProduction(c.Request.Context(), req.Flock)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"flock": req.Flock, "rows_written": written})
}

// ListSnapshots returns stored snapshots, newest first (?limit=N).
func (h *DashboardHandler) ListSnapshots(c *gin.Context) {
	limit := int64(10)
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n <= 0 {
			badRequest(c, "limit must be a positive integer")
			return
		}
		limit = n
	}

	snapshots, err := h.reporting.RecentSnapshots(c.Request.Context(), limit)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snapshots)
}

// TakeSnapshot runs the snapshot job on demand. A snapshot that could not be
// stored is still returned, with the storage error.
func (h *DashboardHandler) TakeSnapshot(c *gin.Context) {
	snapshot, err := h.reporting.TakeSnapshot(c.Request.Context())
	if err != nil && snapshot == nil {
		respondError(c, h.logger, err)
		return
	}
	if err != nil {
		h.logger.Warn("snapshot built but not fully stored", zap.Error(err))
		c.JSON(http.StatusAccepted, gin.H{"snapshot": snapshot, "error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"snapshot": snapshot})
}
