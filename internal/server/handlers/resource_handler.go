package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmdash/internal/domain/models"
	"github.com/mamadbah2/farmdash/internal/session"
	"github.com/mamadbah2/farmdash/pkg/clients/farmapi"
)

// ResourceHandler proxies farm, flock and record operations to the backend
// through the session.
type ResourceHandler struct {
	session *session.Session
	logger  *zap.Logger
}

// NewResourceHandler constructs the HTTP handler adapter.
func NewResourceHandler(sess *session.Session, logger *zap.Logger) *ResourceHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceHandler{session: sess, logger: logger}
}

// serve runs fn through the session and writes its result with status.
func serve[T any](h *ResourceHandler, c *gin.Context, status int, fn func(ctx context.Context, client farmapi.Client) (T, error)) {
	result, err := session.Call(c.Request.Context(), h.session, fn)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, result)
}

func (h *ResourceHandler) ListFarms(c *gin.Context) {
	serve(h, c, http.StatusOK, func(ctx context.Context, client farmapi.Client) (*models.Page[models.Farm], error) {
		return client.ListFarms(ctx)
	})
}

func (h *ResourceHandler) CreateFarm(c *gin.Context) {
	var farm models.Farm
	if err := c.ShouldBindJSON(&farm); err != nil {
		badRequest(c, "invalid farm payload")
		return
	}
	serve(h, c, http.StatusCreated, func(ctx context.Context, client farmapi.Client) (*models.Farm, error) {
		return client.CreateFarm(ctx, farm)
	})
}

func (h *ResourceHandler) UpdateFarm(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "farm id must be a positive integer")
		return
	}

	var farm models.Farm
	if err := c.ShouldBindJSON(&farm); err != nil {
		badRequest(c, "invalid farm payload")
		return
	}
	serve(h, c, http.StatusOK, func(ctx context.Context, client farmapi.Client) (*models.Farm, error) {
		return client.UpdateFarm(ctx, id, farm)
	})
}

// ListFlocks accepts an optional ?farm= filter.
func (h *ResourceHandler) ListFlocks(c *gin.Context) {
	farmID, ok := optionalID(c, "farm")
	if !ok {
		return
	}
	serve(h, c, http.StatusOK, func(ctx context.Context, client farmapi.Client) (*models.Page[models.Flock], error) {
		return client.ListFlocks(ctx, farmID)
	})
}

func (h *ResourceHandler) CreateFlock(c *gin.Context) {
	var flock models.Flock
	if err := c.ShouldBindJSON(&flock); err != nil {
		badRequest(c, "invalid flock payload")
		return
	}
	serve(h, c, http.StatusCreated, func(ctx context.Context, client farmapi.Client) (*models.Flock, error) {
		return client.CreateFlock(ctx, flock)
	})
}

// ListHealthRecords accepts an optional ?flock= filter.
func (h *ResourceHandler) ListHealthRecords(c *gin.Context) {
	flockID, ok := optionalID(c, "flock")
	if !ok {
		return
	}
	serve(h, c, http.StatusOK, func(ctx context.Context, client farmapi.Client) (*models.Page[models.HealthRecord], error) {
		return client.ListHealthRecords(ctx, flockID)
	})
}

func (h *ResourceHandler) CreateHealthRecord(c *gin.Context) {
	var record models.HealthRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		badRequest(c, "invalid health record payload")
		return
	}
	serve(h, c, http.StatusCreated, func(ctx context.Context, client farmapi.Client) (*models.HealthRecord, error) {
		return client.CreateHealthRecord(ctx, record)
	})
}

// ListProductionRecords accepts an optional ?flock= filter.
func (h *ResourceHandler) ListProductionRecords(c *gin.Context) {
	flockID, ok := optionalID(c, "flock")
	if !ok {
		return
	}
	serve(h, c, http.StatusOK, func(ctx context.Context, client farmapi.Client) (*models.Page[models.ProductionRecord], error) {
		return client.ListProductionRecords(ctx, flockID)
	})
}

func (h *ResourceHandler) CreateProductionRecord(c *gin.Context) {
	var record models.ProductionRecord
	if err := c.ShouldBindJSON(&record); err != nil {
		badRequest(c, "invalid production record payload")
		return
	}
	serve(h, c, http.StatusCreated, func(ctx context.Context, client farmapi.Client) (*models.ProductionRecord, error) {
		return client.CreateProductionRecord(ctx, record)
	})
}

func (h *ResourceHandler) CreateOrder(c *gin.Context) {
	var order models.ChickOrder
	if err := c.ShouldBindJSON(&order); err != nil {
		badRequest(c, "invalid order payload")
		return
	}
	serve(h, c, http.StatusCreated, func(ctx context.Context, client farmapi.Client) (*models.ChickOrder, error) {
		return client.CreateOrder(ctx, order)
	})
}

// DashboardStats passes the backend aggregate through unchanged.
func (h *ResourceHandler) DashboardStats(c *gin.Context) {
	serve(h, c, http.StatusOK, func(ctx context.Context, client farmapi.Client) (*models.DashboardStats, error) {
		return client.DashboardStats(ctx)
	})
}

// ProductionReport forwards the query string to the backend in its original order.
func (h *ResourceHandler) ProductionReport(c *gin.Context) {
	params, err := orderedParams(c.Request.URL.RawQuery)
	if err != nil {
		badRequest(c, "invalid query string")
		return
	}
	serve(h, c, http.StatusOK, func(ctx context.Context, client farmapi.Client) (models.ProductionReport, error) {
		return client.ProductionReport(ctx, params)
	})
}
