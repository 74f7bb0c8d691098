package farmapi

import (
	"context"
	"strconv"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

func (c *APIClient) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := new(models.DashboardStats)
	if err := c.get(ctx, c.endpoints.DashboardStats, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// ProductionReport queries the production report with params encoded in the
// order given.
func (c *APIClient) ProductionReport(ctx context.Context, params Params) (models.ProductionReport, error) {
	var report models.ProductionReport
	if err := c.get(ctx, withQuery(c.endpoints.ProductionReport, params), &report); err != nil {
		return nil, err
	}
	return report, nil
}

// FeedForecast predicts tomorrow's feed need from the last days entries; a
// non-positive days keeps the backend default.
func (c *APIClient) FeedForecast(ctx context.Context, days int) (*models.FeedForecast, error) {
	var params Params
	if days > 0 {
		params = params.Add("days", strconv.Itoa(days))
	}

	forecast := new(models.FeedForecast)
	if err := c.get(ctx, withQuery(c.endpoints.FeedForecast, params), forecast); err != nil {
		return nil, err
	}
	return forecast, nil
}
