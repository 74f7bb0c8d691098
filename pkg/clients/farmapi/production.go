package farmapi

import (
	"context"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

func (c *APIClient) ListProductionRecords(ctx context.Context, flockID int64) (*models.Page[models.ProductionRecord], error) {
	page := new(models.Page[models.ProductionRecord])
	if err := c.get(ctx, withQuery(c.endpoints.ProductionRecords, idFilter("flock", flockID)), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *APIClient) CreateProductionRecord(ctx context.Context, record models.ProductionRecord) (*models.ProductionRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	created := new(models.ProductionRecord)
	if err := c.post(ctx, c.endpoints.ProductionRecords, record, created); err != nil {
		return nil, err
	}
	return created, nil
}
