package farmapi

import (
	"context"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

func (c *APIClient) ListHealthRecords(ctx context.Context, flockID int64) (*models.Page[models.HealthRecord], error) {
	page := new(models.Page[models.HealthRecord])
	if err := c.get(ctx, withQuery(c.endpoints.HealthRecords, idFilter("flock", flockID)), page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *APIClient) CreateHealthRecord(ctx context.Context, record models.HealthRecord) (*models.HealthRecord, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}

	created := new(models.HealthRecord)
	if err := c.post(ctx, c.endpoints.HealthRecords, record, created); err != nil {
		return nil, err
	}
	return created, nil
}
