package farmapi

import (
	"context"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

func (c *APIClient) ListFarms(ctx context.Context) (*models.Page[models.Farm], error) {
	page := new(models.Page[models.Farm])
	if err := c.get(ctx, c.endpoints.Farms, page); err != nil {
		return nil, err
	}
	return page, nil
}

// CreateFarm validates the farm locally before posting it.
func (c *APIClient) CreateFarm(ctx context.Context, farm models.Farm) (*models.Farm, error) {
	if err := farm.Validate(); err != nil {
		return nil, err
	}

	created := new(models.Farm)
	if err := c.post(ctx, c.endpoints.Farms, farm, created); err != nil {
		return nil, err
	}
	return created, nil
}

func (c *APIClient) UpdateFarm(ctx context.Context, id int64, farm models.Farm) (*models.Farm, error) {
	if err := farm.Validate(); err != nil {
		return nil, err
	}

	updated := new(models.Farm)
	if err := c.put(ctx, itemPath(c.endpoints.Farms, id), farm, updated); err != nil {
		return nil, err
	}
	return updated, nil
}
