package farmapi

import (
	"context"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

// ListFlocks lists flocks, restricted to one farm when farmID is positive.
func (c *APIClient) ListFlocks(ctx context.Context, farmID int64) (*models.Page[models.Flock], error) {
	page := new(models.Page[models.Flock])
	if err := c.get(ctx, withQuery(c.endpoints.Flocks, idFilter("farm", farmID)), page); err != nil {
		return nil, err
	}
	return page, nil
}

// CreateFlock registers a new flock. A zero current count means no losses yet
// and is set to the initial count.
func (c *APIClient) CreateFlock(ctx context.Context, flock models.Flock) (*models.Flock, error) {
	if flock.CurrentCount == 0 {
		flock.CurrentCount = flock.InitialCount
	}
	if err := flock.Validate(); err != nil {
		return nil, err
	}

	created := new(models.Flock)
	if err := c.post(ctx, c.endpoints.Flocks, flock, created); err != nil {
		return nil, err
	}
	return created, nil
}
