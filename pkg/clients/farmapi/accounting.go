package farmapi

import (
	"context"

	"github.com/mamadbah2/farmdash/internal/domain/models"
)

func (c *APIClient) ListSales(ctx context.Context) (*models.Page[models.Sale], error) {
	page := new(models.Page[models.Sale])
	if err := c.get(ctx, c.endpoints.Sales, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *APIClient) ListCosts(ctx context.Context) (*models.Page[models.Cost], error) {
	page := new(models.Page[models.Cost])
	if err := c.get(ctx, c.endpoints.Costs, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *APIClient) ListOrders(ctx context.Context) (*models.Page[models.ChickOrder], error) {
	page := new(models.Page[models.ChickOrder])
	if err := c.get(ctx, c.endpoints.Orders, page); err != nil {
		return nil, err
	}
	return page, nil
}

func (c *APIClient) CreateOrder(ctx context.Context, order models.ChickOrder) (*models.ChickOrder, error) {
	if err := order.Validate(); err != nil {
		return nil, err
	}

	created := new(models.ChickOrder)
	if err := c.post(ctx, c.endpoints.Orders, order, created); err != nil {
		return nil, err
	}
	return created, nil
}
