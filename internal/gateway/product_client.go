package gateway

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/megstore/storefront/internal/domain"
)

// ProductClient is the catalog backed by the product service.
type ProductClient struct {
	client *Client
}

func NewProductClient(client *Client) *ProductClient {
	return &ProductClient{client: client}
}

func (p *ProductClient) GetProduct(ctx context.Context, productID int64) (*domain.Product, error) {
	var product domain.Product
	if err := p.client.Do(ctx, fiber.MethodGet, fmt.Sprintf("/Product/%d", productID), nil, &product); err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return &product, nil
}

// UpdateStock writes the stock level and availability. The product service
// replaces the whole record on PUT, so the current record is read first.
func (p *ProductClient) UpdateStock(ctx context.Context, productID int64, stock int, available bool) error {
	product, err := p.GetProduct(ctx, productID)
	if err != nil {
		return err
	}

	product.StockQuantity = stock
	product.IsAvailable = available
	return p.put(ctx, productID, product)
}

// AdjustStock applies delta to the stock level read right before the PUT,
// flooring at zero. The product service has no conditional update, so a
// write landing between that read and the PUT is still lost.
func (p *ProductClient) AdjustStock(ctx context.Context, productID int64, delta int) (previous, current int, err error) {
	product, err := p.GetProduct(ctx, productID)
	if err != nil {
		return 0, 0, err
	}

	next := product.WithStock(product.StockQuantity + delta)
	if err := p.put(ctx, productID, &next); err != nil {
		return 0, 0, err
	}
	return product.StockQuantity, next.StockQuantity, nil
}

func (p *ProductClient) put(ctx context.Context, productID int64, product *domain.Product) error {
	if err := p.client.Do(ctx, fiber.MethodPut, fmt.Sprintf("/Product/%d", productID), product, nil); err != nil {
		return fmt.Errorf("update product %d stock: %w", productID, err)
	}
	return nil
}
