package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/megstore/storefront/internal/domain"
)

// AppliedStock records one stock write so it can be reverted.
type AppliedStock struct {
	ProductID     int64
	Quantity      int
	StockQuantity int
	IsAvailable   bool

	before   domain.Product
	previous int
	byDelta  bool
}

// StockAdjuster takes shipped quantities out of catalog stock. All products
// are validated before the first write; a failed write reverts the earlier
// ones in reverse order.
type StockAdjuster struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewStockAdjuster(catalog Catalog, logger *zap.Logger) *StockAdjuster {
	return &StockAdjuster{catalog: catalog, logger: logger}
}

// Apply validates then writes every line in order. Validation failures
// return ErrNotFound or ErrUnavailable with no stock touched.
func (a *StockAdjuster) Apply(ctx context.Context, demand []domain.StockLine) ([]AppliedStock, error) {
	products := make([]domain.Product, len(demand))
	for i, line := range demand {
		product, err := a.catalog.GetProduct(ctx, line.ProductID)
		if err != nil {
			return nil, fmt.Errorf("stock validation of product %d: %w", line.ProductID, err)
		}
		if !product.CanFulfil(line.Quantity) {
			return nil, fmt.Errorf("%w: product %d has %d in stock, %d required",
				domain.ErrUnavailable, line.ProductID, product.StockQuantity, line.Quantity)
		}
		products[i] = *product
	}

	adjuster, byDelta := a.catalog.(StockDeltaAdjuster)
	applied := make([]AppliedStock, 0, len(demand))

	for i, line := range demand {
		write := AppliedStock{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			before:    products[i],
			byDelta:   byDelta,
		}

		var err error
		if byDelta {
			var current int
			write.previous, current, err = adjuster.AdjustStock(ctx, line.ProductID, -line.Quantity)
			write.StockQuantity = current
			write.IsAvailable = current > 0
		} else {
			next := products[i].WithStock(products[i].StockQuantity - line.Quantity)
			err = a.catalog.UpdateStock(ctx, line.ProductID, next.StockQuantity, next.IsAvailable)
			write.StockQuantity = next.StockQuantity
			write.IsAvailable = next.IsAvailable
		}

		if err != nil {
			a.logger.Error("stock update failed, reverting earlier writes",
				zap.Int64("product_id", line.ProductID),
				zap.Int("reverting", len(applied)),
				zap.Error(err),
			)
			failure := fmt.Errorf("%w: stock update of product %d: %w", domain.ErrRemoteFailure, line.ProductID, err)
			return nil, errors.Join(failure, a.Revert(ctx, applied))
		}

		applied = append(applied, write)
	}

	return applied, nil
}

// Revert restores the stock taken by applied, last write first. It keeps
// going past failures and returns them joined.
func (a *StockAdjuster) Revert(ctx context.Context, applied []AppliedStock) error {
	ctx = context.WithoutCancel(ctx)
	adjuster, _ := a.catalog.(StockDeltaAdjuster)

	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		write := applied[i]

		var err error
		if write.byDelta && adjuster != nil {
			_, _, err = adjuster.AdjustStock(ctx, write.ProductID, write.previous-write.StockQuantity)
		} else {
			err = a.catalog.UpdateStock(ctx, write.ProductID, write.before.StockQuantity, write.before.IsAvailable)
		}

		if err != nil {
			a.logger.Error("stock revert failed",
				zap.Int64("product_id", write.ProductID),
				zap.Int("quantity", write.Quantity),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("stock revert of product %d: %w", write.ProductID, err))
			continue
		}

		a.logger.Info("stock reverted",
			zap.Int64("product_id", write.ProductID),
			zap.Int("quantity", write.Quantity),
		)
	}
	return errors.Join(errs...)
}
