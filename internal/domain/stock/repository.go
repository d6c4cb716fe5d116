package stock

import (
	"context"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockItemRepository defines the interface for stock persistence.
// Implementations must serialize access per product so two concurrent
// reservations cannot both pass the sufficiency check against a stale count.
type StockItemRepository interface {
	// FindByProduct finds the stock record for a product
	FindByProduct(ctx context.Context, productID uuid.UUID) (*StockItem, error)

	// FindByProductForUpdate finds the stock record and locks the row for the
	// duration of the surrounding transaction
	FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*StockItem, error)

	// FindAll lists stock records matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]StockItem, error)

	// Save creates or updates a stock record with optimistic version checking
	Save(ctx context.Context, item *StockItem) error

	// Count counts stock records matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
