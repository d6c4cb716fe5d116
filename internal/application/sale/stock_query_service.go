package sale

import (
	"context"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/stock"
	"github.com/google/uuid"
)

// StockQueryService serves the read side of the stock ledger. Reads run
// outside the transaction scope; the counters they report are a snapshot.
type StockQueryService struct {
	stockRepo stock.StockItemRepository
}

// NewStockQueryService creates a new StockQueryService
func NewStockQueryService(stockRepo stock.StockItemRepository) *StockQueryService {
	return &StockQueryService{stockRepo: stockRepo}
}

// GetByProduct returns the stock record for a product
func (s *StockQueryService) GetByProduct(ctx context.Context, productID uuid.UUID) (*StockItemResponse, error) {
	item, err := s.stockRepo.FindByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	resp := ToStockItemResponse(item)
	return &resp, nil
}

// List returns stock records matching the filter with the total count
func (s *StockQueryService) List(ctx context.Context, filter shared.Filter) ([]StockItemResponse, int64, error) {
	items, err := s.stockRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.stockRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StockItemResponse, len(items))
	for i := range items {
		responses[i] = ToStockItemResponse(&items[i])
	}
	return responses, total, nil
}
