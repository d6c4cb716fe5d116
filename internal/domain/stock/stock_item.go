package stock

import (
	"fmt"
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// StockItem is the authoritative remaining-quantity counter for one product.
// It is the aggregate root for stock operations; quantity only moves through
// Reserve and Release so every change is accounted for.
type StockItem struct {
	shared.BaseAggregateRoot
	ProductID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	ProductName       string    `gorm:"type:varchar(200);not null"`
	RemainingQuantity int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (StockItem) TableName() string {
	return "stock_items"
}

// NewStockItem creates a stock record for a product with an initial quantity
func NewStockItem(productID uuid.UUID, productName string, initialQuantity int64) (*StockItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if initialQuantity < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Initial quantity cannot be negative")
	}

	item := &StockItem{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		ProductName:       productName,
		RemainingQuantity: initialQuantity,
	}

	return item, nil
}

// Reserve removes quantity from the remaining stock.
// Fails before any mutation when the remaining stock is insufficient.
func (s *StockItem) Reserve(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Reserve quantity must be positive")
	}
	if s.RemainingQuantity < quantity {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for product %s: requested %d, remaining %d", s.ProductName, quantity, s.RemainingQuantity))
	}

	s.RemainingQuantity -= quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockReservedEvent(s, quantity))

	return nil
}

// Release returns quantity to the remaining stock. Used when a line item is
// removed or its quantity reduced before any return locks it. Returned units
// never come back through here: they leave sellable inventory for good.
func (s *StockItem) Release(quantity int64) error {
	if quantity <= 0 {
		return shared.NewDomainError(shared.CodeInvalidQuantity, "Release quantity must be positive")
	}

	s.RemainingQuantity += quantity
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewStockReleasedEvent(s, quantity))

	return nil
}

// CanFulfill returns true if the remaining stock covers the given quantity
func (s *StockItem) CanFulfill(quantity int64) bool {
	return s.RemainingQuantity >= quantity
}

// HasStock returns true if any stock remains
func (s *StockItem) HasStock() bool {
	return s.RemainingQuantity > 0
}
