package stock

import (
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeStockItem = "StockItem"

// Event type constants
const (
	EventTypeStockReserved = "StockReserved"
	EventTypeStockReleased = "StockReleased"
)

// StockReservedEvent is raised when stock is taken out of the remaining pool
type StockReservedEvent struct {
	shared.BaseDomainEvent
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	Quantity          int64     `json:"quantity"`
	RemainingQuantity int64     `json:"remaining_quantity"`
}

// NewStockReservedEvent creates a new StockReservedEvent
func NewStockReservedEvent(item *StockItem, quantity int64) *StockReservedEvent {
	return &StockReservedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockReserved, AggregateTypeStockItem, item.ID),
		ProductID:         item.ProductID,
		ProductName:       item.ProductName,
		Quantity:          quantity,
		RemainingQuantity: item.RemainingQuantity,
	}
}

// EventType returns the event type name
func (e *StockReservedEvent) EventType() string {
	return EventTypeStockReserved
}

// StockReleasedEvent is raised when stock returns to the remaining pool
type StockReleasedEvent struct {
	shared.BaseDomainEvent
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	Quantity          int64     `json:"quantity"`
	RemainingQuantity int64     `json:"remaining_quantity"`
}

// NewStockReleasedEvent creates a new StockReleasedEvent
func NewStockReleasedEvent(item *StockItem, quantity int64) *StockReleasedEvent {
	return &StockReleasedEvent{
		BaseDomainEvent:   shared.NewBaseDomainEvent(EventTypeStockReleased, AggregateTypeStockItem, item.ID),
		ProductID:         item.ProductID,
		ProductName:       item.ProductName,
		Quantity:          quantity,
		RemainingQuantity: item.RemainingQuantity,
	}
}

// EventType returns the event type name
func (e *StockReleasedEvent) EventType() string {
	return EventTypeStockReleased
}
