package sale

import (
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeSale = "Sale"

// Event type constants
const (
	EventTypeSaleCreated         = "SaleCreated"
	EventTypeLineItemAdded       = "LineItemAdded"
	EventTypeQuantityChanged     = "QuantityChanged"
	EventTypeLineItemRemoved     = "LineItemRemoved"
	EventTypeReturnProcessed     = "ReturnProcessed"
	EventTypePaymentRegistered   = "PaymentRegistered"
	EventTypeCompletionRequested = "CompletionRequested"
	EventTypeSaleApproved        = "SaleApproved"
	EventTypeSaleRejected        = "SaleRejected"
	EventTypeSaleDeleted         = "SaleDeleted"
)

// SaleCreatedEvent is raised when a new sale is created
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID `json:"sale_id"`
	OwnerID      uuid.UUID `json:"owner_id"`
	CustomerName string    `json:"customer_name"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		OwnerID:         s.OwnerID,
		CustomerName:    s.CustomerName,
	}
}

// EventType returns the event type name
func (e *SaleCreatedEvent) EventType() string {
	return EventTypeSaleCreated
}

// LineItemAddedEvent is raised when a product is added to a sale
type LineItemAddedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewLineItemAddedEvent creates a new LineItemAddedEvent
func NewLineItemAddedEvent(s *Sale, item *LineItem) *LineItemAddedEvent {
	return &LineItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLineItemAdded, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		ProductID:       item.ProductID,
		ProductName:     item.ProductName,
		Quantity:        item.Quantity,
		UnitPrice:       item.UnitPrice,
		TotalAmount:     s.TotalAmount,
	}
}

// EventType returns the event type name
func (e *LineItemAddedEvent) EventType() string {
	return EventTypeLineItemAdded
}

// QuantityChangedEvent is raised when a line item quantity changes.
// Delta is positive when stock was reserved, negative when stock was freed.
type QuantityChangedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	ProductID   uuid.UUID       `json:"product_id"`
	Quantity    int64           `json:"quantity"`
	Delta       int64           `json:"delta"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewQuantityChangedEvent creates a new QuantityChangedEvent
func NewQuantityChangedEvent(s *Sale, item *LineItem, delta int64) *QuantityChangedEvent {
	return &QuantityChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuantityChanged, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		ProductID:       item.ProductID,
		Quantity:        item.Quantity,
		Delta:           delta,
		TotalAmount:     s.TotalAmount,
	}
}

// EventType returns the event type name
func (e *QuantityChangedEvent) EventType() string {
	return EventTypeQuantityChanged
}

// LineItemRemovedEvent is raised when a line item is removed from a sale
type LineItemRemovedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	ProductID     uuid.UUID       `json:"product_id"`
	FreedQuantity int64           `json:"freed_quantity"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// NewLineItemRemovedEvent creates a new LineItemRemovedEvent
func NewLineItemRemovedEvent(s *Sale, item *LineItem, freed int64) *LineItemRemovedEvent {
	return &LineItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLineItemRemoved, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		ProductID:       item.ProductID,
		FreedQuantity:   freed,
		TotalAmount:     s.TotalAmount,
	}
}

// EventType returns the event type name
func (e *LineItemRemovedEvent) EventType() string {
	return EventTypeLineItemRemoved
}

// ReturnInfo carries one return record inside a ReturnProcessedEvent
type ReturnInfo struct {
	ReturnID         uuid.UUID       `json:"return_id"`
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityReturned int64           `json:"quantity_returned"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
}

// ReturnProcessedEvent is raised when a return batch is applied to a sale
type ReturnProcessedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	Returns     []ReturnInfo    `json:"returns"`
	Reason      string          `json:"reason"`
	ReturnedAt  time.Time       `json:"returned_at"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

// NewReturnProcessedEvent creates a new ReturnProcessedEvent
func NewReturnProcessedEvent(s *Sale, returns []Return) *ReturnProcessedEvent {
	infos := make([]ReturnInfo, len(returns))
	for i, r := range returns {
		infos[i] = ReturnInfo{
			ReturnID:         r.ID,
			ProductID:        r.ProductID,
			QuantityReturned: r.QuantityReturned,
			RefundAmount:     r.RefundAmount,
		}
	}

	event := &ReturnProcessedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeReturnProcessed, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Returns:         infos,
		TotalAmount:     s.TotalAmount,
	}
	if len(returns) > 0 {
		event.Reason = returns[0].Reason
		event.ReturnedAt = returns[0].ReturnedAt
	}
	return event
}

// EventType returns the event type name
func (e *ReturnProcessedEvent) EventType() string {
	return EventTypeReturnProcessed
}

// PaymentRegisteredEvent is raised when a payment is confirmed for a sale
type PaymentRegisteredEvent struct {
	shared.BaseDomainEvent
	SaleID       uuid.UUID       `json:"sale_id"`
	Amount       decimal.Decimal `json:"amount"`
	PaidAmount   decimal.Decimal `json:"paid_amount"`
	PaymentState PaymentState    `json:"payment_state"`
}

// NewPaymentRegisteredEvent creates a new PaymentRegisteredEvent
func NewPaymentRegisteredEvent(s *Sale, amount decimal.Decimal) *PaymentRegisteredEvent {
	return &PaymentRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentRegistered, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Amount:          amount,
		PaidAmount:      s.PaidAmount,
		PaymentState:    s.PaymentState,
	}
}

// EventType returns the event type name
func (e *PaymentRegisteredEvent) EventType() string {
	return EventTypePaymentRegistered
}

// CompletionRequestedEvent is raised when a sale is submitted for approval
type CompletionRequestedEvent struct {
	shared.BaseDomainEvent
	SaleID  uuid.UUID `json:"sale_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewCompletionRequestedEvent creates a new CompletionRequestedEvent
func NewCompletionRequestedEvent(s *Sale) *CompletionRequestedEvent {
	return &CompletionRequestedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompletionRequested, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		OwnerID:         s.OwnerID,
	}
}

// EventType returns the event type name
func (e *CompletionRequestedEvent) EventType() string {
	return EventTypeCompletionRequested
}

// SaleApprovedEvent is raised when a completion request is approved.
// The sale is terminal from this point on.
type SaleApprovedEvent struct {
	shared.BaseDomainEvent
	SaleID      uuid.UUID       `json:"sale_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes,omitempty"`
}

// NewSaleApprovedEvent creates a new SaleApprovedEvent
func NewSaleApprovedEvent(s *Sale) *SaleApprovedEvent {
	return &SaleApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleApproved, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		TotalAmount:     s.TotalAmount,
		Notes:           s.ReviewNotes,
	}
}

// EventType returns the event type name
func (e *SaleApprovedEvent) EventType() string {
	return EventTypeSaleApproved
}

// SaleRejectedEvent is raised when a completion request is rejected
type SaleRejectedEvent struct {
	shared.BaseDomainEvent
	SaleID uuid.UUID `json:"sale_id"`
	Notes  string    `json:"notes"`
}

// NewSaleRejectedEvent creates a new SaleRejectedEvent
func NewSaleRejectedEvent(s *Sale) *SaleRejectedEvent {
	return &SaleRejectedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleRejected, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		Notes:           s.ReviewNotes,
	}
}

// EventType returns the event type name
func (e *SaleRejectedEvent) EventType() string {
	return EventTypeSaleRejected
}

// SaleDeletedEvent is raised when a sale is deleted and its stock released
type SaleDeletedEvent struct {
	shared.BaseDomainEvent
	SaleID  uuid.UUID `json:"sale_id"`
	OwnerID uuid.UUID `json:"owner_id"`
}

// NewSaleDeletedEvent creates a new SaleDeletedEvent
func NewSaleDeletedEvent(s *Sale) *SaleDeletedEvent {
	return &SaleDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleDeleted, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		OwnerID:         s.OwnerID,
	}
}

// EventType returns the event type name
func (e *SaleDeletedEvent) EventType() string {
	return EventTypeSaleDeleted
}
