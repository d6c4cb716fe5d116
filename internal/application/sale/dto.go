package sale

import (
	"time"

	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateSaleItemRequest is one line of a new sale
type CreateSaleItemRequest struct {
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// CreateSaleRequest carries the data to create a sale
type CreateSaleRequest struct {
	CustomerName string
	Items        []CreateSaleItemRequest
}

// ProcessReturnItemRequest is one line of a return batch
type ProcessReturnItemRequest struct {
	ProductID uuid.UUID
	Quantity  int64
}

// ProcessReturnRequest carries a batch return request
type ProcessReturnRequest struct {
	Items          []ProcessReturnItemRequest
	Reason         string
	ReturnedAt     time.Time
	IdempotencyKey string
}

// SaleListFilter holds list query parameters
type SaleListFilter struct {
	Page       int
	PageSize   int
	OwnerID    *uuid.UUID
	Completion *sale.CompletionStatus
}

// LineItemResponse is the API representation of a line item
type LineItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Locked      bool            `json:"locked"`
}

// ReturnResponse is the API representation of a return record
type ReturnResponse struct {
	ID               uuid.UUID       `json:"id"`
	ProductID        uuid.UUID       `json:"product_id"`
	QuantityReturned int64           `json:"quantity_returned"`
	RefundAmount     decimal.Decimal `json:"refund_amount"`
	Reason           string          `json:"reason"`
	ReturnedAt       time.Time       `json:"returned_at"`
}

// SaleResponse is the API representation of a sale
type SaleResponse struct {
	ID                    uuid.UUID             `json:"id"`
	OwnerID               uuid.UUID             `json:"owner_id"`
	CustomerName          string                `json:"customer_name"`
	Items                 []LineItemResponse    `json:"items"`
	Returns               []ReturnResponse      `json:"returns"`
	TotalAmount           decimal.Decimal       `json:"total_amount"`
	PaidAmount            decimal.Decimal       `json:"paid_amount"`
	AmountDue             decimal.Decimal       `json:"amount_due"`
	PaymentState          sale.PaymentState     `json:"payment_state"`
	Completion            sale.CompletionStatus `json:"completion_status"`
	CompletionRequestedAt *time.Time            `json:"completion_requested_at,omitempty"`
	CompletionDecidedAt   *time.Time            `json:"completion_decided_at,omitempty"`
	ReviewNotes           string                `json:"review_notes,omitempty"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// StockItemResponse is the API representation of a stock record
type StockItemResponse struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	RemainingQuantity int64     `json:"remaining_quantity"`
}

// ToSaleResponse converts a Sale domain entity to its API representation
func ToSaleResponse(s *sale.Sale) SaleResponse {
	items := make([]LineItemResponse, len(s.Items))
	for i, item := range s.Items {
		items[i] = LineItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
			Locked:      item.Locked,
		}
	}

	returns := make([]ReturnResponse, len(s.Returns))
	for i, r := range s.Returns {
		returns[i] = ReturnResponse{
			ID:               r.ID,
			ProductID:        r.ProductID,
			QuantityReturned: r.QuantityReturned,
			RefundAmount:     r.RefundAmount,
			Reason:           r.Reason,
			ReturnedAt:       r.ReturnedAt,
		}
	}

	return SaleResponse{
		ID:                    s.ID,
		OwnerID:               s.OwnerID,
		CustomerName:          s.CustomerName,
		Items:                 items,
		Returns:               returns,
		TotalAmount:           s.TotalAmount,
		PaidAmount:            s.PaidAmount,
		AmountDue:             s.AmountDue(),
		PaymentState:          s.PaymentState,
		Completion:            s.Completion,
		CompletionRequestedAt: s.CompletionRequestedAt,
		CompletionDecidedAt:   s.CompletionDecidedAt,
		ReviewNotes:           s.ReviewNotes,
		CreatedAt:             s.CreatedAt,
		UpdatedAt:             s.UpdatedAt,
	}
}

// ToStockItemResponse converts a StockItem to its API representation
func ToStockItemResponse(item *stock.StockItem) StockItemResponse {
	return StockItemResponse{
		ProductID:         item.ProductID,
		ProductName:       item.ProductName,
		RemainingQuantity: item.RemainingQuantity,
	}
}
