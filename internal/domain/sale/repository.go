package sale

import (
	"context"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	// FindByID finds a sale by its ID with items and returns loaded
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)

	// FindAll lists sales matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)

	// FindByOwner lists sales owned by a user
	FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]Sale, error)

	// Save creates or updates a sale with optimistic version checking.
	// Returns shared.ErrConcurrencyConflict when the stored version moved.
	Save(ctx context.Context, s *Sale) error

	// Delete removes a sale and its line items
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts sales matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}

// PaymentLedger is the read-only payment collaborator. The reconciliation
// core derives the payment state from the amount it reports.
type PaymentLedger interface {
	// AmountPaid returns the cumulative confirmed amount paid for a sale
	AmountPaid(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error)
}
