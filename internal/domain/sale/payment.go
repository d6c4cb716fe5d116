package sale

import (
	"time"

	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentRecord is one confirmed payment against a sale. Records are
// append-only; the ledger balance is the sum of all records for a sale.
type PaymentRecord struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (PaymentRecord) TableName() string {
	return "payment_records"
}

// NewPaymentRecord creates a confirmed payment entry for a sale
func NewPaymentRecord(saleID uuid.UUID, amount decimal.Decimal) (*PaymentRecord, error) {
	if saleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SALE", "Sale ID cannot be empty")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	return &PaymentRecord{
		ID:        uuid.New(),
		SaleID:    saleID,
		Amount:    amount,
		CreatedAt: time.Now(),
	}, nil
}
