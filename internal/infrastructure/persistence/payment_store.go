package persistence

import (
	"context"

	applicationsale "github.com/gestion/backend/internal/application/sale"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPaymentStore implements the payment ledger using GORM. Payments are
// stored append-only; the balance is always recomputed from the records.
type GormPaymentStore struct {
	db *gorm.DB
}

// NewGormPaymentStore creates a new GormPaymentStore
func NewGormPaymentStore(db *gorm.DB) *GormPaymentStore {
	return &GormPaymentStore{db: db}
}

// AmountPaid returns the cumulative confirmed amount paid for a sale
func (r *GormPaymentStore) AmountPaid(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&sale.PaymentRecord{}).
		Where("sale_id = ?", saleID).
		Select("SUM(amount)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// Record appends a confirmed payment for a sale
func (r *GormPaymentStore) Record(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal) error {
	record, err := sale.NewPaymentRecord(saleID, amount)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(record).Error
}

// Ensure GormPaymentStore implements PaymentStore
var _ applicationsale.PaymentStore = (*GormPaymentStore)(nil)
