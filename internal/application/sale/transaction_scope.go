package sale

import (
	"context"

	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStore extends the read-only payment ledger with the write side used
// when a payment is confirmed for a sale.
type PaymentStore interface {
	sale.PaymentLedger
	// Record appends a confirmed payment for a sale
	Record(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal) error
}

// TransactionScope provides transactional access to the sale and stock
// repositories. Every mutating operation of the reconciliation engine runs
// inside one Execute call: either all repository writes commit, or none do.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to the repositories scoped to
// the current transaction. Stock rows are additionally serialized per
// product through FindByProductForUpdate so two concurrent reservations
// cannot both pass the sufficiency check against a stale count.
type TransactionalRepositories interface {
	// Sales returns the sale repository scoped to the current transaction
	Sales() sale.SaleRepository
	// Stock returns the stock repository scoped to the current transaction
	Stock() stock.StockItemRepository
	// Payments returns the payment store scoped to the current transaction
	Payments() PaymentStore
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Used in tests with in-memory repositories.
type NoOpTransactionScope struct {
	saleRepo    sale.SaleRepository
	stockRepo   stock.StockItemRepository
	paymentRepo PaymentStore
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories
func NewNoOpTransactionScope(
	saleRepo sale.SaleRepository,
	stockRepo stock.StockItemRepository,
	paymentRepo PaymentStore,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		saleRepo:    saleRepo,
		stockRepo:   stockRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// Sales returns the sale repository
func (s *NoOpTransactionScope) Sales() sale.SaleRepository {
	return s.saleRepo
}

// Stock returns the stock repository
func (s *NoOpTransactionScope) Stock() stock.StockItemRepository {
	return s.stockRepo
}

// Payments returns the payment store
func (s *NoOpTransactionScope) Payments() PaymentStore {
	return s.paymentRepo
}
