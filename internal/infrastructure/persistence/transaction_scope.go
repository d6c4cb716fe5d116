package persistence

import (
	"context"

	applicationsale "github.com/gestion/backend/internal/application/sale"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/stock"
	"gorm.io/gorm"
)

// GormTransactionScope opens a database transaction per Execute call and
// hands the callback repositories bound to that transaction. Row locks taken
// through FindByProductForUpdate are held until Execute returns.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a transaction scope over the database
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos applicationsale.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTransactionalRepositories{tx: tx})
	})
}

// gormTransactionalRepositories binds the repositories to one transaction
type gormTransactionalRepositories struct {
	tx *gorm.DB
}

func (r *gormTransactionalRepositories) Sales() sale.SaleRepository {
	return NewGormSaleRepository(r.tx)
}

func (r *gormTransactionalRepositories) Stock() stock.StockItemRepository {
	return NewGormStockItemRepository(r.tx)
}

func (r *gormTransactionalRepositories) Payments() applicationsale.PaymentStore {
	return NewGormPaymentStore(r.tx)
}

// Ensure GormTransactionScope implements TransactionScope
var _ applicationsale.TransactionScope = (*GormTransactionScope)(nil)
