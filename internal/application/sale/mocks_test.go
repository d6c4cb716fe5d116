package sale

import (
	"context"
	"errors"
	"time"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
	"github.com/gestion/backend/internal/domain/stock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockSaleRepository is a mock implementation of sale.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sale.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sale.Sale, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sale.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindByOwner(ctx context.Context, ownerID uuid.UUID, filter shared.Filter) ([]sale.Sale, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sale.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, s *sale.Sale) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockStockItemRepository is a mock implementation of stock.StockItemRepository
type MockStockItemRepository struct {
	mock.Mock
}

func (m *MockStockItemRepository) FindByProduct(ctx context.Context, productID uuid.UUID) (*stock.StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindByProductForUpdate(ctx context.Context, productID uuid.UUID) (*stock.StockItem, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stock.StockItem), args.Error(1)
}

func (m *MockStockItemRepository) Save(ctx context.Context, item *stock.StockItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *MockStockItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockPaymentStore is a mock implementation of PaymentStore
type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) AmountPaid(ctx context.Context, saleID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, saleID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockPaymentStore) Record(ctx context.Context, saleID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, saleID, amount)
	return args.Error(0)
}

// MockIdempotencyStore is a mock implementation of shared.IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// capturingPublisher records every published event for assertions
type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) eventTypes() []string {
	types := make([]string, len(p.events))
	for i, e := range p.events {
		types[i] = e.EventType()
	}
	return types
}

// Test helpers
var (
	testOwnerID    = uuid.New()
	testReviewerID = uuid.New()
	testProductID  = uuid.New()
)

func testOwner() identity.Actor {
	return identity.NewActor(testOwnerID, identity.RoleUser)
}

func testAdmin() identity.Actor {
	return identity.NewActor(testReviewerID, identity.RoleAdmin)
}

func newTestScope(sales *MockSaleRepository, stocks *MockStockItemRepository, payments *MockPaymentStore) *NoOpTransactionScope {
	return NewNoOpTransactionScope(sales, stocks, payments)
}

func newTestSale() *sale.Sale {
	doc, _ := sale.NewSale(testOwnerID, identity.RoleUser, "Cliente Prueba")
	doc.ClearDomainEvents()
	return doc
}

func newTestSaleWithItem(quantity int64, unitPrice string) *sale.Sale {
	doc := newTestSale()
	doc.AddLineItem(testProductID, "Producto Prueba", quantity, mxn(unitPrice))
	doc.ClearDomainEvents()
	return doc
}

func newTestStock(remaining int64) *stock.StockItem {
	item, _ := stock.NewStockItem(testProductID, "Producto Prueba", remaining)
	item.ClearDomainEvents()
	return item
}

func mxn(amount string) valueobject.Money {
	amt, _ := decimal.NewFromString(amount)
	return valueobject.NewMoneyMXN(amt)
}

func domainCode(err error) string {
	var derr *shared.DomainError
	if errors.As(err, &derr) {
		return derr.Code
	}
	return ""
}
