package sale

import (
	"context"
	"testing"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestReconcilerService_AddLineItem(t *testing.T) {
	t.Run("add item reserves stock", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSale()
		stockItem := newTestStock(10)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)
		stocks.On("Save", ctx, stockItem).Return(nil)
		sales.On("Save", ctx, doc).Return(nil)

		result, err := service.AddLineItem(ctx, testOwner(), doc.ID, testProductID, 4, decimal.NewFromInt(25))

		assert.NoError(t, err)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, int64(4), result.Items[0].Quantity)
		assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(100)))
		assert.Equal(t, int64(6), stockItem.RemainingQuantity)
		sales.AssertExpectations(t)
		stocks.AssertExpectations(t)
	})

	t.Run("item name comes from the stock record", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSale()
		stockItem := newTestStock(10)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)
		stocks.On("Save", ctx, mock.Anything).Return(nil)
		sales.On("Save", ctx, mock.Anything).Return(nil)

		result, err := service.AddLineItem(ctx, testOwner(), doc.ID, testProductID, 1, decimal.NewFromInt(10))

		assert.NoError(t, err)
		assert.Equal(t, stockItem.ProductName, result.Items[0].ProductName)
	})

	t.Run("insufficient stock leaves the sale untouched", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSale()
		stockItem := newTestStock(3)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)

		result, err := service.AddLineItem(ctx, testOwner(), doc.ID, testProductID, 5, decimal.NewFromInt(25))

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, shared.CodeInsufficientStock, domainCode(err))
		assert.Empty(t, doc.Items)
		assert.Equal(t, int64(3), stockItem.RemainingQuantity)
		stocks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("duplicate product is not persisted", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(2, "25")
		stockItem := newTestStock(10)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)

		result, err := service.AddLineItem(ctx, testOwner(), doc.ID, testProductID, 1, decimal.NewFromInt(25))

		assert.Error(t, err)
		assert.Nil(t, result)
		sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		stocks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("fail when sale not found", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		saleID := newTestSale().ID
		sales.On("FindByID", ctx, saleID).Return(nil, shared.ErrNotFound)

		result, err := service.AddLineItem(ctx, testOwner(), saleID, testProductID, 1, decimal.NewFromInt(25))

		assert.Error(t, err)
		assert.Nil(t, result)
		stocks.AssertNotCalled(t, "FindByProductForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("fully paid sale rejects new items", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(2, "50")
		assert.NoError(t, doc.RegisterPayment(mxn("100")))
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)

		result, err := service.AddLineItem(ctx, testOwner(), doc.ID, testProductID, 1, decimal.NewFromInt(25))

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, shared.CodeNotAuthorized, domainCode(err))
		stocks.AssertNotCalled(t, "FindByProductForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("publishes events after commit", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		publisher := new(capturingPublisher)
		service.SetEventPublisher(publisher)
		ctx := context.Background()

		doc := newTestSale()
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(newTestStock(10), nil)
		stocks.On("Save", ctx, mock.Anything).Return(nil)
		sales.On("Save", ctx, mock.Anything).Return(nil)

		_, err := service.AddLineItem(ctx, testOwner(), doc.ID, testProductID, 2, decimal.NewFromInt(25))

		assert.NoError(t, err)
		assert.Contains(t, publisher.eventTypes(), sale.EventTypeLineItemAdded)
		assert.Empty(t, doc.GetDomainEvents())
	})
}

func TestReconcilerService_SetQuantity(t *testing.T) {
	t.Run("increase reserves the delta", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(4, "25")
		stockItem := newTestStock(10)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)
		stocks.On("Save", ctx, stockItem).Return(nil)
		sales.On("Save", ctx, doc).Return(nil)

		result, err := service.SetQuantity(ctx, testOwner(), doc.ID, testProductID, 7)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), result.Items[0].Quantity)
		assert.Equal(t, int64(7), stockItem.RemainingQuantity)
		assert.True(t, result.TotalAmount.Equal(decimal.NewFromInt(175)))
	})

	t.Run("decrease releases the delta", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(7, "25")
		stockItem := newTestStock(3)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)
		stocks.On("Save", ctx, stockItem).Return(nil)
		sales.On("Save", ctx, doc).Return(nil)

		result, err := service.SetQuantity(ctx, testOwner(), doc.ID, testProductID, 2)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), result.Items[0].Quantity)
		assert.Equal(t, int64(8), stockItem.RemainingQuantity)
	})

	t.Run("same target skips the stock ledger", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(4, "25")
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		sales.On("Save", ctx, doc).Return(nil)

		result, err := service.SetQuantity(ctx, testOwner(), doc.ID, testProductID, 4)

		assert.NoError(t, err)
		assert.Equal(t, int64(4), result.Items[0].Quantity)
		stocks.AssertNotCalled(t, "FindByProductForUpdate", mock.Anything, mock.Anything)
	})

	t.Run("increase beyond stock fails without persisting", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(4, "25")
		stockItem := newTestStock(2)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)

		result, err := service.SetQuantity(ctx, testOwner(), doc.ID, testProductID, 9)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, shared.CodeInsufficientStock, domainCode(err))
		assert.Equal(t, int64(2), stockItem.RemainingQuantity)
		sales.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		stocks.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("stranger cannot change quantities", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(4, "25")
		stranger := identity.NewActor(uuid.New(), identity.RoleUser)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)

		result, err := service.SetQuantity(ctx, stranger, doc.ID, testProductID, 7)

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, shared.CodeNotAuthorized, domainCode(err))
	})
}

func TestReconcilerService_RemoveLineItem(t *testing.T) {
	t.Run("remove restores the full quantity", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(4, "25")
		stockItem := newTestStock(6)
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(stockItem, nil)
		stocks.On("Save", ctx, stockItem).Return(nil)
		sales.On("Save", ctx, doc).Return(nil)

		result, err := service.RemoveLineItem(ctx, testOwner(), doc.ID, testProductID)

		assert.NoError(t, err)
		assert.Empty(t, result.Items)
		assert.Equal(t, int64(10), stockItem.RemainingQuantity)
		assert.True(t, result.TotalAmount.IsZero())
	})

	t.Run("unknown product fails before touching stock", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSale()
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)

		result, err := service.RemoveLineItem(ctx, testOwner(), doc.ID, testProductID)

		assert.Error(t, err)
		assert.Nil(t, result)
		stocks.AssertNotCalled(t, "FindByProductForUpdate", mock.Anything, mock.Anything)
	})
}

func TestReconcilerService_Apply(t *testing.T) {
	t.Run("dispatches add line item command", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSale()
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(newTestStock(10), nil)
		stocks.On("Save", ctx, mock.Anything).Return(nil)
		sales.On("Save", ctx, mock.Anything).Return(nil)

		result, err := service.Apply(ctx, testOwner(), AddLineItemCommand{
			Sale:      doc.ID,
			ProductID: testProductID,
			Quantity:  3,
			UnitPrice: decimal.NewFromInt(25),
		})

		assert.NoError(t, err)
		assert.Len(t, result.Items, 1)
	})

	t.Run("dispatches set quantity command", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(4, "25")
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(newTestStock(10), nil)
		stocks.On("Save", ctx, mock.Anything).Return(nil)
		sales.On("Save", ctx, mock.Anything).Return(nil)

		result, err := service.Apply(ctx, testOwner(), SetQuantityCommand{
			Sale:      doc.ID,
			ProductID: testProductID,
			Quantity:  6,
		})

		assert.NoError(t, err)
		assert.Equal(t, int64(6), result.Items[0].Quantity)
	})

	t.Run("dispatches remove line item command", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))
		ctx := context.Background()

		doc := newTestSaleWithItem(4, "25")
		sales.On("FindByID", ctx, doc.ID).Return(doc, nil)
		stocks.On("FindByProductForUpdate", ctx, testProductID).Return(newTestStock(6), nil)
		stocks.On("Save", ctx, mock.Anything).Return(nil)
		sales.On("Save", ctx, mock.Anything).Return(nil)

		result, err := service.Apply(ctx, testOwner(), RemoveLineItemCommand{
			Sale:      doc.ID,
			ProductID: testProductID,
		})

		assert.NoError(t, err)
		assert.Empty(t, result.Items)
	})

	t.Run("rejects a non reconciliation command", func(t *testing.T) {
		sales := new(MockSaleRepository)
		stocks := new(MockStockItemRepository)
		service := NewReconcilerService(newTestScope(sales, stocks, nil))

		result, err := service.Apply(context.Background(), testOwner(), ProcessReturnCommand{Sale: uuid.New()})

		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Equal(t, "UNKNOWN_COMMAND", domainCode(err))
	})
}
