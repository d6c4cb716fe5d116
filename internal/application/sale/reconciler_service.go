package sale

import (
	"context"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconcilerService applies legal quantity changes to a sale's line items,
// keeping the sale totals, the payment-derived fields and the product's
// remaining stock consistent. Every operation runs inside one transaction:
// a failed stock reservation leaves the sale untouched.
type ReconcilerService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewReconcilerService creates a new ReconcilerService
func NewReconcilerService(scope TransactionScope) *ReconcilerService {
	return &ReconcilerService{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReconcilerService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Apply dispatches a reconciliation command to its typed operation
func (s *ReconcilerService) Apply(ctx context.Context, actor identity.Actor, cmd Command) (*SaleResponse, error) {
	switch c := cmd.(type) {
	case AddLineItemCommand:
		return s.AddLineItem(ctx, actor, c.Sale, c.ProductID, c.Quantity, c.UnitPrice)
	case SetQuantityCommand:
		return s.SetQuantity(ctx, actor, c.Sale, c.ProductID, c.Quantity)
	case RemoveLineItemCommand:
		return s.RemoveLineItem(ctx, actor, c.Sale, c.ProductID)
	default:
		return nil, shared.NewDomainError("UNKNOWN_COMMAND", "Command "+cmd.commandName()+" is not a reconciliation command")
	}
}

// AddLineItem adds a product to the sale, reserving its quantity from stock
func (s *ReconcilerService) AddLineItem(ctx context.Context, actor identity.Actor, saleID, productID uuid.UUID, quantity int64, unitPrice decimal.Decimal) (*SaleResponse, error) {
	var (
		doc    *sale.Sale
		events []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		if err := sale.CanAddProduct(doc, actor).Err(); err != nil {
			return err
		}

		stockItem, err := repos.Stock().FindByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if err := stockItem.Reserve(quantity); err != nil {
			return err
		}

		price := valueobject.NewMoneyMXN(unitPrice)
		if _, err := doc.AddLineItem(productID, stockItem.ProductName, quantity, price); err != nil {
			return err
		}

		if err := repos.Stock().Save(ctx, stockItem); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, doc); err != nil {
			return err
		}

		events = collectEvents(doc, stockItem)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	response := ToSaleResponse(doc)
	return &response, nil
}

// SetQuantity applies an absolute target quantity to one line item. The
// stock delta is reserved or released in the same transaction; an increase
// that exceeds the remaining stock fails with no state change.
func (s *ReconcilerService) SetQuantity(ctx context.Context, actor identity.Actor, saleID, productID uuid.UUID, target int64) (*SaleResponse, error) {
	var (
		doc    *sale.Sale
		events []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		if err := sale.CanModifyQuantity(doc, actor).Err(); err != nil {
			return err
		}

		delta, err := doc.SetItemQuantity(productID, target)
		if err != nil {
			return err
		}
		if delta == 0 {
			events = collectEvents(doc)
			return repos.Sales().Save(ctx, doc)
		}

		stockItem, err := repos.Stock().FindByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}

		if delta > 0 {
			err = stockItem.Reserve(delta)
		} else {
			err = stockItem.Release(-delta)
		}
		if err != nil {
			return err
		}

		if err := repos.Stock().Save(ctx, stockItem); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, doc); err != nil {
			return err
		}

		events = collectEvents(doc, stockItem)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	response := ToSaleResponse(doc)
	return &response, nil
}

// RemoveLineItem deletes a line item and restores its full quantity to stock
func (s *ReconcilerService) RemoveLineItem(ctx context.Context, actor identity.Actor, saleID, productID uuid.UUID) (*SaleResponse, error) {
	var (
		doc    *sale.Sale
		events []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		if err := sale.CanModifyQuantity(doc, actor).Err(); err != nil {
			return err
		}

		freed, err := doc.RemoveLineItem(productID)
		if err != nil {
			return err
		}

		stockItem, err := repos.Stock().FindByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if err := stockItem.Release(freed); err != nil {
			return err
		}

		if err := repos.Stock().Save(ctx, stockItem); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, doc); err != nil {
			return err
		}

		events = collectEvents(doc, stockItem)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	response := ToSaleResponse(doc)
	return &response, nil
}

// publish sends collected domain events after a successful commit
func (s *ReconcilerService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	// Publish failures do not fail the committed operation
	_ = s.eventPublisher.Publish(ctx, events...)
}

// collectEvents drains pending domain events from the given aggregates
func collectEvents(aggregates ...shared.AggregateRoot) []shared.DomainEvent {
	var events []shared.DomainEvent
	for _, agg := range aggregates {
		events = append(events, agg.GetDomainEvents()...)
		agg.ClearDomainEvents()
	}
	return events
}
