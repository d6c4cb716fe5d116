package sale

import (
	"context"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService handles sale document operations outside the quantity
// reconciliation path: creation, reads, deletion and payments.
type SaleService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(scope TransactionScope, logger *zap.Logger) *SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SaleService{scope: scope, logger: logger}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a new sale owned by the actor, reserving stock for every
// initial line item in the same transaction.
func (s *SaleService) Create(ctx context.Context, actor identity.Actor, req CreateSaleRequest) (*SaleResponse, error) {
	var (
		doc    *sale.Sale
		events []shared.DomainEvent
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = sale.NewSale(actor.UserID, actor.Role, req.CustomerName)
		if err != nil {
			return err
		}

		for _, item := range req.Items {
			stockItem, err := repos.Stock().FindByProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := stockItem.Reserve(item.Quantity); err != nil {
				return err
			}

			price := valueobject.NewMoneyMXN(item.UnitPrice)
			if _, err := doc.AddLineItem(item.ProductID, stockItem.ProductName, item.Quantity, price); err != nil {
				return err
			}

			if err := repos.Stock().Save(ctx, stockItem); err != nil {
				return err
			}
			events = append(events, collectEvents(stockItem)...)
		}

		if err := repos.Sales().Save(ctx, doc); err != nil {
			return err
		}

		events = append(events, collectEvents(doc)...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events)
	response := ToSaleResponse(doc)
	return &response, nil
}

// GetByID retrieves a sale, refreshing the payment-derived fields from the
// payment ledger.
func (s *SaleService) GetByID(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	var doc *sale.Sale

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		doc, err = repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		paid, err := repos.Payments().AmountPaid(ctx, saleID)
		if err != nil {
			return err
		}
		doc.RefreshPaymentState(paid)
		return nil
	})
	if err != nil {
		return nil, err
	}

	response := ToSaleResponse(doc)
	return &response, nil
}

// List retrieves sales with pagination
func (s *SaleService) List(ctx context.Context, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	domainFilter := shared.DefaultFilter()
	domainFilter.Page = filter.Page
	domainFilter.PageSize = filter.PageSize
	if filter.Completion != nil {
		domainFilter.Filters["completion"] = string(*filter.Completion)
	}
	if filter.OwnerID != nil {
		domainFilter.Filters["owner_id"] = *filter.OwnerID
	}

	var (
		docs  []sale.Sale
		total int64
	)

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		docs, err = repos.Sales().FindAll(ctx, domainFilter)
		if err != nil {
			return err
		}
		total, err = repos.Sales().Count(ctx, domainFilter)
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SaleResponse, len(docs))
	for i := range docs {
		responses[i] = ToSaleResponse(&docs[i])
	}
	return responses, total, nil
}

// Delete removes a sale, restoring the stock of every line item. The
// authorization table keeps paid, returned, pending and approved sales
// out of reach; by the time deletion is allowed, no line item is locked.
func (s *SaleService) Delete(ctx context.Context, actor identity.Actor, saleID uuid.UUID) error {
	var events []shared.DomainEvent

	err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		doc, err := repos.Sales().FindByID(ctx, saleID)
		if err != nil {
			return err
		}

		if err := sale.CanDelete(doc, actor).Err(); err != nil {
			return err
		}

		for _, item := range doc.Items {
			stockItem, err := repos.Stock().FindByProductForUpdate(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if err := stockItem.Release(item.Quantity); err != nil {
				return err
			}
			if err := repos.Stock().Save(ctx, stockItem); err != nil {
				return err
			}
			events = append(events, collectEvents(stockItem)...)
		}

		if err := repos.Sales().Delete(ctx, saleID); err != nil {
			return err
		}

		events = append(events, sale.NewSaleDeletedEvent(doc))
		return nil
	})
	if err != nil {
		return err
	}

	s.publish(ctx, events)
	return nil
}

// RegisterPayment records a confirmed payment for the sale and rederives
// its payment state. Payments can never exceed the amount due.
func (s *SaleService) RegisterPayment(ctx context.Context, actor identity.Actor, saleID uuid.UUID, amount decimal.Decimal) (*SaleResponse, error) {
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

		if actor.Role == identity.RoleUser && !actor.Owns(doc.OwnerID) {
			return shared.NewDomainError(shared.CodeNotAuthorized, "Only the sale's owner may register payments")
		}

		if err := doc.RegisterPayment(valueobject.NewMoneyMXN(amount)); err != nil {
			return err
		}

		if err := repos.Payments().Record(ctx, saleID, amount); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, doc); err != nil {
			return err
		}

		events = collectEvents(doc)
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
func (s *SaleService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish domain events", zap.Error(err))
	}
}
