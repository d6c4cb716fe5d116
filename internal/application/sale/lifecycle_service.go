package sale

import (
	"context"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LifecycleService governs the sale's completion workflow: owners submit a
// sale for approval, reviewers approve or reject it. An approved sale is
// terminal and fully immutable.
type LifecycleService struct {
	scope          TransactionScope
	eventPublisher shared.EventPublisher
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(scope TransactionScope) *LifecycleService {
	return &LifecycleService{scope: scope}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *LifecycleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RequestCompletion submits the sale for approval.
// Legal from NONE or REJECTED; the actor must own the sale or be a super-admin.
func (s *LifecycleService) RequestCompletion(ctx context.Context, actor identity.Actor, saleID uuid.UUID) (*SaleResponse, error) {
	return s.transition(ctx, saleID, func(doc *sale.Sale) error {
		if err := sale.CanRequestCompletion(doc, actor).Err(); err != nil {
			return err
		}
		return doc.RequestCompletion()
	})
}

// Approve finalizes a pending sale. Requires elevated review privilege.
func (s *LifecycleService) Approve(ctx context.Context, actor identity.Actor, saleID uuid.UUID, notes string) (*SaleResponse, error) {
	return s.transition(ctx, saleID, func(doc *sale.Sale) error {
		if err := sale.CanReview(doc, actor).Err(); err != nil {
			return err
		}
		return doc.Approve(notes)
	})
}

// Reject sends a pending sale back to its owner with mandatory notes.
// The sale stays mutable and can be re-submitted.
func (s *LifecycleService) Reject(ctx context.Context, actor identity.Actor, saleID uuid.UUID, notes string) (*SaleResponse, error) {
	return s.transition(ctx, saleID, func(doc *sale.Sale) error {
		if err := sale.CanReview(doc, actor).Err(); err != nil {
			return err
		}
		return doc.Reject(notes)
	})
}

// transition loads the sale, applies the state change and saves it inside
// one transaction. Illegal transitions fail with no side effects.
func (s *LifecycleService) transition(ctx context.Context, saleID uuid.UUID, fn func(doc *sale.Sale) error) (*SaleResponse, error) {
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

		if err := fn(doc); err != nil {
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

	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	response := ToSaleResponse(doc)
	return &response, nil
}
