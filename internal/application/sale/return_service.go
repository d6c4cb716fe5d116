package sale

import (
	"context"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/sale"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReturnService converts batch return requests into permanent, auditable
// quantity reductions. Returned units never go back to the stock ledger:
// they are treated as consumed or damaged, not re-salable inventory.
type ReturnService struct {
	scope          TransactionScope
	idempotency    shared.IdempotencyStore
	idempotencyCfg shared.IdempotencyConfig
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewReturnService creates a new ReturnService
func NewReturnService(scope TransactionScope, logger *zap.Logger) *ReturnService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReturnService{
		scope:          scope,
		idempotencyCfg: shared.DefaultIdempotencyConfig(),
		logger:         logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables request deduplication by idempotency key
func (s *ReturnService) SetIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) {
	s.idempotency = store
	s.idempotencyCfg = cfg
}

// ProcessReturn applies a batch return to a sale. Validation is
// all-or-nothing: a single failing line leaves the whole sale untouched.
// Affected line items are locked against further quantity edits; the
// quantity ceiling makes an accidental resubmission fail on its own, and an
// idempotency key rejects it before validation even runs.
func (s *ReturnService) ProcessReturn(ctx context.Context, actor identity.Actor, saleID uuid.UUID, req ProcessReturnRequest) (*SaleResponse, error) {
	if req.IdempotencyKey != "" && s.idempotency != nil && s.idempotencyCfg.Enabled {
		seen, err := s.idempotency.IsProcessed(ctx, req.IdempotencyKey)
		if err != nil {
			// A degraded dedup store must not block returns; the quantity
			// ceiling still prevents double-counting.
			s.logger.Warn("idempotency check failed, continuing without dedup",
				zap.String("sale_id", saleID.String()), zap.Error(err))
		} else if seen {
			return nil, shared.NewDomainError("DUPLICATE_REQUEST", "Return request was already processed")
		}
	}

	lines := make([]sale.ReturnLine, len(req.Items))
	for i, item := range req.Items {
		lines[i] = sale.ReturnLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}

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

		if err := sale.CanProcessReturn(doc, actor).Err(); err != nil {
			return err
		}

		if _, err := doc.ApplyReturn(lines, req.Reason, req.ReturnedAt); err != nil {
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

	if req.IdempotencyKey != "" && s.idempotency != nil && s.idempotencyCfg.Enabled {
		if _, err := s.idempotency.MarkProcessed(ctx, req.IdempotencyKey, s.idempotencyCfg.TTL); err != nil {
			s.logger.Warn("failed to mark return request as processed",
				zap.String("sale_id", saleID.String()), zap.Error(err))
		}
	}

	if s.eventPublisher != nil && len(events) > 0 {
		_ = s.eventPublisher.Publish(ctx, events...)
	}

	response := ToSaleResponse(doc)
	return &response, nil
}
