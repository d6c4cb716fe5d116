package sale

import (
	"time"

	"github.com/gestion/backend/internal/domain/sale"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Command is the closed set of mutations the reconciliation engine accepts.
// Each variant carries exactly the data its operation needs; the dispatcher
// in ReconcilerService.Apply switches over the concrete types, so adding a
// variant without handling it is a compile-visible omission rather than an
// unmatched string flag.
type Command interface {
	SaleID() uuid.UUID
	commandName() string
}

// AddLineItemCommand adds a product to a sale
type AddLineItemCommand struct {
	Sale      uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
	UnitPrice decimal.Decimal
}

// SaleID returns the target sale
func (c AddLineItemCommand) SaleID() uuid.UUID { return c.Sale }

func (c AddLineItemCommand) commandName() string { return "AddLineItem" }

// SetQuantityCommand sets the absolute quantity of a line item
type SetQuantityCommand struct {
	Sale      uuid.UUID
	ProductID uuid.UUID
	Quantity  int64
}

// SaleID returns the target sale
func (c SetQuantityCommand) SaleID() uuid.UUID { return c.Sale }

func (c SetQuantityCommand) commandName() string { return "SetQuantity" }

// RemoveLineItemCommand removes a line item, restoring its stock
type RemoveLineItemCommand struct {
	Sale      uuid.UUID
	ProductID uuid.UUID
}

// SaleID returns the target sale
func (c RemoveLineItemCommand) SaleID() uuid.UUID { return c.Sale }

func (c RemoveLineItemCommand) commandName() string { return "RemoveLineItem" }

// ProcessReturnCommand registers a batch return against a sale
type ProcessReturnCommand struct {
	Sale       uuid.UUID
	Items      []sale.ReturnLine
	Reason     string
	ReturnedAt time.Time
}

// SaleID returns the target sale
func (c ProcessReturnCommand) SaleID() uuid.UUID { return c.Sale }

func (c ProcessReturnCommand) commandName() string { return "ProcessReturn" }
