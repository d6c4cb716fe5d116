package sale

import (
	"fmt"
	"time"

	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/shared"
	"github.com/gestion/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineItem is one product entry within a sale. Its quantity stays mutable
// until the first return against the product locks it for the lifetime of
// the sale. A fully returned item keeps its record at quantity zero.
type LineItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductName string          `gorm:"type:varchar(200);not null"`
	Quantity    int64           `gorm:"not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Snapshot at sale time, immutable
	Subtotal    decimal.Decimal `gorm:"type:decimal(18,4);not null"` // Quantity * UnitPrice
	Locked      bool            `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (LineItem) TableName() string {
	return "sale_line_items"
}

// newLineItem creates a line item for a sale
func newLineItem(saleID, productID uuid.UUID, productName string, quantity int64, unitPrice valueobject.Money) (*LineItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if productName == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	price := unitPrice.Amount()

	return &LineItem{
		ID:          uuid.New(),
		SaleID:      saleID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   price,
		Subtotal:    price.Mul(decimal.NewFromInt(quantity)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// setQuantity updates the quantity and recalculates the subtotal
func (i *LineItem) setQuantity(quantity int64) {
	i.Quantity = quantity
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(quantity))
	i.UpdatedAt = time.Now()
}

// GetUnitPriceMoney returns the unit price as Money value object
func (i *LineItem) GetUnitPriceMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(i.UnitPrice)
}

// GetSubtotalMoney returns the subtotal as Money value object
func (i *LineItem) GetSubtotalMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(i.Subtotal)
}

// Return is a permanent, partial-quantity reversal of a line item. Returned
// units are treated as consumed or damaged: they never go back to stock.
type Return struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	SaleID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	QuantityReturned int64           `gorm:"not null"`
	RefundAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null"` // QuantityReturned * unit price at sale time
	Reason           string          `gorm:"type:varchar(500);not null"`
	ReturnedAt       time.Time       `gorm:"not null"`
	CreatedAt        time.Time
}

// TableName returns the table name for GORM
func (Return) TableName() string {
	return "sale_returns"
}

// ReturnLine is one entry of a batch return request
type ReturnLine struct {
	ProductID uuid.UUID
	Quantity  int64
}

// Sale is the aggregate root for a sale document: priced line items, payment
// progress, return records and the completion approval workflow. All quantity
// movement against stock is decided here and applied by the application layer
// inside one transaction.
type Sale struct {
	shared.OwnedAggregateRoot
	OwnerID               uuid.UUID        `gorm:"type:uuid;not null;index"`
	CreatorRole           identity.Role    `gorm:"type:varchar(20);not null"`
	CustomerName          string           `gorm:"type:varchar(200);not null"`
	Items                 []LineItem       `gorm:"foreignKey:SaleID;references:ID"`
	Returns               []Return         `gorm:"foreignKey:SaleID;references:ID"`
	TotalAmount           decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"` // Derived, never authored directly
	PaidAmount            decimal.Decimal  `gorm:"type:decimal(18,4);not null;default:0"`
	PaymentState          PaymentState     `gorm:"type:varchar(20);not null;default:'UNPAID'"`
	Completion            CompletionStatus `gorm:"type:varchar(20);not null;default:'NONE'"`
	CompletionRequestedAt *time.Time       `gorm:"index"`
	CompletionDecidedAt   *time.Time
	ReviewNotes           string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Sale) TableName() string {
	return "sales"
}

// NewSale creates a new sale owned by the given user
func NewSale(createdBy uuid.UUID, creatorRole identity.Role, customerName string) (*Sale, error) {
	if createdBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Creator ID cannot be empty")
	}
	if !creatorRole.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Creator role is not valid")
	}
	if customerName == "" {
		return nil, shared.NewDomainError("INVALID_CUSTOMER_NAME", "Customer name cannot be empty")
	}

	s := &Sale{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(createdBy),
		OwnerID:            createdBy,
		CreatorRole:        creatorRole,
		CustomerName:       customerName,
		Items:              make([]LineItem, 0),
		Returns:            make([]Return, 0),
		TotalAmount:        decimal.Zero,
		PaidAmount:         decimal.Zero,
		PaymentState:       PaymentUnpaid,
		Completion:         CompletionNone,
	}

	s.AddDomainEvent(NewSaleCreatedEvent(s))

	return s, nil
}

// AddLineItem appends a new line item. The caller must have reserved the
// quantity against the stock ledger in the same transaction.
func (s *Sale) AddLineItem(productID uuid.UUID, productName string, quantity int64, unitPrice valueobject.Money) (*LineItem, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}

	if existing := s.GetItemByProduct(productID); existing != nil {
		return nil, shared.NewDomainError("PRODUCT_ALREADY_IN_SALE", "Product already has a line item in this sale, update its quantity instead")
	}

	item, err := newLineItem(s.ID, productID, productName, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	s.Items = append(s.Items, *item)
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewLineItemAddedEvent(s, item))

	return item, nil
}

// SetItemQuantity sets the absolute quantity of a line item and returns the
// stock delta (positive means additional stock must be reserved, negative
// means stock is freed). Reducing to zero must go through RemoveLineItem.
func (s *Sale) SetItemQuantity(productID uuid.UUID, target int64) (int64, error) {
	if err := s.ensureMutable(); err != nil {
		return 0, err
	}
	if target < 1 {
		return 0, shared.NewDomainError(shared.CodeInvalidQuantity, "Target quantity must be at least 1, remove the line item instead")
	}

	item := s.GetItemByProduct(productID)
	if item == nil {
		return 0, shared.NewDomainError("ITEM_NOT_FOUND", "Product has no line item in this sale")
	}
	if item.Locked {
		return 0, shared.NewDomainError(shared.CodeLineItemLocked, "Line item has returns registered and its quantity is frozen")
	}

	delta := target - item.Quantity
	if delta == 0 {
		return 0, nil
	}

	item.setQuantity(target)
	s.recalculateTotals()
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewQuantityChangedEvent(s, item, delta))

	return delta, nil
}

// RemoveLineItem deletes a line item and returns the freed quantity that the
// caller must release back to the stock ledger.
func (s *Sale) RemoveLineItem(productID uuid.UUID) (int64, error) {
	if err := s.ensureMutable(); err != nil {
		return 0, err
	}

	for idx := range s.Items {
		if s.Items[idx].ProductID != productID {
			continue
		}
		if s.Items[idx].Locked {
			return 0, shared.NewDomainError(shared.CodeLineItemLocked, "Line item has returns registered and cannot be removed")
		}

		freed := s.Items[idx].Quantity
		removed := s.Items[idx]
		s.Items = append(s.Items[:idx], s.Items[idx+1:]...)
		s.recalculateTotals()
		s.UpdatedAt = time.Now()

		s.AddDomainEvent(NewLineItemRemovedEvent(s, &removed, freed))

		return freed, nil
	}

	return 0, shared.NewDomainError("ITEM_NOT_FOUND", "Product has no line item in this sale")
}

// ApplyReturn converts a batch return request into permanent quantity
// reductions. The whole batch is validated before any line is touched:
// a failing entry leaves the sale untouched. Affected line items are locked,
// stock is never restored.
func (s *Sale) ApplyReturn(lines []ReturnLine, reason string, returnedAt time.Time) ([]Return, error) {
	if err := s.ensureMutable(); err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Return request must contain at least one item")
	}
	if reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Return reason cannot be empty")
	}
	if returnedAt.After(time.Now()) {
		return nil, shared.NewDomainError("INVALID_RETURN_DATE", "Return date cannot be in the future")
	}

	// First pass: validate every line against the current quantities,
	// accounting for repeated products within the same batch.
	requested := make(map[uuid.UUID]int64, len(lines))
	for _, line := range lines {
		item := s.GetItemByProduct(line.ProductID)
		if item == nil {
			return nil, shared.NewDomainError("ITEM_NOT_FOUND", "Product has no line item in this sale")
		}
		if line.Quantity < 1 {
			return nil, shared.NewDomainError(shared.CodeInvalidQuantity, "Returned quantity must be at least 1")
		}
		requested[line.ProductID] += line.Quantity
		if requested[line.ProductID] > item.Quantity {
			return nil, shared.NewDomainError(shared.CodeInvalidQuantity,
				fmt.Sprintf("Returned quantity %d exceeds current line quantity %d for product %s", requested[line.ProductID], item.Quantity, item.ProductName))
		}
	}

	// Second pass: apply. Quantities may reach zero; the line record stays
	// for audit and the item is locked against further edits.
	now := time.Now()
	created := make([]Return, 0, len(lines))
	for _, line := range lines {
		item := s.GetItemByProduct(line.ProductID)
		item.setQuantity(item.Quantity - line.Quantity)
		item.Locked = true

		ret := Return{
			ID:               uuid.New(),
			SaleID:           s.ID,
			ProductID:        line.ProductID,
			QuantityReturned: line.Quantity,
			RefundAmount:     item.UnitPrice.Mul(decimal.NewFromInt(line.Quantity)),
			Reason:           reason,
			ReturnedAt:       returnedAt,
			CreatedAt:        now,
		}
		s.Returns = append(s.Returns, ret)
		created = append(created, ret)
	}

	s.recalculateTotals()
	s.UpdatedAt = now

	s.AddDomainEvent(NewReturnProcessedEvent(s, created))

	return created, nil
}

// RegisterPayment adds a confirmed payment amount and rederives the payment
// state. Payments can never exceed the amount due.
func (s *Sale) RegisterPayment(amount valueobject.Money) error {
	if s.Completion == CompletionApproved {
		return shared.NewDomainError(shared.CodeInvalidLifecycleTransition, "Cannot register payments on an approved sale")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_PAYMENT", "Payment amount must be positive")
	}
	newPaid := s.PaidAmount.Add(amount.Amount())
	if newPaid.GreaterThan(s.TotalAmount) {
		return shared.NewDomainError("INVALID_PAYMENT",
			fmt.Sprintf("Payment exceeds amount due: due %s, paying %s", s.AmountDue().String(), amount.Amount().String()))
	}

	s.PaidAmount = newPaid
	s.derivePaymentState()
	s.UpdatedAt = time.Now()

	s.AddDomainEvent(NewPaymentRegisteredEvent(s, amount.Amount()))

	return nil
}

// RefreshPaymentState rederives the payment state from the paid amount
// reported by the payment ledger.
func (s *Sale) RefreshPaymentState(paid decimal.Decimal) {
	s.PaidAmount = paid
	s.derivePaymentState()
}

// RequestCompletion submits the sale for approval.
// Legal from NONE or REJECTED status.
func (s *Sale) RequestCompletion() error {
	if !s.Completion.CanTransitionTo(CompletionPending) {
		return shared.NewDomainError(shared.CodeInvalidLifecycleTransition,
			fmt.Sprintf("Cannot request completion of a sale in %s status", s.Completion))
	}

	now := time.Now()
	s.Completion = CompletionPending
	s.CompletionRequestedAt = &now
	s.CompletionDecidedAt = nil
	s.ReviewNotes = ""
	s.UpdatedAt = now

	s.AddDomainEvent(NewCompletionRequestedEvent(s))

	return nil
}

// Approve finalizes the sale. Once approved, the sale is fully immutable:
// no quantity changes, no returns, no deletion, by anyone.
func (s *Sale) Approve(notes string) error {
	if !s.Completion.CanTransitionTo(CompletionApproved) {
		return shared.NewDomainError(shared.CodeInvalidLifecycleTransition,
			fmt.Sprintf("Cannot approve a sale in %s status", s.Completion))
	}

	now := time.Now()
	s.Completion = CompletionApproved
	s.CompletionDecidedAt = &now
	s.ReviewNotes = notes
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleApprovedEvent(s))

	return nil
}

// Reject sends the sale back to its owner. The sale stays mutable and can
// be re-submitted. Notes explaining the rejection are required.
func (s *Sale) Reject(notes string) error {
	if !s.Completion.CanTransitionTo(CompletionRejected) {
		return shared.NewDomainError(shared.CodeInvalidLifecycleTransition,
			fmt.Sprintf("Cannot reject a sale in %s status", s.Completion))
	}
	if notes == "" {
		return shared.NewDomainError("INVALID_NOTES", "Rejection notes are required")
	}

	now := time.Now()
	s.Completion = CompletionRejected
	s.CompletionDecidedAt = &now
	s.ReviewNotes = notes
	s.UpdatedAt = now

	s.AddDomainEvent(NewSaleRejectedEvent(s))

	return nil
}

// ensureMutable guards every item/return mutation against the terminal
// lifecycle state. Role and payment rules live in the authorizer; this is
// the aggregate's own last line of defense.
func (s *Sale) ensureMutable() error {
	if s.Completion == CompletionApproved {
		return shared.NewDomainError(shared.CodeInvalidLifecycleTransition, "Sale is approved and immutable")
	}
	return nil
}

// recalculateTotals recalculates the derived financial fields
func (s *Sale) recalculateTotals() {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal)
	}
	s.TotalAmount = total
	s.derivePaymentState()
}

// derivePaymentState maps PaidAmount vs TotalAmount to the payment state
func (s *Sale) derivePaymentState() {
	switch {
	case s.PaidAmount.LessThanOrEqual(decimal.Zero):
		s.PaymentState = PaymentUnpaid
	case s.PaidAmount.GreaterThanOrEqual(s.TotalAmount) && s.TotalAmount.IsPositive():
		s.PaymentState = PaymentPaid
	default:
		s.PaymentState = PaymentPartial
	}
}

// AmountDue returns the outstanding amount, floored at zero (returns can
// shrink the total below what was already paid; the refund is settled by
// the payment collaborator, not tracked here).
func (s *Sale) AmountDue() decimal.Decimal {
	due := s.TotalAmount.Sub(s.PaidAmount)
	if due.IsNegative() {
		return decimal.Zero
	}
	return due
}

// HasPayments returns true if any payment has been registered
func (s *Sale) HasPayments() bool {
	return s.PaidAmount.IsPositive()
}

// HasReturns returns true if any return record exists
func (s *Sale) HasReturns() bool {
	return len(s.Returns) > 0
}

// ReturnedQuantity returns the cumulative returned quantity for a product
func (s *Sale) ReturnedQuantity(productID uuid.UUID) int64 {
	var total int64
	for _, r := range s.Returns {
		if r.ProductID == productID {
			total += r.QuantityReturned
		}
	}
	return total
}

// GetItemByProduct returns the line item for a product, or nil
func (s *Sale) GetItemByProduct(productID uuid.UUID) *LineItem {
	for idx := range s.Items {
		if s.Items[idx].ProductID == productID {
			return &s.Items[idx]
		}
	}
	return nil
}

// GetItem returns a line item by its ID, or nil
func (s *Sale) GetItem(itemID uuid.UUID) *LineItem {
	for idx := range s.Items {
		if s.Items[idx].ID == itemID {
			return &s.Items[idx]
		}
	}
	return nil
}

// ItemCount returns the number of line items
func (s *Sale) ItemCount() int {
	return len(s.Items)
}

// GetTotalAmountMoney returns the total amount as Money
func (s *Sale) GetTotalAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(s.TotalAmount)
}

// GetPaidAmountMoney returns the paid amount as Money
func (s *Sale) GetPaidAmountMoney() valueobject.Money {
	return valueobject.NewMoneyMXN(s.PaidAmount)
}

// IsApproved returns true if the sale reached the terminal approved state
func (s *Sale) IsApproved() bool {
	return s.Completion == CompletionApproved
}

// IsPendingApproval returns true if a completion request is awaiting review
func (s *Sale) IsPendingApproval() bool {
	return s.Completion == CompletionPending
}
