package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrNotAuthorized       = NewDomainError("NOT_AUTHORIZED", "Not authorized to perform this action")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "Insufficient stock available")
)

// Error codes used by the reconciliation core. Handlers map these to HTTP
// statuses; services return them unchanged so callers can switch on them.
const (
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodeInvalidQuantity            = "INVALID_QUANTITY"
	CodeLineItemLocked             = "LINE_ITEM_LOCKED"
	CodeNotAuthorized              = "NOT_AUTHORIZED"
	CodeInvalidLifecycleTransition = "INVALID_LIFECYCLE_TRANSITION"
	CodeConcurrencyConflict        = "CONCURRENCY_CONFLICT"
)
