package sale

// CompletionStatus represents the approval workflow status of a sale
type CompletionStatus string

const (
	CompletionNone     CompletionStatus = "NONE"
	CompletionPending  CompletionStatus = "PENDING_APPROVAL"
	CompletionApproved CompletionStatus = "APPROVED"
	CompletionRejected CompletionStatus = "REJECTED"
)

// IsValid checks if the status is a valid CompletionStatus
func (s CompletionStatus) IsValid() bool {
	switch s {
	case CompletionNone, CompletionPending, CompletionApproved, CompletionRejected:
		return true
	}
	return false
}

// String returns the string representation of CompletionStatus
func (s CompletionStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A rejected sale may be re-submitted; an approved sale is terminal.
func (s CompletionStatus) CanTransitionTo(target CompletionStatus) bool {
	switch s {
	case CompletionNone:
		return target == CompletionPending
	case CompletionPending:
		return target == CompletionApproved || target == CompletionRejected
	case CompletionRejected:
		return target == CompletionPending
	case CompletionApproved:
		return false // Terminal state
	}
	return false
}

// IsTerminal returns true if no transition leaves this status
func (s CompletionStatus) IsTerminal() bool {
	return s == CompletionApproved
}

// PaymentState represents how much of a sale has been paid
type PaymentState string

const (
	PaymentUnpaid  PaymentState = "UNPAID"
	PaymentPartial PaymentState = "PARTIAL"
	PaymentPaid    PaymentState = "PAID"
)

// IsValid checks if the state is a valid PaymentState
func (p PaymentState) IsValid() bool {
	switch p {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// String returns the string representation of PaymentState
func (p PaymentState) String() string {
	return string(p)
}
