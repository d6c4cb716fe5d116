package sale

import (
	"github.com/gestion/backend/internal/domain/identity"
	"github.com/gestion/backend/internal/domain/shared"
)

// Decision is the outcome of an authorization check. A denial always carries
// a human-readable reason so the caller can explain the block to the user.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a positive decision
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a negative decision with the given reason
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err converts a denial into the NOT_AUTHORIZED domain error, or nil when
// the decision allows the operation.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return shared.NewDomainError(shared.CodeNotAuthorized, d.Reason)
}

// ownershipRule blocks plain users from touching sales they do not own.
// Admins and super-admins operate across all sales.
func ownershipRule(s *Sale, actor identity.Actor) Decision {
	if actor.Role == identity.RoleUser && !actor.Owns(s.OwnerID) {
		return Deny("Only the sale's owner may modify it")
	}
	return Allow()
}

// CanDelete decides whether the actor may delete the sale outright.
func CanDelete(s *Sale, actor identity.Actor) Decision {
	if d := ownershipRule(s, actor); !d.Allowed {
		return d
	}
	if actor.Role == identity.RoleAdmin && s.CreatorRole == identity.RoleSuperAdmin {
		return Deny("Admins cannot delete sales created by a super-admin")
	}
	if s.HasPayments() {
		return Deny("Sales with registered payments cannot be deleted")
	}
	if s.HasReturns() {
		return Deny("Sales with return records cannot be deleted")
	}
	if s.IsPendingApproval() {
		return Deny("Sales awaiting approval cannot be deleted")
	}
	if s.IsApproved() {
		return Deny("Approved sales cannot be deleted")
	}
	return Allow()
}

// CanModifyQuantity decides whether the actor may change a line item
// quantity. A fully paid sale freezes quantities; per-line locks from
// returns are enforced by the aggregate itself.
func CanModifyQuantity(s *Sale, actor identity.Actor) Decision {
	if d := ownershipRule(s, actor); !d.Allowed {
		return d
	}
	if s.IsApproved() {
		return Deny("Approved sales are immutable")
	}
	if s.PaymentState == PaymentPaid {
		return Deny("Fully paid sales cannot change quantities")
	}
	return Allow()
}

// CanAddProduct decides whether the actor may add a new line item.
// The same freezes apply as for quantity changes.
func CanAddProduct(s *Sale, actor identity.Actor) Decision {
	return CanModifyQuantity(s, actor)
}

// CanProcessReturn decides whether the actor may register returns.
// Returns stay possible on paid and pending sales; only approval closes them.
func CanProcessReturn(s *Sale, actor identity.Actor) Decision {
	if d := ownershipRule(s, actor); !d.Allowed {
		return d
	}
	if s.IsApproved() {
		return Deny("Approved sales cannot receive returns")
	}
	return Allow()
}

// CanRequestCompletion decides whether the actor may submit the sale for
// approval: the owner, or a super-admin on the owner's behalf.
func CanRequestCompletion(s *Sale, actor identity.Actor) Decision {
	if actor.Owns(s.OwnerID) || actor.Role == identity.RoleSuperAdmin {
		return Allow()
	}
	return Deny("Only the sale's owner or a super-admin may request completion")
}

// CanReview decides whether the actor may approve or reject a completion
// request. Requires elevated review privilege, never the plain user role.
func CanReview(s *Sale, actor identity.Actor) Decision {
	if !actor.Role.CanReviewSales() {
		return Deny("Only admins or super-admins may review completion requests")
	}
	return Allow()
}
