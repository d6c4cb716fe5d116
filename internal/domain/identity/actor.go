package identity

import (
	"github.com/google/uuid"
)

// Role represents the authorization role of a user
type Role string

const (
	RoleUser       Role = "USER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsValid checks if the role is a known Role
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// IsElevated returns true for roles above the plain user role
func (r Role) IsElevated() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// CanReviewSales returns true if the role may approve or reject a
// completion request. Plain users never review, not even their own sales.
func (r Role) CanReviewSales() bool {
	return r.IsElevated()
}

// Actor identifies who is performing an operation. It is passed explicitly
// to every mutating call; the core never reads identity from ambient state.
type Actor struct {
	UserID uuid.UUID
	Role   Role
}

// NewActor creates an actor for the given user and role
func NewActor(userID uuid.UUID, role Role) Actor {
	return Actor{UserID: userID, Role: role}
}

// IsZero returns true if the actor carries no identity
func (a Actor) IsZero() bool {
	return a.UserID == uuid.Nil
}

// Owns returns true if the actor is the given owner
func (a Actor) Owns(ownerID uuid.UUID) bool {
	return a.UserID == ownerID
}
