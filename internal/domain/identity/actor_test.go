package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRole_IsValid(t *testing.T) {
	tests := []struct {
		role     Role
		expected bool
	}{
		{RoleUser, true},
		{RoleAdmin, true},
		{RoleSuperAdmin, true},
		{Role("MANAGER"), false},
		{Role(""), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.role.IsValid())
		})
	}
}

func TestRole_IsElevated(t *testing.T) {
	assert.False(t, RoleUser.IsElevated())
	assert.True(t, RoleAdmin.IsElevated())
	assert.True(t, RoleSuperAdmin.IsElevated())
}

func TestRole_CanReviewSales(t *testing.T) {
	assert.False(t, RoleUser.CanReviewSales())
	assert.True(t, RoleAdmin.CanReviewSales())
	assert.True(t, RoleSuperAdmin.CanReviewSales())
}

func TestActor_Owns(t *testing.T) {
	ownerID := uuid.New()
	actor := NewActor(ownerID, RoleUser)

	assert.True(t, actor.Owns(ownerID))
	assert.False(t, actor.Owns(uuid.New()))
}

func TestActor_IsZero(t *testing.T) {
	assert.True(t, Actor{}.IsZero())
	assert.False(t, NewActor(uuid.New(), RoleUser).IsZero())
}
