package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/shared"
)

// MemberRole is the role a user holds in a restaurant
type MemberRole string

const (
	MemberRoleOwner   MemberRole = "owner"
	MemberRoleManager MemberRole = "manager"
	MemberRoleCook    MemberRole = "cook"
)

// IsValid returns true if the role is known
func (r MemberRole) IsValid() bool {
	switch r {
	case MemberRoleOwner, MemberRoleManager, MemberRoleCook:
		return true
	}
	return false
}

// RestaurantMember grants a user access to a restaurant's inventory
type RestaurantMember struct {
	RestaurantID uuid.UUID  `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Role         MemberRole `gorm:"type:varchar(20);not null"`
	CreatedAt    time.Time  `gorm:"not null"`
}

// TableName returns the table name for GORM
func (RestaurantMember) TableName() string {
	return "restaurant_members"
}

// NewRestaurantMember creates a membership
func NewRestaurantMember(restaurantID, userID uuid.UUID, role MemberRole) (*RestaurantMember, error) {
	if restaurantID == uuid.Nil || userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Restaurant and user are required")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Unknown member role")
	}
	return &RestaurantMember{
		RestaurantID: restaurantID,
		UserID:       userID,
		Role:         role,
		CreatedAt:    time.Now(),
	}, nil
}

// RestaurantMemberRepository defines the interface for membership persistence
type RestaurantMemberRepository interface {
	Exists(ctx context.Context, restaurantID, userID uuid.UUID) (bool, error)
	Save(ctx context.Context, member *RestaurantMember) error
}

// MembershipAccessChecker grants access to members of the restaurant.
type MembershipAccessChecker struct {
	repo RestaurantMemberRepository
}

var _ AccessChecker = (*MembershipAccessChecker)(nil)

// NewMembershipAccessChecker creates an access checker backed by membership rows
func NewMembershipAccessChecker(repo RestaurantMemberRepository) *MembershipAccessChecker {
	return &MembershipAccessChecker{repo: repo}
}

// UserHasAccess implements AccessChecker
func (c *MembershipAccessChecker) UserHasAccess(ctx context.Context, restaurantID, userID uuid.UUID) (bool, error) {
	return c.repo.Exists(ctx, restaurantID, userID)
}
