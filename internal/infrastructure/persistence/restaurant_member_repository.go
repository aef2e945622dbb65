package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/identity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRestaurantMemberRepository implements RestaurantMemberRepository using GORM
type GormRestaurantMemberRepository struct {
	db *gorm.DB
}

// NewGormRestaurantMemberRepository creates a new GormRestaurantMemberRepository
func NewGormRestaurantMemberRepository(db *gorm.DB) *GormRestaurantMemberRepository {
	return &GormRestaurantMemberRepository{db: db}
}

// Exists reports whether the user is a member of the restaurant
func (r *GormRestaurantMemberRepository) Exists(ctx context.Context, restaurantID, userID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&identity.RestaurantMember{}).
		Scopes(restaurantScope(restaurantID)).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates the membership or updates its role
func (r *GormRestaurantMemberRepository) Save(ctx context.Context, member *identity.RestaurantMember) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "restaurant_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(member).Error
}

// Ensure GormRestaurantMemberRepository implements RestaurantMemberRepository
var _ identity.RestaurantMemberRepository = (*GormRestaurantMemberRepository)(nil)
