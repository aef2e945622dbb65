package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/kitchenops/backend/internal/domain/catalog"
	"gorm.io/gorm"
)

// GormDensityRepository implements DensityRepository using GORM
type GormDensityRepository struct {
	db *gorm.DB
}

// NewGormDensityRepository creates a new GormDensityRepository
func NewGormDensityRepository(db *gorm.DB) *GormDensityRepository {
	return &GormDensityRepository{db: db}
}

// FindForProduct finds the product-specific density row
func (r *GormDensityRepository) FindForProduct(ctx context.Context, productID uuid.UUID) (*catalog.IngredientDensity, error) {
	var density catalog.IngredientDensity
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("updated_at DESC").
		First(&density).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &density, nil
}

// FindForClass finds the class-level density row
func (r *GormDensityRepository) FindForClass(ctx context.Context, class string) (*catalog.IngredientDensity, error) {
	var density catalog.IngredientDensity
	if err := r.db.WithContext(ctx).
		Where("product_id IS NULL AND density_class = ?", strings.ToLower(strings.TrimSpace(class))).
		Order("updated_at DESC").
		First(&density).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &density, nil
}

// Save creates or updates a density row
func (r *GormDensityRepository) Save(ctx context.Context, density *catalog.IngredientDensity) error {
	return r.db.WithContext(ctx).Save(density).Error
}

// Ensure GormDensityRepository implements DensityRepository
var _ catalog.DensityRepository = (*GormDensityRepository)(nil)
